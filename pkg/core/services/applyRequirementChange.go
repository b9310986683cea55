package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/danhmatthews/crewdesk/pkg/core/eligibility"
)

// RequirementChangeStore adds the slot-clearing operation needed when a
// requirement change invalidates an assignment.
type RequirementChangeStore interface {
	ClassifyStore
	ClearSlotAssignment(ctx context.Context, jobID, workerID string) error
}

// RequirementChangeResult reports the reclassified state after a position or
// window edit.
type RequirementChangeResult struct {
	Classification *ClassifyJobResult

	// Selected is the next selection set after forced deselection.
	Selected eligibility.SelectionSet

	// Deselected are the workers removed because they no longer qualify for
	// any required position. Their slot assignments have been cleared.
	Deselected []string
}

// ApplyRequirementChange re-runs classification after the job's required
// positions or time window changed, force-deselects workers who no longer
// satisfy position qualification, and clears their dependent slot
// assignments. A now-invalid assignment is never silently retained.
func ApplyRequirementChange(
	ctx context.Context,
	database RequirementChangeStore,
	logger *zap.Logger,
	input ClassifyJobInput,
) (*RequirementChangeResult, error) {
	logger.Debug("Starting applyRequirementChange", zap.String("job_id", input.Window.JobID))

	classification, err := ClassifyOpenJob(ctx, database, logger, input)
	if err != nil {
		return nil, err
	}

	selected := input.Selected
	if selected == nil {
		selected = eligibility.NewSelectionSet()
	}

	next, removed := eligibility.InvalidateUnqualified(selected, classification.Verdicts)

	for _, workerID := range removed {
		logger.Info("Forcing deselection of unqualified worker",
			zap.String("worker_id", workerID),
			zap.String("job_id", input.Window.JobID))

		if input.Window.JobID == "" {
			continue
		}
		if err := database.ClearSlotAssignment(ctx, input.Window.JobID, workerID); err != nil {
			return nil, fmt.Errorf("failed to clear assignment for worker %s: %w", workerID, err)
		}
	}

	return &RequirementChangeResult{
		Classification: classification,
		Selected:       next,
		Deselected:     removed,
	}, nil
}
