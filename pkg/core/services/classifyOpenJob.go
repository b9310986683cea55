package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/danhmatthews/crewdesk/pkg/core/eligibility"
	"github.com/danhmatthews/crewdesk/pkg/core/model"
)

// ErrInputsUnavailable marks a failure to fetch one of the classification
// input categories. Callers must treat this as "classification pending" and
// degrade accordingly (e.g. disable bulk selection); it is never reported as
// zero conflicts.
var ErrInputsUnavailable = errors.New("classification inputs unavailable")

// ClassifyStore defines the database operations needed to assemble a
// classification snapshot.
type ClassifyStore interface {
	GetWorkers(ctx context.Context) ([]model.Worker, error)
	GetScheduleConflicts(ctx context.Context, window model.JobWindow) ([]model.ScheduleConflict, error)
	GetTimeOffRequests(ctx context.Context, from, to time.Time) ([]model.TimeOffRequest, error)
	GetPreferences(ctx context.Context, scope model.PreferenceScope, entityID string) ([]model.PreferenceRecord, error)
}

// ClassifyJobInput carries the job context and the caller's current
// selection state into a classification pass.
type ClassifyJobInput struct {
	Window   model.JobWindow
	Required []model.PositionRequirement

	// Selected is the caller-owned selection set; selected workers always
	// stay visible regardless of default-eligibility filtering.
	Selected eligibility.SelectionSet

	// Assigned are workers already assigned to the job being edited; they
	// also always stay visible.
	Assigned []string

	// Location is the reference timezone for calendar-date comparisons.
	Location *time.Location
}

// ClassifyJobResult contains the full verdict list (sorted) and the
// default-view visible subset.
type ClassifyJobResult struct {
	Verdicts []eligibility.Verdict
	Visible  []eligibility.Verdict
}

// ClassifyOpenJob fetches all classification inputs for a job window, builds
// the snapshot, and runs the eligibility engine. When editing an existing
// job (Window.JobID set), conflicts referencing the job's own id are
// excluded before classification.
//
// A failure to fetch any input category returns an error wrapping
// ErrInputsUnavailable; partial input is never classified.
func ClassifyOpenJob(
	ctx context.Context,
	database ClassifyStore,
	logger *zap.Logger,
	input ClassifyJobInput,
) (*ClassifyJobResult, error) {
	logger.Debug("Starting classifyOpenJob",
		zap.String("job_id", input.Window.JobID),
		zap.Time("window_start", input.Window.Start),
		zap.Time("window_end", input.Window.End))

	workers, err := database.GetWorkers(ctx)
	if err != nil {
		return nil, inputsUnavailable("worker directory", err)
	}
	logger.Debug("Fetched workers", zap.Int("count", len(workers)))

	conflicts, err := database.GetScheduleConflicts(ctx, input.Window)
	if err != nil {
		return nil, inputsUnavailable("schedule conflicts", err)
	}
	conflicts = excludeOwnJob(conflicts, input.Window.JobID)
	logger.Debug("Fetched schedule conflicts", zap.Int("count", len(conflicts)))

	timeOff, err := database.GetTimeOffRequests(ctx, input.Window.Start, input.Window.End)
	if err != nil {
		return nil, inputsUnavailable("time off requests", err)
	}
	logger.Debug("Fetched time off requests", zap.Int("count", len(timeOff)))

	prefs, err := fetchPreferences(ctx, database, input.Window)
	if err != nil {
		return nil, err
	}

	snapshot := eligibility.Snapshot{
		Workers:     workers,
		Window:      input.Window,
		Required:    input.Required,
		Conflicts:   conflicts,
		TimeOff:     timeOff,
		Preferences: prefs,
		Location:    input.Location,
	}

	verdicts, err := eligibility.Classify(snapshot)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	selected := input.Selected
	if selected == nil {
		selected = eligibility.NewSelectionSet()
	}

	result := &ClassifyJobResult{
		Verdicts: verdicts,
		Visible:  eligibility.VisibleCandidates(verdicts, selected, input.Assigned),
	}

	logger.Info("Classification complete",
		zap.Int("workers", len(verdicts)),
		zap.Int("visible", len(result.Visible)))

	return result, nil
}

// fetchPreferences runs the three scope queries against the job's company,
// site, and client.
func fetchPreferences(ctx context.Context, database ClassifyStore, window model.JobWindow) (eligibility.PreferenceSets, error) {
	var sets eligibility.PreferenceSets
	var err error

	if sets.Company, err = database.GetPreferences(ctx, model.ScopeCompany, window.CompanyID); err != nil {
		return eligibility.PreferenceSets{}, inputsUnavailable("company preferences", err)
	}
	if sets.Site, err = database.GetPreferences(ctx, model.ScopeSite, window.SiteID); err != nil {
		return eligibility.PreferenceSets{}, inputsUnavailable("site preferences", err)
	}
	if sets.Client, err = database.GetPreferences(ctx, model.ScopeClient, window.ClientID); err != nil {
		return eligibility.PreferenceSets{}, inputsUnavailable("client preferences", err)
	}

	return sets, nil
}

// excludeOwnJob drops conflicts referencing the job being edited, so a job
// never conflicts with itself. The detector is unaware of job identity and
// never filters by it.
func excludeOwnJob(conflicts []model.ScheduleConflict, jobID string) []model.ScheduleConflict {
	if jobID == "" {
		return conflicts
	}
	filtered := make([]model.ScheduleConflict, 0, len(conflicts))
	for _, c := range conflicts {
		if c.JobID == jobID {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

// inputsUnavailable wraps a fetch failure so callers can distinguish
// "inputs unavailable" from an empty result.
func inputsUnavailable(category string, err error) error {
	return fmt.Errorf("failed to fetch %s: %w", category, errors.Join(ErrInputsUnavailable, err))
}
