package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danhmatthews/crewdesk/pkg/core/model"
	"github.com/danhmatthews/crewdesk/pkg/db"
)

// CreateJobStore defines the database operations needed to post an open job.
type CreateJobStore interface {
	InsertJob(ctx context.Context, job *db.Job) error
}

// CreateOpenJobInput describes the job to post. Slots are derived from the
// required positions; no worker is assigned yet.
type CreateOpenJobInput struct {
	Number    string
	Start     time.Time
	End       time.Time
	CompanyID string
	SiteID    string
	ClientID  string
	Required  []model.PositionRequirement
}

// CreateOpenJob posts an open job with one empty slot per required position
// count. Workers are selected and notified in a separate step, governed by
// the selection state machine.
func CreateOpenJob(
	ctx context.Context,
	database CreateJobStore,
	logger *zap.Logger,
	input CreateOpenJobInput,
) (*db.Job, error) {
	if !input.End.After(input.Start) {
		return nil, fmt.Errorf("job window end must be after start")
	}
	if len(input.Required) == 0 {
		return nil, fmt.Errorf("job requires at least one position")
	}

	job := &db.Job{
		ID:        uuid.New().String(),
		Number:    input.Number,
		Start:     input.Start,
		End:       input.End,
		CompanyID: input.CompanyID,
		SiteID:    input.SiteID,
		ClientID:  input.ClientID,
	}

	for _, req := range input.Required {
		if req.Count < 1 {
			return nil, fmt.Errorf("position %s has invalid count %d", req.Position, req.Count)
		}
		for i := 0; i < req.Count; i++ {
			job.Slots = append(job.Slots, db.JobSlot{
				ID:       uuid.New().String(),
				JobID:    job.ID,
				Position: string(req.Position),
			})
		}
	}

	if err := database.InsertJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to insert job: %w", err)
	}

	logger.Info("Open job created",
		zap.String("job_id", job.ID),
		zap.String("number", job.Number),
		zap.Int("slots", len(job.Slots)))

	return job, nil
}
