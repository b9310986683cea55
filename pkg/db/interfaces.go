package db

import (
	"context"
	"time"

	"github.com/danhmatthews/crewdesk/pkg/core/model"
)

// WorkerDirectory provides the worker pool for classification.
type WorkerDirectory interface {
	GetWorkers(ctx context.Context) ([]model.Worker, error)
}

// ScheduleStore provides the job-time-window conflict query: assignments
// overlapping or gap-violating the window, plus expanded admin
// unavailability, each tagged with its conflict classification.
type ScheduleStore interface {
	GetScheduleConflicts(ctx context.Context, window model.JobWindow) ([]model.ScheduleConflict, error)
}

// TimeOffStore provides time-off requests intersecting a date span.
type TimeOffStore interface {
	GetTimeOffRequests(ctx context.Context, from, to time.Time) ([]model.TimeOffRequest, error)
}

// PreferenceStore provides the active preference records for one scope,
// filtered to a specific company, site, or client.
type PreferenceStore interface {
	GetPreferences(ctx context.Context, scope model.PreferenceScope, entityID string) ([]model.PreferenceRecord, error)
}

// JobStore provides open-job persistence.
type JobStore interface {
	GetJob(ctx context.Context, id string) (*Job, error)
	InsertJob(ctx context.Context, job *Job) error
	ClearSlotAssignment(ctx context.Context, jobID, workerID string) error
	UpdateSlotPosition(ctx context.Context, slotID, position string) error
}

// Database combines every store the postgres implementation satisfies.
type Database interface {
	WorkerDirectory
	ScheduleStore
	TimeOffStore
	PreferenceStore
	JobStore
	InsertUnavailabilityRule(ctx context.Context, rule *UnavailabilityRule) error
}
