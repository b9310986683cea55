package eligibility

import (
	"time"

	"github.com/danhmatthews/crewdesk/pkg/core/model"
)

// PreferenceSets holds the three independent preference record sets, each
// already filtered to the job's specific company, site, and client.
type PreferenceSets struct {
	Company []model.PreferenceRecord
	Site    []model.PreferenceRecord
	Client  []model.PreferenceRecord
}

// Snapshot is the complete input to a classification pass. The engine is a
// pure function of a snapshot: it never reads ambient state, and it must not
// be invoked until all three input categories (schedules, time off,
// preferences) have resolved for the current job window.
type Snapshot struct {
	// Workers is the candidate pool from the worker directory.
	Workers []model.Worker

	// Window is the job's time window and assignment context. When editing
	// an existing job, conflicts referencing Window.JobID must be excluded
	// by the caller before classification.
	Window model.JobWindow

	// Required is the job's distinct required positions.
	Required []model.PositionRequirement

	// Conflicts are schedule records already scoped to the window by the
	// schedule query, tagged with their classification.
	Conflicts []model.ScheduleConflict

	// TimeOff is the flat list of time-off requests to test against the
	// window on a calendar-date basis.
	TimeOff []model.TimeOffRequest

	// Preferences are the per-scope preference sets.
	Preferences PreferenceSets

	// Location is the fixed reference timezone for calendar-date
	// comparisons. Defaults to UTC when nil.
	Location *time.Location
}

// Verdict is the per-worker classification result. All fields are pure
// functions of the snapshot; verdicts are recomputed on every relevant input
// change and never persisted.
type Verdict struct {
	WorkerID   string
	WorkerName string

	// MatchedPositions are the required position tags the worker qualifies
	// for, deduplicated, in required-position order. Retained for display.
	MatchedPositions []model.PositionTag

	// QualifiesForJob is true if the worker qualifies for at least one of
	// the job's required positions.
	QualifiesForJob bool

	HasScheduleConflict       bool
	HasBlockingConflict       bool
	HasUnavailabilityConflict bool
	HasTimeOffConflict        bool

	HasMandatoryNotPreferred    bool
	HasNonMandatoryNotPreferred bool
	PreferredCount              int

	// HasPreferenceRecord is true if any scope carries a record of either
	// polarity. Bulk selection treats any record as non-clean.
	HasPreferenceRecord bool

	IsEligibleByDefault bool

	// SortPriority orders the candidate list; lower sorts first. Ties are
	// broken by stable input order.
	SortPriority int

	// ScheduleConflicts and TimeOffConflicts carry the records behind the
	// flags above, for rendering explanations.
	ScheduleConflicts []model.ScheduleConflict
	TimeOffConflicts  []model.TimeOffRequest

	// Preferences is the resolved per-scope preference state.
	Preferences PreferenceResolution
}
