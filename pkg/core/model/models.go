package model

import "time"

// Role is a worker's job-role tag from the worker directory.
type Role string

const (
	RoleLCT        Role = "lct"
	RoleTCP        Role = "tcp"
	RoleLCTTCP     Role = "lct/tcp"
	RoleWorker     Role = "worker"
	RoleEmployee   Role = "employee"
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "field_supervisor"
)

// PositionTag identifies a job position requirement.
type PositionTag string

const (
	PositionLCT        PositionTag = "lct"
	PositionTCP        PositionTag = "tcp"
	PositionLCTTCP     PositionTag = "lct/tcp"
	PositionSupervisor PositionTag = "field_supervisor"
)

// Worker represents an entry in the worker directory.
// Immutable for the duration of a classification pass.
type Worker struct {
	ID        string
	FirstName string
	LastName  string
	Role      Role

	// Positions is the backend-declared position list, used as a fallback
	// for roles without a fixed qualification rule.
	Positions []PositionTag

	// Certification expiries. Nil means the certification is absent.
	TCPCertificationExpiry *time.Time
	DriverLicenseExpiry    *time.Time

	Email string
	Phone string
}

// FullName returns the worker's display name.
func (w Worker) FullName() string {
	return w.FirstName + " " + w.LastName
}

// PositionRequirement is a required position on a job, derived from the
// job's worker slots.
type PositionRequirement struct {
	Position PositionTag
	Count    int
}

// JobWindow is the time window and assignment context of the job being
// classified. JobID is set only in edit mode and identifies the job whose
// own conflicts must be excluded before classification.
type JobWindow struct {
	Start     time.Time
	End       time.Time
	CompanyID string
	SiteID    string
	ClientID  string
	JobID     string
}

// ConflictKind classifies a schedule conflict record.
type ConflictKind string

const (
	// ConflictDirectOverlap is a blocking conflict: the worker's other
	// assignment overlaps the job window.
	ConflictDirectOverlap ConflictKind = "direct_overlap"

	// ConflictGapViolation is a non-blocking conflict: the other assignment
	// ends or begins within the gap threshold of the job window. Selection
	// requires explicit acknowledgement.
	ConflictGapViolation ConflictKind = "gap_violation"

	// ConflictUnavailable is a blocking conflict from admin-marked
	// unavailability.
	ConflictUnavailable ConflictKind = "unavailable"
)

// IsValid reports whether the kind is one of the declared variants.
func (k ConflictKind) IsValid() bool {
	return k == ConflictDirectOverlap || k == ConflictGapViolation || k == ConflictUnavailable
}

// Blocking reports whether this conflict kind forbids selection outright.
func (k ConflictKind) Blocking() bool {
	return k == ConflictDirectOverlap || k == ConflictUnavailable
}

// GapThreshold is the shift-gap rule: another assignment ending or starting
// within this duration of the job window is a gap violation.
const GapThreshold = 8 * time.Hour

// ScheduleConflict is a schedule record already scoped to a job window by
// the schedule query, tagged with its classification and enough metadata to
// render an explanation.
type ScheduleConflict struct {
	WorkerID  string
	Kind      ConflictKind
	Start     time.Time
	End       time.Time
	JobID     string
	JobNumber string
	SiteName  string
	Client    string
}

// TimeOffStatus is the review status of a time-off request.
type TimeOffStatus string

const (
	TimeOffPending  TimeOffStatus = "pending"
	TimeOffApproved TimeOffStatus = "approved"
	TimeOffDeclined TimeOffStatus = "declined"
)

// Counts reports whether requests with this status are considered when
// detecting time-off conflicts. Declined and unknown statuses are ignored.
func (s TimeOffStatus) Counts() bool {
	return s == TimeOffPending || s == TimeOffApproved
}

// TimeOffRequest is a worker time-off record at date-only granularity.
// StartDate and EndDate are calendar dates in "2006-01-02" form.
type TimeOffRequest struct {
	WorkerID  string
	StartDate string
	EndDate   string
	Status    TimeOffStatus
	Type      string
}

// PreferenceScope identifies which entity a preference record is attached to.
type PreferenceScope string

const (
	ScopeCompany PreferenceScope = "company"
	ScopeSite    PreferenceScope = "site"
	ScopeClient  PreferenceScope = "client"
)

// PreferenceType is the polarity of a preference record.
type PreferenceType string

const (
	Preferred    PreferenceType = "preferred"
	NotPreferred PreferenceType = "not_preferred"
)

// IsValid reports whether the type is one of the declared variants.
func (t PreferenceType) IsValid() bool {
	return t == Preferred || t == NotPreferred
}

// PreferenceRecord is an active preference for a worker at a single scope,
// pre-filtered to the job's specific company/site/client. At most one active
// record may exist per (scope, worker, entity).
type PreferenceRecord struct {
	Scope       PreferenceScope
	WorkerID    string
	Type        PreferenceType
	IsMandatory bool
	Reason      string
}
