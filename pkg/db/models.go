package db

import "time"

// Job is an open-job record: a posted job with position requirements but no
// worker committed to every slot yet.
type Job struct {
	ID        string
	Number    string
	Start     time.Time
	End       time.Time
	CompanyID string
	SiteID    string
	ClientID  string
	Slots     []JobSlot
}

// JobSlot is a single worker slot on a job. WorkerID is empty until a worker
// is assigned.
type JobSlot struct {
	ID       string
	JobID    string
	Position string
	WorkerID string
}

// UnavailabilityRule is admin-marked recurring unavailability for a worker.
// Rule is an RRULE string; each occurrence spans Duration from its start.
type UnavailabilityRule struct {
	ID       string
	WorkerID string
	Rule     string
	Duration time.Duration
	Note     string
}
