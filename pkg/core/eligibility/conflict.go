package eligibility

import (
	"time"

	"github.com/danhmatthews/crewdesk/pkg/core/model"
)

// ConflictReport is the per-worker output of conflict detection against a
// single job window.
type ConflictReport struct {
	// HasScheduleConflict is true if any schedule record is present for the
	// worker, regardless of kind.
	HasScheduleConflict bool

	// HasBlockingScheduleConflict is true if any record is classified
	// direct_overlap or unavailable.
	HasBlockingScheduleConflict bool

	// HasUnavailabilityConflict is true if any record is classified
	// unavailable (admin-marked unavailability).
	HasUnavailabilityConflict bool

	// ScheduleConflicts are the worker's schedule records, in input order.
	ScheduleConflicts []model.ScheduleConflict

	// TimeOffConflicts are the worker's status-valid time-off requests whose
	// date range overlaps the job window.
	TimeOffConflicts []model.TimeOffRequest

	// HasTimeOffConflict is true if TimeOffConflicts is non-empty.
	HasTimeOffConflict bool
}

// GapViolationOnly reports whether the worker's schedule conflicts consist
// solely of gap violations: present, but none blocking. Such workers may be
// selected after explicit acknowledgement.
func (r ConflictReport) GapViolationOnly() bool {
	return r.HasScheduleConflict && !r.HasBlockingScheduleConflict
}

// DetectConflicts classifies one worker's schedule and time-off records
// against a job window. The schedule records are expected to be pre-scoped
// to the window (including gap padding) by the schedule query; this detector
// is unaware of job identity and never filters by it, so when editing an
// existing job the caller must drop records referencing the job's own id
// first.
//
// loc is the fixed reference timezone for calendar-date comparisons.
func DetectConflicts(
	workerID string,
	window model.JobWindow,
	conflicts []model.ScheduleConflict,
	timeOff []model.TimeOffRequest,
	loc *time.Location,
) ConflictReport {
	if loc == nil {
		loc = time.UTC
	}

	var report ConflictReport

	for _, c := range conflicts {
		if c.WorkerID != workerID {
			continue
		}
		report.ScheduleConflicts = append(report.ScheduleConflicts, c)
		report.HasScheduleConflict = true
		if c.Kind.Blocking() {
			report.HasBlockingScheduleConflict = true
		}
		if c.Kind == model.ConflictUnavailable {
			report.HasUnavailabilityConflict = true
		}
	}

	jobStart := dateString(window.Start, loc)
	jobEnd := dateString(window.End, loc)

	for _, req := range timeOff {
		if req.WorkerID != workerID {
			continue
		}
		if !req.Status.Counts() {
			continue
		}
		if datesOverlap(req.StartDate, req.EndDate, jobStart, jobEnd) {
			report.TimeOffConflicts = append(report.TimeOffConflicts, req)
			report.HasTimeOffConflict = true
		}
	}

	return report
}

// dateString converts an instant to its calendar date in the reference
// timezone, in "2006-01-02" form.
func dateString(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// datesOverlap tests calendar-date range intersection, inclusive on both
// ends. Overlap is computed on date strings rather than instants, so a
// worker on leave for any part of the job's calendar day conflicts even
// when the hours themselves do not overlap. ISO dates compare correctly as
// strings.
func datesOverlap(offStart, offEnd, jobStart, jobEnd string) bool {
	return offStart <= jobEnd && offEnd >= jobStart
}
