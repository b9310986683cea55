package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/danhmatthews/crewdesk/pkg/core/model"
	"github.com/danhmatthews/crewdesk/pkg/db"
)

// GetScheduleConflicts runs the job-time-window query: every worker
// assignment that overlaps the window or falls within the shift-gap
// threshold of it, plus admin unavailability occurrences intersecting the
// padded window. Each record is tagged with its conflict classification.
// Records referencing the window's own job id are NOT excluded here; that
// is the caller's responsibility in edit mode.
func (d *DB) GetScheduleConflicts(ctx context.Context, window model.JobWindow) ([]model.ScheduleConflict, error) {
	paddedStart := window.Start.Add(-model.GapThreshold)
	paddedEnd := window.End.Add(model.GapThreshold)

	rows, err := d.pool.Query(ctx, `
		SELECT s.worker_id, j.id, j.number, j.site_name, j.client_name, j.start_at, j.end_at
		FROM job_slots s
		JOIN jobs j ON j.id = s.job_id
		WHERE s.worker_id IS NOT NULL
		  AND j.start_at < $2
		  AND j.end_at > $1
		ORDER BY j.start_at, j.id, s.worker_id
	`, paddedStart, paddedEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []model.ScheduleConflict
	for rows.Next() {
		var c model.ScheduleConflict
		if err := rows.Scan(&c.WorkerID, &c.JobID, &c.JobNumber, &c.SiteName, &c.Client, &c.Start, &c.End); err != nil {
			return nil, fmt.Errorf("failed to scan schedule conflict: %w", err)
		}
		c.Kind = classifyAssignment(c.Start, c.End, window.Start, window.End)
		conflicts = append(conflicts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule conflicts: %w", err)
	}

	unavailable, err := d.expandUnavailability(ctx, window)
	if err != nil {
		return nil, err
	}
	conflicts = append(conflicts, unavailable...)

	return conflicts, nil
}

// classifyAssignment tags an assignment against the job window: actual
// overlap is a direct (blocking) conflict; anything else returned by the
// padded query ended or begins within the gap threshold and is a gap
// violation.
func classifyAssignment(assignStart, assignEnd, windowStart, windowEnd time.Time) model.ConflictKind {
	if assignStart.Before(windowEnd) && assignEnd.After(windowStart) {
		return model.ConflictDirectOverlap
	}
	return model.ConflictGapViolation
}

// expandUnavailability expands each worker's recurring unavailability rule
// into concrete occurrences intersecting the padded window, tagged
// unavailable when they overlap the job window itself and gap_violation
// when they are merely gap-adjacent.
func (d *DB) expandUnavailability(ctx context.Context, window model.JobWindow) ([]model.ScheduleConflict, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, worker_id, rule, duration_minutes, note
		FROM unavailability_rules
		ORDER BY worker_id, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unavailability rules: %w", err)
	}
	defer rows.Close()

	var rules []unavailRule
	for rows.Next() {
		var r unavailRule
		var minutes int
		if err := rows.Scan(&r.id, &r.workerID, &r.rule, &minutes, &r.note); err != nil {
			return nil, fmt.Errorf("failed to scan unavailability rule: %w", err)
		}
		r.duration = time.Duration(minutes) * time.Minute
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unavailability rules: %w", err)
	}

	var conflicts []model.ScheduleConflict
	for _, r := range rules {
		occurrences, err := expandRule(r.rule, r.duration, window)
		if err != nil {
			return nil, fmt.Errorf("invalid unavailability rule %s for worker %s: %w", r.id, r.workerID, err)
		}
		for _, occ := range occurrences {
			conflicts = append(conflicts, model.ScheduleConflict{
				WorkerID: r.workerID,
				Kind:     classifyOccurrence(occ, window),
				Start:    occ.start,
				End:      occ.end,
				SiteName: r.note,
			})
		}
	}

	return conflicts, nil
}

type unavailRule struct {
	id       string
	workerID string
	rule     string
	duration time.Duration
	note     string
}

type occurrence struct {
	start time.Time
	end   time.Time
}

// classifyOccurrence tags an unavailability occurrence against the job
// window: actual overlap blocks as unavailable; an occurrence that only
// falls within the gap threshold is a gap violation, acknowledgeable like
// any other.
func classifyOccurrence(occ occurrence, window model.JobWindow) model.ConflictKind {
	if occ.start.Before(window.End) && occ.end.After(window.Start) {
		return model.ConflictUnavailable
	}
	return model.ConflictGapViolation
}

// expandRule evaluates an RRULE string and returns the occurrences whose
// span intersects the window, padded by the gap threshold so recurring
// unavailability adjacent to the window still surfaces.
func expandRule(ruleStr string, duration time.Duration, window model.JobWindow) ([]occurrence, error) {
	rule, err := rrule.StrToRRule(ruleStr)
	if err != nil {
		return nil, err
	}

	paddedStart := window.Start.Add(-model.GapThreshold)
	paddedEnd := window.End.Add(model.GapThreshold)

	// Occurrences starting before the padded window can still reach into it.
	searchFrom := paddedStart.Add(-duration)

	var occurrences []occurrence
	for _, start := range rule.Between(searchFrom, paddedEnd, true) {
		end := start.Add(duration)
		if start.Before(paddedEnd) && end.After(paddedStart) {
			occurrences = append(occurrences, occurrence{start: start, end: end})
		}
	}
	return occurrences, nil
}

// InsertUnavailabilityRule stores a recurring unavailability rule after
// validating its RRULE syntax.
func (d *DB) InsertUnavailabilityRule(ctx context.Context, rule *db.UnavailabilityRule) error {
	if _, err := rrule.StrToRRule(rule.Rule); err != nil {
		return fmt.Errorf("invalid rrule %q: %w", rule.Rule, err)
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO unavailability_rules (id, worker_id, rule, duration_minutes, note)
		VALUES ($1, $2, $3, $4, $5)
	`, rule.ID, rule.WorkerID, rule.Rule, int(rule.Duration.Minutes()), rule.Note)
	if err != nil {
		return fmt.Errorf("failed to insert unavailability rule: %w", err)
	}
	return nil
}
