package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/danhmatthews/crewdesk/pkg/core/model"
)

// GetTimeOffRequests retrieves time-off requests whose date range intersects
// the given span. Ranges are date-only, and the date casts in the query run
// in the database session's timezone, not the reference timezone; the bounds
// are therefore padded by a day on each side so the working set always
// covers the job's calendar dates in the reference timezone. The precise
// calendar-date overlap rule is applied by the eligibility engine.
func (d *DB) GetTimeOffRequests(ctx context.Context, from, to time.Time) ([]model.TimeOffRequest, error) {
	lower, upper := timeOffQueryBounds(from, to)

	rows, err := d.pool.Query(ctx, `
		SELECT user_id, to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'), status, type
		FROM time_off_requests
		WHERE start_date <= $2::date
		  AND end_date >= $1::date
		ORDER BY user_id, start_date
	`, lower, upper)
	if err != nil {
		return nil, fmt.Errorf("failed to query time off requests: %w", err)
	}
	defer rows.Close()

	var requests []model.TimeOffRequest
	for rows.Next() {
		var req model.TimeOffRequest
		var status string
		if err := rows.Scan(&req.WorkerID, &req.StartDate, &req.EndDate, &status, &req.Type); err != nil {
			return nil, fmt.Errorf("failed to scan time off request: %w", err)
		}
		req.Status = model.TimeOffStatus(status)
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time off requests: %w", err)
	}

	return requests, nil
}

// timeOffQueryBounds pads the query span by a full day on each side. The
// session timezone's calendar date for an instant differs from the
// reference timezone's by less than a day in either direction, so the
// padded prefilter is always a superset of the engine's matches.
func timeOffQueryBounds(from, to time.Time) (time.Time, time.Time) {
	return from.Add(-24 * time.Hour), to.Add(24 * time.Hour)
}
