package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/danhmatthews/crewdesk/pkg/db"
)

// ErrJobNotFound is returned when a job id does not exist.
var ErrJobNotFound = errors.New("job not found")

// GetJob retrieves a job with its worker slots.
func (d *DB) GetJob(ctx context.Context, id string) (*db.Job, error) {
	var job db.Job
	err := d.pool.QueryRow(ctx, `
		SELECT id, number, start_at, end_at, company_id, site_id, client_id
		FROM jobs
		WHERE id = $1
	`, id).Scan(&job.ID, &job.Number, &job.Start, &job.End, &job.CompanyID, &job.SiteID, &job.ClientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		return nil, fmt.Errorf("failed to query job %s: %w", id, err)
	}

	rows, err := d.pool.Query(ctx, `
		SELECT id, job_id, position, COALESCE(worker_id, '')
		FROM job_slots
		WHERE job_id = $1
		ORDER BY position, id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query job slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slot db.JobSlot
		if err := rows.Scan(&slot.ID, &slot.JobID, &slot.Position, &slot.WorkerID); err != nil {
			return nil, fmt.Errorf("failed to scan job slot: %w", err)
		}
		job.Slots = append(job.Slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job slots: %w", err)
	}

	return &job, nil
}

// InsertJob inserts a job and its slots in a single transaction.
func (d *DB) InsertJob(ctx context.Context, job *db.Job) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO jobs (id, number, start_at, end_at, company_id, site_id, client_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, job.ID, job.Number, job.Start, job.End, job.CompanyID, job.SiteID, job.ClientID)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	for _, slot := range job.Slots {
		var workerID any
		if slot.WorkerID != "" {
			workerID = slot.WorkerID
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO job_slots (id, job_id, position, worker_id)
			VALUES ($1, $2, $3, $4)
		`, slot.ID, slot.JobID, slot.Position, workerID)
		if err != nil {
			return fmt.Errorf("failed to insert job slot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit job insert: %w", err)
	}
	return nil
}

// ClearSlotAssignment removes a worker from every slot of a job, after a
// requirement change invalidated their selection.
func (d *DB) ClearSlotAssignment(ctx context.Context, jobID, workerID string) error {
	_, err := d.pool.Exec(ctx, `
		UPDATE job_slots
		SET worker_id = NULL
		WHERE job_id = $1 AND worker_id = $2
	`, jobID, workerID)
	if err != nil {
		return fmt.Errorf("failed to clear slot assignment: %w", err)
	}
	return nil
}

// UpdateSlotPosition changes the required position of a single slot.
func (d *DB) UpdateSlotPosition(ctx context.Context, slotID, position string) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE job_slots
		SET position = $2
		WHERE id = $1
	`, slotID, position)
	if err != nil {
		return fmt.Errorf("failed to update slot position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job slot not found: %s", slotID)
	}
	return nil
}
