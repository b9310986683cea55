package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/danhmatthews/crewdesk/pkg/core/model"
)

// GetWorkers retrieves the full worker directory.
func (d *DB) GetWorkers(ctx context.Context) ([]model.Worker, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, first_name, last_name, role, positions,
		       tcp_certification_expiry, driver_license_expiry, email, phone
		FROM workers
		ORDER BY last_name, first_name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query workers: %w", err)
	}
	defer rows.Close()

	var workers []model.Worker
	for rows.Next() {
		var w model.Worker
		var role string
		var positions []string
		var tcpExpiry, dlExpiry *time.Time
		if err := rows.Scan(&w.ID, &w.FirstName, &w.LastName, &role, &positions,
			&tcpExpiry, &dlExpiry, &w.Email, &w.Phone); err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		w.Role = model.Role(role)
		for _, p := range positions {
			w.Positions = append(w.Positions, model.PositionTag(p))
		}
		w.TCPCertificationExpiry = tcpExpiry
		w.DriverLicenseExpiry = dlExpiry
		workers = append(workers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workers: %w", err)
	}

	return workers, nil
}
