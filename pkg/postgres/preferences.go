package postgres

import (
	"context"
	"fmt"

	"github.com/danhmatthews/crewdesk/pkg/core/model"
)

// GetPreferences retrieves the active preference records for one scope,
// filtered to the given company, site, or client id. At most one active
// record may exist per (scope, worker, entity); finding more is a
// data-integrity violation reported to the caller rather than resolved
// silently.
func (d *DB) GetPreferences(ctx context.Context, scope model.PreferenceScope, entityID string) ([]model.PreferenceRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT employee_id, preference_type, is_mandatory, reason
		FROM worker_preferences
		WHERE scope = $1
		  AND entity_id = $2
		  AND active
		ORDER BY employee_id
	`, string(scope), entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s preferences: %w", scope, err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var records []model.PreferenceRecord
	for rows.Next() {
		var rec model.PreferenceRecord
		var prefType string
		if err := rows.Scan(&rec.WorkerID, &prefType, &rec.IsMandatory, &rec.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan %s preference: %w", scope, err)
		}
		rec.Scope = scope
		rec.Type = model.PreferenceType(prefType)

		if seen[rec.WorkerID] {
			return nil, fmt.Errorf(
				"data integrity violation: multiple active %s preference records for worker %s (entity %s)",
				scope, rec.WorkerID, entityID,
			)
		}
		seen[rec.WorkerID] = true

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s preferences: %w", scope, err)
	}

	return records, nil
}
