package db

import (
	"context"

	"kisansense/internal/models"
)

// IncrementAdvisoryLookup upserts an advisory lookup count by outcome and language.
func (d *DB) IncrementAdvisoryLookup(ctx context.Context, outcome, language string) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO advisory_lookups (outcome, language, count, last_seen_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (outcome, language) DO UPDATE
		SET count = advisory_lookups.count + 1, last_seen_at = NOW()
	`, outcome, language)
	return err
}

// GetAllAdvisoryLookups returns all advisory lookup rows, busiest first.
func (d *DB) GetAllAdvisoryLookups(ctx context.Context) ([]models.AdvisoryLookup, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT outcome, language, count, last_seen_at
		FROM advisory_lookups
		ORDER BY count DESC, outcome, language
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lookups []models.AdvisoryLookup
	for rows.Next() {
		var l models.AdvisoryLookup
		if err := rows.Scan(&l.Outcome, &l.Language, &l.Count, &l.LastSeenAt); err != nil {
			return nil, err
		}
		lookups = append(lookups, l)
	}
	return lookups, rows.Err()
}
