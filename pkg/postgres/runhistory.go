package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ntsvetkov/campus-manager/pkg/core/model"
)

// InsertRun records the outcome of a distribution run
func (d *DB) InsertRun(ctx context.Context, run model.RunSummary) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO run_history (run_id, computed_at, student_count, priority_count, skipped_count, saved)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, run.RunID, run.ComputedAt.UTC(), run.Students, run.Priority, run.Skipped, run.Saved)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// GetRuns retrieves the most recent runs, newest first
func (d *DB) GetRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT run_id, computed_at, student_count, priority_count, skipped_count, saved
		FROM run_history
		ORDER BY computed_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []model.RunSummary
	for rows.Next() {
		var r model.RunSummary
		var computedAt time.Time
		if err := rows.Scan(&r.RunID, &computedAt, &r.Students, &r.Priority, &r.Skipped, &r.Saved); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.ComputedAt = computedAt.UTC()
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}
