package storage

import (
	"context"
	"fmt"
)

type ActivityRepo struct {
	db DBTX
}

func NewActivityRepo(db DBTX) *ActivityRepo {
	return &ActivityRepo{db: db}
}

// ListAll returns the log newest first.
func (r *ActivityRepo) ListAll(ctx context.Context) ([]Activity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tier, task_name, description, base_score, final_score, outcome, streak, recorded_at
		FROM activities
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("activity list: %w", err)
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var (
			a        Activity
			recorded string
		)
		if err := rows.Scan(&a.ID, &a.Tier, &a.TaskName, &a.Description, &a.BaseScore, &a.FinalScore, &a.Outcome, &a.StreakAtRecording, &recorded); err != nil {
			return nil, fmt.Errorf("activity scan: %w", err)
		}
		if a.RecordedAt, err = parseTime(recorded); err != nil {
			return nil, fmt.Errorf("activity %s recorded_at: %w", a.ID, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("activity rows: %w", err)
	}
	return out, nil
}

// ReplaceAll rewrites the log; list order becomes the stored order.
func (r *ActivityRepo) ReplaceAll(ctx context.Context, list []Activity) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM activities`); err != nil {
		return fmt.Errorf("activity clear: %w", err)
	}
	for i, a := range list {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO activities (
				id, position, tier, task_name, description,
				base_score, final_score, outcome, streak, recorded_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, a.ID, i, a.Tier, a.TaskName, a.Description, a.BaseScore, a.FinalScore, a.Outcome, a.StreakAtRecording, formatTime(a.RecordedAt))
		if err != nil {
			return fmt.Errorf("activity insert %s: %w", a.ID, err)
		}
	}
	return nil
}

func (r *ActivityRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("activity count: %w", err)
	}
	return n, nil
}
