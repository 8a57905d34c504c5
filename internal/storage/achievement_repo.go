package storage

import (
	"context"
	"fmt"
)

type AchievementRepo struct {
	db DBTX
}

func NewAchievementRepo(db DBTX) *AchievementRepo {
	return &AchievementRepo{db: db}
}

// ListUnlocked returns unlocked ids in unlock order.
func (r *AchievementRepo) ListUnlocked(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM achievements ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("achievement list: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("achievement scan: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("achievement rows: %w", err)
	}
	return out, nil
}

func (r *AchievementRepo) ReplaceAll(ctx context.Context, ids []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM achievements`); err != nil {
		return fmt.Errorf("achievement clear: %w", err)
	}
	for i, id := range ids {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO achievements (id, position) VALUES (?, ?)
			ON CONFLICT(id) DO NOTHING
		`, id, i)
		if err != nil {
			return fmt.Errorf("achievement insert %s: %w", id, err)
		}
	}
	return nil
}
