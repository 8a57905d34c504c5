package storage

import (
	"context"
	"fmt"
)

type ModifierRepo struct {
	db DBTX
}

func NewModifierRepo(db DBTX) *ModifierRepo {
	return &ModifierRepo{db: db}
}

func (r *ModifierRepo) ListOwned(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, owned FROM modifiers WHERE owned > 0 ORDER BY kind ASC`)
	if err != nil {
		return nil, fmt.Errorf("modifier list: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			kind  string
			owned int
		)
		if err := rows.Scan(&kind, &owned); err != nil {
			return nil, fmt.Errorf("modifier scan: %w", err)
		}
		out[kind] = owned
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("modifier rows: %w", err)
	}
	return out, nil
}

func (r *ModifierRepo) ReplaceAll(ctx context.Context, owned map[string]int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM modifiers`); err != nil {
		return fmt.Errorf("modifier clear: %w", err)
	}
	for _, kind := range sortedKeys(owned) {
		if owned[kind] <= 0 {
			continue
		}
		if _, err := r.db.ExecContext(ctx, `INSERT INTO modifiers (kind, owned) VALUES (?, ?)`, kind, owned[kind]); err != nil {
			return fmt.Errorf("modifier insert %s: %w", kind, err)
		}
	}
	return nil
}
