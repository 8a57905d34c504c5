package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const MainPlayerKey = "main_user"

type PlayerRepo struct {
	db DBTX
}

func NewPlayerRepo(db DBTX) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// Get returns nil when no player row exists yet.
func (r *PlayerRepo) Get(ctx context.Context, key string) (*Player, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, score, streak, currency, COALESCE(updated_at, '') FROM player WHERE key = ?`, key)

	var (
		p       Player
		updated string
	)
	if err := row.Scan(&p.Key, &p.Score, &p.Streak, &p.Currency, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("player get: %w", err)
	}
	t, err := parseTime(updated)
	if err != nil {
		return nil, fmt.Errorf("player updated_at: %w", err)
	}
	p.UpdatedAt = t
	return &p, nil
}

func (r *PlayerRepo) Upsert(ctx context.Context, p Player) error {
	if p.Key == "" {
		p.Key = MainPlayerKey
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO player (key, score, streak, currency, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			score = excluded.score,
			streak = excluded.streak,
			currency = excluded.currency,
			updated_at = excluded.updated_at
	`, p.Key, p.Score, p.Streak, p.Currency, formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("player upsert: %w", err)
	}
	return nil
}
