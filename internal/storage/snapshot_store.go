package storage

import (
	"context"
	"database/sql"
)

// SnapshotStore persists a whole Snapshot at once.
type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save replaces the stored state in a single transaction.
func (s *SnapshotStore) Save(ctx context.Context, snap Snapshot) error {
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := NewPlayerRepo(tx).Upsert(ctx, snap.Player); err != nil {
			return err
		}
		if err := NewActivityRepo(tx).ReplaceAll(ctx, snap.Activities); err != nil {
			return err
		}
		templates := NewTemplateRepo(tx)
		if err := templates.ReplaceAll(ctx, snap.Templates); err != nil {
			return err
		}
		if err := templates.ReplaceHidden(ctx, snap.Hidden); err != nil {
			return err
		}
		if err := templates.ReplaceOrder(ctx, snap.Order); err != nil {
			return err
		}
		if err := NewAchievementRepo(tx).ReplaceAll(ctx, snap.Achievements); err != nil {
			return err
		}
		return NewModifierRepo(tx).ReplaceAll(ctx, snap.Modifiers)
	})
}

// Load reads the stored state. found is false when nothing was saved yet.
func (s *SnapshotStore) Load(ctx context.Context) (Snapshot, bool, error) {
	var snap Snapshot

	p, err := NewPlayerRepo(s.db).Get(ctx, MainPlayerKey)
	if err != nil {
		return snap, false, err
	}
	if p == nil {
		return snap, false, nil
	}
	snap.Player = *p

	if snap.Activities, err = NewActivityRepo(s.db).ListAll(ctx); err != nil {
		return snap, false, err
	}
	templates := NewTemplateRepo(s.db)
	if snap.Templates, err = templates.ListAll(ctx); err != nil {
		return snap, false, err
	}
	if snap.Hidden, err = templates.ListHidden(ctx); err != nil {
		return snap, false, err
	}
	if snap.Order, err = templates.ListOrder(ctx); err != nil {
		return snap, false, err
	}
	if snap.Achievements, err = NewAchievementRepo(s.db).ListUnlocked(ctx); err != nil {
		return snap, false, err
	}
	if snap.Modifiers, err = NewModifierRepo(s.db).ListOwned(ctx); err != nil {
		return snap, false, err
	}
	return snap, true, nil
}
