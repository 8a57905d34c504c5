package engine

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/qinghezeng/research-gamification/internal/catalog"
	"github.com/qinghezeng/research-gamification/internal/storage"
)

// Service binds a Tracker to the SQLite store. Every successful mutation is
// persisted before the call returns; a failed save rolls the tracker back.
type Service struct {
	tracker *Tracker
	store   *storage.SnapshotStore
	clock   Clock
	logger  *log.Logger
}

// NewService loads the stored state (or starts fresh) and recovers any
// emptied built-in tier.
func NewService(ctx context.Context, db *sql.DB, logger *log.Logger, opts ...Option) (*Service, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	opts = append([]Option{WithLogger(logger)}, opts...)
	t := NewTracker(opts...)

	s := &Service{
		tracker: t,
		store:   storage.NewSnapshotStore(db),
		clock:   t.clock,
		logger:  logger,
	}

	snap, found, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if found {
		if bad := t.Restore(fromStorage(snap)); len(bad) > 0 {
			logger.Printf("loaded state with %d malformed fields", len(bad))
		}
	} else {
		t.RecoverCatalog()
	}
	return s, nil
}

func (s *Service) Tracker() *Tracker { return s.tracker }

// mutate runs fn and saves. fn leaves the tracker untouched when it fails; a
// failed save puts the tracker back to its previous state.
func (s *Service) mutate(ctx context.Context, fn func() error) error {
	before := s.tracker.Snapshot()
	pending := s.tracker.notifications
	if err := fn(); err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		s.tracker.Restore(before)
		s.tracker.notifications = pending
		return err
	}
	return nil
}

func (s *Service) save(ctx context.Context) error {
	if err := s.store.Save(ctx, toStorage(s.tracker.Snapshot(), s.clock.Now())); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *Service) Record(ctx context.Context, tier catalog.Tier, name string, outcome Outcome) (*RecordResult, error) {
	var res *RecordResult
	err := s.mutate(ctx, func() error {
		var err error
		res, err = s.tracker.RecordActivity(tier, name, outcome)
		return err
	})
	return res, err
}

// DeleteActivity removes the record matching ref (an id or unique id prefix).
func (s *Service) DeleteActivity(ctx context.Context, ref string) (*DeleteResult, error) {
	a, err := s.tracker.FindActivity(ref)
	if err != nil {
		return nil, err
	}
	var res *DeleteResult
	err = s.mutate(ctx, func() error {
		var err error
		res, err = s.tracker.DeleteActivity(a.ID)
		return err
	})
	return res, err
}

func (s *Service) UpdateDescription(ctx context.Context, ref, text string) (Activity, error) {
	a, err := s.tracker.FindActivity(ref)
	if err != nil {
		return Activity{}, err
	}
	err = s.mutate(ctx, func() error {
		return s.tracker.UpdateActivityDescription(a.ID, text)
	})
	if err != nil {
		return Activity{}, err
	}
	a.Description = text
	return a, nil
}

func (s *Service) Buy(ctx context.Context, kind ModifierKind) error {
	return s.mutate(ctx, func() error { return s.tracker.SpendCurrency(kind) })
}

func (s *Service) ResetAll(ctx context.Context) error {
	return s.mutate(ctx, func() error {
		s.tracker.ResetAll()
		return nil
	})
}

func (s *Service) CreateTemplate(ctx context.Context, tier catalog.Tier, tpl catalog.Template) ([]Unlock, error) {
	var out []Unlock
	err := s.mutate(ctx, func() error {
		var err error
		out, err = s.tracker.CreateCustom(tier, tpl)
		return err
	})
	return out, err
}

func (s *Service) HideTemplate(ctx context.Context, tier catalog.Tier, name string) error {
	return s.mutate(ctx, func() error {
		_, err := s.tracker.DeleteOrHide(tier, name)
		return err
	})
}

func (s *Service) ShowTemplate(ctx context.Context, tier catalog.Tier, name string) error {
	return s.mutate(ctx, func() error {
		s.tracker.Unhide(tier, name)
		return nil
	})
}

func (s *Service) EditTemplate(ctx context.Context, tier catalog.Tier, name string, newTier catalog.Tier, tpl catalog.Template) error {
	return s.mutate(ctx, func() error {
		_, err := s.tracker.EditTemplate(tier, name, newTier, tpl)
		return err
	})
}

func (s *Service) MoveTemplate(ctx context.Context, tier catalog.Tier, name string, dir catalog.Direction) error {
	return s.mutate(ctx, func() error {
		_, err := s.tracker.MoveTemplate(tier, name, dir)
		return err
	})
}

func (s *Service) Export(f Format) ([]byte, error) {
	return EncodeBundle(s.tracker.ExportBundle(), f)
}

// ImportResult reports what an import did.
type ImportResult struct {
	Info      BundleInfo
	Malformed []MalformedField
	Unlocked  []Unlock
}

// Import replaces all state with an exported bundle, then runs the
// achievement pass so rules satisfied by the imported log are granted.
func (s *Service) Import(ctx context.Context, data []byte, f Format) (*ImportResult, error) {
	res := &ImportResult{}
	err := s.mutate(ctx, func() error {
		info, bad, err := s.tracker.ImportData(data, f)
		if err != nil {
			return err
		}
		res.Info = info
		res.Malformed = bad
		res.Unlocked = s.tracker.Refresh()
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, m := range res.Malformed {
		s.logger.Printf("import: %v", m)
	}
	return res, nil
}

func (s *Service) Player() Player                                { return s.tracker.Player() }
func (s *Service) Rank() Rank                                    { return s.tracker.Rank() }
func (s *Service) Metrics() Metrics                              { return s.tracker.Metrics() }
func (s *Service) Achievements() []AchievementStatus             { return s.tracker.Achievements() }
func (s *Service) ListVisible(t catalog.Tier) []catalog.Template { return s.tracker.ListVisible(t) }
func (s *Service) ListAll(t catalog.Tier) []catalog.Entry        { return s.tracker.ListAll(t) }

func (s *Service) Notifications() []Unlock { return s.tracker.Notifications(s.clock.Now()) }

func (s *Service) Now() time.Time { return s.clock.Now() }
