package engine

import (
	"fmt"
	"io"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qinghezeng/research-gamification/internal/catalog"
)

// Tracker is the single writer over the catalog, the player and the unlock
// set. Every exported mutation runs to completion and then runs the
// achievement pass. A Tracker is not safe for concurrent use.
type Tracker struct {
	catalog *catalog.Catalog
	player  Player

	achievements     *AchievementEngine
	notifications    []Unlock
	clock            Clock
	loc              *time.Location
	startingCurrency int
	ttl              time.Duration
	rules            []Rule
	logger           *log.Logger
}

type Option func(*Tracker)

func WithClock(c Clock) Option { return func(t *Tracker) { t.clock = c } }

func WithLocation(loc *time.Location) Option { return func(t *Tracker) { t.loc = loc } }

func WithStartingCurrency(n int) Option { return func(t *Tracker) { t.startingCurrency = n } }

func WithNotificationTTL(d time.Duration) Option { return func(t *Tracker) { t.ttl = d } }

func WithLogger(l *log.Logger) Option { return func(t *Tracker) { t.logger = l } }

// WithRules replaces the default achievement set.
func WithRules(rules []Rule) Option { return func(t *Tracker) { t.rules = rules } }

// NewTracker returns a tracker holding the shipped catalog and a fresh player.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		catalog:          catalog.New(),
		clock:            RealClock{},
		loc:              time.Local,
		startingCurrency: StartingCurrency,
		ttl:              DefaultNotificationTTL,
		rules:            DefaultRules(),
		logger:           log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.loc == nil {
		t.loc = time.Local
	}
	t.achievements = NewAchievementEngine(t.rules, t.ttl, t.logger)
	t.player = newPlayer(t.startingCurrency)
	return t
}

// RecordResult describes the effect of one RecordActivity call.
type RecordResult struct {
	Activity    Activity
	StreakBonus int
	ScoreBefore int
	ScoreAfter  int
	RankBefore  Rank
	RankAfter   Rank
	Unlocked    []Unlock
}

func (r RecordResult) RankUp() bool { return r.RankAfter.Index > r.RankBefore.Index }

// DeleteResult describes the effect of one DeleteActivity call.
type DeleteResult struct {
	Activity     Activity
	ScoreBefore  int
	ScoreAfter   int
	StreakBefore int
	StreakAfter  int
	Unlocked     []Unlock
}

// RecordActivity logs a match against a catalog template. An unknown template
// leaves all state untouched and returns ErrNotFound.
func (t *Tracker) RecordActivity(tier catalog.Tier, name string, outcome Outcome) (*RecordResult, error) {
	if !outcome.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}
	tpl, err := t.catalog.Resolve(tier, name)
	if err != nil {
		return nil, err
	}

	now := t.clock.Now()
	p := &t.player
	res := &RecordResult{ScoreBefore: p.Score, RankBefore: RankFor(p.Score)}

	delta := ComputeDelta(tpl.BaseScore, outcome, p.Streak)
	next := streakAfter(p.Streak, outcome)

	a := Activity{
		ID:                uuid.Must(uuid.NewV7()).String(),
		Tier:              tier,
		TaskName:          tpl.Name,
		Description:       tpl.Description,
		BaseScore:         tpl.BaseScore,
		FinalScore:        delta,
		Outcome:           outcome,
		StreakAtRecording: next,
		RecordedAt:        now,
	}
	p.Log = append([]Activity{a}, p.Log...)
	p.Score = max(0, p.Score+delta)
	p.Streak = next
	if outcome == OutcomeWin {
		res.StreakBonus = streakBonus(next)
		p.Currency += res.StreakBonus
	}

	t.logger.Printf("record %s/%s %s delta=%d score=%d streak=%d", tier, tpl.Name, outcome, delta, p.Score, p.Streak)

	res.Activity = a
	res.ScoreAfter = p.Score
	res.RankAfter = RankFor(p.Score)
	res.Unlocked = t.evaluate(now)
	return res, nil
}

// DeleteActivity removes a record and reverses its score. Deleting a win
// recomputes the streak from the remaining log, skipping draws.
func (t *Tracker) DeleteActivity(id string) (*DeleteResult, error) {
	p := &t.player
	i := p.findActivity(id)
	if i < 0 {
		return nil, fmt.Errorf("activity %q: %w", id, ErrNotFound)
	}

	a := p.Log[i]
	res := &DeleteResult{Activity: a, ScoreBefore: p.Score, StreakBefore: p.Streak}

	p.Log = slices.Delete(slices.Clone(p.Log), i, i+1)
	p.Score = max(0, p.Score-a.FinalScore)
	if a.Outcome == OutcomeWin {
		p.Streak = streakFromLog(p.Log)
	}

	t.logger.Printf("delete %s score=%d streak=%d", id, p.Score, p.Streak)

	res.ScoreAfter = p.Score
	res.StreakAfter = p.Streak
	res.Unlocked = t.evaluate(t.clock.Now())
	return res, nil
}

// UpdateActivityDescription replaces a record's description and nothing else.
func (t *Tracker) UpdateActivityDescription(id, text string) error {
	i := t.player.findActivity(id)
	if i < 0 {
		return fmt.Errorf("activity %q: %w", id, ErrNotFound)
	}
	t.player.Log = slices.Clone(t.player.Log)
	t.player.Log[i].Description = text
	return nil
}

// FindActivity resolves an id or a unique id prefix.
func (t *Tracker) FindActivity(ref string) (Activity, error) {
	ref = strings.TrimSpace(ref)
	var found []Activity
	for _, a := range t.player.Log {
		if a.ID == ref {
			return a, nil
		}
		if ref != "" && strings.HasPrefix(a.ID, ref) {
			found = append(found, a)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return Activity{}, fmt.Errorf("activity %q: %w", ref, ErrNotFound)
	default:
		return Activity{}, fmt.Errorf("activity prefix %q is ambiguous (%d matches)", ref, len(found))
	}
}

// SpendCurrency buys one modifier of kind.
func (t *Tracker) SpendCurrency(kind ModifierKind) error {
	m, ok := LookupModifier(kind)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModifier, kind)
	}
	p := &t.player
	if p.Currency < m.Cost {
		return InsufficientCurrencyError{Kind: kind, Cost: m.Cost, Have: p.Currency}
	}
	p.Currency -= m.Cost
	p.Owned = cloneOwned(p.Owned)
	p.Owned[kind]++
	t.evaluate(t.clock.Now())
	return nil
}

// ResetAll wipes progression and custom templates. Template overrides, hidden
// names and ordering survive.
func (t *Tracker) ResetAll() {
	t.player = newPlayer(t.startingCurrency)
	t.catalog.ResetCustom()
	t.notifications = nil
	t.logger.Printf("reset all, currency=%d", t.startingCurrency)
}

// CreateCustom adds a user template to tier.
func (t *Tracker) CreateCustom(tier catalog.Tier, tpl catalog.Template) ([]Unlock, error) {
	if err := t.catalog.CreateCustom(tier, tpl); err != nil {
		return nil, err
	}
	return t.evaluate(t.clock.Now()), nil
}

func (t *Tracker) DeleteOrHide(tier catalog.Tier, name string) ([]Unlock, error) {
	if err := t.catalog.DeleteOrHide(tier, name); err != nil {
		return nil, err
	}
	return t.evaluate(t.clock.Now()), nil
}

func (t *Tracker) Unhide(tier catalog.Tier, name string) []Unlock {
	t.catalog.Unhide(tier, name)
	return t.evaluate(t.clock.Now())
}

func (t *Tracker) EditTemplate(tier catalog.Tier, name string, newTier catalog.Tier, tpl catalog.Template) ([]Unlock, error) {
	if err := t.catalog.Edit(tier, name, newTier, tpl); err != nil {
		return nil, err
	}
	return t.evaluate(t.clock.Now()), nil
}

func (t *Tracker) MoveTemplate(tier catalog.Tier, name string, dir catalog.Direction) ([]Unlock, error) {
	if err := t.catalog.Move(tier, name, dir); err != nil {
		return nil, err
	}
	return t.evaluate(t.clock.Now()), nil
}

// RecoverCatalog refills empty built-in tiers. Run once after loading state.
func (t *Tracker) RecoverCatalog() []catalog.Tier {
	restored := t.catalog.Recover()
	if len(restored) > 0 {
		t.logger.Printf("recovered default templates for tiers %v", restored)
	}
	return restored
}

// Player returns a deep copy of the player state.
func (t *Tracker) Player() Player { return t.player.clone() }

func (t *Tracker) Rank() Rank { return RankFor(t.player.Score) }

// Location is the zone used for day and hour bucketing.
func (t *Tracker) Location() *time.Location { return t.loc }

func (t *Tracker) Metrics() Metrics {
	return ComputeMetrics(t.player.Log, t.clock.Now(), t.loc)
}

func (t *Tracker) ListVisible(tier catalog.Tier) []catalog.Template { return t.catalog.ListVisible(tier) }

func (t *Tracker) ListAll(tier catalog.Tier) []catalog.Entry { return t.catalog.ListAll(tier) }

func (t *Tracker) CatalogState() catalog.State { return t.catalog.State() }

// Achievements lists every rule with the player's unlocked flag.
func (t *Tracker) Achievements() []AchievementStatus {
	rules := t.achievements.Rules()
	out := make([]AchievementStatus, len(rules))
	for i, r := range rules {
		out[i] = AchievementStatus{Rule: r, Unlocked: t.player.IsUnlocked(r.ID)}
	}
	return out
}

// Notifications returns the unlock notifications still live at now and drops
// the expired ones.
func (t *Tracker) Notifications(now time.Time) []Unlock {
	live := t.notifications[:0:0]
	for _, n := range t.notifications {
		if n.Live(now) {
			live = append(live, n)
		}
	}
	t.notifications = live
	return slices.Clone(live)
}

func (t *Tracker) view() View {
	return View{
		Player:             t.player.clone(),
		Metrics:            t.Metrics(),
		HasCustomTemplates: t.catalog.HasCustom(),
	}
}

// evaluate runs achievement passes until one unlocks nothing, crediting
// rewards and queueing notifications.
func (t *Tracker) evaluate(now time.Time) []Unlock {
	var all []Unlock
	for {
		fresh := t.achievements.Evaluate(t.view(), t.player.Unlocked, now)
		if len(fresh) == 0 {
			break
		}
		for _, u := range fresh {
			t.player.Unlocked = append(t.player.Unlocked, u.ID)
			t.player.Currency += u.Reward
			t.logger.Printf("unlocked %s +%d", u.ID, u.Reward)
		}
		all = append(all, fresh...)
	}
	t.notifications = append(t.notifications, all...)
	return all
}

func cloneOwned(in map[ModifierKind]int) map[ModifierKind]int {
	out := make(map[ModifierKind]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
