package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qinghezeng/research-gamification/internal/catalog"
)

// PlayerSnapshot is the serializable player state. A nil Currency means the
// field was absent and the starting allotment applies.
type PlayerSnapshot struct {
	Activities []Activity           `json:"tasks" yaml:"tasks"`
	Score      int                  `json:"totalScore" yaml:"totalScore"`
	Streak     int                  `json:"streak" yaml:"streak"`
	Currency   *int                 `json:"stars,omitempty" yaml:"stars,omitempty"`
	Owned      map[ModifierKind]int `json:"buffs,omitempty" yaml:"buffs,omitempty"`
	Unlocked   []string             `json:"achievements" yaml:"achievements"`
}

// Snapshot is the full persisted state. Its JSON form is a flat object.
type Snapshot struct {
	catalog.State  `yaml:",inline"`
	PlayerSnapshot `yaml:",inline"`
}

// Snapshot captures the tracker state. Notifications are not part of it.
func (t *Tracker) Snapshot() Snapshot {
	p := t.player.clone()
	currency := p.Currency
	return Snapshot{
		State: t.catalog.State(),
		PlayerSnapshot: PlayerSnapshot{
			Activities: p.Log,
			Score:      p.Score,
			Streak:     p.Streak,
			Currency:   &currency,
			Owned:      p.Owned,
			Unlocked:   p.Unlocked,
		},
	}
}

// Restore replaces the whole tracker state with s. It never fails: invalid
// parts fall back to defaults and are reported. Achievements are not
// evaluated; call Refresh for that.
func (t *Tracker) Restore(s Snapshot) []MalformedField {
	var bad []MalformedField

	t.catalog = catalog.FromState(s.State)
	t.RecoverCatalog()

	p := newPlayer(t.startingCurrency)
	ids := map[string]bool{}
	for i, a := range s.Activities {
		if err := validActivity(a); err != nil {
			bad = append(bad, MalformedField{Field: fmt.Sprintf("tasks[%d]", i), Err: err})
			continue
		}
		if ids[a.ID] {
			bad = append(bad, MalformedField{Field: fmt.Sprintf("tasks[%d].id", i), Err: fmt.Errorf("duplicate id %q", a.ID)})
			a.ID = ""
		}
		if a.ID == "" {
			a.ID = uuid.Must(uuid.NewV7()).String()
		}
		ids[a.ID] = true
		p.Log = append(p.Log, a)
	}

	p.Score = s.Score
	if p.Score < 0 {
		bad = append(bad, MalformedField{Field: "totalScore", Err: fmt.Errorf("negative value %d", s.Score)})
		p.Score = 0
	}
	p.Streak = s.Streak
	if p.Streak < 0 {
		bad = append(bad, MalformedField{Field: "streak", Err: fmt.Errorf("negative value %d", s.Streak)})
		p.Streak = 0
	}
	if s.Currency != nil {
		if *s.Currency < 0 {
			bad = append(bad, MalformedField{Field: "stars", Err: fmt.Errorf("negative value %d", *s.Currency)})
		} else {
			p.Currency = *s.Currency
		}
	}
	for kind, n := range s.Owned {
		if _, ok := LookupModifier(kind); !ok || n < 0 {
			bad = append(bad, MalformedField{Field: "buffs." + string(kind), Err: ErrUnknownModifier})
			continue
		}
		if n > 0 {
			p.Owned[kind] = n
		}
	}
	seen := map[string]bool{}
	for _, id := range s.Unlocked {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		p.Unlocked = append(p.Unlocked, id)
	}

	t.player = p
	t.notifications = nil
	for _, m := range bad {
		t.logger.Printf("restore: %v", m)
	}
	return bad
}

// Refresh runs the achievement pass against the current state.
func (t *Tracker) Refresh() []Unlock {
	return t.evaluate(t.clock.Now())
}

func validActivity(a Activity) error {
	if !a.Tier.IsValid() {
		return fmt.Errorf("%w: %q", catalog.ErrInvalidTier, a.Tier)
	}
	if !a.Outcome.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidOutcome, a.Outcome)
	}
	return nil
}

// DecodeSnapshotJSON decodes data one field at a time so a malformed field
// only loses itself. It fails only when data is not a JSON object.
func DecodeSnapshotJSON(data []byte) (Snapshot, []MalformedField, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, nil, fmt.Errorf("decode snapshot: %w", err)
	}

	var (
		s   Snapshot
		bad []MalformedField
	)
	field := func(key string, dst any) {
		msg, ok := raw[key]
		if !ok || string(msg) == "null" {
			return
		}
		if err := json.Unmarshal(msg, dst); err != nil {
			bad = append(bad, MalformedField{Field: key, Err: err})
		}
	}

	field("taskTemplates", &s.Templates)
	field("customTasks", &s.Custom)
	field("taskOrder", &s.Order)
	if msg, ok := raw["hiddenTasks"]; ok {
		hidden, err := decodeHidden(msg)
		if err != nil {
			bad = append(bad, MalformedField{Field: "hiddenTasks", Err: err})
		}
		s.Hidden = hidden
	}

	field("totalScore", &s.Score)
	field("streak", &s.Streak)
	field("buffs", &s.Owned)
	field("achievements", &s.Unlocked)

	var currency int
	if msg, ok := raw["stars"]; ok && string(msg) != "null" {
		if err := json.Unmarshal(msg, &currency); err != nil {
			bad = append(bad, MalformedField{Field: "stars", Err: err})
		} else {
			s.Currency = &currency
		}
	}

	var records []json.RawMessage
	field("tasks", &records)
	for i, msg := range records {
		a, err := decodeActivity(msg)
		if err != nil {
			bad = append(bad, MalformedField{Field: fmt.Sprintf("tasks[%d]", i), Err: err})
			continue
		}
		s.Activities = append(s.Activities, a)
	}

	return s, bad, nil
}

// decodeHidden accepts the per-tier map and the flat "TIER-name" list written
// by older exports.
func decodeHidden(msg json.RawMessage) (map[catalog.Tier][]string, error) {
	if string(msg) == "null" {
		return nil, nil
	}
	var byTier map[catalog.Tier][]string
	if err := json.Unmarshal(msg, &byTier); err == nil {
		return byTier, nil
	}
	var flat []string
	if err := json.Unmarshal(msg, &flat); err != nil {
		return nil, err
	}
	out := map[catalog.Tier][]string{}
	for _, key := range flat {
		tier, name, ok := strings.Cut(key, "-")
		if !ok || !catalog.Tier(tier).IsValid() {
			continue
		}
		out[catalog.Tier(tier)] = append(out[catalog.Tier(tier)], name)
	}
	return out, nil
}

// decodeActivity also accepts numeric ids and an epoch-millisecond
// "timestamp" in place of "recordedAt".
func decodeActivity(msg json.RawMessage) (Activity, error) {
	type plain Activity
	var aux struct {
		plain
		ID        json.RawMessage `json:"id"`
		Timestamp *int64          `json:"timestamp"`
	}
	if err := json.Unmarshal(msg, &aux); err != nil {
		return Activity{}, err
	}
	a := Activity(aux.plain)

	if len(aux.ID) > 0 && string(aux.ID) != "null" {
		var s string
		if err := json.Unmarshal(aux.ID, &s); err == nil {
			a.ID = s
		} else {
			var n json.Number
			if err := json.Unmarshal(aux.ID, &n); err != nil {
				return Activity{}, errors.New("id must be a string or a number")
			}
			a.ID = n.String()
		}
	}
	if a.RecordedAt.IsZero() && aux.Timestamp != nil {
		a.RecordedAt = time.UnixMilli(*aux.Timestamp)
	}
	if err := validActivity(a); err != nil {
		return Activity{}, err
	}
	return a, nil
}

// RestoreJSON decodes data field by field and restores the result.
func (t *Tracker) RestoreJSON(data []byte) ([]MalformedField, error) {
	s, bad, err := DecodeSnapshotJSON(data)
	if err != nil {
		return nil, err
	}
	return append(bad, t.Restore(s)...), nil
}
