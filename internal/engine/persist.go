package engine

import (
	"time"

	"github.com/qinghezeng/research-gamification/internal/catalog"
	"github.com/qinghezeng/research-gamification/internal/storage"
)

func toStorage(s Snapshot, now time.Time) storage.Snapshot {
	out := storage.Snapshot{
		Player: storage.Player{
			Key:       storage.MainPlayerKey,
			Score:     s.Score,
			Streak:    s.Streak,
			UpdatedAt: now,
		},
		Hidden:       map[string][]string{},
		Order:        map[string][]string{},
		Achievements: s.Unlocked,
		Modifiers:    map[string]int{},
	}
	if s.Currency != nil {
		out.Player.Currency = *s.Currency
	}
	for _, a := range s.Activities {
		out.Activities = append(out.Activities, storage.Activity{
			ID:                a.ID,
			Tier:              string(a.Tier),
			TaskName:          a.TaskName,
			Description:       a.Description,
			BaseScore:         a.BaseScore,
			FinalScore:        a.FinalScore,
			Outcome:           string(a.Outcome),
			StreakAtRecording: a.StreakAtRecording,
			RecordedAt:        a.RecordedAt,
		})
	}
	for _, tier := range catalog.Tiers() {
		for _, tpl := range s.Templates[tier] {
			out.Templates = append(out.Templates, toStorageTemplate(tier, tpl, true))
		}
		for _, tpl := range s.Custom[tier] {
			out.Templates = append(out.Templates, toStorageTemplate(tier, tpl, false))
		}
		if names := s.Hidden[tier]; len(names) > 0 {
			out.Hidden[string(tier)] = names
		}
		if names := s.Order[tier]; len(names) > 0 {
			out.Order[string(tier)] = names
		}
	}
	for kind, n := range s.Owned {
		out.Modifiers[string(kind)] = n
	}
	return out
}

func toStorageTemplate(tier catalog.Tier, t catalog.Template, builtin bool) storage.Template {
	return storage.Template{
		Tier:        string(tier),
		Name:        t.Name,
		BaseScore:   t.BaseScore,
		Duration:    t.Duration,
		Description: t.Description,
		BuiltIn:     builtin,
	}
}

// fromStorage rebuilds an engine snapshot. Validation happens in Restore.
func fromStorage(in storage.Snapshot) Snapshot {
	currency := in.Player.Currency
	s := Snapshot{
		State: catalog.State{
			Templates: map[catalog.Tier][]catalog.Template{},
			Custom:    map[catalog.Tier][]catalog.Template{},
			Hidden:    map[catalog.Tier][]string{},
			Order:     map[catalog.Tier][]string{},
		},
		PlayerSnapshot: PlayerSnapshot{
			Score:    in.Player.Score,
			Streak:   in.Player.Streak,
			Currency: &currency,
			Owned:    map[ModifierKind]int{},
			Unlocked: in.Achievements,
		},
	}
	for _, a := range in.Activities {
		s.Activities = append(s.Activities, Activity{
			ID:                a.ID,
			Tier:              catalog.Tier(a.Tier),
			TaskName:          a.TaskName,
			Description:       a.Description,
			BaseScore:         a.BaseScore,
			FinalScore:        a.FinalScore,
			Outcome:           Outcome(a.Outcome),
			StreakAtRecording: a.StreakAtRecording,
			RecordedAt:        a.RecordedAt,
		})
	}
	for _, t := range in.Templates {
		tier := catalog.Tier(t.Tier)
		tpl := catalog.Template{Name: t.Name, BaseScore: t.BaseScore, Duration: t.Duration, Description: t.Description}
		if t.BuiltIn {
			s.Templates[tier] = append(s.Templates[tier], tpl)
		} else {
			s.Custom[tier] = append(s.Custom[tier], tpl)
		}
	}
	for tier, names := range in.Hidden {
		s.Hidden[catalog.Tier(tier)] = names
	}
	for tier, names := range in.Order {
		s.Order[catalog.Tier(tier)] = names
	}
	for kind, n := range in.Modifiers {
		s.Owned[ModifierKind(kind)] = n
	}
	return s
}
