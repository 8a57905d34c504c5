package engine

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/qinghezeng/research-gamification/internal/catalog"
)

// StartingCurrency is the currency a fresh (or reset) player starts with.
const StartingCurrency = 15

// Activity is one logged match. Only Description may change after creation;
// BaseScore and Description are frozen copies of the template at recording time.
// StreakAtRecording is an audit annotation and is never read back by scoring.
type Activity struct {
	ID                string       `json:"id" yaml:"id"`
	Tier              catalog.Tier `json:"level" yaml:"level"`
	TaskName          string       `json:"name" yaml:"name"`
	Description       string       `json:"description" yaml:"description"`
	BaseScore         int          `json:"baseScore" yaml:"baseScore"`
	FinalScore        int          `json:"finalScore" yaml:"finalScore"`
	Outcome           Outcome      `json:"result" yaml:"result"`
	StreakAtRecording int          `json:"streak" yaml:"streak"`
	RecordedAt        time.Time    `json:"recordedAt" yaml:"recordedAt"`
}

// Player is the aggregate progression state. Log is ordered newest first.
type Player struct {
	Score    int
	Streak   int
	Currency int
	Log      []Activity
	Unlocked []string
	Owned    map[ModifierKind]int
}

func newPlayer(startingCurrency int) Player {
	return Player{Currency: startingCurrency, Owned: map[ModifierKind]int{}}
}

func (p Player) clone() Player {
	out := p
	out.Log = slices.Clone(p.Log)
	out.Unlocked = slices.Clone(p.Unlocked)
	out.Owned = maps.Clone(p.Owned)
	if out.Owned == nil {
		out.Owned = map[ModifierKind]int{}
	}
	return out
}

func (p Player) IsUnlocked(id string) bool {
	return slices.Contains(p.Unlocked, id)
}

func (p Player) findActivity(id string) int {
	for i := range p.Log {
		if p.Log[i].ID == id {
			return i
		}
	}
	return -1
}

// streakFromLog rebuilds the win streak from the log: wins count, draws are
// skipped, the newest loss ends the run.
func streakFromLog(log []Activity) int {
	n := 0
	for _, a := range log {
		switch a.Outcome {
		case OutcomeWin:
			n++
		case OutcomeLoss:
			return n
		}
	}
	return n
}

// leadingWinRun counts consecutive wins from the newest record backwards.
func leadingWinRun(log []Activity) int {
	n := 0
	for _, a := range log {
		if a.Outcome != OutcomeWin {
			break
		}
		n++
	}
	return n
}

type ModifierKind string

const (
	ModifierSpeedBoost   ModifierKind = "speedBoost"
	ModifierStarProtect  ModifierKind = "starProtect"
	ModifierTimeExtend   ModifierKind = "timeExtend"
	ModifierInspiration  ModifierKind = "inspiration"
	ModifierPerfectJudge ModifierKind = "perfectJudge"
)

// Modifier is a shop item bought with currency.
type Modifier struct {
	Kind        ModifierKind
	Name        string
	Icon        string
	Description string
	Cost        int
}

var modifiers = []Modifier{
	{Kind: ModifierSpeedBoost, Name: "Speed Boost", Icon: "🚀", Description: "Score x1.5", Cost: 3},
	{Kind: ModifierStarProtect, Name: "Star Protect", Icon: "🛡️", Description: "A loss keeps your stars", Cost: 5},
	{Kind: ModifierTimeExtend, Name: "Time Extend", Icon: "⏰", Description: "+30 minutes", Cost: 2},
	{Kind: ModifierInspiration, Name: "Inspiration", Icon: "💡", Description: "Guaranteed MVP", Cost: 8},
	{Kind: ModifierPerfectJudge, Name: "Perfect Judge", Icon: "🎯", Description: "Quality auto-graded A", Cost: 4},
}

// Modifiers returns the shop catalogue.
func Modifiers() []Modifier {
	return slices.Clone(modifiers)
}

func LookupModifier(kind ModifierKind) (Modifier, bool) {
	for _, m := range modifiers {
		if m.Kind == kind {
			return m, true
		}
	}
	return Modifier{}, false
}

var modifierSeparators = strings.NewReplacer("-", "", "_", "", " ", "")

// ParseModifier accepts the kind ("speedBoost"), snake or kebab case, or the
// display name, ignoring case.
func ParseModifier(input string) (ModifierKind, error) {
	s := modifierSeparators.Replace(strings.ToLower(strings.TrimSpace(input)))
	for _, m := range modifiers {
		if strings.ToLower(string(m.Kind)) == s {
			return m.Kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModifier, input)
}
