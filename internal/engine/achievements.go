package engine

import (
	"io"
	"log"
	"time"
)

// DefaultNotificationTTL is how long an unlock notification stays live.
const DefaultNotificationTTL = 5 * time.Second

type Category string

const (
	CategoryRookie    Category = "rookie"
	CategoryStreak    Category = "streak"
	CategoryDiligence Category = "diligence"
	CategoryRank      Category = "rank"
	CategoryWinRate   Category = "win_rate"
	CategoryKDA       Category = "kda"
	CategorySpecial   Category = "special"
)

// View is the read-only state an achievement check sees.
type View struct {
	Player             Player
	Metrics            Metrics
	HasCustomTemplates bool
}

// Rule is one achievement. Check must not depend on other rules.
type Rule struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Category    Category
	Reward      int
	Check       func(View) bool
}

// Unlock is the one-shot notification emitted when a rule first passes.
type Unlock struct {
	ID         string
	Name       string
	Icon       string
	Reward     int
	UnlockedAt time.Time
	ExpiresAt  time.Time
}

func (u Unlock) Live(now time.Time) bool { return now.Before(u.ExpiresAt) }

// AchievementStatus pairs a rule with whether the player holds it.
type AchievementStatus struct {
	Rule
	Unlocked bool
}

// DefaultRules returns the built-in achievement set.
func DefaultRules() []Rule {
	return []Rule{
		// Rookie
		countRule("first_blood", "First Blood", "Log your first activity", "🎯", CategoryRookie, 3, 1),
		{ID: "first_win", Name: "First Victory", Description: "Win your first match", Icon: "🎉", Category: CategoryRookie, Reward: 5,
			Check: func(v View) bool { return v.Metrics.Wins >= 1 }},
		{ID: "custom_master", Name: "Make It Yours", Description: "Create your first custom task", Icon: "✨", Category: CategoryRookie, Reward: 5,
			Check: func(v View) bool { return v.HasCustomTemplates }},

		// Streaks
		streakRule("streak_3", "Hat Trick", "Reach a 3-win streak", "🔥", 5, 3),
		streakRule("streak_5", "Unstoppable", "Reach a 5-win streak", "🔥🔥", 10, 5),
		streakRule("streak_10", "Legendary", "Reach a 10-win streak", "🔥🔥🔥", 20, 10),
		streakRule("streak_15", "Peak of Glory", "Reach a 15-win streak", "👑", 50, 15),

		// Diligence
		countRule("task_10", "Getting Started", "Log 10 activities", "📚", CategoryDiligence, 10, 10),
		countRule("task_50", "Making Progress", "Log 50 activities", "📖", CategoryDiligence, 20, 50),
		countRule("task_100", "Domain Expert", "Log 100 activities", "🎓", CategoryDiligence, 50, 100),
		countRule("task_500", "Research Maniac", "Log 500 activities", "🔬", CategoryDiligence, 100, 500),

		// Rank
		scoreRule("silver", "Silver Researcher", "Reach Silver", "🥈", 15, 300),
		scoreRule("gold", "Gold Scholar", "Reach Gold", "🥇", 25, 800),
		scoreRule("platinum", "Platinum Researcher", "Reach Platinum", "💠", 40, 1500),
		scoreRule("diamond", "Diamond Scholar", "Reach Diamond", "💎", 60, 2500),
		scoreRule("master", "Star Scholar", "Reach Star", "⭐", 80, 4000),
		scoreRule("king", "King Scholar", "Reach King", "👑", 150, 6000),

		// Win rate
		winRateRule("winrate_70", "Steady Hand", "70% win rate over at least 10 matches", "📈", 20, 0.7, 10),
		winRateRule("winrate_80", "Seasoned Pro", "80% win rate over at least 20 matches", "🎯", 30, 0.8, 20),
		winRateRule("winrate_90", "Nearly Perfect", "90% win rate over at least 30 matches", "💯", 50, 0.9, 30),

		// KDA
		kdaRule("kda_5", "KDA Master", "Reach a KDA of 5.0", "⚔️", 15, 5),
		kdaRule("kda_10", "KDA God", "Reach a KDA of 10.0", "🗡️", 30, 10),

		// Special
		{ID: "night_owl", Name: "Night Owl", Description: "Log an activity between 02:00 and 05:00", Icon: "🦉", Category: CategorySpecial, Reward: 10,
			Check: func(v View) bool { return v.Metrics.HourSeen(2, 5) }},
		{ID: "early_bird", Name: "Early Bird", Description: "Log an activity between 05:00 and 07:00", Icon: "🐦", Category: CategorySpecial, Reward: 10,
			Check: func(v View) bool { return v.Metrics.HourSeen(5, 7) }},
		{ID: "productive_day", Name: "Productive Day", Description: "Log 10 activities in one day", Icon: "💪", Category: CategorySpecial, Reward: 20,
			Check: func(v View) bool { return v.Metrics.MaxPerDay >= 10 }},
		{ID: "all_rounder", Name: "All-Rounder", Description: "Log an activity in every tier", Icon: "🌟", Category: CategorySpecial, Reward: 15,
			Check: func(v View) bool { return v.Metrics.AllTiersSeen() }},
		{ID: "perfectionist", Name: "Perfectionist", Description: "Win the 20 most recent matches", Icon: "✨", Category: CategorySpecial, Reward: 40,
			Check: func(v View) bool { return v.Metrics.LeadingWinRun >= 20 }},
	}
}

func countRule(id, name, desc, icon string, cat Category, reward, n int) Rule {
	return Rule{ID: id, Name: name, Description: desc, Icon: icon, Category: cat, Reward: reward,
		Check: func(v View) bool { return v.Metrics.Total >= n }}
}

func streakRule(id, name, desc, icon string, reward, n int) Rule {
	return Rule{ID: id, Name: name, Description: desc, Icon: icon, Category: CategoryStreak, Reward: reward,
		Check: func(v View) bool { return v.Player.Streak >= n }}
}

func scoreRule(id, name, desc, icon string, reward, minScore int) Rule {
	return Rule{ID: id, Name: name, Description: desc, Icon: icon, Category: CategoryRank, Reward: reward,
		Check: func(v View) bool { return v.Player.Score >= minScore }}
}

func winRateRule(id, name, desc, icon string, reward int, rate float64, minMatches int) Rule {
	return Rule{ID: id, Name: name, Description: desc, Icon: icon, Category: CategoryWinRate, Reward: reward,
		Check: func(v View) bool { return v.Metrics.Total >= minMatches && v.Metrics.WinRate >= rate }}
}

func kdaRule(id, name, desc, icon string, reward int, minKDA float64) Rule {
	return Rule{ID: id, Name: name, Description: desc, Icon: icon, Category: CategoryKDA, Reward: reward,
		Check: func(v View) bool { return v.Metrics.KDA >= minKDA }}
}

// AchievementEngine evaluates rules against a View. It holds no player state.
type AchievementEngine struct {
	rules  []Rule
	ttl    time.Duration
	logger *log.Logger
}

func NewAchievementEngine(rules []Rule, ttl time.Duration, logger *log.Logger) *AchievementEngine {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &AchievementEngine{rules: rules, ttl: ttl, logger: logger}
}

func (e *AchievementEngine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate checks every rule whose id is not in unlocked and returns the ones
// that now pass, in rule order. It does not mutate anything.
func (e *AchievementEngine) Evaluate(v View, unlocked []string, now time.Time) []Unlock {
	held := make(map[string]bool, len(unlocked))
	for _, id := range unlocked {
		held[id] = true
	}

	var out []Unlock
	for _, r := range e.rules {
		if held[r.ID] {
			continue
		}
		if !e.check(r, v) {
			continue
		}
		held[r.ID] = true
		out = append(out, Unlock{
			ID:         r.ID,
			Name:       r.Name,
			Icon:       r.Icon,
			Reward:     r.Reward,
			UnlockedAt: now,
			ExpiresAt:  now.Add(e.ttl),
		})
	}
	return out
}

func (e *AchievementEngine) check(r Rule, v View) (ok bool) {
	if r.Check == nil {
		return false
	}
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Printf("%v", PredicateFailure{RuleID: r.ID, Value: rec})
			ok = false
		}
	}()
	return r.Check(v)
}
