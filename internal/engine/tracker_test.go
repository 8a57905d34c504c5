package engine

import (
	"bytes"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qinghezeng/research-gamification/internal/catalog"
)

var noon = time.Date(2026, 5, 11, 12, 0, 0, 0, time.UTC)

func newTestTracker(t *testing.T, opts ...Option) (*Tracker, *FakeClock) {
	t.Helper()
	clock := NewFakeClock(noon)
	opts = append([]Option{WithClock(clock), WithLocation(time.UTC)}, opts...)
	return NewTracker(opts...), clock
}

func record(t *testing.T, tr *Tracker, tier catalog.Tier, name string, o Outcome) *RecordResult {
	t.Helper()
	res, err := tr.RecordActivity(tier, name, o)
	require.NoError(t, err)
	return res
}

func unlockedIDs(list []Unlock) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].ID
	}
	return out
}

func TestRecordActivity_ThreeWins(t *testing.T) {
	tr, clock := newTestTracker(t)

	var deltas []int
	var currency []int
	for i := 0; i < 3; i++ {
		res := record(t, tr, catalog.TierA, "Close-read a paper", OutcomeWin)
		deltas = append(deltas, res.Activity.FinalScore)
		currency = append(currency, tr.Player().Currency)
		clock.Advance(time.Minute)
	}

	assert.Equal(t, []int{50, 55, 60}, deltas)
	p := tr.Player()
	assert.Equal(t, 165, p.Score)
	assert.Equal(t, 3, p.Streak)
	assert.True(t, p.IsUnlocked("streak_3"))

	// first_blood and first_win land on the first record; streak_3 adds
	// exactly its reward on the third.
	assert.Equal(t, StartingCurrency+3+5, currency[0])
	assert.Equal(t, currency[0], currency[1])
	assert.Equal(t, currency[1]+5, currency[2])

	require.Len(t, p.Log, 3)
	assert.Equal(t, 60, p.Log[0].FinalScore)
	assert.Equal(t, 3, p.Log[0].StreakAtRecording)
	assert.Equal(t, "Close-read a paper", p.Log[0].TaskName)
	assert.NotEqual(t, p.Log[0].ID, p.Log[1].ID)
}

func TestRecordActivity_DrawAndLoss(t *testing.T) {
	tr, _ := newTestTracker(t)

	res := record(t, tr, catalog.TierB, "Handle academic email", OutcomeLoss)
	assert.Equal(t, -5, res.Activity.FinalScore)
	assert.Equal(t, 0, tr.Player().Score, "score is clamped at zero")

	record(t, tr, catalog.TierA, "Make a figure", OutcomeWin)
	record(t, tr, catalog.TierA, "Make a figure", OutcomeWin)
	require.Equal(t, 2, tr.Player().Streak)

	res = record(t, tr, catalog.TierS, "Full data analysis", OutcomeDraw)
	assert.Equal(t, 48, res.Activity.FinalScore)
	assert.Equal(t, 2, tr.Player().Streak)
	assert.Equal(t, 2, res.Activity.StreakAtRecording)

	res = record(t, tr, catalog.TierB, "Handle academic email", OutcomeLoss)
	assert.Equal(t, -5, res.Activity.FinalScore)
	assert.Equal(t, 0, tr.Player().Streak)
	assert.Equal(t, 0, res.Activity.StreakAtRecording)
	assert.Equal(t, 40+44+48-5, tr.Player().Score)
}

func TestRecordActivity_UnknownTemplateIsNoop(t *testing.T) {
	tr, _ := newTestTracker(t)
	record(t, tr, catalog.TierC, "Research journal", OutcomeWin)
	before := tr.Snapshot()

	_, err := tr.RecordActivity(catalog.TierC, "Nope", OutcomeWin)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = tr.RecordActivity(catalog.TierC, "Research journal", Outcome("tie"))
	assert.True(t, errors.Is(err, ErrInvalidOutcome))

	assert.Equal(t, before, tr.Snapshot())
}

func TestRecordActivity_StreakBonusExactness(t *testing.T) {
	tr, _ := newTestTracker(t, WithRules(nil))

	var bonuses []int
	for i := 0; i < 11; i++ {
		before := tr.Player().Currency
		res := record(t, tr, catalog.TierC, "Tidy the workspace", OutcomeWin)
		bonuses = append(bonuses, res.StreakBonus)
		assert.Equal(t, before+res.StreakBonus, tr.Player().Currency)
	}
	assert.Equal(t, []int{0, 0, 0, 0, 1, 0, 1, 0, 0, 2, 0}, bonuses)

	// Draws and losses never pay a streak bonus.
	res := record(t, tr, catalog.TierC, "Tidy the workspace", OutcomeDraw)
	assert.Zero(t, res.StreakBonus)
}

func TestRecordActivity_FrozenTemplateCopy(t *testing.T) {
	tr, _ := newTestTracker(t)
	res := record(t, tr, catalog.TierA, "Make a figure", OutcomeDraw)

	_, err := tr.EditTemplate(catalog.TierA, "Make a figure", catalog.TierA, catalog.Template{Name: "Make a figure", BaseScore: 99})
	require.NoError(t, err)

	a := tr.Player().Log[0]
	assert.Equal(t, res.Activity.ID, a.ID)
	assert.Equal(t, 40, a.BaseScore)
	assert.Equal(t, 24, a.FinalScore)
}

func TestDeleteActivity_RecomputesStreak(t *testing.T) {
	tr, clock := newTestTracker(t)
	// Oldest to newest: W L W W W
	var ids []string
	for _, o := range []Outcome{OutcomeWin, OutcomeLoss, OutcomeWin, OutcomeWin, OutcomeWin} {
		ids = append(ids, record(t, tr, catalog.TierA, "Run a model", o).Activity.ID)
		clock.Advance(time.Minute)
	}
	require.Equal(t, 3, tr.Player().Streak)

	// A win below the first loss is not part of the trailing run.
	res, err := tr.DeleteActivity(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 3, res.StreakAfter)
	assert.Equal(t, res.ScoreBefore-res.Activity.FinalScore, res.ScoreAfter)

	// A non-leading win inside the trailing run shortens it by one.
	res, err = tr.DeleteActivity(ids[3])
	require.NoError(t, err)
	assert.Equal(t, 2, res.StreakAfter)

	// Deleting the loss leaves the streak alone.
	_, err = tr.DeleteActivity(ids[1])
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Player().Streak)

	_, err = tr.DeleteActivity(ids[4])
	require.NoError(t, err)
	_, err = tr.DeleteActivity(ids[2])
	require.NoError(t, err)
	assert.Equal(t, 0, tr.Player().Streak)
	assert.Empty(t, tr.Player().Log)
	assert.Equal(t, 0, tr.Player().Score)
}

func TestDeleteActivity_DrawDoesNotBreakStreak(t *testing.T) {
	tr, clock := newTestTracker(t)
	// Oldest to newest: W L W D W
	var ids []string
	for _, o := range []Outcome{OutcomeWin, OutcomeLoss, OutcomeWin, OutcomeDraw, OutcomeWin} {
		ids = append(ids, record(t, tr, catalog.TierB, "Brainstorm", o).Activity.ID)
		clock.Advance(time.Minute)
	}
	require.Equal(t, 2, tr.Player().Streak)

	// The oldest win sits below the loss, so the streak is unchanged.
	res, err := tr.DeleteActivity(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 2, res.StreakBefore)
	assert.Equal(t, 2, res.StreakAfter)

	// Removing the newest win leaves the win under the draw.
	res, err = tr.DeleteActivity(ids[4])
	require.NoError(t, err)
	assert.Equal(t, 1, res.StreakAfter)

	// Deleting the loss leaves the streak alone.
	_, err = tr.DeleteActivity(ids[1])
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Player().Streak)
}

func TestStreakFromLog(t *testing.T) {
	cases := []struct {
		log  []Outcome // newest first
		want int
	}{
		{nil, 0},
		{[]Outcome{OutcomeDraw, OutcomeDraw}, 0},
		{[]Outcome{OutcomeWin, OutcomeDraw, OutcomeWin, OutcomeLoss, OutcomeWin}, 2},
		{[]Outcome{OutcomeLoss, OutcomeWin}, 0},
		{[]Outcome{OutcomeWin, OutcomeWin, OutcomeDraw}, 2},
	}
	for _, c := range cases {
		var log []Activity
		for _, o := range c.log {
			log = append(log, Activity{Outcome: o})
		}
		if got := streakFromLog(log); got != c.want {
			t.Fatalf("streakFromLog(%v)=%d want %d", c.log, got, c.want)
		}
	}
}

func TestDeleteActivity_UnknownIsNoop(t *testing.T) {
	tr, _ := newTestTracker(t)
	record(t, tr, catalog.TierB, "Brainstorm", OutcomeWin)
	before := tr.Snapshot()

	_, err := tr.DeleteActivity("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, before, tr.Snapshot())

	err = tr.UpdateActivityDescription("missing", "x")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteActivity_ScoreNeverNegative(t *testing.T) {
	tr, _ := newTestTracker(t)
	loss := record(t, tr, catalog.TierS, "Finish a chapter", OutcomeLoss).Activity
	record(t, tr, catalog.TierC, "Tidy the workspace", OutcomeWin)

	_, err := tr.DeleteActivity(loss.ID)
	require.NoError(t, err)
	// Removing a -20 record adds the 20 back.
	assert.Equal(t, 25, tr.Player().Score)

	for _, a := range tr.Player().Log {
		_, err := tr.DeleteActivity(a.ID)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, tr.Player().Score, 0)
}

func TestUpdateActivityDescription(t *testing.T) {
	tr, _ := newTestTracker(t)
	a := record(t, tr, catalog.TierA, "Preprocess data", OutcomeWin).Activity
	before := tr.Player()

	require.NoError(t, tr.UpdateActivityDescription(a.ID, "cohort 2 only"))
	after := tr.Player()
	assert.Equal(t, "cohort 2 only", after.Log[0].Description)
	assert.Equal(t, before.Score, after.Score)
	assert.Equal(t, before.Currency, after.Currency)

	found, err := tr.FindActivity(a.ID[:12])
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)
}

func TestAchievements_Idempotent(t *testing.T) {
	tr, _ := newTestTracker(t)
	res := record(t, tr, catalog.TierC, "Research journal", OutcomeWin)
	assert.ElementsMatch(t, []string{"first_blood", "first_win"}, unlockedIDs(res.Unlocked))

	currency := tr.Player().Currency
	assert.Empty(t, tr.Refresh())
	assert.Empty(t, tr.Refresh())
	assert.Equal(t, currency, tr.Player().Currency)

	// Deleting the record does not revoke anything.
	_, err := tr.DeleteActivity(res.Activity.ID)
	require.NoError(t, err)
	assert.True(t, tr.Player().IsUnlocked("first_blood"))
	assert.Equal(t, currency, tr.Player().Currency)

	res = record(t, tr, catalog.TierC, "Research journal", OutcomeWin)
	assert.Empty(t, res.Unlocked)
}

func TestAchievements_PanickingCheckIsSwallowed(t *testing.T) {
	var buf bytes.Buffer
	rules := []Rule{
		{ID: "broken", Reward: 100, Check: func(v View) bool {
			var m map[string]int
			m["boom"]++
			return true
		}},
		{ID: "ok", Reward: 2, Check: func(v View) bool { return v.Metrics.Total > 0 }},
	}
	tr, _ := newTestTracker(t, WithRules(rules), WithLogger(log.New(&buf, "", 0)))

	res := record(t, tr, catalog.TierC, "Research journal", OutcomeWin)
	assert.Equal(t, []string{"ok"}, unlockedIDs(res.Unlocked))
	assert.Equal(t, StartingCurrency+2, tr.Player().Currency)
	assert.False(t, tr.Player().IsUnlocked("broken"))
	assert.Contains(t, buf.String(), "achievement broken: check panicked")
}

func TestAchievements_CustomMasterAndTimeOfDay(t *testing.T) {
	tr, clock := newTestTracker(t)

	unlocked, err := tr.CreateCustom(catalog.TierB, catalog.Template{Name: "Review PR", BaseScore: 15})
	require.NoError(t, err)
	assert.Equal(t, []string{"custom_master"}, unlockedIDs(unlocked))

	clock.Set(time.Date(2026, 5, 12, 3, 30, 0, 0, time.UTC))
	res := record(t, tr, catalog.TierB, "Review PR", OutcomeDraw)
	assert.Contains(t, unlockedIDs(res.Unlocked), "night_owl")
	assert.NotContains(t, unlockedIDs(res.Unlocked), "early_bird")
	assert.NotContains(t, unlockedIDs(res.Unlocked), "first_win")

	clock.Set(time.Date(2026, 5, 12, 6, 59, 0, 0, time.UTC))
	res = record(t, tr, catalog.TierB, "Review PR", OutcomeDraw)
	assert.Contains(t, unlockedIDs(res.Unlocked), "early_bird")
}

func TestAchievements_AllRounderAndProductiveDay(t *testing.T) {
	tr, clock := newTestTracker(t)
	names := map[catalog.Tier]string{
		catalog.TierS: "Full data analysis",
		catalog.TierA: "Make a figure",
		catalog.TierB: "Brainstorm",
		catalog.TierC: "Research journal",
	}
	for _, tier := range catalog.Tiers() {
		record(t, tr, tier, names[tier], OutcomeDraw)
		clock.Advance(time.Minute)
	}
	assert.True(t, tr.Player().IsUnlocked("all_rounder"))
	assert.False(t, tr.Player().IsUnlocked("productive_day"))

	for i := 0; i < 6; i++ {
		record(t, tr, catalog.TierC, "Research journal", OutcomeDraw)
		clock.Advance(time.Minute)
	}
	assert.True(t, tr.Player().IsUnlocked("productive_day"))
	assert.True(t, tr.Player().IsUnlocked("task_10"))
}

func TestNotifications_Expire(t *testing.T) {
	tr, clock := newTestTracker(t, WithNotificationTTL(5*time.Second))
	record(t, tr, catalog.TierC, "Research journal", OutcomeWin)

	live := tr.Notifications(clock.Now())
	assert.Len(t, live, 2)
	assert.Equal(t, noon.Add(5*time.Second), live[0].ExpiresAt)

	clock.Advance(4 * time.Second)
	assert.Len(t, tr.Notifications(clock.Now()), 2)
	clock.Advance(time.Second)
	assert.Empty(t, tr.Notifications(clock.Now()))
}

func TestSpendCurrency(t *testing.T) {
	tr, _ := newTestTracker(t, WithStartingCurrency(7), WithRules(nil))

	require.NoError(t, tr.SpendCurrency(ModifierStarProtect))
	p := tr.Player()
	assert.Equal(t, 2, p.Currency)
	assert.Equal(t, 1, p.Owned[ModifierStarProtect])

	err := tr.SpendCurrency(ModifierSpeedBoost)
	assert.True(t, errors.Is(err, ErrInsufficientCurrency))
	var ierr InsufficientCurrencyError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, 3, ierr.Cost)
	assert.Equal(t, p, tr.Player())

	err = tr.SpendCurrency(ModifierKind("jetpack"))
	assert.True(t, errors.Is(err, ErrUnknownModifier))

	require.NoError(t, tr.SpendCurrency(ModifierTimeExtend))
	assert.Equal(t, 0, tr.Player().Currency)
}

func TestParseModifier(t *testing.T) {
	for _, in := range []string{"speedBoost", "speed_boost", "speed-boost", "Speed Boost", "SPEEDBOOST"} {
		kind, err := ParseModifier(in)
		require.NoError(t, err, in)
		assert.Equal(t, ModifierSpeedBoost, kind)
	}
	_, err := ParseModifier("jetpack")
	assert.True(t, errors.Is(err, ErrUnknownModifier))
}

func TestResetAll(t *testing.T) {
	tr, _ := newTestTracker(t)
	_, err := tr.CreateCustom(catalog.TierS, catalog.Template{Name: "Submit paper", BaseScore: 150})
	require.NoError(t, err)
	_, err = tr.DeleteOrHide(catalog.TierC, "Research journal")
	require.NoError(t, err)
	record(t, tr, catalog.TierS, "Submit paper", OutcomeWin)
	require.NoError(t, tr.SpendCurrency(ModifierInspiration))

	tr.ResetAll()

	p := tr.Player()
	assert.Equal(t, 0, p.Score)
	assert.Equal(t, 0, p.Streak)
	assert.Equal(t, StartingCurrency, p.Currency)
	assert.Empty(t, p.Log)
	assert.Empty(t, p.Unlocked)
	assert.Empty(t, p.Owned)
	assert.Empty(t, tr.CatalogState().Custom)
	// Hiding is a catalog preference and survives a reset.
	assert.Equal(t, []string{"Research journal"}, tr.CatalogState().Hidden[catalog.TierC])
	assert.Empty(t, tr.Notifications(noon))
}

func TestPlayerIsACopy(t *testing.T) {
	tr, _ := newTestTracker(t)
	record(t, tr, catalog.TierC, "Research journal", OutcomeWin)

	p := tr.Player()
	p.Log[0].FinalScore = 9999
	p.Owned[ModifierInspiration] = 5
	p.Unlocked[0] = "tampered"

	again := tr.Player()
	assert.Equal(t, 10, again.Log[0].FinalScore)
	assert.Zero(t, again.Owned[ModifierInspiration])
	assert.NotContains(t, again.Unlocked, "tampered")
}

func TestAchievementsListing(t *testing.T) {
	tr, _ := newTestTracker(t)
	list := tr.Achievements()
	assert.Len(t, list, 27)

	seen := map[string]bool{}
	for _, a := range list {
		assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true
		assert.False(t, a.Unlocked)
		assert.Positive(t, a.Reward)
	}
}
