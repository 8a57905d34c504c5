package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qinghezeng/research-gamification/internal/catalog"
)

func populated(t *testing.T) *Tracker {
	t.Helper()
	tr, clock := newTestTracker(t)
	_, err := tr.CreateCustom(catalog.TierB, catalog.Template{Name: "Review PR", BaseScore: 15, Duration: "30min"})
	require.NoError(t, err)
	_, err = tr.DeleteOrHide(catalog.TierC, "Tidy the workspace")
	require.NoError(t, err)
	_, err = tr.MoveTemplate(catalog.TierA, "Run a model", catalog.Up)
	require.NoError(t, err)

	record(t, tr, catalog.TierB, "Review PR", OutcomeWin)
	clock.Advance(time.Hour)
	record(t, tr, catalog.TierA, "Write the methods", OutcomeLoss)
	clock.Advance(time.Hour)
	record(t, tr, catalog.TierS, "Finish a chapter", OutcomeWin)
	require.NoError(t, tr.SpendCurrency(ModifierSpeedBoost))
	return tr
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	src := populated(t)
	snap := src.Snapshot()

	dst, _ := newTestTracker(t)
	bad := dst.Restore(snap)
	assert.Empty(t, bad)

	assert.Equal(t, src.Player(), dst.Player())
	assert.Equal(t, src.CatalogState(), dst.CatalogState())
	assert.Equal(t, snap, dst.Snapshot())
	// Restoring does not run the achievement pass.
	assert.Empty(t, dst.Notifications(noon))
}

func TestSnapshot_JSONRoundTrip(t *testing.T) {
	src := populated(t)
	data, err := json.Marshal(src.Snapshot())
	require.NoError(t, err)

	var flat map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &flat))
	for _, key := range []string{"tasks", "totalScore", "streak", "stars", "buffs", "achievements", "taskTemplates", "customTasks", "hiddenTasks", "taskOrder"} {
		assert.Contains(t, flat, key)
	}

	dst, _ := newTestTracker(t)
	bad, err := dst.RestoreJSON(data)
	require.NoError(t, err)
	assert.Empty(t, bad)
	assert.Equal(t, src.Player(), dst.Player())
	assert.Equal(t, src.CatalogState(), dst.CatalogState())
}

func TestRestoreJSON_MissingFieldsUseDefaults(t *testing.T) {
	tr, _ := newTestTracker(t, WithStartingCurrency(15))
	record(t, tr, catalog.TierC, "Research journal", OutcomeWin)

	bad, err := tr.RestoreJSON([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, bad)

	p := tr.Player()
	assert.Equal(t, 0, p.Score)
	assert.Equal(t, 15, p.Currency)
	assert.Empty(t, p.Log)
	assert.Empty(t, p.Unlocked)
	for _, tier := range catalog.Tiers() {
		assert.Equal(t, catalog.DefaultTemplates(tier), tr.ListVisible(tier))
	}
}

func TestRestoreJSON_MalformedFieldsAreIsolated(t *testing.T) {
	tr, _ := newTestTracker(t)
	data := []byte(`{
		"totalScore": "lots",
		"streak": 2,
		"stars": -4,
		"buffs": {"speedBoost": 1, "jetpack": 3},
		"achievements": ["first_blood", "first_blood", "first_win"],
		"taskTemplates": {"S": [], "A": [{"name": "Only A", "baseScore": 10}], "Q": [{"name": "x"}]},
		"hiddenTasks": 7,
		"tasks": [
			{"id": "a", "level": "Z", "name": "bad tier", "result": "win"},
			{"id": "b", "level": "A", "name": "Only A", "baseScore": 10, "finalScore": 10, "result": "win", "recordedAt": "2026-05-11T10:00:00Z"},
			{"id": "c", "level": "A", "result": "maybe"},
			"not an object"
		],
		"someFutureField": {"x": 1}
	}`)

	bad, err := tr.RestoreJSON(data)
	require.NoError(t, err)

	fields := map[string]bool{}
	for _, m := range bad {
		fields[m.Field] = true
	}
	for _, f := range []string{"totalScore", "stars", "buffs.jetpack", "hiddenTasks", "tasks[0]", "tasks[2]", "tasks[3]"} {
		assert.True(t, fields[f], "expected %s to be reported", f)
	}

	p := tr.Player()
	assert.Equal(t, 0, p.Score)
	assert.Equal(t, 2, p.Streak)
	assert.Equal(t, StartingCurrency, p.Currency)
	assert.Equal(t, map[ModifierKind]int{ModifierSpeedBoost: 1}, p.Owned)
	assert.Equal(t, []string{"first_blood", "first_win"}, p.Unlocked)
	require.Len(t, p.Log, 1)
	assert.Equal(t, "b", p.Log[0].ID)

	// The emptied S tier is recovered; A keeps its override.
	assert.Len(t, tr.ListVisible(catalog.TierS), 4)
	assert.Equal(t, []catalog.Template{{Name: "Only A", BaseScore: 10}}, tr.ListVisible(catalog.TierA))
}

func TestRestore_DuplicateIDsGetFreshIDs(t *testing.T) {
	tr, _ := newTestTracker(t)
	a := Activity{ID: "dup", Tier: catalog.TierC, TaskName: "Research journal", BaseScore: 10, FinalScore: 10, Outcome: OutcomeWin, RecordedAt: noon}
	snap := Snapshot{PlayerSnapshot: PlayerSnapshot{Activities: []Activity{a, a, a}, Score: 30}}

	bad := tr.Restore(snap)
	require.Len(t, bad, 2)
	assert.Equal(t, "tasks[1].id", bad[0].Field)
	assert.Equal(t, "tasks[2].id", bad[1].Field)

	seen := map[string]bool{}
	for _, got := range tr.Player().Log {
		assert.False(t, seen[got.ID], "id %s repeated", got.ID)
		seen[got.ID] = true
	}
	assert.True(t, seen["dup"])
}

func TestRestoreJSON_NotAnObject(t *testing.T) {
	tr := populated(t)
	before := tr.Snapshot()

	_, err := tr.RestoreJSON([]byte(`[1, 2`))
	require.Error(t, err)
	assert.Equal(t, before, tr.Snapshot())
}

func TestRestoreJSON_LegacyExport(t *testing.T) {
	tr, _ := newTestTracker(t)
	data := []byte(`{
		"tasks": [{"id": 1715420000000, "level": "B", "name": "Skim a paper", "baseScore": 30, "finalScore": 30, "result": "win", "streak": 1, "time": "10:00", "timestamp": 1715420000000}],
		"totalScore": 30,
		"streak": 1,
		"stars": 20,
		"buffs": {"speedBoost": 0, "starProtect": 2, "timeExtend": 0, "inspiration": 0, "perfectJudge": 0},
		"customTasks": {"S": [], "A": [], "B": [], "C": []},
		"hiddenTasks": ["C-Research journal"],
		"achievements": ["first_blood"],
		"exportDate": "2024-05-11T09:33:20.000Z",
		"version": "1.0"
	}`)

	bad, err := tr.RestoreJSON(data)
	require.NoError(t, err)
	assert.Empty(t, bad)

	p := tr.Player()
	require.Len(t, p.Log, 1)
	assert.Equal(t, "1715420000000", p.Log[0].ID)
	assert.Equal(t, time.UnixMilli(1715420000000), p.Log[0].RecordedAt)
	assert.Equal(t, 20, p.Currency)
	assert.Equal(t, map[ModifierKind]int{ModifierStarProtect: 2}, p.Owned)
	assert.Equal(t, []string{"Research journal"}, tr.CatalogState().Hidden[catalog.TierC])
}
