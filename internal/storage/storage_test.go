package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SnapshotStore {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "rr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSnapshotStore(db)
}

func TestLoad_EmptyDatabase(t *testing.T) {
	store := openTestDB(t)
	_, found, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t)
	at := time.Date(2026, 3, 4, 5, 6, 7, 890, time.UTC)

	in := Snapshot{
		Player: Player{Key: MainPlayerKey, Score: 165, Streak: 3, Currency: 28, UpdatedAt: at},
		Activities: []Activity{
			{ID: "b", Tier: "A", TaskName: "Close-read a paper", BaseScore: 50, FinalScore: 60, Outcome: "win", StreakAtRecording: 3, RecordedAt: at},
			{ID: "a", Tier: "A", TaskName: "Close-read a paper", Description: "notes", BaseScore: 50, FinalScore: 55, Outcome: "win", StreakAtRecording: 2, RecordedAt: at.Add(-time.Hour)},
		},
		Templates: []Template{
			{Tier: "S", Name: "One", BaseScore: 80, BuiltIn: true},
			{Tier: "S", Name: "Two", BaseScore: 90, Duration: "4h", BuiltIn: true},
			{Tier: "S", Name: "Mine", BaseScore: 1},
		},
		Hidden:       map[string][]string{"S": {"Two"}},
		Order:        map[string][]string{"S": {"Mine", "One"}},
		Achievements: []string{"first_blood", "first_win", "streak_3"},
		Modifiers:    map[string]int{"speedBoost": 2},
	}
	require.NoError(t, store.Save(ctx, in))

	out, found, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in.Player, out.Player)
	assert.Equal(t, in.Activities, out.Activities)
	assert.Equal(t, in.Templates, out.Templates)
	assert.Equal(t, in.Hidden, out.Hidden)
	assert.Equal(t, in.Order, out.Order)
	assert.Equal(t, in.Achievements, out.Achievements)
	assert.Equal(t, in.Modifiers, out.Modifiers)

	// A second save replaces rather than appends.
	in.Activities = in.Activities[:1]
	in.Hidden = nil
	require.NoError(t, store.Save(ctx, in))
	out, _, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, out.Activities, 1)
	assert.Empty(t, out.Hidden)

	n, err := NewActivityRepo(store.db).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t)
	require.NoError(t, Migrate(ctx, store.db))
	require.NoError(t, Migrate(ctx, store.db))

	var v string
	require.NoError(t, store.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&v))
	assert.Equal(t, "2", v)
}

func TestResolveDBPath(t *testing.T) {
	t.Setenv(DBPathEnv, "/tmp/from-env.db")

	p, err := ResolveDBPath("/tmp/explicit.db")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/explicit.db", p)

	p, err = ResolveDBPath("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env.db", p)

	t.Setenv(DBPathEnv, "")
	p, err = ResolveDBPath("")
	require.NoError(t, err)
	assert.Equal(t, ".research-rank.db", filepath.Base(p))
}
