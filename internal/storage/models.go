package storage

import "time"

// Rows mirror the tables one to one. Enums are plain strings here; the engine
// owns their validation.

type Player struct {
	Key       string
	Score     int
	Streak    int
	Currency  int
	UpdatedAt time.Time
}

type Activity struct {
	ID                string
	Tier              string
	TaskName          string
	Description       string
	BaseScore         int
	FinalScore        int
	Outcome           string
	StreakAtRecording int
	RecordedAt        time.Time
}

type Template struct {
	Tier        string
	Name        string
	BaseScore   int
	Duration    string
	Description string
	BuiltIn     bool
}

// Snapshot is everything SnapshotStore persists. Slices keep their order:
// Activities newest first, Templates in catalog order per tier.
type Snapshot struct {
	Player       Player
	Activities   []Activity
	Templates    []Template
	Hidden       map[string][]string
	Order        map[string][]string
	Achievements []string
	Modifiers    map[string]int
}
