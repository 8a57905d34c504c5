package engine

import "testing"

func TestRankFor(t *testing.T) {
	cases := []struct {
		score int
		name  string
		sub   int
		stars int
	}{
		{0, "Bronze Scholar", 1, 0},
		{-20, "Bronze Scholar", 1, 0},
		{150, "Bronze Scholar", 3, 1},
		{299, "Bronze Scholar", 5, 2},
		{300, "Silver Researcher", 1, 0},
		{1150, "Gold Scholar", 3, 2},
		{9999, "King Scholar", 5, 4},
		{10000, "Glory Scholar", 5, 5},
		{250000, "Glory Scholar", 5, 5},
	}
	for _, tc := range cases {
		r := RankFor(tc.score)
		if r.Tier.Name != tc.name || r.SubTier != tc.sub || r.StarsFilled != tc.stars {
			t.Fatalf("RankFor(%d)=%s %d stars=%d, want %s %d stars=%d",
				tc.score, r.Tier.Name, r.SubTier, r.StarsFilled, tc.name, tc.sub, tc.stars)
		}
		if r.Progress < 0 || r.Progress > 100 {
			t.Fatalf("RankFor(%d) progress %v out of range", tc.score, r.Progress)
		}
	}

	if got := RankFor(1150).Label(); got != "Gold Scholar III" {
		t.Fatalf("Label()=%q", got)
	}
}

func TestRankMonotonic(t *testing.T) {
	prev := RankIndex(0)
	for score := 1; score <= 12000; score++ {
		idx := RankIndex(score)
		if idx < prev {
			t.Fatalf("RankIndex(%d)=%d < RankIndex(%d)=%d", score, idx, score-1, prev)
		}
		prev = idx
	}
	if prev != len(RankTiers())-1 {
		t.Fatalf("expected top tier at 12000, got %d", prev)
	}
}

func TestScoreToNextRank(t *testing.T) {
	if got := ScoreToNextRank(250); got != 50 {
		t.Fatalf("ScoreToNextRank(250)=%d, want 50", got)
	}
	if got := ScoreToNextRank(12000); got != 0 {
		t.Fatalf("ScoreToNextRank(12000)=%d, want 0", got)
	}
}
