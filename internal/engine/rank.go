package engine

import "math"

// RankTier is one band of the score progression. MaxScore 0 means unbounded.
type RankTier struct {
	Name         string
	Icon         string
	MinScore     int
	MaxScore     int
	StarCapacity int
}

func (t RankTier) Unbounded() bool { return t.MaxScore == 0 }

// The two lowest tiers use 3 stars per sub-tier so early progress shows faster.
var rankTiers = []RankTier{
	{Name: "Bronze Scholar", Icon: "🥉", MinScore: 0, MaxScore: 300, StarCapacity: 3},
	{Name: "Silver Researcher", Icon: "🥈", MinScore: 300, MaxScore: 800, StarCapacity: 3},
	{Name: "Gold Scholar", Icon: "🥇", MinScore: 800, MaxScore: 1500, StarCapacity: 5},
	{Name: "Platinum Researcher", Icon: "💠", MinScore: 1500, MaxScore: 2500, StarCapacity: 5},
	{Name: "Diamond Scholar", Icon: "💎", MinScore: 2500, MaxScore: 4000, StarCapacity: 5},
	{Name: "Star Scholar", Icon: "⭐", MinScore: 4000, MaxScore: 6000, StarCapacity: 5},
	{Name: "King Scholar", Icon: "👑", MinScore: 6000, MaxScore: 10000, StarCapacity: 5},
	{Name: "Glory Scholar", Icon: "🌟", MinScore: 10000, MaxScore: 0, StarCapacity: 5},
}

// RankTiers returns the ordered rank table.
func RankTiers() []RankTier {
	out := make([]RankTier, len(rankTiers))
	copy(out, rankTiers)
	return out
}

const subTiersPerRank = 5

var subTierNumerals = [subTiersPerRank]string{"I", "II", "III", "IV", "V"}

type Rank struct {
	Tier        RankTier
	Index       int
	SubTier     int
	StarsFilled int
	// Progress through the tier in percent, 0..100.
	Progress float64
}

func (r Rank) SubTierNumeral() string {
	return subTierNumerals[r.SubTier-1]
}

// Label renders e.g. "Gold Scholar III".
func (r Rank) Label() string {
	return r.Tier.Name + " " + r.SubTierNumeral()
}

// RankIndex returns the position of the tier holding score.
func RankIndex(score int) int {
	if score < 0 {
		score = 0
	}
	for i, t := range rankTiers {
		if t.Unbounded() || score < t.MaxScore {
			return i
		}
	}
	return len(rankTiers) - 1
}

// RankFor maps a cumulative score to its tier, sub-tier and star count.
// The unbounded top tier is shown as maxed out.
func RankFor(score int) Rank {
	if score < 0 {
		score = 0
	}
	idx := RankIndex(score)
	tier := rankTiers[idx]

	if tier.Unbounded() {
		return Rank{Tier: tier, Index: idx, SubTier: subTiersPerRank, StarsFilled: tier.StarCapacity, Progress: 100}
	}

	progress := float64(score-tier.MinScore) / float64(tier.MaxScore-tier.MinScore) * 100
	if progress > 100 {
		progress = 100
	}
	sub := int(math.Floor(progress/20)) + 1
	if sub > subTiersPerRank {
		sub = subTiersPerRank
	}
	stars := int(math.Floor(math.Mod(progress, 20) / (20 / float64(tier.StarCapacity))))

	return Rank{Tier: tier, Index: idx, SubTier: sub, StarsFilled: stars, Progress: progress}
}

// ScoreToNextRank returns how many points remain until the next tier, or 0 at the top.
func ScoreToNextRank(score int) int {
	tier := rankTiers[RankIndex(score)]
	if tier.Unbounded() {
		return 0
	}
	if score < 0 {
		score = 0
	}
	return tier.MaxScore - score
}
