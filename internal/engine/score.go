package engine

import (
	"fmt"
	"math"
	"strings"
)

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeDraw Outcome = "draw"
	OutcomeLoss Outcome = "loss"
)

func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeWin, OutcomeDraw, OutcomeLoss:
		return true
	default:
		return false
	}
}

// ParseOutcome parses user input to an Outcome. Supported: win|w, draw|d, loss|lose|l.
func ParseOutcome(input string) (Outcome, error) {
	switch strings.TrimSpace(strings.ToLower(input)) {
	case "win", "w":
		return OutcomeWin, nil
	case "draw", "d":
		return OutcomeDraw, nil
	case "loss", "lose", "l":
		return OutcomeLoss, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, input)
	}
}

const (
	// DrawFactor scales the base score of a draw.
	DrawFactor = 0.6

	// LossFactor scales the base score deducted on a loss.
	LossFactor = 0.2
)

// StreakMultiplier returns the win multiplier for a streak length.
func StreakMultiplier(streak int) float64 {
	switch {
	case streak >= 15:
		return 2.5
	case streak >= 10:
		return 2.0
	case streak >= 7:
		return 1.5
	case streak >= 5:
		return 1.3
	case streak >= 3:
		return 1.2
	case streak >= 2:
		return 1.1
	default:
		return 1.0
	}
}

// roundHalfUp rounds a non-negative magnitude to the nearest integer, halves up.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// ComputeDelta returns the score change for one recorded outcome. A win uses
// the multiplier of the streak as it stands after this win is counted.
func ComputeDelta(baseScore int, outcome Outcome, streakBefore int) int {
	if baseScore < 0 {
		baseScore = 0
	}
	base := float64(baseScore)
	switch outcome {
	case OutcomeWin:
		return roundHalfUp(base * StreakMultiplier(streakBefore+1))
	case OutcomeDraw:
		return roundHalfUp(base * DrawFactor)
	default:
		return -roundHalfUp(base * LossFactor)
	}
}

// streakAfter returns the streak once outcome has been applied.
func streakAfter(streak int, outcome Outcome) int {
	switch outcome {
	case OutcomeWin:
		return streak + 1
	case OutcomeLoss:
		return 0
	default:
		return streak
	}
}

// streakBonus is the currency granted when a win lands the streak exactly on
// one of the bonus values.
func streakBonus(newStreak int) int {
	switch newStreak {
	case 5, 7:
		return 1
	case 10:
		return 2
	default:
		return 0
	}
}
