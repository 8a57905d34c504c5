package catalog

import (
	"errors"
	"fmt"
	"strings"
)

type Tier string

const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
)

// Tiers returns all tiers from highest effort to lowest.
func Tiers() []Tier {
	return []Tier{TierS, TierA, TierB, TierC}
}

func (t Tier) IsValid() bool {
	switch t {
	case TierS, TierA, TierB, TierC:
		return true
	default:
		return false
	}
}

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidTier = errors.New("invalid tier")
)

// ParseTier parses user input (case-insensitive) to a Tier.
func ParseTier(input string) (Tier, error) {
	t := Tier(strings.ToUpper(strings.TrimSpace(input)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTier, input)
	}
	return t, nil
}

// Template is a reusable task definition. Duration is display-only.
type Template struct {
	Name        string `json:"name" yaml:"name"`
	BaseScore   int    `json:"baseScore" yaml:"baseScore"`
	Duration    string `json:"time" yaml:"time"`
	Description string `json:"description" yaml:"description"`
}

// Entry is a template as seen by the management view.
type Entry struct {
	Template
	Tier    Tier
	BuiltIn bool
	Hidden  bool
}

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(input string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "up", "u":
		return Up, nil
	case "down", "d":
		return Down, nil
	default:
		return "", fmt.Errorf("invalid direction: %q", input)
	}
}

// ValidationError is returned when a required field is missing or out of range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validateTemplate(t Template) (Template, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return t, ValidationError{Field: "name", Reason: "name is required"}
	}
	if t.BaseScore < 0 {
		return t, ValidationError{Field: "baseScore", Reason: "must not be negative"}
	}
	return t, nil
}
