package engine

import (
	"errors"
	"fmt"

	"github.com/qinghezeng/research-gamification/internal/catalog"
)

var (
	// ErrNotFound is shared with the catalog so callers can match either source.
	ErrNotFound = catalog.ErrNotFound

	ErrInsufficientCurrency = errors.New("insufficient currency")
	ErrUnknownModifier      = errors.New("unknown modifier")
	ErrInvalidOutcome       = errors.New("invalid outcome")
)

// MalformedField reports a snapshot field that could not be decoded and was
// replaced with its default.
type MalformedField struct {
	Field string
	Err   error
}

func (e MalformedField) Error() string {
	return fmt.Sprintf("malformed field %s: %v", e.Field, e.Err)
}

func (e MalformedField) Unwrap() error { return e.Err }

// PredicateFailure is logged when an achievement check panics. The rule is
// treated as not satisfied.
type PredicateFailure struct {
	RuleID string
	Value  any
}

func (e PredicateFailure) Error() string {
	return fmt.Sprintf("achievement %s: check panicked: %v", e.RuleID, e.Value)
}

// InsufficientCurrencyError carries what a purchase would have needed.
type InsufficientCurrencyError struct {
	Kind ModifierKind
	Cost int
	Have int
}

func (e InsufficientCurrencyError) Error() string {
	return fmt.Sprintf("%s costs %d, have %d", e.Kind, e.Cost, e.Have)
}

func (e InsufficientCurrencyError) Is(target error) bool {
	return target == ErrInsufficientCurrency
}
