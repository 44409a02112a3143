package reconcile

import (
	"strings"

	"github.com/agentstation/panmap/pkg/errors"
)

// StrategyType names a collision policy.
type StrategyType string

// String returns the string representation of a strategy type.
func (s StrategyType) String() string {
	return string(s)
}

const (
	// StrategyTypeSum adds the abundances of taxa sharing a canonical name.
	StrategyTypeSum StrategyType = "sum"
	// StrategyTypeStrict rejects taxa sharing a canonical name.
	StrategyTypeStrict StrategyType = "strict"
)

// Strategy decides what happens when several input taxa resolve to the same
// output row. Rows are always collapsed by summing; a strategy may refuse
// the collision instead.
type Strategy interface {
	// Type returns the strategy type
	Type() StrategyType

	// Description returns a human-readable description
	Description() string

	// Resolve accepts a collision or returns an error rejecting it
	Resolve(c Collision) error
}

type baseStrategy struct {
	typ         StrategyType
	description string
}

// Type returns the strategy type.
func (s *baseStrategy) Type() StrategyType {
	return s.typ
}

// Description returns a human-readable description.
func (s *baseStrategy) Description() string {
	return s.description
}

// SumStrategy merges colliding taxa silently.
type SumStrategy struct {
	baseStrategy
}

// NewSumStrategy creates the default, additive strategy.
func NewSumStrategy() Strategy {
	return &SumStrategy{baseStrategy{
		typ:         StrategyTypeSum,
		description: "Sums the abundances of taxa that share a canonical name",
	}}
}

// Resolve always accepts the collision.
func (s *SumStrategy) Resolve(Collision) error {
	return nil
}

// StrictStrategy refuses any collision.
type StrictStrategy struct {
	baseStrategy
}

// NewStrictStrategy creates a strategy that fails on the first collision.
func NewStrictStrategy() Strategy {
	return &StrictStrategy{baseStrategy{
		typ:         StrategyTypeStrict,
		description: "Fails when two taxa resolve to the same canonical name",
	}}
}

// Resolve returns a ConflictError naming the colliding taxa.
func (s *StrictStrategy) Resolve(c Collision) error {
	return errors.NewConflictError(c.Key, c.Taxa)
}

// ParseStrategy returns the strategy named by s.
func ParseStrategy(s string) (Strategy, error) {
	switch StrategyType(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyTypeSum, "":
		return NewSumStrategy(), nil
	case StrategyTypeStrict:
		return NewStrictStrategy(), nil
	default:
		return nil, &errors.ValidationError{
			Field:   "strategy",
			Value:   s,
			Message: "must be one of sum, strict",
		}
	}
}
