package span

import (
	"strings"

	"github.com/pkg/errors"
)

// RoundMode selects how a remainder is resolved when rounding.
type RoundMode int

const (
	Ceil RoundMode = iota
	Floor
	Expand
	Trunc
	HalfCeil
	HalfFloor
	HalfExpand
	HalfTrunc
	HalfEven
)

var roundModeNames = map[string]RoundMode{
	"ceil":        Ceil,
	"floor":       Floor,
	"expand":      Expand,
	"trunc":       Trunc,
	"half-ceil":   HalfCeil,
	"half-floor":  HalfFloor,
	"half-expand": HalfExpand,
	"half-trunc":  HalfTrunc,
	"half-even":   HalfEven,
}

// ParseRoundMode parses a rounding mode name.
func ParseRoundMode(s string) (RoundMode, error) {
	if m, ok := roundModeNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return 0, errors.Errorf("unrecognized rounding mode: `%s`", s)
}

func (m RoundMode) String() string {
	for name, mode := range roundModeNames {
		if mode == m {
			return name
		}
	}
	return "unknown"
}

// roundsUp decides whether a magnitude with quotient q and remainder r in
// steps of incr moves to the next step away from zero.
func (m RoundMode) roundsUp(q int64, r, incr Dur, negative bool) bool {
	if r.IsZero() {
		return false
	}
	switch m {
	case Trunc:
		return false
	case Expand:
		return true
	case Ceil:
		return !negative
	case Floor:
		return negative
	}

	c := r.Add(r).Cmp(incr)
	switch m {
	case HalfExpand:
		return c >= 0
	case HalfTrunc:
		return c > 0
	case HalfCeil:
		return c > 0 || (c == 0 && !negative)
	case HalfFloor:
		return c > 0 || (c == 0 && negative)
	case HalfEven:
		return c > 0 || (c == 0 && q%2 != 0)
	}
	return false
}

// RoundsUp is the exported form used by calendar-relative rounding, where
// progress is measured between two instants.
func (m RoundMode) RoundsUp(q int64, progress, length Dur, negative bool) bool {
	return m.roundsUp(q, progress, length, negative)
}

// maximums bounds rounding increments for units with a fixed modulus.
var maximums = map[Unit]int64{
	Day:         1,
	Hour:        24,
	Minute:      60,
	Second:      60,
	Millisecond: 1000,
	Microsecond: 1000,
	Nanosecond:  1000,
}

// ValidateIncrement checks a rounding increment. what names the rounded value
// in the error, "span" or "datetime".
func ValidateIncrement(unit Unit, increment int64, what string) error {
	if unit >= Week {
		if increment > 0 {
			return nil
		}
		return errors.Errorf("increment %d for rounding %s to %s must be greater than zero", increment, what, unit.Plural())
	}

	max := maximums[unit]
	if unit == Day {
		if increment == 1 {
			return nil
		}
		return errors.Errorf(
			"increment %d for rounding %s to %s must be 1) less than 2, 2) divide into it evenly and 3) greater than zero",
			increment, what, unit.Plural())
	}
	if increment > 0 && increment < max && max%increment == 0 {
		return nil
	}
	return errors.Errorf(
		"increment %d for rounding %s to %s must be 1) less than %d, 2) divide into it evenly and 3) greater than zero",
		increment, what, unit.Plural(), max)
}
