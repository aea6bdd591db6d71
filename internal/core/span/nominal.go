package span

import "github.com/pkg/errors"

// RoundOptions configures span rounding.
type RoundOptions struct {
	Smallest  Unit
	Largest   Unit
	HasLarger bool
	Increment int64
	Mode      RoundMode
}

// DefaultRoundOptions rounds to the nearest nanosecond, ties away from zero.
func DefaultRoundOptions() RoundOptions {
	return RoundOptions{Smallest: Nanosecond, Increment: 1, Mode: HalfExpand}
}

// LargestFor returns the explicit largest unit, or the larger of the span's
// largest unit and the smallest rounding unit.
func (o RoundOptions) LargestFor(s Span) Unit {
	if o.HasLarger {
		return o.Largest
	}
	return Max(s.Largest(), o.Smallest)
}

// Validate checks the increment and that largest is not below smallest.
func (o RoundOptions) Validate() error {
	if err := ValidateIncrement(o.Smallest, o.Increment, "span"); err != nil {
		return err
	}
	if o.HasLarger && o.Largest < o.Smallest {
		return errors.Errorf("largest unit %s cannot be smaller than smallest unit %s", o.Largest.Plural(), o.Smallest.Plural())
	}
	return nil
}

// BalanceNominal balances s into units no larger than largest, treating days
// as 24 hours, weeks as 7 days, months as 30 days and years as 365 days.
func BalanceNominal(s Span, largest Unit) (Span, error) {
	return FromDur(s.NominalDur(), largest)
}

// RoundNominal rounds s with the nominal unit lengths of BalanceNominal.
// Spans of hours and smaller round exactly.
func RoundNominal(s Span, o RoundOptions) (Span, error) {
	incr := o.Smallest.NominalDur().Scale(o.Increment)
	return FromDur(s.NominalDur().Round(incr, o.Mode), o.LargestFor(s))
}
