// Package span implements signed calendar and clock durations: parsing,
// balancing, rounding and printing.
package span

import (
	"math"

	"github.com/pkg/errors"
)

// Span is a signed duration made of non-negative unit magnitudes and a single
// sign. Units are not required to be balanced: 90 minutes and 1 hour 30
// minutes are distinct spans of equal length.
type Span struct {
	neg bool
	v   [numUnits]int64
}

// Get returns the magnitude of a unit.
func (s Span) Get(u Unit) int64 {
	return s.v[u]
}

// Signed returns the value of a unit with the span's sign applied.
func (s Span) Signed(u Unit) int64 {
	if s.neg {
		return -s.v[u]
	}
	return s.v[u]
}

// With returns a copy with the magnitude of u replaced.
func (s Span) With(u Unit, n int64) Span {
	s.v[u] = n
	if s.IsZero() {
		s.neg = false
	}
	return s
}

// WithSigned returns a copy with the unit set from a signed value. The sign of
// the value must agree with the span's sign unless the span is otherwise zero.
func (s Span) WithSigned(u Unit, n int64) Span {
	if n < 0 {
		s.neg = true
		n = -n
	}
	return s.With(u, n)
}

// Negative reports whether the span is below zero.
func (s Span) Negative() bool {
	return s.neg
}

// Sign returns -1, 0 or 1.
func (s Span) Sign() int {
	switch {
	case s.IsZero():
		return 0
	case s.neg:
		return -1
	default:
		return 1
	}
}

// Negate flips the sign of a non-zero span.
func (s Span) Negate() Span {
	if !s.IsZero() {
		s.neg = !s.neg
	}
	return s
}

// Abs returns the span with a positive sign.
func (s Span) Abs() Span {
	s.neg = false
	return s
}

func (s Span) IsZero() bool {
	for _, n := range s.v {
		if n != 0 {
			return false
		}
	}
	return true
}

// Largest returns the largest non-zero unit, or Nanosecond for a zero span.
func (s Span) Largest() Unit {
	for _, u := range Units {
		if s.v[u] != 0 {
			return u
		}
	}
	return Nanosecond
}

// HasCalendar reports whether any day or larger unit is set.
func (s Span) HasCalendar() bool {
	return s.v[Day] != 0 || s.v[Week] != 0 || s.v[Month] != 0 || s.v[Year] != 0
}

// Calendar returns only the day and larger units.
func (s Span) Calendar() Span {
	out := Span{neg: s.neg}
	for u := Day; u <= Year; u++ {
		out.v[u] = s.v[u]
	}
	if out.IsZero() {
		out.neg = false
	}
	return out
}

// TimeDur returns the exact signed length of the hour and smaller units.
func (s Span) TimeDur() Dur {
	d := Dur{
		Sec: s.v[Hour]*3600 + s.v[Minute]*60 + s.v[Second] +
			s.v[Millisecond]/1_000 + s.v[Microsecond]/1_000_000 + s.v[Nanosecond]/1_000_000_000,
		Nsec: s.v[Millisecond]%1_000*1_000_000 + s.v[Microsecond]%1_000_000*1_000 + s.v[Nanosecond]%1_000_000_000,
	}.norm()
	if s.neg {
		return d.Neg()
	}
	return d
}

// NominalDur returns the signed length of the span with 24 hour days, 7 day
// weeks, 30 day months and 365 day years.
func (s Span) NominalDur() Dur {
	d := Dur{Sec: s.v[Day]*nominalSeconds[Day] + s.v[Week]*nominalSeconds[Week] +
		s.v[Month]*nominalSeconds[Month] + s.v[Year]*nominalSeconds[Year]}
	if s.neg {
		d = d.Neg()
	}
	return d.Add(s.TimeDur())
}

// Validate checks every unit against the largest magnitude a span may hold.
func (s Span) Validate() error {
	for _, u := range Units {
		if s.v[u] < 0 || s.v[u] > maxValues[u] {
			return errors.Errorf("span unit %s with value %d is not in the required range of -%d..=%d",
				u.Plural(), s.Signed(u), maxValues[u], maxValues[u])
		}
	}
	return nil
}

// FromDur splits an exact duration into units no larger than largest.
// Calendar units use nominal lengths and weeks are only produced when largest
// is Week.
func FromDur(d Dur, largest Unit) (Span, error) {
	neg := d.Sign() < 0
	a := d.Abs()

	var s Span
	if largest >= Second {
		sec := a.Sec
		for u := largest; u >= Second; u-- {
			if u == Week && largest != Week {
				continue
			}
			l := nominalSeconds[u]
			s.v[u] = sec / l
			sec %= l
		}
		s.v[Millisecond] = a.Nsec / 1_000_000
		s.v[Microsecond] = a.Nsec / 1_000 % 1_000
		s.v[Nanosecond] = a.Nsec % 1_000
	} else {
		per := 1_000_000_000 / unitNanos[largest]
		if a.Sec > math.MaxInt64/per {
			return Span{}, errors.Errorf("span overflow: %d seconds do not fit in %s", a.Sec, largest.Plural())
		}
		s.v[largest] = a.Sec*per + a.Nsec/unitNanos[largest]
		rem := a.Nsec % unitNanos[largest]
		for u := largest - 1; u >= Nanosecond; u-- {
			s.v[u] = rem / unitNanos[u]
			rem %= unitNanos[u]
		}
	}
	s.neg = neg && !s.IsZero()
	return s, s.Validate()
}
