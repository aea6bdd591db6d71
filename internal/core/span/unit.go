package span

import (
	"strings"

	"github.com/pkg/errors"
)

// Unit is a span unit, ordered from smallest to largest.
type Unit int

const (
	Nanosecond Unit = iota
	Microsecond
	Millisecond
	Second
	Minute
	Hour
	Day
	Week
	Month
	Year
)

const numUnits = int(Year) + 1

// Units lists every unit from largest to smallest.
var Units = []Unit{Year, Month, Week, Day, Hour, Minute, Second, Millisecond, Microsecond, Nanosecond}

var unitNames = [numUnits]string{
	"nanosecond", "microsecond", "millisecond", "second", "minute",
	"hour", "day", "week", "month", "year",
}

// unitNanos holds the exact length of each time unit. Calendar units are 0.
var unitNanos = [numUnits]int64{
	1, 1_000, 1_000_000, 1_000_000_000, 60_000_000_000, 3_600_000_000_000,
}

// nominalSeconds treats days as 24 hours, weeks as 7 days, months as 30 days
// and years as 365 days.
var nominalSeconds = [numUnits]int64{
	0, 0, 0, 1, 60, 3600, 86400, 7 * 86400, 30 * 86400, 365 * 86400,
}

var maxValues = [numUnits]int64{
	9_223_372_036_854_775_807,
	631_107_417_600_000_000,
	631_107_417_600_000,
	631_107_417_600,
	10_518_456_960,
	175_307_616,
	7_304_484,
	1_043_497,
	239_976,
	19_998,
}

var unitAliases = buildAliases(map[Unit][]string{
	Year:        {"years", "year", "yrs", "yr", "y"},
	Month:       {"months", "month", "mos", "mo"},
	Week:        {"weeks", "week", "wks", "wk", "w"},
	Day:         {"days", "day", "d"},
	Hour:        {"hours", "hour", "hrs", "hr", "h"},
	Minute:      {"minutes", "minute", "mins", "min", "m"},
	Second:      {"seconds", "second", "secs", "sec", "s"},
	Millisecond: {"milliseconds", "millisecond", "millis", "milli", "msecs", "msec", "ms"},
	Microsecond: {"microseconds", "microsecond", "micros", "micro", "usecs", "usec", "us", "µsecs", "µsec", "µs"},
	Nanosecond:  {"nanoseconds", "nanosecond", "nanos", "nano", "nsecs", "nsec", "ns"},
})

func buildAliases(names map[Unit][]string) map[string]Unit {
	aliases := make(map[string]Unit)
	for u, list := range names {
		for _, name := range list {
			aliases[name] = u
		}
	}
	return aliases
}

// ParseUnit parses a unit name such as "hour", "hrs" or "h".
func ParseUnit(s string) (Unit, error) {
	if u, ok := unitAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return u, nil
	}
	return 0, errors.Errorf("unrecognized span unit: `%s`", s)
}

// String returns the singular name of the unit.
func (u Unit) String() string {
	if u < 0 || int(u) >= numUnits {
		return "unknown"
	}
	return unitNames[u]
}

// Plural returns the plural name of the unit.
func (u Unit) Plural() string {
	return u.String() + "s"
}

// IsCalendar reports whether the unit has no fixed length (days and larger).
func (u Unit) IsCalendar() bool {
	return u >= Day
}

// Nanos returns the exact length of a time unit. It panics for calendar units.
func (u Unit) Nanos() int64 {
	if u.IsCalendar() {
		panic("span: calendar unit has no fixed length: " + u.String())
	}
	return unitNanos[u]
}

// NominalDur returns the fixed-length approximation of one unit.
func (u Unit) NominalDur() Dur {
	if u >= Second {
		return Dur{Sec: nominalSeconds[u]}
	}
	return Dur{Nsec: unitNanos[u]}
}

// Max returns the larger of two units.
func Max(a, b Unit) Unit {
	if a > b {
		return a
	}
	return b
}
