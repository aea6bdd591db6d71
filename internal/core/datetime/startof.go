package datetime

import (
	"strings"
	"time"

	"github.com/penwyp/biff/internal/core/span"
	"github.com/pkg/errors"
)

// OfUnit is the unit accepted by start-of and end-of.
type OfUnit int

const (
	OfYear OfUnit = iota
	OfMonth
	OfWeekSunday
	OfWeekMonday
	OfDay
	OfHour
	OfMinute
	OfSecond
	OfMillisecond
	OfMicrosecond
)

var ofUnitAliases = map[string]OfUnit{
	"years": OfYear, "year": OfYear, "yrs": OfYear, "yr": OfYear, "y": OfYear,
	"months": OfMonth, "month": OfMonth, "mos": OfMonth, "mo": OfMonth,
	"week-sunday": OfWeekSunday, "wk-sunday": OfWeekSunday, "w-sunday": OfWeekSunday,
	"week-monday": OfWeekMonday, "wk-monday": OfWeekMonday, "w-monday": OfWeekMonday,
	"days": OfDay, "day": OfDay, "d": OfDay,
	"hours": OfHour, "hour": OfHour, "hrs": OfHour, "hr": OfHour, "h": OfHour,
	"minutes": OfMinute, "minute": OfMinute, "mins": OfMinute, "min": OfMinute, "m": OfMinute,
	"seconds": OfSecond, "second": OfSecond, "secs": OfSecond, "sec": OfSecond, "s": OfSecond,
	"milliseconds": OfMillisecond, "millisecond": OfMillisecond, "millis": OfMillisecond,
	"milli": OfMillisecond, "msecs": OfMillisecond, "msec": OfMillisecond, "ms": OfMillisecond,
	"microseconds": OfMicrosecond, "microsecond": OfMicrosecond, "micros": OfMicrosecond,
	"micro": OfMicrosecond, "usecs": OfMicrosecond, "usec": OfMicrosecond, "us": OfMicrosecond,
	"µsecs": OfMicrosecond, "µsec": OfMicrosecond, "µs": OfMicrosecond,
}

// ParseOfUnit parses a start-of/end-of unit name.
func ParseOfUnit(s string) (OfUnit, error) {
	if u, ok := ofUnitAliases[strings.ToLower(s)]; ok {
		return u, nil
	}
	return 0, errors.Errorf("unrecognized \"of\" unit: `%s`", s)
}

// truncate returns the first civil instant of the unit containing w and the
// first civil instant of the following unit.
func (u OfUnit) truncate(w time.Time) (time.Time, time.Time) {
	y, m, d := w.Date()
	switch u {
	case OfYear:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	case OfMonth:
		start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	case OfWeekSunday, OfWeekMonday:
		back := int(w.Weekday())
		if u == OfWeekMonday {
			back = (back + 6) % 7
		}
		start := time.Date(y, m, d-back, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 0, 7)
	case OfDay:
		start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 0, 1)
	}

	var step time.Duration
	switch u {
	case OfHour:
		step = time.Hour
	case OfMinute:
		step = time.Minute
	case OfSecond:
		step = time.Second
	case OfMillisecond:
		step = time.Millisecond
	default:
		step = time.Microsecond
	}
	start := w.Truncate(step)
	return start, start.Add(step)
}

// StartOf returns the first instant of the unit containing d. Units of a day
// or more resolve compatibly, smaller units keep the current offset when it
// is still valid.
func (d DateTime) StartOf(u OfUnit) (DateTime, error) {
	start, _ := u.truncate(wall(d.t))
	return d.resolveOf(u, start)
}

// EndOf returns the last nanosecond of the unit containing d.
func (d DateTime) EndOf(u OfUnit) (DateTime, error) {
	_, next := u.truncate(wall(d.t))
	return d.resolveOf(u, next.Add(-time.Nanosecond))
}

func (d DateTime) resolveOf(u OfUnit, w time.Time) (DateTime, error) {
	if u <= OfDay {
		return validated(FromWall(w, d.zone))
	}
	return d.withWall(w)
}

// ValidateRound checks the unit and increment of datetime rounding.
func ValidateRound(unit span.Unit, increment int64) error {
	switch unit {
	case span.Year:
		return errors.New("datetime rounding does not support years")
	case span.Month:
		return errors.New("datetime rounding does not support months")
	case span.Week:
		return errors.New("datetime rounding does not support weeks")
	}
	return span.ValidateIncrement(unit, increment, "datetime")
}

// Round rounds d to a multiple of increment units. Rounding to days measures
// progress against the real length of the civil day.
func (d DateTime) Round(unit span.Unit, increment int64, mode span.RoundMode) (DateTime, error) {
	if err := ValidateRound(unit, increment); err != nil {
		return DateTime{}, err
	}

	w := wall(d.t)
	if unit == span.Day {
		startW := date(w)
		start := FromWall(startW, d.zone)
		end := FromWall(startW.AddDate(0, 0, 1), d.zone)
		progress := span.Between(start.t, d.t)
		length := span.Between(start.t, end.t)
		if mode.RoundsUp(civilDays(time.Unix(0, 0).UTC(), startW), progress, length, false) {
			return validated(end)
		}
		return validated(start)
	}

	incr := unit.NominalDur().Scale(increment)
	tod := span.FromNanos(int64(timeOfDay(w))).Round(incr, mode)
	return d.withWall(tod.AddTo(date(w)))
}
