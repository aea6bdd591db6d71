// Package datetime models zone-aware instants and the calendar arithmetic,
// parsing, formatting and relative grammar built on them.
package datetime

import (
	"time"

	"github.com/pkg/errors"
)

const (
	minYear = -9999
	maxYear = 9999
)

// DateTime is an instant paired with the zone it is displayed in.
type DateTime struct {
	t    time.Time
	zone Zone
}

// In returns t displayed in zone z.
func In(t time.Time, z Zone) DateTime {
	return DateTime{t: t.In(z.Location()), zone: z}
}

// Time returns the instant in the datetime's location.
func (d DateTime) Time() time.Time {
	return d.t
}

// Zone returns the display zone.
func (d DateTime) Zone() Zone {
	return d.zone
}

// Offset returns the UTC offset in seconds at this instant.
func (d DateTime) Offset() int {
	_, off := d.t.Zone()
	return off
}

// Abbreviation returns the zone abbreviation at this instant.
func (d DateTime) Abbreviation() string {
	name, _ := d.t.Zone()
	return name
}

// WithZone returns the same instant displayed in z.
func (d DateTime) WithZone(z Zone) DateTime {
	return In(d.t, z)
}

// Compare returns -1, 0 or 1 comparing instants only.
func (d DateTime) Compare(o DateTime) int {
	return d.t.Compare(o.t)
}

// Weekday returns the civil weekday.
func (d DateTime) Weekday() time.Weekday {
	return d.t.Weekday()
}

func (d DateTime) checkRange() error {
	if y := d.t.Year(); y < minYear || y > maxYear {
		return errors.Errorf("datetime is out of range, year %d is not in -9999..=9999", y)
	}
	return nil
}

// wall returns the civil fields of t as a UTC time.
func wall(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// date truncates a wall time to midnight.
func date(w time.Time) time.Time {
	return time.Date(w.Year(), w.Month(), w.Day(), 0, 0, 0, 0, time.UTC)
}

// timeOfDay returns the nanoseconds since civil midnight.
func timeOfDay(w time.Time) time.Duration {
	return w.Sub(date(w))
}

// resolve maps a wall time to an instant in loc. In a fold the instant with
// offset prefer is used when preferred is set and valid, otherwise the earlier
// one. In a gap the wall time is pushed forward by the gap length.
func resolve(w time.Time, loc *time.Location, prefer int, preferred bool) time.Time {
	civil := w.Unix()
	before := offsetAt(civil-86400, loc)
	after := offsetAt(civil+86400, loc)

	var candidates []int64
	for _, off := range []int{before, after} {
		sec := civil - int64(off)
		if offsetAt(sec, loc) != off {
			continue
		}
		if len(candidates) == 1 && candidates[0] == sec {
			continue
		}
		candidates = append(candidates, sec)
	}

	var sec int64
	switch len(candidates) {
	case 0:
		sec = civil - int64(before)
	case 1:
		sec = candidates[0]
	default:
		if candidates[1] < candidates[0] {
			candidates[0], candidates[1] = candidates[1], candidates[0]
		}
		sec = candidates[0]
		if preferred && offsetAt(candidates[1], loc) == prefer {
			sec = candidates[1]
		}
	}
	return time.Unix(sec, int64(w.Nanosecond())).In(loc)
}

// FromWall resolves civil fields in zone z, preferring earlier instants in
// folds and later wall times in gaps.
func FromWall(w time.Time, z Zone) DateTime {
	return DateTime{t: resolve(wall(w), z.Location(), 0, false), zone: z}
}

// withWall replaces the civil fields, keeping the current offset when it is
// still valid.
func (d DateTime) withWall(w time.Time) (DateTime, error) {
	out := DateTime{t: resolve(w, d.zone.Location(), d.Offset(), true), zone: d.zone}
	return out, out.checkRange()
}

// daysIn returns the number of days in a month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// addMonths moves a civil date by n months, clamping the day to the length
// of the target month.
func addMonths(w time.Time, n int64) time.Time {
	total := int64(w.Year())*12 + int64(w.Month()-1) + n
	year := total / 12
	month := total % 12
	if month < 0 {
		month += 12
		year--
	}
	day := w.Day()
	if dim := daysIn(int(year), time.Month(month+1)); day > dim {
		day = dim
	}
	return time.Date(int(year), time.Month(month+1), day, w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), time.UTC)
}
