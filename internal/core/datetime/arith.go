package datetime

import (
	"time"

	"github.com/penwyp/biff/internal/core/span"
	"github.com/pkg/errors"
)

// Add shifts d by s. Years and months move the civil date, clamping the day
// to the end of shorter months; weeks and days move the civil date keeping
// the time of day; the remaining units are exact elapsed time. A civil result
// in a gap resolves to the later instant and in a fold to the earlier one.
func (d DateTime) Add(s span.Span) (DateTime, error) {
	out := d
	if s.HasCalendar() {
		w := wall(d.t)
		w = addMonths(w, s.Signed(span.Year)*12+s.Signed(span.Month))
		days := s.Signed(span.Week)*7 + s.Signed(span.Day)
		w = w.AddDate(0, 0, int(days))
		var err error
		if out, err = validated(FromWall(w, d.zone)); err != nil {
			return DateTime{}, err
		}
	}
	out = DateTime{t: s.TimeDur().AddTo(out.t), zone: d.zone}
	if err := out.checkRange(); err != nil {
		return DateTime{}, errors.Wrapf(err, "adding %s to %s", span.NewPrinter().Format(s), d)
	}
	return out, nil
}

// Until returns the span from a to b using units no larger than largest.
// Below days the span is exact elapsed time. From days up, b is viewed in a's
// zone and calendar units are counted on the civil dates.
func Until(a, b DateTime, largest span.Unit) (span.Span, error) {
	if largest < span.Day {
		return span.FromDur(span.Between(a.t, b.t), largest)
	}

	sign := a.t.Compare(b.t) * -1
	if sign == 0 {
		return span.Span{}, nil
	}

	loc := a.zone.Location()
	end := b.t.In(loc)
	w1, w2 := wall(a.t), wall(end)
	tod1, tod2 := timeOfDay(w1), timeOfDay(w2)

	correction := 0
	if (sign > 0 && tod2 < tod1) || (sign < 0 && tod2 > tod1) {
		correction = 1
	}

	var (
		dateEnd = date(w2)
		mid     = a.t
	)
	for ; correction <= 2; correction++ {
		dateEnd = date(w2).AddDate(0, 0, -correction*sign)
		mid = resolve(dateEnd.Add(tod1), loc, a.Offset(), true)
		if span.Between(mid, end).Sign() != -sign {
			break
		}
	}

	years, months, weeks, days := dateDiff(date(w1), dateEnd, largest, sign)
	rem, err := span.FromDur(span.Between(mid, end), span.Hour)
	if err != nil {
		return span.Span{}, err
	}

	out := rem.
		WithSigned(span.Year, years).
		WithSigned(span.Month, months).
		WithSigned(span.Week, weeks).
		WithSigned(span.Day, days)
	return out, out.Validate()
}

// dateDiff counts signed calendar units between two civil dates.
func dateDiff(d1, d2 time.Time, largest span.Unit, sign int) (years, months, weeks, days int64) {
	if largest >= span.Month {
		months = int64(d2.Year()-d1.Year())*12 + int64(d2.Month()-d1.Month())
		// Moving by whole months must not pass d2, judged on the unclamped
		// day of month.
		if months != 0 && ((sign > 0 && d1.Day() > d2.Day()) || (sign < 0 && d1.Day() < d2.Day())) {
			months -= int64(sign)
		}
		mid := addMonths(d1, months)
		days = civilDays(mid, d2)
		if largest == span.Year {
			years, months = months/12, months%12
		}
		return
	}

	days = civilDays(d1, d2)
	if largest == span.Week {
		weeks, days = days/7, days%7
	}
	return
}

// civilDays counts whole days between two civil midnights.
func civilDays(from, to time.Time) int64 {
	return (to.Unix() - from.Unix()) / 86400
}

// Since returns the span from d to rel, positive when d is in the past.
func Since(rel, d DateTime, largest span.Unit) (span.Span, error) {
	return Until(d, rel, largest)
}

// Balance redistributes s into units no larger than largest relative to rel.
func Balance(s span.Span, largest span.Unit, rel DateTime) (span.Span, error) {
	end, err := rel.Add(s)
	if err != nil {
		return span.Span{}, err
	}
	return Until(rel, end, largest)
}

// RoundSpan rounds s relative to rel.
func RoundSpan(s span.Span, o span.RoundOptions, rel DateTime) (span.Span, error) {
	largest := o.LargestFor(s)
	end, err := rel.Add(s)
	if err != nil {
		return span.Span{}, err
	}

	if largest < span.Day {
		incr := o.Smallest.NominalDur().Scale(o.Increment)
		return span.FromDur(span.Between(rel.t, end.t).Round(incr, o.Mode), largest)
	}

	diff, err := Until(rel, end, largest)
	if err != nil {
		return span.Span{}, err
	}
	if diff.IsZero() {
		return diff, nil
	}
	if o.Smallest >= span.Day {
		return nudgeCalendar(diff, o, rel, end, largest)
	}
	return nudgeTime(diff, o, rel, end, largest)
}

func calendarSpan(years, months, weeks, days int64) span.Span {
	return span.Span{}.
		WithSigned(span.Year, years).
		WithSigned(span.Month, months).
		WithSigned(span.Week, weeks).
		WithSigned(span.Day, days)
}

func nudgeCalendar(diff span.Span, o span.RoundOptions, rel, end DateTime, largest span.Unit) (span.Span, error) {
	sign := int64(diff.Sign())
	inc := o.Increment
	y, mo, w, d := diff.Signed(span.Year), diff.Signed(span.Month), diff.Signed(span.Week), diff.Signed(span.Day)

	var (
		r1         int64
		start, far span.Span
	)
	switch o.Smallest {
	case span.Year:
		r1 = y / inc * inc
		start, far = calendarSpan(r1, 0, 0, 0), calendarSpan(r1+inc*sign, 0, 0, 0)
	case span.Month:
		r1 = mo / inc * inc
		start, far = calendarSpan(y, r1, 0, 0), calendarSpan(y, r1+inc*sign, 0, 0)
	case span.Week:
		weeksStart, err := rel.Add(calendarSpan(y, mo, 0, 0))
		if err != nil {
			return span.Span{}, err
		}
		weeksEnd, err := weeksStart.Add(calendarSpan(0, 0, 0, w*7+d))
		if err != nil {
			return span.Span{}, err
		}
		wk, err := Until(weeksStart, weeksEnd, span.Week)
		if err != nil {
			return span.Span{}, err
		}
		r1 = wk.Signed(span.Week) / inc * inc
		start, far = calendarSpan(y, mo, r1, 0), calendarSpan(y, mo, r1+inc*sign, 0)
	default:
		r1 = d / inc * inc
		start, far = calendarSpan(y, mo, w, r1), calendarSpan(y, mo, w, r1+inc*sign)
	}

	startI, err := rel.Add(start)
	if err != nil {
		return span.Span{}, err
	}
	farI, err := rel.Add(far)
	if err != nil {
		return span.Span{}, err
	}

	progress := span.Between(startI.t, end.t).Abs()
	length := span.Between(startI.t, farI.t).Abs()
	q := r1 / inc
	if q < 0 {
		q = -q
	}
	if !o.Mode.RoundsUp(q, progress, length, sign < 0) {
		return start, start.Validate()
	}
	return bubble(far, farI, rel, o.Smallest, largest, sign)
}

func nudgeTime(diff span.Span, o span.RoundOptions, rel, end DateTime, largest span.Unit) (span.Span, error) {
	sign := int64(diff.Sign())
	cal := diff.Calendar()
	y, mo, w, d := cal.Signed(span.Year), cal.Signed(span.Month), cal.Signed(span.Week), cal.Signed(span.Day)

	dayStart, err := rel.Add(cal)
	if err != nil {
		return span.Span{}, err
	}
	next := calendarSpan(y, mo, w, d+sign)
	dayEnd, err := rel.Add(next)
	if err != nil {
		return span.Span{}, err
	}

	incr := o.Smallest.NominalDur().Scale(o.Increment)
	dayLen := span.Between(dayStart.t, dayEnd.t)
	rounded := span.Between(dayStart.t, end.t).Round(incr, o.Mode)

	expanded := false
	if beyond := rounded.Sub(dayLen); beyond.Sign() != -int(sign) {
		expanded = true
		rounded = beyond.Round(incr, o.Mode)
		cal = next
	}

	clock, err := span.FromDur(rounded, span.Hour)
	if err != nil {
		return span.Span{}, err
	}
	out := clock.
		WithSigned(span.Year, cal.Signed(span.Year)).
		WithSigned(span.Month, cal.Signed(span.Month)).
		WithSigned(span.Week, cal.Signed(span.Week)).
		WithSigned(span.Day, cal.Signed(span.Day))
	if !expanded {
		return out, out.Validate()
	}

	base, err := rel.Add(cal)
	if err != nil {
		return span.Span{}, err
	}
	bubbled, err := bubble(cal, DateTime{t: rounded.AddTo(base.t), zone: base.zone}, rel, span.Day, largest, sign)
	if err != nil {
		return span.Span{}, err
	}
	if bubbled != cal {
		return bubbled, bubbled.Validate()
	}
	return out, out.Validate()
}

// bubble carries a rounded calendar span into larger units while the larger
// unit's boundary does not pass the rounded end.
func bubble(s span.Span, nudged, rel DateTime, smallest, largest span.Unit, sign int64) (span.Span, error) {
	for u := smallest + 1; u <= largest; u++ {
		if u == span.Week && largest != span.Week {
			continue
		}
		y, mo, w := s.Signed(span.Year), s.Signed(span.Month), s.Signed(span.Week)
		var candidate span.Span
		switch u {
		case span.Year:
			candidate = calendarSpan(y+sign, 0, 0, 0)
		case span.Month:
			candidate = calendarSpan(y, mo+sign, 0, 0)
		case span.Week:
			candidate = calendarSpan(y, mo, w+sign, 0)
		default:
			continue
		}
		boundary, err := rel.Add(candidate)
		if err != nil {
			return span.Span{}, err
		}
		if span.Between(boundary.t, nudged.t).Sign() == -int(sign) {
			break
		}
		s = candidate
	}
	return s, s.Validate()
}
