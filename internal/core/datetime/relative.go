package datetime

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/penwyp/biff/internal/core/span"
	"github.com/penwyp/biff/internal/util"
	"github.com/pkg/errors"
)

var weekdayAliases = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday, "su": time.Sunday,
	"monday": time.Monday, "mon": time.Monday, "mo": time.Monday,
	"tuesday": time.Tuesday, "tues": time.Tuesday, "tue": time.Tuesday, "tu": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday, "we": time.Wednesday,
	"thursday": time.Thursday, "thurs": time.Thursday, "thur": time.Thursday, "thu": time.Thursday, "th": time.Thursday,
	"friday": time.Friday, "fri": time.Friday, "fr": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday, "sa": time.Saturday,
}

// ParseWeekday parses a weekday name or abbreviation.
func ParseWeekday(s string) (time.Weekday, error) {
	if wd, ok := weekdayAliases[strings.ToLower(s)]; ok {
		return wd, nil
	}
	return 0, errors.Errorf("unrecognized weekday: `%s`", s)
}

var multipliers = map[string]int{
	"this": 0, "last": -1, "next": 1,
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
}

func parseMultiplier(s string) (int, bool) {
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int(n), true
	}
	n, ok := multipliers[s]
	return n, ok
}

var (
	clock12Re = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(?::(\d{2}))?(am|pm)$`)
	clock24Re = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
)

// parseClock sets the time of day on rel when s is a clock time.
func parseClock(s string, rel DateTime) (DateTime, bool, error) {
	var hour, minute, second int
	if m := clock12Re.FindStringSubmatch(s); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		second, _ = strconv.Atoi(m[3])
		if hour < 1 || hour > 12 || minute > 59 || second > 59 {
			return DateTime{}, false, nil
		}
		hour %= 12
		if m[4] == "pm" {
			hour += 12
		}
	} else if m := clock24Re.FindStringSubmatch(s); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		second, _ = strconv.Atoi(m[3])
		if hour > 23 || minute > 59 || second > 59 {
			return DateTime{}, false, nil
		}
	} else {
		return DateTime{}, false, nil
	}

	w := date(wall(rel.t)).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second)
	dt, err := validated(FromWall(w, rel.zone))
	return dt, true, err
}

// parseDay handles today, yesterday and tomorrow keeping the time of day.
func parseDay(s string, rel DateTime) (DateTime, bool, error) {
	var days int
	switch s {
	case "today":
	case "yesterday":
		days = -1
	case "tomorrow":
		days = 1
	default:
		return DateTime{}, false, nil
	}
	dt, err := validated(FromWall(wall(rel.t).AddDate(0, 0, days), rel.zone))
	return dt, true, err
}

// parseSpan applies a friendly span to rel.
func parseSpan(s string, rel DateTime) (DateTime, bool, error) {
	sp, err := span.Parse(s)
	if err != nil {
		return DateTime{}, false, nil
	}
	dt, err := rel.Add(sp)
	if err != nil {
		return DateTime{}, true, errors.Wrapf(err, "failed to add `%s` to `%s`", s, rel)
	}
	return dt, true, nil
}

// NthWeekday returns the nth occurrence of wd after rel (before it when n is
// negative), keeping the time of day. With n of zero rel itself is returned
// when it falls on wd, otherwise the next occurrence.
func (d DateTime) NthWeekday(n int, wd time.Weekday) (DateTime, error) {
	cur := d.Weekday()
	if n == 0 {
		if cur == wd {
			return d, nil
		}
		n = 1
	}

	var days int
	if n > 0 {
		ahead := (int(wd) - int(cur) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		days = ahead + (n-1)*7
	} else {
		back := (int(cur) - int(wd) + 7) % 7
		if back == 0 {
			back = 7
		}
		days = -back + (n+1)*7
	}
	dt, err := validated(FromWall(wall(d.t).AddDate(0, 0, days), d.zone))
	if err != nil {
		return DateTime{}, errors.Wrapf(err, "failed to get %d %ss after %s", n, wd, d)
	}
	return dt, nil
}

func relativeWeekday(s string, n int, rel DateTime) (DateTime, bool, error) {
	wd, err := ParseWeekday(s)
	if err != nil {
		return DateTime{}, false, nil
	}
	dt, err := rel.NthWeekday(n, wd)
	return dt, true, err
}

type relativeStep func(string, DateTime) (DateTime, bool, error)

func firstOf(s string, rel DateTime, steps ...relativeStep) (DateTime, bool, error) {
	for _, step := range steps {
		if dt, ok, err := step(s, rel); ok || err != nil {
			return dt, ok, err
		}
	}
	return DateTime{}, false, nil
}

func weekdayStep(s string, rel DateTime) (DateTime, bool, error) {
	return relativeWeekday(s, 0, rel)
}

// multipliedWeekday handles "<multiplier> <weekday>".
func multipliedWeekday(s string, rel DateTime) (DateTime, bool, error) {
	first, rest, ok := strings.Cut(s, " ")
	if !ok {
		return DateTime{}, false, nil
	}
	n, ok := parseMultiplier(first)
	if !ok {
		return DateTime{}, false, nil
	}
	return relativeWeekday(strings.TrimSpace(rest), n, rel)
}

// Relative resolves a relative datetime expression against rel.
func Relative(expr string, rel DateTime) (DateTime, error) {
	dt, ok, err := relative(strings.ToLower(strings.Join(strings.Fields(expr), " ")), rel)
	if err != nil {
		return DateTime{}, err
	}
	if !ok {
		return DateTime{}, errors.Errorf("unrecognized relative datetime `%s`", expr)
	}
	util.LogTracef("resolved relative datetime `%s` to %s", expr, dt)
	return dt, nil
}

func relative(s string, rel DateTime) (DateTime, bool, error) {
	switch s {
	case "now":
		return rel, true, nil
	case "today", "yesterday", "tomorrow":
		dt, _, err := parseDay(s, rel)
		if err != nil {
			return DateTime{}, false, err
		}
		start, err := dt.StartOf(OfDay)
		return start, err == nil, err
	}

	first, rest, found := strings.Cut(s, " ")
	if !found {
		// Clock times come before spans since 14:30:00 also reads as a span.
		return firstOf(s, rel, parseClock, parseSpan, parseDay, weekdayStep)
	}

	if at, ok, err := parseClock(first, rel); ok || err != nil {
		if err != nil {
			return DateTime{}, false, err
		}
		return firstOf(rest, at, parseSpan, weekdayStep, parseDay, multipliedWeekday)
	}

	if dt, ok, err := firstOf(s, rel, parseSpan, multipliedWeekday); ok || err != nil {
		return dt, ok, err
	}

	// A trailing clock time: "tomorrow 5pm", "next friday 17:30".
	if i := strings.LastIndexByte(s, ' '); i > 0 {
		date, ok, err := relative(s[:i], rel)
		if !ok || err != nil {
			return DateTime{}, ok, err
		}
		return parseClock(s[i+1:], date)
	}
	return DateTime{}, false, nil
}
