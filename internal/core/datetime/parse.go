package datetime

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	temporalRe = regexp.MustCompile(`^(\d{4})-?(\d{2})-?(\d{2})` +
		`(?:[Tt ](\d{2})(?::?(\d{2})(?::?(\d{2})(?:[.,](\d{1,9}))?)?)?` +
		`([Zz]|[+-]\d{2}(?::?\d{2}(?::?\d{2})?)?)?)?` +
		`((?:\[[^\]]*\])*)$`)
	annotationRe = regexp.MustCompile(`\[([^\]]*)\]`)
	rfc2822Re    = regexp.MustCompile(`^(?i)(?:(mon|tue|wed|thu|fri|sat|sun),\s*)?(\d{1,2})\s+` +
		`(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\s+(\d{4})\s+(\d{2}):(\d{2})(?::(\d{2}))?\s+` +
		`([+-]\d{4}|ut|gmt|z|[ecmp][sd]t)$`)
)

var rfc2822Zones = map[string]int{
	"EST": -5 * 3600, "EDT": -4 * 3600,
	"CST": -6 * 3600, "CDT": -5 * 3600,
	"MST": -7 * 3600, "MDT": -6 * 3600,
	"PST": -8 * 3600, "PDT": -7 * 3600,
}

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// errNoMatch marks inputs that are not shaped like the attempted format.
var errNoMatch = errors.New("no match")

// ParseStrict parses RFC 9557, RFC 3339 (and its ISO 8601 relatives) and
// RFC 2822/RFC 9110 datetimes. An explicit offset or zone is required.
func ParseStrict(s string) (DateTime, error) {
	return parse(s, nil)
}

// ParseFlexible accepts everything ParseStrict does plus datetimes without
// an offset, which resolve in the zone of now, and the relative grammar
// evaluated against now.
func ParseFlexible(s string, now DateTime) (DateTime, error) {
	dt, err := parse(s, &now)
	if err == nil {
		return dt, nil
	}
	if !errors.Is(err, errNoMatch) {
		return DateTime{}, err
	}
	if dt, rerr := Relative(s, now); rerr == nil {
		return dt, nil
	}
	return DateTime{}, errors.Errorf("unrecognized datetime `%s`", s)
}

func parse(s string, now *DateTime) (DateTime, error) {
	in := strings.TrimSpace(s)
	dt, err := parseTemporal(in, now)
	if !errors.Is(err, errNoMatch) {
		return dt, err
	}
	dt, err = parseRFC2822(in)
	if !errors.Is(err, errNoMatch) {
		return dt, err
	}
	if now != nil {
		return DateTime{}, err
	}
	return DateTime{}, errors.Errorf("unrecognized datetime `%s`", s)
}

func parseTemporal(s string, now *DateTime) (DateTime, error) {
	m := temporalRe.FindStringSubmatch(s)
	if m == nil {
		return DateTime{}, errNoMatch
	}

	w, err := civilFields(m)
	if err != nil {
		return DateTime{}, errors.Wrapf(err, "invalid datetime `%s`", s)
	}

	var zone *Zone
	for _, ann := range annotationRe.FindAllStringSubmatch(m[9], -1) {
		name := strings.TrimPrefix(ann[1], "!")
		if strings.Contains(name, "=") {
			continue
		}
		z, err := ParseZone(name)
		if err != nil {
			return DateTime{}, errors.Wrapf(err, "failed to parse time zone annotation in `%s`", s)
		}
		zone = &z
		break
	}

	offset := m[8]
	switch {
	case zone != nil && offset == "":
		return validated(FromWall(w, *zone))
	case zone != nil && (offset == "Z" || offset == "z"):
		return validated(In(w, *zone))
	case zone != nil:
		off, err := ParseOffset(offset)
		if err != nil {
			return DateTime{}, err
		}
		dt := In(time.Unix(w.Unix()-int64(off), int64(w.Nanosecond())), *zone)
		if dt.Offset() != off {
			return DateTime{}, errors.Errorf(
				"datetime `%s` has offset %s, but the time zone %s has offset %s at that instant",
				s, FormatOffset(off, true), zone.Name(), FormatOffset(dt.Offset(), true))
		}
		return validated(dt)
	case offset == "Z" || offset == "z":
		return validated(In(w, Unknown()))
	case offset != "":
		off, err := ParseOffset(offset)
		if err != nil {
			return DateTime{}, err
		}
		if off == 0 && strings.HasPrefix(offset, "-") {
			return validated(In(w, Unknown()))
		}
		return validated(In(time.Unix(w.Unix()-int64(off), int64(w.Nanosecond())), Fixed(off)))
	case now != nil:
		return validated(FromWall(w, now.Zone()))
	default:
		return DateTime{}, errors.Errorf("RFC 3339 timestamp requires an offset, but %s is missing an offset", s)
	}
}

func validated(dt DateTime) (DateTime, error) {
	return dt, dt.checkRange()
}

func civilFields(m []string) (time.Time, error) {
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 {
		return time.Time{}, errors.Errorf("month %d is not in 1..=12", month)
	}
	if day < 1 || day > daysIn(year, time.Month(month)) {
		return time.Time{}, errors.Errorf("day %d is not valid for %04d-%02d", day, year, month)
	}

	var hour, minute, second, nanos int
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		second, _ = strconv.Atoi(m[6])
		if m[7] != "" {
			frac := m[7] + strings.Repeat("0", 9-len(m[7]))
			nanos, _ = strconv.Atoi(frac)
		}
	}
	if hour > 23 {
		return time.Time{}, errors.Errorf("hour %d is not in 0..=23", hour)
	}
	if minute > 59 {
		return time.Time{}, errors.Errorf("minute %d is not in 0..=59", minute)
	}
	if second == 60 {
		second = 59
	} else if second > 60 {
		return time.Time{}, errors.Errorf("second %d is not in 0..=59", second)
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, nanos, time.UTC), nil
}

func parseRFC2822(s string) (DateTime, error) {
	m := rfc2822Re.FindStringSubmatch(s)
	if m == nil {
		return DateTime{}, errNoMatch
	}
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[4])
	month := months[strings.ToLower(m[3])]
	hour, _ := strconv.Atoi(m[5])
	minute, _ := strconv.Atoi(m[6])
	second, _ := strconv.Atoi(m[7])

	if day < 1 || day > daysIn(year, month) || hour > 23 || minute > 59 || second > 60 {
		return DateTime{}, errors.Errorf("invalid RFC 2822 datetime `%s`", s)
	}
	if second == 60 {
		second = 59
	}
	w := time.Date(year, month, day, hour, minute, second, 0, time.UTC)

	var zone Zone
	off := 0
	switch name := strings.ToUpper(m[8]); name {
	case "UT", "GMT", "Z":
		zone = UTC()
	case "-0000":
		zone = Unknown()
	default:
		if o, ok := rfc2822Zones[name]; ok {
			off = o
		} else {
			var err error
			if off, err = ParseOffset(name); err != nil {
				return DateTime{}, err
			}
		}
		zone = Fixed(off)
	}

	dt := In(time.Unix(w.Unix()-int64(off), 0), zone)
	if m[1] != "" && !strings.EqualFold(dt.Weekday().String()[:3], m[1]) {
		return DateTime{}, errors.Errorf("weekday `%s` does not match the date in `%s`", m[1], s)
	}
	return validated(dt)
}
