package datetime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ZoneKind distinguishes how a zone was specified.
type ZoneKind int

const (
	KindIANA ZoneKind = iota
	KindFixed
	KindUnknown
)

// UnknownName is the zone name printed for instants with an unknown local
// offset, such as those parsed from a trailing Z.
const UnknownName = "Etc/Unknown"

var unknownLocation = time.FixedZone(UnknownName, 0)

// Zone is a time zone: an IANA zone, a fixed UTC offset or the unknown zone.
type Zone struct {
	loc  *time.Location
	kind ZoneKind
}

// IANA wraps a location loaded from the time zone database.
func IANA(loc *time.Location) Zone {
	return Zone{loc: loc, kind: KindIANA}
}

// Fixed returns a zone with a constant offset in seconds east of UTC.
func Fixed(offset int) Zone {
	return Zone{loc: time.FixedZone(FormatOffset(offset, true), offset), kind: KindFixed}
}

// Unknown returns the zone of instants whose local offset is unknown.
func Unknown() Zone {
	return Zone{loc: unknownLocation, kind: KindUnknown}
}

// UTC is the IANA UTC zone.
func UTC() Zone {
	return IANA(time.UTC)
}

// LoadZone loads an IANA zone by name.
func LoadZone(name string) (Zone, error) {
	if name == "" || name == "Local" {
		return Zone{}, errors.Errorf("failed to find time zone `%s` in time zone database", name)
	}
	if name == UnknownName {
		return Unknown(), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Zone{}, errors.Errorf("failed to find time zone `%s` in time zone database", name)
	}
	return IANA(loc), nil
}

var offsetRe = regexp.MustCompile(`^([+-])(\d{2})(?::?(\d{2})(?::?(\d{2}))?)?$`)

// ParseOffset parses "+05", "-0430", "+05:30" or "-04:00:10".
func ParseOffset(s string) (int, error) {
	m := offsetRe.FindStringSubmatch(s)
	if m == nil {
		return 0, errors.Errorf("invalid UTC offset `%s`", s)
	}
	h, _ := strconv.Atoi(m[2])
	mins, _ := strconv.Atoi(m[3])
	secs, _ := strconv.Atoi(m[4])
	if h > 25 || mins > 59 || secs > 59 {
		return 0, errors.Errorf("invalid UTC offset `%s`", s)
	}
	off := h*3600 + mins*60 + secs
	if m[1] == "-" {
		off = -off
	}
	return off, nil
}

// ParseZone parses an IANA zone name or a UTC offset.
func ParseZone(s string) (Zone, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		off, err := ParseOffset(s)
		if err != nil {
			return Zone{}, err
		}
		return Fixed(off), nil
	}
	return LoadZone(s)
}

// Name returns the IANA name, the offset of a fixed zone or Etc/Unknown.
func (z Zone) Name() string {
	if z.loc == nil {
		return "UTC"
	}
	return z.loc.String()
}

// Location returns the underlying location.
func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

func (z Zone) Kind() ZoneKind {
	return z.kind
}

func (z Zone) IsUnknown() bool {
	return z.kind == KindUnknown
}

// HasTransitions reports whether the zone can change offset.
func (z Zone) HasTransitions() bool {
	return z.kind == KindIANA
}

func (z Zone) String() string {
	return z.Name()
}

// FormatOffset renders an offset as ±HH:MM (colon) or ±HHMM, appending
// seconds only when they are non-zero.
func FormatOffset(offset int, colon bool) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	h, m, s := offset/3600, offset/60%60, offset%60
	sep := ""
	if colon {
		sep = ":"
	}
	out := fmt.Sprintf("%c%02d%s%02d", sign, h, sep, m)
	if s != 0 {
		out += fmt.Sprintf("%s%02d", sep, s)
	}
	return out
}

func offsetAt(sec int64, loc *time.Location) int {
	_, off := time.Unix(sec, 0).In(loc).Zone()
	return off
}
