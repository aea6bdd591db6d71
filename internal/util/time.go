package util

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// TimeProvider holds the system time zone and the reference "now" of a single
// invocation. Now never changes once the provider is built.
type TimeProvider struct {
	location *time.Location
	now      time.Time
}

// NewTimeProvider resolves the system time zone from tz (the TZ environment
// variable, or /etc/localtime when empty) and freezes now. A non-empty
// frozenNow must be an RFC 3339 timestamp.
func NewTimeProvider(tz, frozenNow string) (*TimeProvider, error) {
	loc, err := SystemLocation(tz)
	if err != nil {
		LogWarnf("%v, falling back to UTC", err)
		loc = time.UTC
	}

	now := time.Now()
	if frozenNow != "" {
		parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(frozenNow))
		if err != nil {
			return nil, errors.Wrapf(err, "BIFF_NOW: invalid RFC 3339 timestamp `%s`", frozenNow)
		}
		now = parsed
	}

	return &TimeProvider{location: loc, now: now.In(loc)}, nil
}

// Location returns the system time zone.
func (tp *TimeProvider) Location() *time.Location {
	return tp.location
}

// Now returns the frozen current time in the system time zone.
func (tp *TimeProvider) Now() time.Time {
	return tp.now
}

// SystemLocation loads the zone named by a TZ value. Values may carry a
// leading colon and may be absolute paths into a zoneinfo tree.
func SystemLocation(tz string) (*time.Location, error) {
	tz = strings.TrimPrefix(strings.TrimSpace(tz), ":")
	if tz == "" {
		return localtimeLocation()
	}

	if filepath.IsAbs(tz) {
		data, err := os.ReadFile(tz)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid timezone '%s'", tz)
		}
		loc, err := time.LoadLocationFromTZData(zoneNameFromPath(tz), data)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid timezone '%s'", tz)
		}
		return loc, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid timezone '%s'", tz)
	}
	return loc, nil
}

func localtimeLocation() (*time.Location, error) {
	target, err := filepath.EvalSymlinks("/etc/localtime")
	if err != nil {
		return time.UTC, nil
	}
	name := zoneNameFromPath(target)
	if loc, err := time.LoadLocation(name); err == nil {
		return loc, nil
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, errors.Wrap(err, "invalid timezone '/etc/localtime'")
	}
	return time.LoadLocationFromTZData(name, data)
}

func zoneNameFromPath(path string) string {
	if i := strings.LastIndex(path, "zoneinfo/"); i >= 0 {
		return path[i+len("zoneinfo/"):]
	}
	return filepath.Base(path)
}
