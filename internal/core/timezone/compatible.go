package timezone

import (
	"time"

	"github.com/penwyp/biff/internal/core/datetime"
)

// Compatible returns the zones among names that show the same offset as dt
// at its instant. When dt carries an IANA zone the abbreviation must match
// too. Instants with an unknown offset only match Etc/Unknown.
func Compatible(dt datetime.DateTime, names []string) []string {
	if dt.Zone().IsUnknown() {
		return []string{datetime.UnknownName}
	}

	var (
		out        []string
		wantOff    = dt.Offset()
		wantAbbrev = dt.Abbreviation()
		named      = dt.Zone().Kind() == datetime.KindIANA
	)
	for _, name := range names {
		loc, err := time.LoadLocation(name)
		if err != nil {
			continue
		}
		abbrev, off := dt.Time().In(loc).Zone()
		if off != wantOff || (named && abbrev != wantAbbrev) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Entry describes a zone at an instant.
type Entry struct {
	Name   string
	Offset string
	Abbrev string
}

// Describe reports the offset and abbreviation of each named zone at t.
// Names that fail to load are skipped.
func Describe(names []string, t time.Time) []Entry {
	out := make([]Entry, 0, len(names))
	for _, name := range names {
		z, err := datetime.LoadZone(name)
		if err != nil {
			continue
		}
		dt := datetime.In(t, z)
		out = append(out, Entry{
			Name:   name,
			Offset: datetime.FormatOffset(dt.Offset(), true),
			Abbrev: dt.Abbreviation(),
		})
	}
	return out
}
