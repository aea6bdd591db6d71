// Package tagger finds datetimes, time zones or arbitrary patterns in raw
// lines and attaches them as tags.
package tagger

import (
	"regexp"
	"strings"

	"github.com/penwyp/biff/internal/core/datetime"
	"github.com/pkg/errors"
)

// Match is one tagged value and the byte range it was found at.
type Match struct {
	Value string
	Start int
	End   int
}

// Matcher finds values in a line. With all unset only the leftmost match is
// returned; otherwise every non-overlapping match, left to right.
type Matcher interface {
	Name() string
	Find(line []byte, all bool) []Match
}

type regexMatcher struct {
	name     string
	re       *regexp.Regexp
	group    int
	validate func(string) bool
	boundary bool
}

func (m *regexMatcher) Name() string {
	return m.name
}

// Find searches the whole line once so that anchors and word boundaries see
// the real context of every candidate.
func (m *regexMatcher) Find(line []byte, all bool) []Match {
	var matches []Match
	for _, loc := range m.re.FindAllSubmatchIndex(line, -1) {
		start, end := loc[0], loc[1]
		valStart, valEnd := start, end
		if m.group > 0 {
			valStart, valEnd = loc[2*m.group], loc[2*m.group+1]
		}
		if valStart < 0 || end == start || !m.accept(line, valStart, valEnd) {
			continue
		}
		matches = append(matches, Match{Value: string(line[valStart:valEnd]), Start: valStart, End: valEnd})
		if !all {
			break
		}
	}
	return matches
}

func (m *regexMatcher) accept(line []byte, start, end int) bool {
	if m.boundary && (start > 0 && isWordByte(line[start-1]) || end < len(line) && isWordByte(line[end])) {
		return false
	}
	return m.validate == nil || m.validate(string(line[start:end]))
}

func isWordByte(b byte) bool {
	return b == '_' || b == '/' ||
		'0' <= b && b <= '9' || 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

// NewPattern compiles an explicit pattern. A capture group named tag selects
// the tagged value, otherwise the whole match is tagged.
func NewPattern(pattern string) (Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile regex `%s`", pattern)
	}
	group := re.SubexpIndex("tag")
	if group < 0 {
		group = 0
	}
	return &regexMatcher{name: "regex:" + pattern, re: re, group: group}, nil
}

const (
	weekdays   = `(?:Mon|Tue|Wed|Thu|Fri|Sat|Sun)`
	monthNames = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`
	civil      = `\d{4}-\d{2}-\d{2}[Tt ]\d{2}(?::?\d{2}(?::?\d{2}(?:[.,]\d{1,9})?)?)?`
	offset     = `(?:[Zz]|[+-]\d{2}(?::?\d{2}(?::?\d{2})?)?)`
)

var datetimePatterns = []struct {
	name    string
	pattern string
}{
	{"rfc9557", civil + offset + `?(?:\[[^\]\s]+\])+`},
	{"rfc3339", civil + offset},
	{"rfc9110", weekdays + `, \d{2} ` + monthNames + ` \d{4} \d{2}:\d{2}:\d{2} GMT`},
	{"rfc2822", `(?i)(?:` + weekdays + `,\s*)?\d{1,2}\s+` + monthNames + `\s+\d{4}\s+\d{2}:\d{2}(?::\d{2})?\s+` +
		`(?:[+-]\d{4}|UT|GMT|Z|[ECMP][SD]T)`},
}

func validDatetime(s string) bool {
	_, err := datetime.ParseStrict(s)
	return err == nil
}

// DatetimeMatchers returns the datetime detection chain in priority order.
// Candidates that do not parse as datetimes are skipped.
func DatetimeMatchers() []Matcher {
	out := make([]Matcher, 0, len(datetimePatterns))
	for _, p := range datetimePatterns {
		out = append(out, &regexMatcher{
			name:     p.name,
			re:       regexp.MustCompile(p.pattern),
			validate: validDatetime,
			boundary: true,
		})
	}
	return out
}

// TimezoneMatcher matches any of the given zone identifiers, preferring the
// longest at each position. names must already be ordered longest first.
func TimezoneMatcher(names []string) (Matcher, error) {
	if len(names) == 0 {
		return nil, errors.New("no time zone identifiers available for detection")
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	re, err := regexp.Compile(`(?:` + strings.Join(quoted, "|") + `)`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build time zone matcher")
	}
	return &regexMatcher{name: "timezone", re: re, boundary: true}, nil
}
