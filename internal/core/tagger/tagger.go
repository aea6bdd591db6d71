package tagger

import (
	"strings"

	"github.com/penwyp/biff/internal/core/tag"
	"github.com/penwyp/biff/internal/core/timezone"
	"github.com/penwyp/biff/internal/util"
	"github.com/pkg/errors"
)

// Kind selects the automatic detector.
type Kind int

const (
	KindDatetime Kind = iota
	KindTimezone
	KindNone
)

// ParseKind parses datetime, timezone or none.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "datetime":
		return KindDatetime, nil
	case "timezone":
		return KindTimezone, nil
	case "none":
		return KindNone, nil
	}
	return 0, errors.Errorf("unrecognized auto-detection kind `%s`, allowed kinds are datetime, timezone and none", s)
}

// Config describes a tagger. Auto is only honored when AutoSet is true;
// otherwise detection defaults to datetimes without patterns and to nothing
// with them.
type Config struct {
	Patterns []string
	Auto     Kind
	AutoSet  bool
	All      bool
}

// Tagger runs an ordered chain of matchers over lines. The first matcher
// that finds anything on a line decides its tags.
type Tagger struct {
	matchers []Matcher
	all      bool
}

// New builds a tagger from explicit matchers.
func New(all bool, matchers ...Matcher) *Tagger {
	return &Tagger{matchers: matchers, all: all}
}

// Build assembles the matcher chain: automatic matchers first, then explicit
// patterns in the order given.
func Build(cfg Config) (*Tagger, error) {
	kind := cfg.Auto
	if !cfg.AutoSet {
		kind = KindDatetime
		if len(cfg.Patterns) > 0 {
			kind = KindNone
		}
	}

	var matchers []Matcher
	switch kind {
	case KindDatetime:
		matchers = append(matchers, DatetimeMatchers()...)
	case KindTimezone:
		names, err := timezone.Names()
		if err != nil {
			return nil, err
		}
		m, err := TimezoneMatcher(timezone.SortedLongestFirst(names))
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}

	for _, p := range cfg.Patterns {
		m, err := NewPattern(p)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return New(cfg.All, matchers...), nil
}

// Tag returns data with the tags found by the first matching matcher.
// Matching ignores the line terminator; ranges index the raw bytes.
func (t *Tagger) Tag(data []byte) tag.Line {
	line := tag.Untagged(data)
	content := tag.TrimTerminator(data)
	for _, m := range t.matchers {
		found := m.Find(content, t.all)
		if len(found) == 0 {
			continue
		}
		for _, f := range found {
			line.Tags = append(line.Tags, tag.New(f.Value, f.Start, f.End))
		}
		if util.LogEnabled(util.LevelTrace) {
			util.LogTracef("matcher %s found %d tag(s)", m.Name(), len(found))
		}
		break
	}
	return line
}

// Matchers returns the names of the chain in order.
func (t *Tagger) Matchers() []string {
	out := make([]string, len(t.matchers))
	for i, m := range t.matchers {
		out[i] = m.Name()
	}
	return out
}
