package timezone

import (
	"time"

	"github.com/penwyp/biff/internal/core/datetime"
	"github.com/penwyp/biff/internal/util"
)

// Sequencer walks the offset transitions of a zone away from a reference
// instant, one transition per call to Next.
type Sequencer struct {
	zone      datetime.Zone
	cur       time.Time
	past      bool
	inclusive bool
	done      bool
}

// NewSequencer starts at from. Forward sequences yield transitions after
// from, past sequences yield transitions before it in descending order. With
// inclusive set a transition at exactly from is yielded first.
func NewSequencer(z datetime.Zone, from time.Time, past, inclusive bool) *Sequencer {
	return &Sequencer{
		zone:      z,
		cur:       from,
		past:      past,
		inclusive: inclusive,
		done:      !z.HasTransitions(),
	}
}

// Next returns the following transition, displayed in the sequenced zone.
// The second result is false once the zone has no more transitions.
func (s *Sequencer) Next() (datetime.DateTime, bool) {
	if s.done {
		return datetime.DateTime{}, false
	}

	loc := s.zone.Location()
	var next time.Time
	if s.past {
		probe := s.cur
		if s.inclusive {
			probe = probe.Add(time.Nanosecond)
		}
		start, _ := probe.In(loc).ZoneBounds()
		if !s.inclusive && start.Equal(s.cur) {
			start, _ = s.cur.Add(-time.Nanosecond).In(loc).ZoneBounds()
		}
		next = start
	} else {
		probe := s.cur
		if s.inclusive {
			probe = probe.Add(-time.Nanosecond)
		}
		_, end := probe.In(loc).ZoneBounds()
		next = end
	}
	s.inclusive = false

	if next.IsZero() {
		s.done = true
		return datetime.DateTime{}, false
	}
	dt := datetime.In(next, s.zone)
	if y := dt.Time().Year(); y < -9999 || y > 9999 {
		s.done = true
		return datetime.DateTime{}, false
	}
	s.cur = next
	util.LogTracef("transition in %s at %s", s.zone, dt)
	return dt, true
}

// Take collects up to n transitions.
func (s *Sequencer) Take(n int) []datetime.DateTime {
	var out []datetime.DateTime
	for i := 0; i < n; i++ {
		dt, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, dt)
	}
	return out
}

// Nth returns the nth transition (1-based), if the zone has that many.
func (s *Sequencer) Nth(n int) (datetime.DateTime, bool) {
	var (
		dt datetime.DateTime
		ok bool
	)
	for i := 0; i < n; i++ {
		if dt, ok = s.Next(); !ok {
			return datetime.DateTime{}, false
		}
	}
	return dt, ok
}
