package span

import (
	"math"
	"time"
)

// Dur is an exact signed duration stored as whole seconds plus a nanosecond
// part in [0, 1e9). It covers the full range of biff datetimes, which
// time.Duration does not.
type Dur struct {
	Sec  int64
	Nsec int64
}

func (d Dur) norm() Dur {
	d.Sec += d.Nsec / 1e9
	d.Nsec %= 1e9
	if d.Nsec < 0 {
		d.Nsec += 1e9
		d.Sec--
	}
	return d
}

// Between returns b - a.
func Between(a, b time.Time) Dur {
	return Dur{
		Sec:  b.Unix() - a.Unix(),
		Nsec: int64(b.Nanosecond() - a.Nanosecond()),
	}.norm()
}

// FromNanos converts a nanosecond count.
func FromNanos(n int64) Dur {
	return Dur{Nsec: n}.norm()
}

// AddTo returns t shifted by d, keeping t's location.
func (d Dur) AddTo(t time.Time) time.Time {
	return time.Unix(t.Unix()+d.Sec, int64(t.Nanosecond())+d.Nsec).In(t.Location())
}

func (d Dur) Add(o Dur) Dur {
	return Dur{Sec: d.Sec + o.Sec, Nsec: d.Nsec + o.Nsec}.norm()
}

func (d Dur) Sub(o Dur) Dur {
	return d.Add(o.Neg())
}

func (d Dur) Neg() Dur {
	return Dur{Sec: -d.Sec, Nsec: -d.Nsec}.norm()
}

func (d Dur) Sign() int {
	switch {
	case d.Sec < 0:
		return -1
	case d.Sec > 0 || d.Nsec > 0:
		return 1
	default:
		return 0
	}
}

func (d Dur) IsZero() bool {
	return d.Sec == 0 && d.Nsec == 0
}

func (d Dur) Abs() Dur {
	if d.Sign() < 0 {
		return d.Neg()
	}
	return d
}

// Cmp compares d and o, returning -1, 0 or 1.
func (d Dur) Cmp(o Dur) int {
	return d.Sub(o).Sign()
}

// Nanos returns the duration in nanoseconds and false on overflow.
func (d Dur) Nanos() (int64, bool) {
	if d.Sec > math.MaxInt64/1_000_000_000-1 || d.Sec < math.MinInt64/1_000_000_000+1 {
		return 0, false
	}
	return d.Sec*1e9 + d.Nsec, true
}

// Scale multiplies a unit length by n. The unit must be whole seconds or a
// divisor of one second.
func (d Dur) Scale(n int64) Dur {
	if d.Nsec == 0 {
		return Dur{Sec: d.Sec * n}
	}
	per := int64(1e9) / d.Nsec
	return Dur{Sec: d.Sec*n + n/per, Nsec: (n % per) * d.Nsec}.norm()
}

// divmod divides a non-negative d by a positive increment that is either whole
// seconds or a divisor of one second.
func (d Dur) divmod(incr Dur) (int64, Dur) {
	if incr.Nsec == 0 {
		return d.Sec / incr.Sec, Dur{Sec: d.Sec % incr.Sec, Nsec: d.Nsec}
	}
	per := int64(1e9) / incr.Nsec
	return d.Sec*per + d.Nsec/incr.Nsec, Dur{Nsec: d.Nsec % incr.Nsec}
}

// Round rounds d to a multiple of incr using mode. Rounding is applied to the
// magnitude with the sign taken into account by the mode.
func (d Dur) Round(incr Dur, mode RoundMode) Dur {
	neg := d.Sign() < 0
	q, r := d.Abs().divmod(incr)
	if mode.roundsUp(q, r, incr, neg) {
		q++
	}
	out := incr.Scale(q)
	if neg {
		return out.Neg()
	}
	return out
}
