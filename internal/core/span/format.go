package span

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Designator selects the unit labels used by the friendly printer.
type Designator int

const (
	DesignatorCompact Designator = iota
	DesignatorShort
	DesignatorVerbose
)

// Spacing selects where the friendly printer puts spaces.
type Spacing int

const (
	SpacingNone Spacing = iota
	SpacingUnits
	SpacingUnitsAndDesignators
)

// SignStyle selects how the sign of a span is written.
type SignStyle int

const (
	SignAuto SignStyle = iota
	SignPrefix
	SignForcePrefix
	SignSuffix
	SignNone
)

var (
	designatorNames = map[string]Designator{"compact": DesignatorCompact, "short": DesignatorShort, "verbose": DesignatorVerbose}
	spacingNames    = map[string]Spacing{"none": SpacingNone, "units": SpacingUnits, "units-and-designators": SpacingUnitsAndDesignators}
	signNames       = map[string]SignStyle{
		"auto": SignAuto, "prefix": SignPrefix, "force-prefix": SignForcePrefix, "suffix": SignSuffix, "none": SignNone,
	}
)

func ParseDesignator(s string) (Designator, error) {
	if d, ok := designatorNames[strings.ToLower(s)]; ok {
		return d, nil
	}
	return 0, errors.Errorf("unrecognized designator: `%s`", s)
}

func ParseSpacing(s string) (Spacing, error) {
	if sp, ok := spacingNames[strings.ToLower(s)]; ok {
		return sp, nil
	}
	return 0, errors.Errorf("unrecognized spacing: `%s`", s)
}

func ParseSignStyle(s string) (SignStyle, error) {
	if st, ok := signNames[strings.ToLower(s)]; ok {
		return st, nil
	}
	return 0, errors.Errorf("unrecognized sign style: `%s`", s)
}

// ParsePrecision parses "auto" (returned as -1) or a digit count, clamped to 9.
func ParsePrecision(s string) (int, error) {
	if strings.EqualFold(s, "auto") {
		return -1, nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, errors.Errorf("failed to parse precision amount from `%s`", s)
	}
	if n > 9 {
		n = 9
	}
	return int(n), nil
}

var labels = [3][numUnits][2]string{
	DesignatorCompact: {
		{"ns", "ns"}, {"µs", "µs"}, {"ms", "ms"}, {"s", "s"}, {"m", "m"},
		{"h", "h"}, {"d", "d"}, {"w", "w"}, {"mo", "mo"}, {"y", "y"},
	},
	DesignatorShort: {
		{"nsec", "nsecs"}, {"µsec", "µsecs"}, {"msec", "msecs"}, {"sec", "secs"}, {"min", "mins"},
		{"hr", "hrs"}, {"day", "days"}, {"wk", "wks"}, {"mo", "mos"}, {"yr", "yrs"},
	},
	DesignatorVerbose: {
		{"nanosecond", "nanoseconds"}, {"microsecond", "microseconds"}, {"millisecond", "milliseconds"},
		{"second", "seconds"}, {"minute", "minutes"}, {"hour", "hours"}, {"day", "days"},
		{"week", "weeks"}, {"month", "months"}, {"year", "years"},
	},
}

// Printer renders spans in the friendly format.
type Printer struct {
	Designator Designator
	Spacing    Spacing
	Sign       SignStyle
	// Fractional, when HasFractional is set, folds all smaller units into a
	// decimal fraction of this unit. Only hours and smaller are allowed.
	Fractional    Unit
	HasFractional bool
	// Precision is the number of fraction digits, or -1 for as many as
	// needed up to nine.
	Precision int
	HMS       bool
	// Pad zero-pads integers to this width; -1 selects 2 for HMS clocks and
	// 0 otherwise.
	Pad      int
	ZeroUnit Unit
	Comma    bool
}

// NewPrinter returns the default printer: compact designators separated by
// spaces and " ago" for negative spans.
func NewPrinter() Printer {
	return Printer{
		Designator: DesignatorCompact,
		Spacing:    SpacingUnits,
		Sign:       SignAuto,
		Precision:  -1,
		Pad:        -1,
		ZeroUnit:   Second,
	}
}

// Validate rejects calendar fractional units.
func (p Printer) Validate() error {
	if p.HasFractional && p.Fractional.IsCalendar() {
		return errors.Errorf("fractional unit must be hours or smaller, but got %s", p.Fractional.Plural())
	}
	return nil
}

type part struct {
	whole int64
	frac  string
	unit  Unit
}

// Format renders s.
func (p Printer) Format(s Span) string {
	if p.HMS {
		return p.formatHMS(s)
	}

	var parts []part
	for _, u := range Units {
		if p.HasFractional && u < p.Fractional {
			break
		}
		if p.HasFractional && u == p.Fractional {
			whole, frac, exact := p.fraction(s, u)
			if whole != 0 || !exact || (len(parts) == 0 && !s.IsZero()) {
				parts = append(parts, part{whole: whole, frac: frac, unit: u})
			}
			continue
		}
		if s.v[u] != 0 {
			parts = append(parts, part{whole: s.v[u], unit: u})
		}
	}
	if len(parts) == 0 {
		zero := p.ZeroUnit
		if p.HasFractional {
			zero = p.Fractional
		}
		parts = append(parts, part{unit: zero})
	}

	rendered := make([]string, len(parts))
	for i, pt := range parts {
		rendered[i] = p.renderPart(pt)
	}
	body := strings.Join(rendered, p.unitSeparator())
	return p.applySign(body, s.Sign(), p.Spacing == SpacingNone)
}

func (p Printer) formatHMS(s Span) string {
	var parts []string
	for _, u := range []Unit{Year, Month, Week, Day} {
		if s.v[u] != 0 {
			parts = append(parts, p.renderPart(part{whole: s.v[u], unit: u}))
		}
	}
	calendar := len(parts) > 0

	pad := p.Pad
	if pad < 0 {
		pad = 2
	}
	t := s.TimeDur().Abs()
	clock := padInt(t.Sec/3600, pad) + ":" + padInt(t.Sec/60%60, pad) + ":" + padInt(t.Sec%60, pad)
	if frac := fractionDigits(t.Nsec, 1_000_000_000, p.Precision); frac != "" {
		clock += "." + frac
	}
	parts = append(parts, clock)

	return p.applySign(strings.Join(parts, p.unitSeparator()), s.Sign(), !calendar || p.Spacing == SpacingNone)
}

// fraction folds the units below u into a decimal fraction of u.
func (p Printer) fraction(s Span, u Unit) (int64, string, bool) {
	var sub Dur
	for l := u - 1; l >= Nanosecond; l-- {
		sub = sub.Add(l.NominalDur().Scale(s.v[l]))
	}
	unitLen := u.NominalDur()
	whole, rem := sub.divmod(unitLen)
	remNanos, _ := rem.Nanos()
	return s.v[u] + whole, fractionDigits(remNanos, u.Nanos(), p.Precision), remNanos == 0
}

// fractionDigits renders rem/unit as decimal digits. Auto precision trims
// trailing zeros and yields "" for a zero remainder.
func fractionDigits(rem, unit int64, precision int) string {
	n := precision
	if n < 0 {
		n = 9
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		rem *= 10
		b.WriteByte(byte('0' + rem/unit))
		rem %= unit
	}
	digits := b.String()
	if precision < 0 {
		digits = strings.TrimRight(digits, "0")
	}
	return digits
}

func (p Printer) renderPart(pt part) string {
	pad := p.Pad
	if pad < 0 {
		pad = 0
	}
	num := padInt(pt.whole, pad)
	plural := pt.whole != 1
	if pt.frac != "" {
		num += "." + pt.frac
		plural = true
	}
	label := labels[p.Designator][pt.unit][0]
	if plural {
		label = labels[p.Designator][pt.unit][1]
	}
	if p.Spacing == SpacingUnitsAndDesignators {
		return num + " " + label
	}
	return num + label
}

func (p Printer) unitSeparator() string {
	switch {
	case p.Comma && p.Spacing == SpacingNone:
		return ","
	case p.Comma:
		return ", "
	case p.Spacing == SpacingNone:
		return ""
	default:
		return " "
	}
}

func (p Printer) applySign(body string, sign int, preferPrefix bool) string {
	switch p.Sign {
	case SignNone:
		return body
	case SignForcePrefix:
		if sign < 0 {
			return "-" + body
		}
		return "+" + body
	case SignPrefix:
		if sign < 0 {
			return "-" + body
		}
		return body
	case SignSuffix:
		if sign < 0 {
			return body + " ago"
		}
		return body
	default:
		if sign >= 0 {
			return body
		}
		if preferPrefix {
			return "-" + body
		}
		return body + " ago"
	}
}

func padInt(n int64, width int) string {
	s := strconv.FormatInt(n, 10)
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return s
}

// FormatISO8601 renders s as an ISO 8601 duration. Subsecond units are folded
// into fractional seconds. With lowercase, unit designators other than P and
// T are written in lowercase.
func FormatISO8601(s Span, lowercase bool) string {
	d := func(c string) string {
		if lowercase {
			return strings.ToLower(c)
		}
		return c
	}

	var b strings.Builder
	if s.Sign() < 0 {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	for _, c := range []struct {
		unit Unit
		des  string
	}{{Year, "Y"}, {Month, "M"}, {Week, "W"}, {Day, "D"}} {
		if s.v[c.unit] != 0 {
			b.WriteString(strconv.FormatInt(s.v[c.unit], 10) + d(c.des))
		}
	}

	sub := Millisecond.NominalDur().Scale(s.v[Millisecond]).
		Add(Microsecond.NominalDur().Scale(s.v[Microsecond])).
		Add(Nanosecond.NominalDur().Scale(s.v[Nanosecond]))
	secs := s.v[Second] + sub.Sec
	frac := fractionDigits(sub.Nsec, 1_000_000_000, -1)

	hasTime := s.v[Hour] != 0 || s.v[Minute] != 0 || secs != 0 || frac != ""
	if hasTime || s.IsZero() {
		b.WriteByte('T')
		if s.v[Hour] != 0 {
			b.WriteString(strconv.FormatInt(s.v[Hour], 10) + d("H"))
		}
		if s.v[Minute] != 0 {
			b.WriteString(strconv.FormatInt(s.v[Minute], 10) + d("M"))
		}
		if secs != 0 || frac != "" || s.IsZero() {
			b.WriteString(strconv.FormatInt(secs, 10))
			if frac != "" {
				b.WriteString("." + frac)
			}
			b.WriteString(d("S"))
		}
	}
	return b.String()
}
