package span

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// designators lists every unit alias, longest first, so that "mo" is tried
// before "m" and "ms" before "m".
var designators = sortedDesignators(unitAliases)

func sortedDesignators(aliases map[string]Unit) []string {
	out := make([]string, 0, len(aliases))
	for name := range aliases {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

var (
	numberRe = regexp.MustCompile(`^(\d+)(?:[.,](\d{1,9}))?`)
	clockRe  = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})(?:[.,](\d{1,9}))?`)
	isoRe    = regexp.MustCompile(`^[Pp](?:(\d+)[Yy])?(?:(\d+)[Mm])?(?:(\d+)[Ww])?(?:(\d+)[Dd])?` +
		`(?:([Tt])(?:(\d+)(?:[.,](\d{1,9}))?[Hh])?(?:(\d+)(?:[.,](\d{1,9}))?[Mm])?(?:(\d+)(?:[.,](\d{1,9}))?[Ss])?)?$`)
)

// Parse reads a span in the friendly format ("1y 2mo", "5 hours ago",
// "-1h30m", "01:02:03") or in ISO 8601 ("P1Y2M", "-PT5H").
func Parse(input string) (Span, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Span{}, errors.New("an empty string is not a valid span")
	}

	body := s
	if body[0] == '+' || body[0] == '-' {
		body = strings.TrimLeft(body[1:], " ")
	}
	if body != "" && (body[0] == 'P' || body[0] == 'p') {
		sp, err := parseISO(body)
		if err != nil {
			return Span{}, errors.Wrapf(err, "failed to parse `%s` as ISO 8601 span", input)
		}
		if s[0] == '-' {
			sp = sp.Negate()
		}
		return sp, nil
	}

	sp, err := parseFriendly(s)
	if err != nil {
		return Span{}, errors.Wrapf(err, "failed to parse `%s` as friendly span", input)
	}
	return sp, nil
}

func parseFriendly(s string) (Span, error) {
	var (
		sp       Span
		pos      int
		signed   bool
		last     = Unit(numUnits)
		fraction bool
		sawUnit  bool
	)

	if s[0] == '+' || s[0] == '-' {
		signed = true
		sp.neg = s[0] == '-'
		pos = skipSpaces(s, 1)
	}

	for pos < len(s) {
		if rest := s[pos:]; isAgo(rest) {
			if signed {
				return Span{}, errors.New("cannot combine a leading sign with `ago`")
			}
			if !sawUnit {
				return Span{}, errors.New("expected at least one unit before `ago`")
			}
			sp.neg = true
			pos = len(s)
			break
		}
		if fraction {
			return Span{}, errors.Errorf("unexpected `%s` after a fractional unit, which must come last", s[pos:])
		}

		if m := clockRe.FindStringSubmatch(s[pos:]); m != nil {
			if last <= Hour {
				return Span{}, errors.New("a clock duration must follow calendar units only")
			}
			if err := setClock(&sp, m); err != nil {
				return Span{}, err
			}
			pos = skipSeparators(s, pos+len(m[0]))
			last = Nanosecond
			fraction = true
			sawUnit = true
			continue
		}

		m := numberRe.FindStringSubmatch(s[pos:])
		if m == nil {
			return Span{}, errors.Errorf("expected a number at `%s`", s[pos:])
		}
		pos = skipSpaces(s, pos+len(m[0]))

		unit, n, ok := matchDesignator(s[pos:])
		if !ok {
			return Span{}, errors.Errorf("expected a unit designator after `%s`", m[0])
		}
		pos += n
		if unit >= last {
			return Span{}, errors.Errorf("found %s after %s, units must be in descending order without repetition",
				unit.Plural(), last.Plural())
		}
		last = unit

		value, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || value > maxValues[unit] {
			return Span{}, errors.Errorf("number `%s` is too big for %s", m[1], unit.Plural())
		}
		sp.v[unit] = value
		if m[2] != "" {
			if unit.IsCalendar() {
				return Span{}, errors.Errorf("fractional %s are not supported, only hours or smaller may have a fraction", unit.Plural())
			}
			spreadFraction(&sp, unit, m[2])
			fraction = true
		}
		sawUnit = true
		pos = skipSeparators(s, pos)
	}

	if !sawUnit {
		return Span{}, errors.New("expected at least one unit")
	}
	if sp.IsZero() {
		sp.neg = false
	}
	return sp, sp.Validate()
}

func setClock(sp *Span, m []string) error {
	h, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || h > maxValues[Hour] {
		return errors.Errorf("hours `%s` out of range", m[1])
	}
	mins, _ := strconv.ParseInt(m[2], 10, 64)
	secs, _ := strconv.ParseInt(m[3], 10, 64)
	if mins > 59 || secs > 59 {
		return errors.Errorf("invalid clock duration `%s`", m[0])
	}
	sp.v[Hour], sp.v[Minute], sp.v[Second] = h, mins, secs
	if m[4] != "" {
		spreadFraction(sp, Second, m[4])
	}
	return nil
}

// spreadFraction distributes the decimal fraction of one unit of u into the
// smaller units.
func spreadFraction(sp *Span, u Unit, digits string) {
	num, _ := strconv.ParseInt(digits, 10, 64)
	k := len(digits)
	var nanos int64
	if u >= Second {
		nanos = num * (unitNanos[u] / 1e9) * pow10(9-k)
	} else {
		nanos = num * unitNanos[u] / pow10(k)
	}
	for l := u - 1; l >= Nanosecond; l-- {
		sp.v[l] += nanos / unitNanos[l]
		nanos %= unitNanos[l]
	}
}

func pow10(n int) int64 {
	p := int64(1)
	for ; n > 0; n-- {
		p *= 10
	}
	return p
}

func matchDesignator(s string) (Unit, int, bool) {
	lower := strings.ToLower(s)
	for _, d := range designators {
		if !strings.HasPrefix(lower, d) {
			continue
		}
		if next, _ := utf8.DecodeRuneInString(lower[len(d):]); len(lower) > len(d) && unicode.IsLetter(next) {
			continue
		}
		return unitAliases[d], len(d), true
	}
	return 0, 0, false
}

func isAgo(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "ago")
}

func skipSpaces(s string, pos int) int {
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t') {
		pos++
	}
	return pos
}

func skipSeparators(s string, pos int) int {
	pos = skipSpaces(s, pos)
	if pos < len(s) && s[pos] == ',' {
		pos = skipSpaces(s, pos+1)
	}
	return pos
}

func parseISO(s string) (Span, error) {
	m := isoRe.FindStringSubmatch(s)
	if m == nil {
		return Span{}, errors.New("invalid ISO 8601 duration")
	}

	var sp Span
	calendar := []struct {
		unit  Unit
		group int
	}{{Year, 1}, {Month, 2}, {Week, 3}, {Day, 4}}
	dateAny := false
	for _, c := range calendar {
		if m[c.group] == "" {
			continue
		}
		n, err := strconv.ParseInt(m[c.group], 10, 64)
		if err != nil || n > maxValues[c.unit] {
			return Span{}, errors.Errorf("number `%s` is too big for %s", m[c.group], c.unit.Plural())
		}
		sp.v[c.unit] = n
		dateAny = true
	}

	clock := []struct {
		unit        Unit
		whole, frac int
	}{{Hour, 6, 7}, {Minute, 8, 9}, {Second, 10, 11}}
	fraction := false
	timeAny := false
	for _, c := range clock {
		if m[c.whole] == "" {
			continue
		}
		if fraction {
			return Span{}, errors.New("only the smallest unit may have a fraction")
		}
		n, err := strconv.ParseInt(m[c.whole], 10, 64)
		if err != nil || n > maxValues[c.unit] {
			return Span{}, errors.Errorf("number `%s` is too big for %s", m[c.whole], c.unit.Plural())
		}
		sp.v[c.unit] = n
		if m[c.frac] != "" {
			spreadFraction(&sp, c.unit, m[c.frac])
			fraction = true
		}
		timeAny = true
	}
	if m[5] != "" && !timeAny {
		return Span{}, errors.New("a time designator must be followed by at least one time unit")
	}
	if !dateAny && !timeAny {
		return Span{}, errors.New("expected at least one unit")
	}
	return sp, sp.Validate()
}
