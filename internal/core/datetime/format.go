package datetime

import (
	"strconv"
	"strings"

	"github.com/ncruces/go-strftime"
	"github.com/pkg/errors"
)

// String renders the datetime in RFC 9557 form, for example
// 2024-07-20T16:30:55-04:00[America/New_York].
func (d DateTime) String() string {
	return FormatRFC9557(d)
}

func offsetSuffix(d DateTime) string {
	if d.zone.IsUnknown() {
		return "Z"
	}
	return FormatOffset(d.Offset(), true)
}

// FormatRFC9557 renders an RFC 3339 timestamp followed by a zone annotation.
func FormatRFC9557(d DateTime) string {
	return FormatRFC3339(d) + "[" + d.zone.Name() + "]"
}

// FormatRFC3339 renders the local time and offset with minimal fractional
// seconds. Unknown offsets are written as Z.
func FormatRFC3339(d DateTime) string {
	return d.t.Format("2006-01-02T15:04:05.999999999") + offsetSuffix(d)
}

// FormatRFC2822 renders the RFC 2822 form. Unknown offsets are written as
// -0000.
func FormatRFC2822(d DateTime) string {
	off := FormatOffset(d.Offset(), false)
	if d.zone.IsUnknown() {
		off = "-0000"
	}
	return d.t.Format("Mon, 2 Jan 2006 15:04:05 ") + off
}

// FormatRFC9110 renders the HTTP date form, always in UTC.
func FormatRFC9110(d DateTime) string {
	return d.t.UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT")
}

// Formatter renders a datetime.
type Formatter func(DateTime) string

// ParseFormatter maps a format name to a formatter. Anything other than
// rfc9557, rfc3339, rfc2822 and rfc9110 is taken as a strftime pattern.
func ParseFormatter(name string) Formatter {
	switch strings.ToLower(name) {
	case "", "rfc9557":
		return FormatRFC9557
	case "rfc3339":
		return FormatRFC3339
	case "rfc2822":
		return FormatRFC2822
	case "rfc9110":
		return FormatRFC9110
	default:
		return func(d DateTime) string { return Strftime(name, d) }
	}
}

// Strftime renders d with a strftime pattern. On top of the directives
// understood by go-strftime it supports %Q and %:Q (zone name), %:z, %::z and
// %:::z (offsets with colons), %s (Unix seconds), %q (quarter), %f and %.f
// (trimmed fractional seconds) and %N (nanoseconds).
func Strftime(format string, d DateTime) string {
	return strftime.Format(expandExtensions(format, d), d.t)
}

func expandExtensions(format string, d DateTime) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			b.WriteByte(c)
			continue
		}

		rest := format[i+1:]
		directive, value, ok := extension(rest, d)
		if !ok {
			b.WriteByte('%')
			b.WriteByte(rest[0])
			i++
			continue
		}
		b.WriteString(strings.ReplaceAll(value, "%", "%%"))
		i += len(directive)
	}
	return b.String()
}

// extension matches an extended directive at the start of rest (the text
// after a percent sign).
func extension(rest string, d DateTime) (string, string, bool) {
	nanos := d.t.Nanosecond()
	frac := strings.TrimRight(strconv.FormatInt(int64(nanos)+1_000_000_000, 10)[1:], "0")

	candidates := []struct {
		directive string
		value     func() string
	}{
		{":::z", func() string { return FormatOffset(d.Offset(), true)[:3] }},
		{"::z", func() string { return offsetWithSeconds(d.Offset()) }},
		{":z", func() string { return FormatOffset(d.Offset(), true) }},
		{":Q", func() string { return zoneOrOffset(d, true) }},
		{".f", func() string {
			if frac == "" {
				return ""
			}
			return "." + frac
		}},
		{"Q", func() string { return zoneOrOffset(d, false) }},
		{"z", func() string { return FormatOffset(d.Offset(), false) }},
		{"Z", func() string { return d.Abbreviation() }},
		{"s", func() string { return strconv.FormatInt(d.t.Unix(), 10) }},
		{"q", func() string { return strconv.Itoa((int(d.t.Month())-1)/3 + 1) }},
		{"f", func() string {
			if frac == "" {
				return "0"
			}
			return frac
		}},
		{"N", func() string { return strconv.FormatInt(int64(nanos)+1_000_000_000, 10)[1:] }},
	}
	for _, c := range candidates {
		if strings.HasPrefix(rest, c.directive) {
			return c.directive, c.value(), true
		}
	}
	return "", "", false
}

func offsetWithSeconds(off int) string {
	s := FormatOffset(off, true)
	if len(s) == 6 {
		s += ":00"
	}
	return s
}

func zoneOrOffset(d DateTime, colon bool) string {
	if d.zone.Kind() == KindFixed {
		return FormatOffset(d.Offset(), colon)
	}
	return d.zone.Name()
}

// ParseStrftime parses value with a strftime pattern. Without %z in the
// pattern the civil fields resolve in the zone of now.
func ParseStrftime(format, value string, now DateTime) (DateTime, error) {
	t, err := strftime.Parse(format, value)
	if err != nil {
		return DateTime{}, errors.Wrapf(err, "failed to parse `%s` with format `%s`", value, format)
	}
	if strings.Contains(format, "%z") {
		_, off := t.Zone()
		return validated(In(t, Fixed(off)))
	}
	return validated(FromWall(t, now.Zone()))
}
