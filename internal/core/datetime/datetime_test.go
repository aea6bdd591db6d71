package datetime

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/penwyp/biff/internal/core/span"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nowString = "2024-07-20T16:30:55-04:00[America/New_York]"

func mustStrict(t *testing.T, s string) DateTime {
	t.Helper()
	dt, err := ParseStrict(s)
	require.NoError(t, err, s)
	return dt
}

func mustSpan(t *testing.T, s string) span.Span {
	t.Helper()
	sp, err := span.Parse(s)
	require.NoError(t, err, s)
	return sp
}

func testNow(t *testing.T) DateTime {
	return mustStrict(t, nowString)
}

func TestParseStrict(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{nowString, nowString},
		{"2024-07-20T16:30:55.5-04:00[America/New_York]", "2024-07-20T16:30:55.5-04:00[America/New_York]"},
		{"2024-07-20T20:30:55Z", "2024-07-20T20:30:55Z[Etc/Unknown]"},
		{"2024-07-20T20:30:55-00:00", "2024-07-20T20:30:55Z[Etc/Unknown]"},
		{"2024-07-20T16:30:55-04:00", "2024-07-20T16:30:55-04:00[-04:00]"},
		{"2024-07-20T20:30:55Z[America/New_York]", nowString},
		{"2024-07-20T16:30[America/New_York]", "2024-07-20T16:30:00-04:00[America/New_York]"},
		{"2025-03-15T00-04", "2025-03-15T00:00:00-04:00[-04:00]"},
		{"Sat, 20 Jul 2024 16:30:55 -0400", "2024-07-20T16:30:55-04:00[-04:00]"},
		{"Sat, 20 Jul 2024 20:30:55 GMT", "2024-07-20T20:30:55+00:00[UTC]"},
		{"20 Jul 2024 16:30:55 EDT", "2024-07-20T16:30:55-04:00[-04:00]"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, mustStrict(t, tt.input).String())
		})
	}
}

func TestParseStrictErrors(t *testing.T) {
	tests := []struct {
		input   string
		wantErr string
	}{
		{"2024-07-20T16:30:55", "RFC 3339 timestamp requires an offset, but 2024-07-20T16:30:55 is missing an offset"},
		{"garbage", "unrecognized datetime `garbage`"},
		{"2024-02-30T00:00Z", "day 30 is not valid"},
		{"2024-07-20T16:30:55-05:00[America/New_York]", "has offset -05:00"},
		{"Fri, 20 Jul 2024 16:30:55 -0400", "does not match"},
		{"2024-07-20T16:30:55Z[Mars/Olympus]", "failed to find time zone `Mars/Olympus`"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseStrict(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseFlexible(t *testing.T) {
	now := testNow(t)
	tests := []struct {
		input string
		want  string
	}{
		{"2025-03-15", "2025-03-15T00:00:00-04:00[America/New_York]"},
		{"2025-03-15 08:30", "2025-03-15T08:30:00-04:00[America/New_York]"},
		{"2024-07-20T16:30:55Z", "2024-07-20T16:30:55Z[Etc/Unknown]"},
		{"yesterday", "2024-07-19T00:00:00-04:00[America/New_York]"},
		{"1 day ago", "2024-07-19T16:30:55-04:00[America/New_York]"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			dt, err := ParseFlexible(tt.input, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, dt.String())
		})
	}

	_, err := ParseFlexible("garbage", now)
	require.Error(t, err)
	assert.Equal(t, "unrecognized datetime `garbage`", err.Error())
}

func TestFormat(t *testing.T) {
	d := mustStrict(t, "2024-07-20T16:30:55.123-04:00[America/New_York]")

	assert.Equal(t, "2024-07-20T16:30:55.123-04:00", FormatRFC3339(d))
	assert.Equal(t, "Sat, 20 Jul 2024 16:30:55 -0400", FormatRFC2822(d))
	assert.Equal(t, "Sat, 20 Jul 2024 20:30:55 GMT", FormatRFC9110(d))
	assert.Equal(t, "Sat, 20 Jul 2024 20:30:55 GMT", ParseFormatter("RFC9110")(d))

	unknown := mustStrict(t, "2024-07-20T20:30:55Z")
	assert.Equal(t, "Sat, 20 Jul 2024 20:30:55 -0000", FormatRFC2822(unknown))
}

func TestStrftime(t *testing.T) {
	d := mustStrict(t, "2024-07-20T16:30:55.123-04:00[America/New_York]")
	tests := []struct {
		format string
		want   string
	}{
		{"%Y-%m-%d %H:%M:%S", "2024-07-20 16:30:55"},
		{"%Z", "EDT"},
		{"%z", "-0400"},
		{"%:z", "-04:00"},
		{"%::z", "-04:00:00"},
		{"%:::z", "-04"},
		{"%Q", "America/New_York"},
		{"%q", "3"},
		{"%s", "1721507455"},
		{"%S%.f", "55.123"},
		{"%f", "123"},
		{"%N", "123000000"},
		{"100%%", "100%"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, Strftime(tt.format, d))
		})
	}
}

func TestParseStrftime(t *testing.T) {
	dt, err := ParseStrftime("%Y-%m-%d %H:%M", "2024-07-20 09:15", testNow(t))
	require.NoError(t, err)
	assert.Equal(t, "2024-07-20T09:15:00-04:00[America/New_York]", dt.String())

	_, err = ParseStrftime("%Y-%m-%d", "July 20", testNow(t))
	require.Error(t, err)
}

func TestLocale(t *testing.T) {
	now := testNow(t)
	assert.Equal(t, "2024 M07 20, Sat 16:30:55", FormatLocale(now, ""))
	assert.Equal(t, "2024 M07 20, Sat 16:30:55", FormatLocale(now, "not a locale!"))
	assert.Equal(t, "Sat, Jul 20, 2024, 04:30:55 PM", FormatLocale(now, "en-US"))
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name  string
		start string
		span  string
		want  string
	}{
		{"month clamps to end of month", "2024-01-31T00:00-05:00[America/New_York]", "1mo",
			"2024-02-29T00:00:00-05:00[America/New_York]"},
		{"day keeps clock time across DST", "2025-03-08T12:00-05:00[America/New_York]", "1d",
			"2025-03-09T12:00:00-04:00[America/New_York]"},
		{"hours are exact across DST", "2025-03-08T12:00-05:00[America/New_York]", "24h",
			"2025-03-09T13:00:00-04:00[America/New_York]"},
		{"hour over the spring gap", "2025-03-09T01:30-05[America/New_York]", "1h",
			"2025-03-09T03:30:00-04:00[America/New_York]"},
		{"hour into the fall fold", "2025-11-02T00:30-04[America/New_York]", "1h",
			"2025-11-02T01:30:00-04:00[America/New_York]"},
		{"day back into the fall fold takes the earlier instant", "2025-11-03T01:30-05:00[America/New_York]", "-1d",
			"2025-11-02T01:30:00-04:00[America/New_York]"},
		{"month into the fall fold takes the earlier instant", "2025-10-02T01:30-04:00[America/New_York]", "1mo",
			"2025-11-02T01:30:00-04:00[America/New_York]"},
		{"day into the spring gap takes the later instant", "2025-03-08T02:30-05:00[America/New_York]", "1d",
			"2025-03-09T03:30:00-04:00[America/New_York]"},
		{"day plus hours from a fold", "2025-11-03T01:30-05:00[America/New_York]", "-1d 1h",
			"2025-11-02T00:30:00-04:00[America/New_York]"},
		{"negative span", nowString, "-1w",
			"2024-07-13T16:30:55-04:00[America/New_York]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mustStrict(t, tt.start).Add(mustSpan(t, tt.span))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := mustStrict(t, "9999-12-31T00:00Z").Add(mustSpan(t, "2d"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestUntil(t *testing.T) {
	a := mustStrict(t, "2023-04-30T00:00-04:00[America/New_York]")
	b := mustStrict(t, "2023-05-31T00:00-04:00[America/New_York]")

	got, err := Until(a, b, span.Month)
	require.NoError(t, err)
	assert.Equal(t, span.Span{}.With(span.Month, 1).With(span.Day, 1), got)

	got, err = Until(a, b, span.Hour)
	require.NoError(t, err)
	assert.Equal(t, span.Span{}.With(span.Hour, 744), got)

	got, err = Until(b, a, span.Month)
	require.NoError(t, err)
	assert.Equal(t, span.Span{}.With(span.Month, 1).Negate(), got)

	got, err = Since(testNow(t), mustStrict(t, "2024-07-20T14:30:55-04:00[America/New_York]"), span.Hour)
	require.NoError(t, err)
	assert.Equal(t, span.Span{}.With(span.Hour, 2), got)
}

func TestBalance(t *testing.T) {
	now := testNow(t)
	tests := []struct {
		name    string
		span    string
		largest span.Unit
		rel     string
		want    string
	}{
		{"days into years", "366d", span.Year, nowString, "1y 1d"},
		{"leap year reference", "366d", span.Year, "2024-01-15T00:00-05:00[America/New_York]", "1y"},
		{"short DST day", "1d", span.Hour, "2025-03-09T00:00-05:00[America/New_York]", "23h"},
		{"nanoseconds into years", "999999999999999999ns", span.Year, nowString,
			"31y 8mo 8d 1h 46m 39s 999ms 999µs 999ns"},
	}

	printer := span.NewPrinter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel := now
			if tt.rel != nowString {
				rel = mustStrict(t, tt.rel)
			}
			got, err := Balance(mustSpan(t, tt.span), tt.largest, rel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, printer.Format(got))

			again, err := Balance(got, tt.largest, rel)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestRoundSpan(t *testing.T) {
	now := testNow(t)
	tests := []struct {
		name     string
		span     string
		smallest span.Unit
		want     string
	}{
		{"days round down", "1d 5h", span.Day, "1d"},
		{"days round up", "1d 13h", span.Day, "2d"},
		{"hours with days", "1d 5h 31m", span.Hour, "1d 6h"},
		{"hours only", "5h 31m", span.Hour, "6h"},
		{"months", "1mo 20d", span.Month, "2mo"},
	}

	printer := span.NewPrinter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := span.DefaultRoundOptions()
			opts.Smallest = tt.smallest
			got, err := RoundSpan(mustSpan(t, tt.span), opts, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, printer.Format(got))
		})
	}
}

func TestStartEndOf(t *testing.T) {
	now := testNow(t)
	tests := []struct {
		unit  string
		end   bool
		input string
		want  string
	}{
		{"year", false, nowString, "2024-01-01T00:00:00-05:00[America/New_York]"},
		{"month", false, nowString, "2024-07-01T00:00:00-04:00[America/New_York]"},
		{"week-sunday", false, nowString, "2024-07-14T00:00:00-04:00[America/New_York]"},
		{"wk-monday", false, nowString, "2024-07-15T00:00:00-04:00[America/New_York]"},
		{"hour", false, nowString, "2024-07-20T16:00:00-04:00[America/New_York]"},
		{"day", true, nowString, "2024-07-20T23:59:59.999999999-04:00[America/New_York]"},
		{"month", true, nowString, "2024-07-31T23:59:59.999999999-04:00[America/New_York]"},
		{"day", false, "2025-03-09T12:00-04:00[America/New_York]", "2025-03-09T00:00:00-05:00[America/New_York]"},
	}

	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			u, err := ParseOfUnit(tt.unit)
			require.NoError(t, err)
			d := now
			if tt.input != nowString {
				d = mustStrict(t, tt.input)
			}
			var got DateTime
			if tt.end {
				got, err = d.EndOf(u)
			} else {
				got, err = d.StartOf(u)
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := ParseOfUnit("fortnight")
	require.Error(t, err)
	assert.Equal(t, "unrecognized \"of\" unit: `fortnight`", err.Error())
}

func TestRound(t *testing.T) {
	now := testNow(t)
	tests := []struct {
		name string
		unit span.Unit
		inc  int64
		want string
	}{
		{"hour", span.Hour, 1, "2024-07-20T17:00:00-04:00[America/New_York]"},
		{"day", span.Day, 1, "2024-07-21T00:00:00-04:00[America/New_York]"},
		{"half hour", span.Minute, 30, "2024-07-20T16:30:00-04:00[America/New_York]"},
		{"second", span.Second, 1, nowString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := now.Round(tt.unit, tt.inc, span.HalfExpand)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	assert.Error(t, ValidateRound(span.Day, 2))
	assert.Error(t, ValidateRound(span.Minute, 16))
	assert.NoError(t, ValidateRound(span.Minute, 30))

	err := ValidateRound(span.Month, 1)
	require.Error(t, err)
	assert.Equal(t, "datetime rounding does not support months", err.Error())

	err = ValidateRound(span.Minute, 16)
	assert.Equal(t, "increment 16 for rounding datetime to minutes must be 1) less than 60, "+
		"2) divide into it evenly and 3) greater than zero", err.Error())
}

func TestRelative(t *testing.T) {
	now := testNow(t)
	tests := []struct {
		expr string
		want string
	}{
		{"now", nowString},
		{"today", "2024-07-20T00:00:00-04:00[America/New_York]"},
		{"Tomorrow", "2024-07-21T00:00:00-04:00[America/New_York]"},
		{"5pm", "2024-07-20T17:00:00-04:00[America/New_York]"},
		{"5:30pm", "2024-07-20T17:30:00-04:00[America/New_York]"},
		{"17:30:10", "2024-07-20T17:30:10-04:00[America/New_York]"},
		{"3 hours", "2024-07-20T19:30:55-04:00[America/New_York]"},
		{"-1w", "2024-07-13T16:30:55-04:00[America/New_York]"},
		{"saturday", nowString},
		{"this sat", nowString},
		{"next saturday", "2024-07-27T16:30:55-04:00[America/New_York]"},
		{"last saturday", "2024-07-13T16:30:55-04:00[America/New_York]"},
		{"friday", "2024-07-26T16:30:55-04:00[America/New_York]"},
		{"last friday", "2024-07-19T16:30:55-04:00[America/New_York]"},
		{"Next Friday", "2024-07-26T16:30:55-04:00[America/New_York]"},
		{"second monday", "2024-07-29T16:30:55-04:00[America/New_York]"},
		{"5pm tomorrow", "2024-07-21T17:00:00-04:00[America/New_York]"},
		{"tomorrow 5pm", "2024-07-21T17:00:00-04:00[America/New_York]"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Relative(tt.expr, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := Relative("banana", now)
	require.Error(t, err)
	assert.Equal(t, "unrecognized relative datetime `banana`", err.Error())
}

func TestParseWeekday(t *testing.T) {
	wd, err := ParseWeekday("THURS")
	require.NoError(t, err)
	assert.Equal(t, time.Thursday, wd)

	_, err = ParseWeekday("caturday")
	assert.EqualError(t, err, "unrecognized weekday: `caturday`")
}

func TestZone(t *testing.T) {
	z, err := ParseZone("+05:30")
	require.NoError(t, err)
	assert.Equal(t, KindFixed, z.Kind())
	assert.Equal(t, "+05:30", z.Name())

	z, err = ParseZone("Etc/Unknown")
	require.NoError(t, err)
	assert.True(t, z.IsUnknown())

	_, err = LoadZone("Local")
	assert.Error(t, err)

	assert.Equal(t, "-0400", FormatOffset(-4*3600, false))
	assert.Equal(t, "+05:45:30", FormatOffset(5*3600+45*60+30, true))
}
