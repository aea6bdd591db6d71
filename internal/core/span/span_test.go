package span

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) Span {
	t.Helper()
	sp, err := Parse(s)
	require.NoError(t, err, s)
	return sp
}

func TestParseFriendly(t *testing.T) {
	tests := []struct {
		input string
		want  Span
	}{
		{"1y 2mo", Span{}.With(Year, 1).With(Month, 2)},
		{"5yrs 2mo 1hr", Span{}.With(Year, 5).With(Month, 2).With(Hour, 1)},
		{"1 year, 2 months ago", Span{}.With(Year, 1).With(Month, 2).Negate()},
		{"-1h2m", Span{}.With(Hour, 1).With(Minute, 2).Negate()},
		{"+3 days", Span{}.With(Day, 3)},
		{"1h1800s", Span{}.With(Hour, 1).With(Second, 1800)},
		{"0.000277777h", Span{}.With(Millisecond, 999).With(Microsecond, 997).With(Nanosecond, 200)},
		{"1.5h", Span{}.With(Hour, 1).With(Minute, 30)},
		{"01:02:03", Span{}.With(Hour, 1).With(Minute, 2).With(Second, 3)},
		{"1d 01:02:03.5", Span{}.With(Day, 1).With(Hour, 1).With(Minute, 2).With(Second, 3).With(Millisecond, 500)},
		{"2 weeks", Span{}.With(Week, 2)},
		{"1ms 1us 1ns", Span{}.With(Millisecond, 1).With(Microsecond, 1).With(Nanosecond, 1)},
		{"1µs", Span{}.With(Microsecond, 1)},
		{"0s", Span{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, mustParse(t, tt.input))
		})
	}
}

func TestParseISO(t *testing.T) {
	tests := []struct {
		input string
		want  Span
	}{
		{"P1Y2M3DT4H5M6.5S", Span{}.With(Year, 1).With(Month, 2).With(Day, 3).
			With(Hour, 4).With(Minute, 5).With(Second, 6).With(Millisecond, 500)},
		{"-PT5H", Span{}.With(Hour, 5).Negate()},
		{"P2W", Span{}.With(Week, 2)},
		{"pt1m", Span{}.With(Minute, 1)},
		{"PT0S", Span{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, mustParse(t, tt.input))
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"", "1h 1d", "1.5d", "-1h ago", "P", "PT", "1x", "1h 1h", "1.5h 2m", "ago"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.Error(t, err)
		})
	}
}

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit("hrs")
	require.NoError(t, err)
	assert.Equal(t, Hour, u)

	u, err = ParseUnit("MO")
	require.NoError(t, err)
	assert.Equal(t, Month, u)

	_, err = ParseUnit("fortnight")
	require.Error(t, err)
	assert.Equal(t, "unrecognized span unit: `fortnight`", err.Error())
}

func TestPrinterFormat(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		modify func(p *Printer)
		want   string
	}{
		{"default", "1y 2mo", nil, "1y 2mo"},
		{"negative", "-1h", nil, "1h ago"},
		{"verbose", "1y 1us", func(p *Printer) {
			p.Designator = DesignatorVerbose
			p.Spacing = SpacingUnitsAndDesignators
		}, "1 year 1 microsecond"},
		{"short plural", "2h 1m", func(p *Printer) { p.Designator = DesignatorShort }, "2hrs 1min"},
		{"no spacing negative", "-1h2m", func(p *Printer) { p.Spacing = SpacingNone }, "-1h2m"},
		{"comma", "1y 2mo", func(p *Printer) { p.Comma = true }, "1y, 2mo"},
		{"zero", "0s", nil, "0s"},
		{"zero verbose", "0s", func(p *Printer) {
			p.Designator = DesignatorVerbose
			p.Spacing = SpacingUnitsAndDesignators
		}, "0 seconds"},
		{"zero unit", "0s", func(p *Printer) { p.ZeroUnit = Hour }, "0h"},
		{"fractional hour", "1h 30m", func(p *Printer) {
			p.Fractional, p.HasFractional = Hour, true
		}, "1.5h"},
		{"fractional unbalanced", "90m", func(p *Printer) {
			p.Fractional, p.HasFractional = Hour, true
		}, "1.5h"},
		{"fractional precision", "1h 30m", func(p *Printer) {
			p.Fractional, p.HasFractional = Hour, true
			p.Precision = 2
		}, "1.50h"},
		{"fractional with calendar", "1d 1s 500ms", func(p *Printer) {
			p.Fractional, p.HasFractional = Second, true
		}, "1d 1.5s"},
		{"fractional only subsecond", "500ms", func(p *Printer) {
			p.Fractional, p.HasFractional = Second, true
		}, "0.5s"},
		{"hms", "1h 2m 3s", func(p *Printer) { p.HMS = true }, "01:02:03"},
		{"hms negative", "-1h2m3s", func(p *Printer) { p.HMS = true }, "-01:02:03"},
		{"hms with days", "1d 2h", func(p *Printer) { p.HMS = true }, "1d 02:00:00"},
		{"hms with days negative", "-1d 2h", func(p *Printer) { p.HMS = true }, "1d 02:00:00 ago"},
		{"hms does not wrap hours", "25h", func(p *Printer) { p.HMS = true }, "25:00:00"},
		{"hms fraction", "1s 500ms", func(p *Printer) { p.HMS = true }, "00:00:01.5"},
		{"force prefix", "1h", func(p *Printer) { p.Sign = SignForcePrefix }, "+1h"},
		{"suffix positive", "1h", func(p *Printer) { p.Sign = SignSuffix }, "1h"},
		{"sign none", "-1h", func(p *Printer) { p.Sign = SignNone }, "1h"},
		{"pad", "1h 2m", func(p *Printer) { p.Pad = 2 }, "01h 02m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPrinter()
			if tt.modify != nil {
				tt.modify(&p)
			}
			assert.Equal(t, tt.want, p.Format(mustParse(t, tt.input)))
		})
	}
}

func TestParsePrecision(t *testing.T) {
	n, err := ParsePrecision("auto")
	require.NoError(t, err)
	assert.Equal(t, -1, n)

	n, err = ParsePrecision("12")
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	_, err = ParsePrecision("wat")
	require.Error(t, err)
	assert.Equal(t, "failed to parse precision amount from `wat`", err.Error())
}

func TestFormatISO8601(t *testing.T) {
	tests := []struct {
		input     string
		lowercase bool
		want      string
	}{
		{"75y5mo22d5h30m12s", false, "P75Y5M22DT5H30M12S"},
		{"75y5mo22d5h30m12s", true, "P75y5m22dT5h30m12s"},
		{"999ns", false, "PT0.000000999S"},
		{"2000ms", false, "PT2S"},
		{"0s", false, "PT0S"},
		{"-1d", false, "-P1D"},
		{"1w", false, "P1W"},
		{"1h 1500ms", false, "PT1H1.5S"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatISO8601(mustParse(t, tt.input), tt.lowercase))
		})
	}
}

func TestBalanceNominal(t *testing.T) {
	tests := []struct {
		input   string
		largest Unit
		want    string
	}{
		{"366d", Year, "1y 1d"},
		{"1y", Day, "365d"},
		{"90m", Hour, "1h 30m"},
		{"999999999999999999ns", Second, "999999999s 999ms 999µs 999ns"},
		{"2w", Day, "14d"},
		{"15d", Week, "2w 1d"},
		{"-36h", Day, "1d 12h ago"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := BalanceNominal(mustParse(t, tt.input), tt.largest)
			require.NoError(t, err)
			assert.Equal(t, tt.want, NewPrinter().Format(got))
		})
	}
}

func TestBalanceIsIdempotent(t *testing.T) {
	once, err := BalanceNominal(mustParse(t, "123456789s"), Day)
	require.NoError(t, err)
	twice, err := BalanceNominal(once, Day)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestRoundNominal(t *testing.T) {
	tests := []struct {
		input     string
		smallest  Unit
		increment int64
		mode      RoundMode
		want      string
	}{
		{"1h 29m", Hour, 1, HalfExpand, "1h"},
		{"1h 30m", Hour, 1, HalfExpand, "2h"},
		{"1h 59m", Hour, 1, Trunc, "1h"},
		{"-1h 30m", Hour, 1, HalfExpand, "2h ago"},
		{"-1h 10m", Hour, 1, Floor, "2h ago"},
		{"-1h 10m", Hour, 1, Ceil, "1h ago"},
		{"1h 10m", Hour, 1, Expand, "2h"},
		{"2h 30m", Hour, 1, HalfEven, "2h"},
		{"3h 30m", Hour, 1, HalfEven, "4h"},
		{"-2h 30m", Hour, 1, HalfCeil, "2h ago"},
		{"-2h 30m", Hour, 1, HalfFloor, "3h ago"},
		{"2h 30m", Hour, 1, HalfTrunc, "2h"},
		{"1h 8m", Minute, 15, HalfExpand, "1h 15m"},
		{"1s 1ms", Millisecond, 250, Ceil, "1s 250ms"},
	}

	for _, tt := range tests {
		t.Run(tt.input+"/"+tt.mode.String(), func(t *testing.T) {
			opts := RoundOptions{Smallest: tt.smallest, Increment: tt.increment, Mode: tt.mode}
			require.NoError(t, opts.Validate())
			got, err := RoundNominal(mustParse(t, tt.input), opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, NewPrinter().Format(got))
		})
	}
}

func TestValidateIncrement(t *testing.T) {
	assert.NoError(t, ValidateIncrement(Minute, 30, "datetime"))
	assert.NoError(t, ValidateIncrement(Week, 3, "span"))
	assert.NoError(t, ValidateIncrement(Day, 1, "span"))

	err := ValidateIncrement(Minute, 16, "datetime")
	require.Error(t, err)
	assert.Equal(t,
		"increment 16 for rounding datetime to minutes must be 1) less than 60, 2) divide into it evenly and 3) greater than zero",
		err.Error())

	err = ValidateIncrement(Day, 2, "datetime")
	require.Error(t, err)
	assert.Equal(t,
		"increment 2 for rounding datetime to days must be 1) less than 2, 2) divide into it evenly and 3) greater than zero",
		err.Error())

	assert.Error(t, ValidateIncrement(Hour, 24, "span"))
	assert.Error(t, ValidateIncrement(Nanosecond, 0, "span"))
}

func TestParseRoundMode(t *testing.T) {
	m, err := ParseRoundMode("half-even")
	require.NoError(t, err)
	assert.Equal(t, HalfEven, m)

	_, err = ParseRoundMode("nearest")
	require.Error(t, err)
	assert.Equal(t, "unrecognized rounding mode: `nearest`", err.Error())
}

func TestDurArithmetic(t *testing.T) {
	d := FromNanos(-1)
	assert.Equal(t, Dur{Sec: -1, Nsec: 999_999_999}, d)
	assert.Equal(t, -1, d.Sign())
	assert.Equal(t, FromNanos(1), d.Abs())
	assert.Equal(t, 1, FromNanos(5).Cmp(FromNanos(4)))
	assert.Equal(t, Dur{Sec: 1, Nsec: 500_000_000}, Millisecond.NominalDur().Scale(1500))
}
