package commands

import (
	"github.com/penwyp/biff/internal/core/datetime"
	"github.com/penwyp/biff/internal/core/span"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newSpanCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "span",
		Short: "Balance, round and format time spans",
		Long: `Commands for working with time spans.

Spans are read from positional arguments or, when there are none, one per line
from stdin. Tagged lines produced by "biff tag" are accepted on stdin.`,
	}
	cmd.AddCommand(
		newSpanBalanceCmd(env),
		newSpanRoundCmd(env),
		newSpanFmtCmd(),
		newSpanISO8601Cmd(),
		newSpanSinceCmd(env),
		newSpanUntilCmd(env),
	)
	return cmd
}

// parseUnitFlag parses a unit flag value and names the flag on error.
func parseUnitFlag(value, flag string) (span.Unit, error) {
	u, err := span.ParseUnit(value)
	if err != nil {
		return 0, errors.Wrap(err, flag)
	}
	return u, nil
}

func formatSpan(s span.Span) string {
	return span.NewPrinter().Format(s)
}

type spanRelativeFlags struct {
	relative string
	nominal  bool
}

func (f *spanRelativeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.relative, "relative-to", "r", "",
		"Datetime that calendar units are relative to (default: now)")
	cmd.Flags().BoolVar(&f.nominal, "nominal", false,
		"Use 24 hour days, 7 day weeks, 30 day months and 365 day years")
	cmd.MarkFlagsMutuallyExclusive("relative-to", "nominal")
}

func newSpanBalanceCmd(env *environment) *cobra.Command {
	var (
		largest string
		rel     spanRelativeFlags
	)
	cmd := &cobra.Command{
		Use:   "balance [<span>...]",
		Short: "Balance spans into a range of units",
		Long: `Redistribute the magnitude of each span from the largest unit down to
nanoseconds. Calendar units are balanced relative to a reference datetime.

Examples:
  biff span balance 999999999999999999ns
  biff span balance -l hours 2d5h
  biff span balance --nominal 400d`,
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := parseUnitFlag(largest, "-l/--largest")
			if err != nil {
				return err
			}
			ref, err := env.relativeTo(rel.relative)
			if err != nil {
				return err
			}
			return mapData(cmd, args, spans(func(s span.Span) (string, error) {
				var (
					out span.Span
					err error
				)
				if rel.nominal {
					out, err = span.BalanceNominal(s, unit)
				} else {
					out, err = datetime.Balance(s, unit, ref)
				}
				if err != nil {
					return "", err
				}
				return formatSpan(out), nil
			}))
		},
	}
	cmd.Flags().StringVarP(&largest, "largest", "l", "years", "Largest unit of the balanced span")
	rel.register(cmd)
	return cmd
}

func newSpanRoundCmd(env *environment) *cobra.Command {
	var (
		smallest  string
		largest   string
		increment int64
		mode      string
		rel       spanRelativeFlags
	)
	cmd := &cobra.Command{
		Use:   "round -s <unit> [<span>...]",
		Short: "Round spans to a multiple of a unit",
		Long: `Round each span to an increment of the smallest unit and balance it up to the
largest unit.

Rounding modes: ceil, floor, expand, trunc, half-ceil, half-floor,
half-expand (default), half-trunc and half-even.

Examples:
  biff span round -s minutes 1h29m31s
  biff span round -s days -l years -r 2025-01-31 45d
  biff span round -s minutes -i 15 -m trunc 1h29m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := span.RoundOptions{Increment: increment}
			var err error
			if opts.Smallest, err = parseUnitFlag(smallest, "-s/--smallest"); err != nil {
				return err
			}
			if largest != "" {
				if opts.Largest, err = parseUnitFlag(largest, "-l/--largest"); err != nil {
					return err
				}
				opts.HasLarger = true
			}
			if opts.Mode, err = span.ParseRoundMode(mode); err != nil {
				return errors.Wrap(err, "-m/--mode")
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			ref, err := env.relativeTo(rel.relative)
			if err != nil {
				return err
			}

			return mapData(cmd, args, spans(func(s span.Span) (string, error) {
				var (
					out span.Span
					err error
				)
				if rel.nominal {
					out, err = span.RoundNominal(s, opts)
				} else {
					out, err = datetime.RoundSpan(s, opts, ref)
				}
				if err != nil {
					return "", err
				}
				return formatSpan(out), nil
			}))
		},
	}
	cmd.Flags().StringVarP(&smallest, "smallest", "s", "", "Unit to round to")
	cmd.Flags().StringVarP(&largest, "largest", "l", "", "Largest unit of the rounded span")
	cmd.Flags().Int64VarP(&increment, "increment", "i", 1, "Round to a multiple of this many units")
	cmd.Flags().StringVarP(&mode, "mode", "m", "half-expand", "Rounding mode")
	_ = cmd.MarkFlagRequired("smallest")
	rel.register(cmd)
	return cmd
}

func newSpanFmtCmd() *cobra.Command {
	var (
		designator string
		spacing    string
		sign       string
		fractional string
		precision  string
		hms        bool
		pad        int
		zeroUnit   string
		comma      bool
	)
	cmd := &cobra.Command{
		Use:   "fmt [<span>...]",
		Short: "Format spans in the friendly format",
		Long: `Print each span in the friendly format with configurable designators,
spacing, sign placement and fractional units.

Examples:
  biff span fmt -d verbose -s units-and-designators "1y 1us"
  biff span fmt --hms 5h30m12s
  biff span fmt -f hours --precision 2 1h30m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := span.NewPrinter()
			var err error
			if p.Designator, err = span.ParseDesignator(designator); err != nil {
				return errors.Wrap(err, "-d/--designator")
			}
			if p.Spacing, err = span.ParseSpacing(spacing); err != nil {
				return errors.Wrap(err, "-s/--spacing")
			}
			if p.Sign, err = span.ParseSignStyle(sign); err != nil {
				return errors.Wrap(err, "--sign")
			}
			if fractional != "" {
				if p.Fractional, err = parseUnitFlag(fractional, "-f/--fractional"); err != nil {
					return err
				}
				p.HasFractional = true
			}
			if p.Precision, err = span.ParsePrecision(precision); err != nil {
				return errors.Wrap(err, "--precision")
			}
			if p.ZeroUnit, err = parseUnitFlag(zeroUnit, "--zero-unit"); err != nil {
				return err
			}
			p.HMS, p.Pad, p.Comma = hms, pad, comma
			if err := p.Validate(); err != nil {
				return err
			}

			return mapData(cmd, args, spans(func(s span.Span) (string, error) {
				return p.Format(s), nil
			}))
		},
	}
	cmd.Flags().StringVarP(&designator, "designator", "d", "compact", "Unit designators: compact, short or verbose")
	cmd.Flags().StringVarP(&spacing, "spacing", "s", "units", "Spacing: none, units or units-and-designators")
	cmd.Flags().StringVar(&sign, "sign", "auto", "Sign style: auto, prefix, force-prefix, suffix or none")
	cmd.Flags().StringVarP(&fractional, "fractional", "f", "", "Fold smaller units into a fraction of this unit")
	cmd.Flags().StringVar(&precision, "precision", "auto", "Fraction digits: auto or 0-9")
	cmd.Flags().BoolVar(&hms, "hms", false, "Print hours, minutes and seconds as HH:MM:SS")
	cmd.Flags().IntVar(&pad, "pad", -1, "Zero pad integers to this width")
	cmd.Flags().StringVar(&zeroUnit, "zero-unit", "seconds", "Unit used to print a zero span")
	cmd.Flags().BoolVar(&comma, "comma", false, "Separate units with commas")
	return cmd
}

func newSpanISO8601Cmd() *cobra.Command {
	var lowercase bool
	cmd := &cobra.Command{
		Use:   "iso8601 [<span>...]",
		Short: "Format spans as ISO 8601 durations",
		Long: `Print each span as an ISO 8601 duration.

Examples:
  biff span iso8601 75y5mo22d5h30m12s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mapData(cmd, args, spans(func(s span.Span) (string, error) {
				return span.FormatISO8601(s, lowercase), nil
			}))
		},
	}
	cmd.Flags().BoolVarP(&lowercase, "lowercase", "l", false, "Use lowercase unit designators")
	return cmd
}

func newSpanDiffCmd(env *environment, use, short, long string, diff func(ref, dt datetime.DateTime, largest span.Unit) (span.Span, error)) *cobra.Command {
	var (
		relative string
		largest  string
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := parseUnitFlag(largest, "-l/--largest")
			if err != nil {
				return err
			}
			ref, err := env.relativeTo(relative)
			if err != nil {
				return err
			}
			return mapData(cmd, args, func(value string, positional bool) (string, bool, error) {
				dt, err := env.parseDatetime(value, positional)
				if err != nil {
					return "", false, err
				}
				s, err := diff(ref, dt, unit)
				if err != nil {
					return "", false, err
				}
				return formatSpan(s), true, nil
			})
		},
	}
	cmd.Flags().StringVarP(&relative, "relative-to", "r", "", "Reference datetime (default: now)")
	cmd.Flags().StringVarP(&largest, "largest", "l", "hours", "Largest unit of the span")
	return cmd
}

func newSpanSinceCmd(env *environment) *cobra.Command {
	return newSpanDiffCmd(env, "since [<datetime>...]",
		"Print the span from datetimes to a reference",
		`Print the span elapsed from each datetime up to the reference datetime.

Examples:
  biff span since 2024-07-01
  biff span since -l years -r 2025-01-01 2000-02-29`,
		func(ref, dt datetime.DateTime, largest span.Unit) (span.Span, error) {
			return datetime.Since(ref, dt, largest)
		})
}

func newSpanUntilCmd(env *environment) *cobra.Command {
	return newSpanDiffCmd(env, "until [<datetime>...]",
		"Print the span from a reference to datetimes",
		`Print the span from the reference datetime up to each datetime.

Examples:
  biff span until 2024-12-25
  biff span until -l days friday`,
		func(ref, dt datetime.DateTime, largest span.Unit) (span.Span, error) {
			return datetime.Until(ref, dt, largest)
		})
}
