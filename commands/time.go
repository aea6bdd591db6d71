package commands

import (
	"os"
	"sort"
	"strings"

	"github.com/penwyp/biff/internal/core/datetime"
	"github.com/penwyp/biff/internal/core/span"
	"github.com/penwyp/biff/internal/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newTimeCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Do arithmetic, comparisons and formatting on datetimes",
		Long: `Commands for working with datetimes.

Datetimes are read from positional arguments or, when there are none, one per
line from stdin. Positional datetimes may omit the offset or use the relative
grammar ("next friday", "5pm tomorrow"); datetimes on stdin must carry an
offset. Tagged lines produced by "biff tag" are accepted on stdin.`,
	}
	cmd.AddCommand(
		newTimeAddCmd(env),
		newTimeCmpCmd(env),
		newTimeSortCmd(env),
		newTimeInCmd(env),
		newTimeOfCmd(env, "start-of", "Snap datetimes to the start of a unit", datetime.DateTime.StartOf),
		newTimeOfCmd(env, "end-of", "Snap datetimes to the end of a unit", datetime.DateTime.EndOf),
		newTimeRelativeCmd(env),
		newTimeRoundCmd(env),
		newTimeFmtCmd(env),
		newTimeParseCmd(env),
	)
	return cmd
}

func newTimeAddCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "add <span|datetime> [<datetime|span>...]",
		Short: "Add a span to datetimes",
		Long: `Add a span to datetimes. When the first argument is a span, the remaining
arguments (or stdin) are datetimes; when it is a datetime, they are spans.

Calendar units are added to the civil date, clamping to the end of the month.
Time units are added as exact elapsed time.

Examples:
  biff time add 1h 2025-03-09T01:30-05[America/New_York]
  biff time add 2025-01-31 1mo 2mo
  biff time add -- -1w today`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, err := env.parseSpanOrDatetime(args[0])
			if err != nil {
				return err
			}
			if first.isSpan {
				return mapData(cmd, args[1:], env.datetimes(func(dt datetime.DateTime) (datetime.DateTime, error) {
					return dt.Add(first.span)
				}))
			}
			return mapData(cmd, args[1:], func(value string, _ bool) (string, bool, error) {
				s, err := span.Parse(value)
				if err != nil {
					return "", false, err
				}
				sum, err := first.dt.Add(s)
				if err != nil {
					return "", false, err
				}
				return sum.String(), true, nil
			})
		},
	}
}

var comparisons = map[string]func(c int) bool{
	"eq": func(c int) bool { return c == 0 },
	"ne": func(c int) bool { return c != 0 },
	"lt": func(c int) bool { return c < 0 },
	"gt": func(c int) bool { return c > 0 },
	"le": func(c int) bool { return c <= 0 },
	"ge": func(c int) bool { return c >= 0 },
}

func newTimeCmpCmd(env *environment) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "cmp <op> <datetime> [<datetime>...]",
		Short: "Print only datetimes that satisfy an inequality",
		Long: `Print only the datetimes that satisfy "datetime OP base". OP is one of eq, ne,
lt, gt, le or ge.

Tagged lines keep the tags that satisfy the inequality and are printed when at
least one tag survives, or with --all only when every tag does.

Examples:
  biff time cmp gt 2025-03-01 2025-02-28 2025-03-02
  biff tag lines access.log | biff time cmp lt 2025-03-10T11:01 | biff untag`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pred, ok := comparisons[strings.ToLower(args[0])]
			if !ok {
				return errors.Errorf("unrecognized comparison operator `%s`, allowed operators are eq, ne, lt, gt, le and ge", args[0])
			}
			base, err := datetime.ParseFlexible(args[1], env.now)
			if err != nil {
				return err
			}

			w := buffered(cmd)
			err = eachDatum(cmd, args[2:], func(d datum) error {
				before := len(d.line.Tags)
				out, err := d.apply(func(value string, positional bool) (string, bool, error) {
					dt, err := env.parseDatetime(value, positional)
					if err != nil {
						return "", false, err
					}
					return dt.String(), pred(dt.Compare(base)), nil
				})
				if err != nil {
					return err
				}
				if out.tagged && (!out.line.HasTags() || (all && len(out.line.Tags) != before)) {
					return nil
				}
				return out.write(w)
			})
			if ferr := w.Flush(); err == nil {
				err = ferr
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Require every tag of a tagged line to satisfy the inequality")
	return cmd
}

type sortEntry struct {
	d    datum
	keys []datetime.DateTime
}

func compareKeys(a, b []datetime.DateTime) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func newTimeSortCmd(env *environment) *cobra.Command {
	var reverse bool
	cmd := &cobra.Command{
		Use:   "sort [<datetime>...]",
		Short: "Sort datetimes",
		Long: `Sort datetimes in ascending (or with -r descending) order. The sort is stable.
Tagged lines are ordered by their tags, the first tag first. All input is read
before anything is printed.

Examples:
  biff time sort 2025-03-02 2025-03-01
  biff tag lines app.log | biff time sort -r | biff untag`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []sortEntry
			err := eachDatum(cmd, args, func(d datum) error {
				var keys []datetime.DateTime
				out, err := d.apply(func(value string, positional bool) (string, bool, error) {
					dt, err := env.parseDatetime(value, positional)
					if err != nil {
						return "", false, err
					}
					keys = append(keys, dt)
					return dt.String(), true, nil
				})
				if err != nil {
					return err
				}
				entries = append(entries, sortEntry{d: out, keys: keys})
				return nil
			})
			if err != nil {
				return err
			}
			util.LogDebugf("sorting %d datetimes", len(entries))

			sort.SliceStable(entries, func(i, j int) bool {
				c := compareKeys(entries[i].keys, entries[j].keys)
				if reverse {
					return c > 0
				}
				return c < 0
			})

			w := buffered(cmd)
			for _, e := range entries {
				if err := e.d.write(w); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "Sort in descending order")
	return cmd
}

func newTimeInCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "in <tz|datetime> [<datetime|tz>...]",
		Short: "Convert datetimes to another time zone",
		Long: `Print the same instant in another time zone. When the first argument is a time
zone, the remaining arguments (or stdin) are datetimes; when it is a datetime,
they are time zones.

Examples:
  biff time in Asia/Tokyo 2025-03-15T10:23-04[America/New_York]
  biff time in 2025-03-15T10:23Z UTC Europe/Paris +05:30`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, err := env.parseZoneOrDatetime(args[0])
			if err != nil {
				return err
			}
			if first.isZone {
				return mapData(cmd, args[1:], env.datetimes(func(dt datetime.DateTime) (datetime.DateTime, error) {
					return dt.WithZone(first.zone), nil
				}))
			}
			return mapData(cmd, args[1:], func(value string, _ bool) (string, bool, error) {
				z, err := datetime.ParseZone(value)
				if err != nil {
					return "", false, err
				}
				return first.dt.WithZone(z).String(), true, nil
			})
		},
	}
}

func newTimeOfCmd(env *environment, name, short string, of func(datetime.DateTime, datetime.OfUnit) (datetime.DateTime, error)) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <unit> [<datetime>...]",
		Short: short,
		Long: short + `.

Units: year, month, week-sunday, week-monday, day, hour, minute, second,
millisecond and microsecond. Boundaries are computed on the civil clock of the
datetime's time zone.

Examples:
  biff time ` + name + ` month 2025-03-15T10:23-04[America/New_York]
  biff time ` + name + ` week-monday now`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := datetime.ParseOfUnit(args[0])
			if err != nil {
				return err
			}
			return mapData(cmd, args[1:], env.datetimes(func(dt datetime.DateTime) (datetime.DateTime, error) {
				return of(dt, unit)
			}))
		},
	}
}

// interactive reports whether stdin is a terminal rather than a pipe.
func interactive(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && util.IsTerminal(f)
}

func newTimeRelativeCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "relative <expr> [<datetime>...]",
		Short: "Resolve a relative datetime",
		Long: `Resolve a relative datetime expression against each datetime. Without
datetimes the expression is resolved against the datetimes on stdin, or against
now when stdin is a terminal.

The grammar accepts now, today, yesterday and tomorrow; clock times (5pm,
17:30); spans (1 day ago, -1w, 3 hours); and weekdays with an optional
multiplier (friday, next fri, last monday, 3 sundays, this sat).

Examples:
  biff time relative "next friday"
  biff time relative "5pm tomorrow" 2025-03-15T10:23-04[America/New_York]`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr := args[0]
			rest := args[1:]
			if len(rest) == 0 && interactive(cmd) {
				rest = []string{"now"}
			}
			return mapData(cmd, rest, env.datetimes(func(dt datetime.DateTime) (datetime.DateTime, error) {
				return datetime.Relative(expr, dt)
			}))
		},
	}
}

func newTimeRoundCmd(env *environment) *cobra.Command {
	var (
		smallest  string
		increment int64
		mode      string
	)
	cmd := &cobra.Command{
		Use:   "round -s <unit> [<datetime>...]",
		Short: "Round datetimes to a unit",
		Long: `Round datetimes to an increment of a unit between days and nanoseconds. Days
only accept an increment of 1; smaller units need an increment that divides the
next larger unit evenly.

Examples:
  biff time round -s hour 2025-03-15T10:31-04[America/New_York]
  biff time round -s minute -i 15 -m floor now`,
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := parseUnitFlag(smallest, "-s/--smallest")
			if err != nil {
				return err
			}
			m, err := span.ParseRoundMode(mode)
			if err != nil {
				return errors.Wrap(err, "-m/--mode")
			}
			if err := datetime.ValidateRound(unit, increment); err != nil {
				return err
			}
			return mapData(cmd, args, env.datetimes(func(dt datetime.DateTime) (datetime.DateTime, error) {
				return dt.Round(unit, increment, m)
			}))
		},
	}
	cmd.Flags().StringVarP(&smallest, "smallest", "s", "", "Unit to round to")
	cmd.Flags().Int64VarP(&increment, "increment", "i", 1, "Round to a multiple of this many units")
	cmd.Flags().StringVarP(&mode, "mode", "m", "half-expand", "Rounding mode")
	_ = cmd.MarkFlagRequired("smallest")
	return cmd
}

func newTimeFmtCmd(env *environment) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "fmt [<datetime>...]",
		Short: "Format datetimes",
		Long: `Print datetimes in rfc9557 (default), rfc3339, rfc2822, rfc9110 or a strftime
pattern.

Examples:
  biff time fmt -f rfc2822 now
  biff time fmt -f '%Y-%m-%d %H:%M %Q' 2025-03-15T10:23-04[America/New_York]`,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := datetime.ParseFormatter(format)
			return mapData(cmd, args, func(value string, positional bool) (string, bool, error) {
				dt, err := env.parseDatetime(value, positional)
				if err != nil {
					return "", false, err
				}
				return formatter(dt), true, nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "rfc9557", "Output format")
	return cmd
}

// parser returns a parse function for a -f/--format value of time parse.
func parser(format string, ref datetime.DateTime) func(string) (datetime.DateTime, error) {
	switch strings.ToLower(format) {
	case "", "flexible":
		return func(s string) (datetime.DateTime, error) { return datetime.ParseFlexible(s, ref) }
	case "rfc9557", "rfc3339", "rfc2822", "rfc9110":
		return datetime.ParseStrict
	}
	return func(s string) (datetime.DateTime, error) { return datetime.ParseStrftime(format, s, ref) }
}

func newTimeParseCmd(env *environment) *cobra.Command {
	var (
		format        string
		ignoreInvalid bool
		relative      string
	)
	cmd := &cobra.Command{
		Use:   "parse [<string>...]",
		Short: "Parse strings in a format into datetimes",
		Long: `Parse strings in a format and print them as RFC 9557 datetimes. The format is
flexible (default), rfc9557, rfc3339, rfc2822, rfc9110 or a strftime pattern.
Flexible and strftime parsing resolve missing offsets and relative expressions
against the -r/--relative-to datetime.

Examples:
  echo 'next friday' | biff time parse
  biff time parse -f '%d/%m/%Y %H:%M' '15/03/2025 10:23'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := env.relativeTo(relative)
			if err != nil {
				return err
			}
			parse := parser(format, ref)

			w := buffered(cmd)
			err = eachDatum(cmd, args, func(d datum) error {
				out, err := d.apply(func(value string, _ bool) (string, bool, error) {
					dt, err := parse(value)
					if err != nil {
						return "", false, err
					}
					return dt.String(), true, nil
				})
				if err != nil {
					if !ignoreInvalid {
						return err
					}
					util.LogWarn(err.Error())
					return nil
				}
				return out.write(w)
			})
			if ferr := w.Flush(); err == nil {
				err = ferr
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "flexible", "Input format")
	cmd.Flags().BoolVarP(&ignoreInvalid, "ignore-invalid", "i", false, "Skip strings that fail to parse")
	cmd.Flags().StringVarP(&relative, "relative-to", "r", "", "Reference datetime (default: now)")
	return cmd
}
