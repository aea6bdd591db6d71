package commands

import (
	"github.com/penwyp/biff/internal/core/datetime"
	"github.com/penwyp/biff/internal/core/timezone"
	"github.com/penwyp/biff/internal/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newTzCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tz",
		Short: "Inspect time zones and their transitions",
		Long:  `Commands for working with time zones from the system time zone database.`,
	}
	cmd.AddCommand(
		newTzCompatibleCmd(env),
		newTzListCmd(env),
		newTzSeqCmd(env),
		newTzStepCmd(env, "next", false),
		newTzStepCmd(env, "prev", true),
	)
	return cmd
}

func newTzCompatibleCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "compatible <datetime>",
		Short: "List time zones compatible with a datetime",
		Long: `List the time zones that show the same offset as the datetime at its instant,
in lexicographic order. A datetime with an IANA time zone also requires the
same abbreviation. Datetimes with an unknown offset (Z or -00:00) only match
Etc/Unknown.

Examples:
  biff tz compatible 2025-03-09T17:00+10:30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dt, err := datetime.ParseFlexible(args[0], env.now)
			if err != nil {
				return err
			}
			var names []string
			if !dt.Zone().IsUnknown() {
				if names, err = timezone.Names(); err != nil {
					return err
				}
			}
			w := buffered(cmd)
			for _, name := range timezone.Compatible(dt, names) {
				w.WriteString(name)
				w.WriteByte('\n')
			}
			return w.Flush()
		},
	}
}

func newTzListCmd(env *environment) *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available time zones",
		Long: `List the time zone identifiers of the system time zone database. With
-l/--long the current offset and abbreviation of each zone are shown too.

Examples:
  biff tz list | grep America
  biff tz list -l`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := timezone.Names()
			if err != nil {
				return err
			}
			lines := names
			if long {
				entries := timezone.Describe(names, env.now.Time())
				rows := make([][]string, len(entries))
				for i, e := range entries {
					rows[i] = []string{e.Name, e.Offset, e.Abbrev}
				}
				lines = util.AlignColumns(rows)
			}
			w := buffered(cmd)
			for _, line := range lines {
				w.WriteString(line)
				w.WriteByte('\n')
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show the current offset and abbreviation")
	return cmd
}

func newTzSeqCmd(env *environment) *cobra.Command {
	var (
		relative  string
		inclusive bool
		count     int
		past      bool
	)
	cmd := &cobra.Command{
		Use:   "seq <tz>",
		Short: "List time zone transitions after (or before) a datetime",
		Long: `List the offset transitions of a time zone strictly after the reference
datetime (default now), in ascending order. With -p/--past transitions before
the reference are listed in descending order. -i/--inclusive also lists a
transition at exactly the reference.

Examples:
  biff tz seq -c 4 America/New_York
  biff tz seq -p -c 2 -r 2025-01-01 Europe/London`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			z, err := datetime.ParseZone(args[0])
			if err != nil {
				return err
			}
			ref, err := env.relativeTo(relative)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("count") && count < 0 {
				return errors.New("-c/--count must not be negative")
			}

			seq := timezone.NewSequencer(z, ref.Time(), past, inclusive)
			w := buffered(cmd)
			for n := 0; !cmd.Flags().Changed("count") || n < count; n++ {
				dt, ok := seq.Next()
				if !ok {
					break
				}
				w.WriteString(dt.String())
				if err := w.WriteByte('\n'); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&relative, "relative-to", "r", "", "Reference datetime (default: now)")
	cmd.Flags().BoolVarP(&inclusive, "inclusive", "i", false, "Include a transition at the reference datetime")
	cmd.Flags().IntVarP(&count, "count", "c", 0, "Stop after this many transitions (default: all)")
	cmd.Flags().BoolVarP(&past, "past", "p", false, "List transitions before the reference, newest first")
	return cmd
}

func newTzStepCmd(env *environment, name string, past bool) *cobra.Command {
	var (
		inclusive bool
		count     int
	)
	direction := "following"
	if past {
		direction = "preceding"
	}
	cmd := &cobra.Command{
		Use:   name + " <tz> [<datetime>...]",
		Short: "Find the time zone transition " + direction + " datetimes",
		Long: `Print the time zone transition ` + direction + ` each datetime (default now).
-c/--count N selects the Nth transition; -i/--inclusive counts a transition at
exactly the datetime. Tagged datetimes without such a transition lose their tag.

Examples:
  biff tz ` + name + ` America/New_York
  biff tz ` + name + ` -c 2 Europe/London 2025-01-01`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			z, err := datetime.ParseZone(args[0])
			if err != nil {
				return err
			}
			if count <= 0 {
				return errors.New("-c/--count must be greater than zero")
			}
			rest := args[1:]
			if len(rest) == 0 && interactive(cmd) {
				rest = []string{"now"}
			}

			return mapData(cmd, rest, func(value string, positional bool) (string, bool, error) {
				dt, err := env.parseDatetime(value, positional)
				if err != nil {
					return "", false, err
				}
				found, ok := timezone.NewSequencer(z, dt.Time(), past, inclusive).Nth(count)
				if !ok {
					util.LogDebugf("no transition in %s %s %s", z, direction, dt)
					return "", false, nil
				}
				return found.String(), true, nil
			})
		},
	}
	cmd.Flags().BoolVarP(&inclusive, "inclusive", "i", false, "Include a transition at the datetime itself")
	cmd.Flags().IntVarP(&count, "count", "c", 1, "Find the Nth transition")
	return cmd
}
