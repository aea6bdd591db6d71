package commands

import (
	"bufio"
	"fmt"

	"github.com/penwyp/biff/internal/core/datetime"
	"github.com/penwyp/biff/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = newRootCmd()

// environment is read once per invocation and passed to every command.
type environment struct {
	now    datetime.DateTime
	system datetime.Zone
	locale string
}

func (env *environment) load(cmd *cobra.Command) error {
	cfg, err := util.LoadConfig()
	if err != nil {
		return err
	}
	util.InitLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

	tp, err := util.NewTimeProvider(cfg.TZ, cfg.Now)
	if err != nil {
		return err
	}
	env.system = datetime.IANA(tp.Location())
	env.now = datetime.In(tp.Now(), env.system)
	env.locale = cfg.Locale
	util.LogDebugf("now is %s, locale is %q", env.now, env.locale)
	return nil
}

func newRootCmd() *cobra.Command {
	env := &environment{}
	cmd := &cobra.Command{
		Use:   "biff",
		Short: "A command line tool for datetime arithmetic, parsing, formatting and more",
		Long: `biff finds, transforms and reformats datetimes, time spans and time zones in text.

Commands compose through pipes: "biff tag" marks datetimes found in text, the
filters under "biff time", "biff span" and "biff tz" transform tagged values,
and "biff untag" turns the result back into text.

Examples:
  biff                                          # Print the current time
  biff time add 1h 2025-03-09T01:30             # Add a span to a datetime
  biff span balance 999999999999999999ns        # Balance a span into years
  biff tag lines app.log | biff time in UTC | biff untag -s
  biff tz next America/New_York                 # Next offset transition

Environment:
  BIFF_NOW          freeze the current time (RFC 3339)
  BIFF_LOCALE       BCP 47 locale used when printing the current time
  BIFF_LOG          log level: off, error, warn, info, debug or trace
  BIFF_LOG_FORMAT   log format: text or json
  TZ                system time zone`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), datetime.FormatLocale(env.now, env.locale))
			return err
		},
	}

	cmd.SetGlobalNormalizationFunc(normalizeFlag)
	cmd.AddCommand(
		newSpanCmd(env),
		newTimeCmd(env),
		newTagCmd(),
		newUntagCmd(),
		newTzCmd(env),
	)
	return cmd
}

// normalizeFlag accepts --relative as a spelling of --relative-to.
func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "relative" {
		name = "relative-to"
	}
	return pflag.NormalizedName(name)
}

// Execute runs the command line.
func Execute() error {
	return rootCmd.Execute()
}

// buffered wraps the command's stdout. Callers must flush.
func buffered(cmd *cobra.Command) *bufio.Writer {
	return bufio.NewWriter(cmd.OutOrStdout())
}
