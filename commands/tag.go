package commands

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"runtime"

	"github.com/penwyp/biff/internal/core/datetime"
	"github.com/penwyp/biff/internal/core/tag"
	"github.com/penwyp/biff/internal/core/tagger"
	"github.com/penwyp/biff/internal/data/reader"
	"github.com/penwyp/biff/internal/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Find datetimes in text and tag them",
		Long: `Commands for finding datetimes (or time zones, or anything a regex matches) in
text and emitting them as tagged lines, one JSON object per line.

Tagged lines can be transformed by the "biff time", "biff span" and "biff tz"
filters and turned back into text with "biff untag".`,
	}
	cmd.AddCommand(newTagLinesCmd(), newTagFilesCmd(), newTagStatCmd(), newTagExecCmd())
	return cmd
}

type taggerFlags struct {
	patterns []string
	auto     string
	all      bool
}

func (f *taggerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.patterns, "regex", "e", nil,
		"Tag matches of this regex, or of its group named `tag` (repeatable)")
	cmd.Flags().StringVar(&f.auto, "auto", "datetime",
		"Automatic detection: datetime, timezone or none (default none when -e is given)")
	cmd.Flags().BoolVar(&f.all, "all", false, "Tag every match instead of only the first")
}

func (f *taggerFlags) build(cmd *cobra.Command) (*tagger.Tagger, error) {
	cfg := tagger.Config{Patterns: f.patterns, All: f.all}
	if cmd.Flags().Changed("auto") {
		kind, err := tagger.ParseKind(f.auto)
		if err != nil {
			return nil, errors.Wrap(err, "--auto")
		}
		cfg.Auto, cfg.AutoSet = kind, true
	}
	t, err := tagger.Build(cfg)
	if err != nil {
		return nil, err
	}
	util.LogDebugf("tagging with %v", t.Matchers())
	return t, nil
}

func writeLine(w *bufio.Writer, l tag.Line) error {
	b, err := tag.Encode(l)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func newTagLinesCmd() *cobra.Command {
	var (
		flags  taggerFlags
		follow bool
	)
	cmd := &cobra.Command{
		Use:   "lines [<path>...]",
		Short: "Tag datetimes in each line",
		Long: `Tag the datetimes found in each line of the given files, or of stdin. Every
line is emitted, with or without tags, so "biff untag" restores the input
exactly.

Examples:
  biff tag lines app.log
  biff tag lines --all -e 'took (?P<tag>\d+ms)' app.log
  biff tag lines --auto timezone zones.txt
  biff tag lines --follow /var/log/app.log`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := flags.build(cmd)
			if err != nil {
				return err
			}
			w := buffered(cmd)
			defer w.Flush()

			if follow {
				if len(args) != 1 {
					return errors.New("--follow requires exactly one file")
				}
				return followLines(cmd, args[0], t, w)
			}

			tagLines := func(r io.Reader, name string) error {
				return reader.NewLineReader(r, name).Each(func(line []byte) error {
					return writeLine(w, t.Tag(line))
				})
			}
			if len(args) == 0 {
				if err := tagLines(cmd.InOrStdin(), reader.StdinName); err != nil {
					return err
				}
				return w.Flush()
			}
			for _, path := range args {
				if err := tagFile(path, tagLines); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&follow, "follow", false, "Keep tagging lines appended to the file until interrupted")
	return cmd
}

func tagFile(path string, fn func(r io.Reader, name string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return fn(f, path)
}

func followLines(cmd *cobra.Command, path string, t *tagger.Tagger, w *bufio.Writer) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	follower, err := reader.NewFollower(path)
	if err != nil {
		return err
	}
	util.LogInfof("following %s", path)
	return follower.Run(ctx, func(line []byte) error {
		if err := writeLine(w, t.Tag(line)); err != nil {
			return err
		}
		return w.Flush()
	})
}

// fileInput is one file to tag; data is what the output line carries.
type fileInput struct {
	path string
	data []byte
}

func fileInputs(cmd *cobra.Command, args []string) ([]fileInput, error) {
	if len(args) > 0 {
		paths, err := reader.ExpandPaths(args)
		if err != nil {
			return nil, err
		}
		inputs := make([]fileInput, len(paths))
		for i, p := range paths {
			inputs[i] = fileInput{path: p, data: []byte(p + "\n")}
		}
		return inputs, nil
	}

	return stdinPaths(cmd)
}

// stdinPaths reads one path per stdin line, skipping empty lines. The output
// line carries the original stdin line.
func stdinPaths(cmd *cobra.Command) ([]fileInput, error) {
	var inputs []fileInput
	err := reader.NewLineReader(cmd.InOrStdin(), reader.StdinName).Each(func(line []byte) error {
		path := string(tag.TrimTerminator(line))
		if path == "" {
			return nil
		}
		inputs = append(inputs, fileInput{path: path, data: line})
		return nil
	})
	return inputs, err
}

func newTagFilesCmd() *cobra.Command {
	var (
		flags   taggerFlags
		threads int
	)
	cmd := &cobra.Command{
		Use:   "files [<path>...]",
		Short: "Tag datetimes in the contents of files",
		Long: `Tag the datetimes found in the contents of each file. The output line carries
the file path; its tags have no range. Paths come from the arguments, where
glob patterns (with ** support) are expanded, or one per line from stdin.

Files are read in parallel, but output follows the input order. Files that
cannot be read are reported and skipped.

Examples:
  biff tag files 'logs/**/*.log'
  git ls-files | biff tag files -j 4 | biff time sort | biff untag -f '{tag} {data}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := flags.build(cmd)
			if err != nil {
				return err
			}
			inputs, err := fileInputs(cmd, args)
			if err != nil {
				return err
			}
			util.LogDebugf("tagging %d file(s) with %d worker(s)", len(inputs), threads)

			type result struct {
				line tag.Line
				err  error
			}
			w := buffered(cmd)
			err = reader.Ordered(cmd.Context(), len(inputs), threads,
				func(_ context.Context, i int) (result, error) {
					in := inputs[i]
					contents, err := reader.ReadFile(in.path)
					if err != nil {
						return result{err: err}, nil
					}
					out := tag.Untagged(in.data)
					for _, found := range t.Tag(contents).Tags {
						out.Tags = append(out.Tags, tag.Synthetic(found.Value))
					}
					return result{line: out}, nil
				},
				func(r result) error {
					if r.err != nil {
						util.LogErrorf("%v", r.err)
						return nil
					}
					return writeLine(w, r.line)
				})
			if ferr := w.Flush(); err == nil {
				err = ferr
			}
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&threads, "threads", "j", runtime.NumCPU(), "Number of files to read in parallel")
	return cmd
}

// tagPaths tags every input with the values produced by work, in parallel
// and in input order. The first error stops the run.
func tagPaths(cmd *cobra.Command, inputs []fileInput, threads int, work func(ctx context.Context, path string) ([]string, error)) error {
	util.LogDebugf("tagging %d path(s) with %d worker(s)", len(inputs), threads)
	w := buffered(cmd)
	err := reader.Ordered(cmd.Context(), len(inputs), threads,
		func(ctx context.Context, i int) (tag.Line, error) {
			in := inputs[i]
			found, err := work(ctx, in.path)
			if err != nil {
				return tag.Line{}, err
			}
			out := tag.Untagged(in.data)
			for _, v := range found {
				out.Tags = append(out.Tags, tag.Synthetic(v))
			}
			return out, nil
		},
		func(l tag.Line) error {
			return writeLine(w, l)
		})
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	return err
}

func newTagStatCmd() *cobra.Command {
	var threads int
	cmd := &cobra.Command{
		Use:   "stat <kinds> [<path>...]",
		Short: "Tag file paths with their modified, accessed or created times",
		Long: `Tag file paths with datetimes from their metadata. <kinds> is a comma separated
list of modified (modify), accessed (access) and created (create, creation,
birth); each kind becomes one tag, in the order given. Datetimes are in the
unknown time zone; convert them with "biff time in".

Paths come from the arguments, where glob patterns are expanded, or one per
line from stdin. Whether a kind is available depends on the platform and the
file system; a missing one is an error.

Examples:
  find . -type f | biff tag stat created
  biff tag stat modified,accessed '**/*.go' | biff time in UTC`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := reader.ParseStatKinds(args[0])
			if err != nil {
				return err
			}
			inputs, err := fileInputs(cmd, args[1:])
			if err != nil {
				return err
			}
			return tagPaths(cmd, inputs, threads, func(_ context.Context, path string) ([]string, error) {
				ft, err := reader.Stat(path)
				if err != nil {
					return nil, err
				}
				stamps := make([]string, 0, len(kinds))
				for _, k := range kinds {
					t, err := ft.Get(k)
					if err != nil {
						return nil, errors.Wrap(err, path)
					}
					stamps = append(stamps, datetime.In(t, datetime.Unknown()).String())
				}
				return stamps, nil
			})
		},
	}
	cmd.Flags().IntVarP(&threads, "threads", "j", runtime.NumCPU(), "Number of paths to stat in parallel")
	return cmd
}

func newTagExecCmd() *cobra.Command {
	var threads int
	cmd := &cobra.Command{
		Use:   "exec <command> [<arg>...]",
		Short: "Tag file paths with the output of a command",
		Long: `Run a command for every path read from stdin and tag the path with each line
the command prints. Every {} in an argument is replaced by the path; \{ and \}
are literal braces. Without any {} the path is appended as the last argument.
A command exiting with a non-zero status is an error.

Flags must come before <command>; everything after it is passed on.

Examples:
  git ls-files | biff tag exec git log -n1 --format=%cI | biff time sort`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := reader.NewCommandTemplate(args)
			if err != nil {
				return err
			}
			inputs, err := stdinPaths(cmd)
			if err != nil {
				return err
			}
			return tagPaths(cmd, inputs, threads, tmpl.Lines)
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().IntVarP(&threads, "threads", "j", runtime.NumCPU(), "Number of commands to run in parallel")
	return cmd
}
