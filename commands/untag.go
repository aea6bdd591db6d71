package commands

import (
	"io"

	"github.com/penwyp/biff/internal/core/tag"
	"github.com/penwyp/biff/internal/data/reader"
	"github.com/penwyp/biff/internal/presentation/untag"
	"github.com/penwyp/biff/internal/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newUntagCmd() *cobra.Command {
	var (
		substitute bool
		format     string
	)
	cmd := &cobra.Command{
		Use:   "untag [<path>]",
		Short: "Turn tagged lines back into text",
		Long: `Read tagged lines and print their original text. With -s/--substitute each tag
replaces the text it was found in, so transformations done by filters become
visible. With -f/--format one line is printed per tag from a template with
{tag} and {data} directives; \{, \}, \\, \n and \t are escapes.

Examples:
  biff tag lines app.log | biff time in UTC | biff untag -s
  biff tag lines app.log | biff untag -f '{tag}\t{data}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := untag.Options{
				Substitute: substitute,
				Styled:     util.IsTerminal(cmd.OutOrStdout()),
			}
			if cmd.Flags().Changed("format") {
				tmpl, err := untag.Compile(format)
				if err != nil {
					return errors.Wrap(err, "-f/--format")
				}
				opts.Format, opts.HasFormat = tmpl, true
			}

			w := buffered(cmd)
			u := untag.New(opts, cmd.OutOrStdout())
			run := func(r io.Reader, name string) error {
				return reader.NewLineReader(r, name).Each(func(line []byte) error {
					l, err := tag.Decode(tag.TrimTerminator(line))
					if err != nil {
						return errors.Wrap(err, "failed to parse tagged data")
					}
					_, err = w.Write(u.Render(l))
					return err
				})
			}

			var err error
			if len(args) == 0 {
				err = run(cmd.InOrStdin(), reader.StdinName)
			} else {
				err = tagFile(args[0], run)
			}
			if ferr := w.Flush(); err == nil {
				err = ferr
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&substitute, "substitute", "s", false, "Replace tagged text with the tag values")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Print one line per tag from this template")
	return cmd
}
