package commands

import (
	"bufio"

	"github.com/penwyp/biff/internal/core/datetime"
	"github.com/penwyp/biff/internal/core/span"
	"github.com/penwyp/biff/internal/core/tag"
	"github.com/penwyp/biff/internal/data/reader"
	"github.com/penwyp/biff/internal/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// datum is one input of a filter: a bare value from the command line or a
// stdin line, or a tagged line whose tag values are the inputs.
type datum struct {
	value      string
	positional bool
	tagged     bool
	line       tag.Line
	dropped    bool
	// wireErr is kept for stdin lines that looked like wire protocol but
	// failed to decode. It is reported if the line is not a raw value either.
	wireErr error
}

// transform maps one value to its replacement. Returning keep=false drops
// the value, or the tag holding it.
type transform func(value string, positional bool) (out string, keep bool, err error)

func decodeDatum(line []byte) datum {
	content := tag.TrimTerminator(line)
	if !tag.IsWire(content) {
		return datum{value: string(content)}
	}
	l, err := tag.Decode(content)
	if err != nil {
		return datum{value: string(content), wireErr: err}
	}
	return datum{tagged: true, line: l}
}

// eachDatum feeds fn the positional arguments or, when there are none, the
// lines of stdin. Errors on stdin lines are prefixed with their position.
func eachDatum(cmd *cobra.Command, args []string, fn func(d datum) error) error {
	if len(args) > 0 {
		for _, arg := range args {
			if err := fn(datum{value: arg, positional: true}); err != nil {
				return err
			}
		}
		return nil
	}
	lr := reader.NewLineReader(cmd.InOrStdin(), reader.StdinName)
	return lr.Each(func(line []byte) error {
		return fn(decodeDatum(line))
	})
}

// apply runs fn over the value, or over every tag of a tagged line. Tags
// keep their ranges; dropped tags are removed.
func (d datum) apply(fn transform) (datum, error) {
	if !d.tagged {
		out, keep, err := fn(d.value, d.positional)
		if err != nil {
			if d.wireErr != nil {
				return d, d.wireErr
			}
			return d, err
		}
		d.value, d.dropped = out, !keep
		return d, nil
	}

	tags := make([]tag.Tag, 0, len(d.line.Tags))
	for _, t := range d.line.Tags {
		out, keep, err := fn(t.Value, false)
		if err != nil {
			return d, err
		}
		if keep {
			tags = append(tags, t.WithValue(out))
		}
	}
	d.line = tag.Line{Tags: tags, Data: d.line.Data}
	return d, nil
}

// write emits an untagged value on its own line or a tagged line in wire
// form. Dropped values produce nothing.
func (d datum) write(w *bufio.Writer) error {
	if d.tagged {
		b, err := tag.Encode(d.line)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	if d.dropped {
		return nil
	}
	if _, err := w.WriteString(d.value); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

// mapData applies fn to every input and writes the results.
func mapData(cmd *cobra.Command, args []string, fn transform) error {
	w := buffered(cmd)
	err := eachDatum(cmd, args, func(d datum) error {
		out, err := d.apply(fn)
		if err != nil {
			return err
		}
		return out.write(w)
	})
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	return err
}

// parseDatetime uses the flexible parser for command line values and the
// strict one for stdin.
func (env *environment) parseDatetime(s string, positional bool) (datetime.DateTime, error) {
	if positional {
		return datetime.ParseFlexible(s, env.now)
	}
	return datetime.ParseStrict(s)
}

// datetimes adapts a datetime to datetime function into a transform.
func (env *environment) datetimes(fn func(datetime.DateTime) (datetime.DateTime, error)) transform {
	return func(value string, positional bool) (string, bool, error) {
		dt, err := env.parseDatetime(value, positional)
		if err != nil {
			return "", false, err
		}
		out, err := fn(dt)
		if err != nil {
			return "", false, err
		}
		return out.String(), true, nil
	}
}

// spans adapts a span to string function into a transform.
func spans(fn func(span.Span) (string, error)) transform {
	return func(value string, _ bool) (string, bool, error) {
		s, err := span.Parse(value)
		if err != nil {
			return "", false, err
		}
		out, err := fn(s)
		if err != nil {
			return "", false, err
		}
		return out, true, nil
	}
}

// relativeTo parses a -r/--relative-to value, defaulting to now.
func (env *environment) relativeTo(value string) (datetime.DateTime, error) {
	if value == "" {
		return env.now, nil
	}
	dt, err := datetime.ParseFlexible(value, env.now)
	if err != nil {
		return datetime.DateTime{}, errors.Wrap(err, "-r/--relative-to")
	}
	return dt, nil
}

// spanOrDatetime is a positional argument that may be either.
type spanOrDatetime struct {
	span   span.Span
	dt     datetime.DateTime
	isSpan bool
}

// parseSpanOrDatetime tries a span first. When both parses fail only the
// datetime error is reported.
func (env *environment) parseSpanOrDatetime(s string) (spanOrDatetime, error) {
	sp, serr := span.Parse(s)
	if serr == nil {
		return spanOrDatetime{span: sp, isSpan: true}, nil
	}
	dt, derr := datetime.ParseFlexible(s, env.now)
	if derr == nil {
		return spanOrDatetime{dt: dt}, nil
	}
	util.LogDebugf("`%s` is not a time span: %v", s, serr)
	return spanOrDatetime{}, errors.Wrap(derr, "failed to parse as datetime or as time span")
}

// zoneOrDatetime is a positional argument that may be either.
type zoneOrDatetime struct {
	zone   datetime.Zone
	dt     datetime.DateTime
	isZone bool
}

func (env *environment) parseZoneOrDatetime(s string) (zoneOrDatetime, error) {
	z, zerr := datetime.ParseZone(s)
	if zerr == nil {
		return zoneOrDatetime{zone: z, isZone: true}, nil
	}
	dt, derr := datetime.ParseFlexible(s, env.now)
	if derr == nil {
		return zoneOrDatetime{dt: dt}, nil
	}
	util.LogDebugf("`%s` is not a time zone: %v", s, zerr)
	return zoneOrDatetime{}, errors.Wrap(derr, "failed to parse as datetime or as time zone")
}
