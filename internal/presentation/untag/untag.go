package untag

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/penwyp/biff/internal/core/tag"
)

// Options selects how lines are rendered. Format takes precedence over
// Substitute.
type Options struct {
	Substitute bool
	Format     Template
	HasFormat  bool
	// Styled highlights tag values, for output to a terminal.
	Styled bool
}

// Untagger renders tagged lines.
type Untagger struct {
	opts      Options
	highlight func(string) string
}

// New returns an untagger writing highlights for w's color profile.
func New(opts Options, w io.Writer) *Untagger {
	u := &Untagger{opts: opts, highlight: func(s string) string { return s }}
	if opts.Styled {
		style := lipgloss.NewRenderer(w).NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
		u.highlight = func(s string) string { return style.Render(s) }
	}
	return u
}

// Render returns the output for one line. With a format, one output line is
// produced per tag and lines without tags produce nothing.
func (u *Untagger) Render(l tag.Line) []byte {
	data := l.Data
	switch {
	case u.opts.Substitute:
		data = l.Replace(func(t tag.Tag, _ []byte) string { return u.highlight(t.Value) })
	case u.opts.Styled:
		data = l.Replace(func(_ tag.Tag, original []byte) string { return u.highlight(string(original)) })
	}
	if !u.opts.HasFormat {
		return data
	}

	trimmed := tag.TrimTerminator(data)
	var out []byte
	for _, t := range l.Tags {
		out = append(out, u.opts.Format.Render(u.highlight(t.Value), trimmed)...)
		out = append(out, '\n')
	}
	return out
}
