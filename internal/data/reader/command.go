package reader

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// CommandTemplate is a program and its arguments. Every unescaped {} in an
// argument is replaced by a path; when no argument contains one, the path
// is appended as the last argument.
type CommandTemplate struct {
	program string
	args    []string
}

func NewCommandTemplate(parts []string) (*CommandTemplate, error) {
	if len(parts) == 0 || parts[0] == "" {
		return nil, errors.New("command requires at least a program name")
	}
	return &CommandTemplate{program: parts[0], args: parts[1:]}, nil
}

// Args returns the arguments for path.
func (c *CommandTemplate) Args(path string) []string {
	out := make([]string, 0, len(c.args)+1)
	replaced := false
	for _, arg := range c.args {
		if s, ok := interpolate(arg, path); ok {
			out = append(out, s)
			replaced = true
			continue
		}
		out = append(out, arg)
	}
	if !replaced {
		out = append(out, path)
	}
	return out
}

// interpolate replaces {} by path, with \ escaping the next character. A
// trailing \ or { leaves arg untouched.
func interpolate(arg, path string) (string, bool) {
	if !strings.Contains(arg, "{") {
		return "", false
	}
	var (
		b       strings.Builder
		escaped bool
		brace   bool
	)
	for i := 0; i < len(arg); i++ {
		c := arg[i]
		switch {
		case escaped:
			b.WriteByte(c)
			escaped = false
		case brace:
			if c == '}' {
				b.WriteString(path)
			} else {
				b.WriteByte('{')
				b.WriteByte(c)
			}
			brace = false
		case c == '\\':
			escaped = true
		case c == '{':
			brace = true
		default:
			b.WriteByte(c)
		}
	}
	if escaped || brace || b.String() == arg {
		return "", false
	}
	return b.String(), true
}

// Lines runs the command for path and returns its stdout split into lines.
// A non-zero exit status is an error carrying stderr.
func (c *CommandTemplate) Lines(ctx context.Context, path string) ([]string, error) {
	cmd := exec.CommandContext(ctx, c.program, c.Args(path)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, errors.Errorf("got exit status %d when running %s, stderr: %s",
				exitErr.ExitCode(), cmd, strings.TrimSpace(stderr.String()))
		}
		return nil, errors.Wrapf(err, "failed to run %s", cmd)
	}

	var lines []string
	for n, line := range strings.SplitAfter(stdout.String(), "\n") {
		if line == "" {
			continue
		}
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if !utf8.ValidString(line) {
			return nil, errors.Errorf("on line %d from command %s, tag %q is not valid UTF-8", n+1, cmd, line)
		}
		lines = append(lines, line)
	}
	return lines, nil
}
