// Package reader streams input lines and files for the pipeline commands.
package reader

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// StdinName labels errors about lines read from standard input.
const StdinName = "<stdin>"

// LineReader yields raw lines including their terminator. The final line is
// returned even without a trailing newline. Bytes are never decoded.
type LineReader struct {
	r    *bufio.Reader
	name string
	n    int
}

// NewLineReader reads lines from r; name labels errors.
func NewLineReader(r io.Reader, name string) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, 64*1024), name: name}
}

// Next returns the next line or io.EOF.
func (lr *LineReader) Next() ([]byte, error) {
	line, err := lr.r.ReadBytes('\n')
	if len(line) > 0 {
		lr.n++
		return line, nil
	}
	if err == nil || err == io.EOF {
		return nil, io.EOF
	}
	return nil, errors.Wrapf(err, "failed to read from %s", lr.name)
}

// Number returns the 1-based number of the last line returned.
func (lr *LineReader) Number() int {
	return lr.n
}

// Annotate prefixes err with the position of the last line read.
func (lr *LineReader) Annotate(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "line %d of %s", lr.n, lr.name)
}

// Each calls fn for every line until EOF or the first error. Errors from fn
// are annotated with the line position.
func (lr *LineReader) Each(fn func(line []byte) error) error {
	for {
		line, err := lr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(line); err != nil {
			return lr.Annotate(err)
		}
	}
}
