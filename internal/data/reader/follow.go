package reader

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/biff/internal/util"
	"github.com/pkg/errors"
)

// Follower emits the lines of a file and keeps emitting lines appended to it
// until its context is cancelled. Incomplete trailing lines are held back
// until their newline arrives.
type Follower struct {
	path    string
	watcher *fsnotify.Watcher
	file    *os.File
	pending []byte
	n       int
}

// NewFollower opens path and watches its directory for changes.
func NewFollower(path string) (*Follower, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, "failed to create file watcher")
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		file.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", path)
	}
	return &Follower{path: path, watcher: watcher, file: file}, nil
}

// Run calls fn for every complete line, first the existing contents and then
// appended data, until ctx is done or fn fails.
func (f *Follower) Run(ctx context.Context, fn func(line []byte) error) error {
	defer f.Close()

	if err := f.drain(fn); err != nil {
		return err
	}
	target := filepath.Clean(f.path)
	for {
		select {
		case <-ctx.Done():
			return f.flush(fn)

		case event, ok := <-f.watcher.Events:
			if !ok {
				return f.flush(fn)
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			switch {
			case event.Has(fsnotify.Write):
				if err := f.drain(fn); err != nil {
					return err
				}
			case event.Has(fsnotify.Create):
				util.LogDebugf("%s was recreated, reading from the start", f.path)
				if err := f.reopen(); err != nil {
					return err
				}
				if err := f.drain(fn); err != nil {
					return err
				}
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return f.flush(fn)
			}
			util.LogWarnf("file watcher error on %s: %v", f.path, err)
		}
	}
}

func (f *Follower) drain(fn func(line []byte) error) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := f.file.Read(buf)
		if n > 0 {
			f.pending = append(f.pending, buf[:n]...)
			if err := f.emitComplete(fn); err != nil {
				return err
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", f.path)
		}
	}
}

func (f *Follower) emitComplete(fn func(line []byte) error) error {
	for {
		i := bytes.IndexByte(f.pending, '\n')
		if i < 0 {
			return nil
		}
		line := append([]byte(nil), f.pending[:i+1]...)
		f.pending = f.pending[i+1:]
		f.n++
		if err := fn(line); err != nil {
			return errors.Wrapf(err, "line %d of %s", f.n, f.path)
		}
	}
}

// flush emits a held back partial line.
func (f *Follower) flush(fn func(line []byte) error) error {
	if len(f.pending) == 0 {
		return nil
	}
	line := f.pending
	f.pending = nil
	f.n++
	if err := fn(line); err != nil {
		return errors.Wrapf(err, "line %d of %s", f.n, f.path)
	}
	return nil
}

func (f *Follower) reopen() error {
	f.file.Close()
	file, err := os.Open(f.path)
	if err != nil {
		return errors.Wrapf(err, "failed to reopen %s", f.path)
	}
	f.file = file
	f.pending = nil
	return nil
}

// Close releases the watcher and the file.
func (f *Follower) Close() error {
	werr := f.watcher.Close()
	ferr := f.file.Close()
	if werr != nil {
		return werr
	}
	return ferr
}
