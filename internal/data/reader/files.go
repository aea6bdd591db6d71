package reader

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/penwyp/biff/internal/util"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// HasMeta reports whether a path contains glob meta-characters.
func HasMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

// ExpandPaths expands glob patterns (with ** support) among paths, keeping
// plain paths as they are. Matches of one pattern are sorted; a pattern
// without matches is an error.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		if !HasMeta(p) {
			out = append(out, p)
			continue
		}
		if !doublestar.ValidatePathPattern(p) {
			return nil, errors.Errorf("invalid glob pattern `%s`", p)
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to expand glob `%s`", p)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("no files matched `%s`", p)
		}
		sort.Strings(matches)
		util.LogDebugf("glob `%s` matched %d file(s)", p, len(matches))
		out = append(out, matches...)
	}
	return out, nil
}

// ReadFile returns the contents of path.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return data, nil
}

// Ordered runs work for indices 0..n-1 on at most workers goroutines and
// passes results to emit strictly in index order. The first error from work
// or emit stops the run.
func Ordered[T any](ctx context.Context, n, workers int, work func(ctx context.Context, i int) (T, error), emit func(T) error) error {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	slots := make([]chan T, n)
	for i := range slots {
		slots[i] = make(chan T, 1)
	}

	semaphore := make(chan struct{}, workers)
	g.Go(func() error {
		for i := 0; i < n; i++ {
			select {
			case semaphore <- struct{}{}:
			case <-gctx.Done():
				return nil
			}
			i := i
			g.Go(func() error {
				defer func() { <-semaphore }()
				v, err := work(gctx, i)
				if err != nil {
					return err
				}
				slots[i] <- v
				return nil
			})
		}
		return nil
	})

	for i := 0; i < n; i++ {
		select {
		case v := <-slots[i]:
			if err := emit(v); err != nil {
				cancel()
				_ = g.Wait()
				return err
			}
		case <-gctx.Done():
			if err := g.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		}
	}
	return g.Wait()
}
