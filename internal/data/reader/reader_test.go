package reader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"terminated", "a\nb\n", []string{"a\n", "b\n"}},
		{"missing final newline", "a\r\nb", []string{"a\r\n", "b"}},
		{"blank lines", "\n\n", []string{"\n", "\n"}},
		{"invalid utf-8", "\xff\xfe\n", []string{"\xff\xfe\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := NewLineReader(strings.NewReader(tt.input), StdinName)
			var got []string
			require.NoError(t, lr.Each(func(line []byte) error {
				got = append(got, string(line))
				return nil
			}))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineReaderAnnotatesErrors(t *testing.T) {
	lr := NewLineReader(strings.NewReader("ok\nbad\nnever\n"), StdinName)
	err := lr.Each(func(line []byte) error {
		if string(line) == "bad\n" {
			return errors.New("unrecognized datetime `bad`")
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, "line 2 of <stdin>: unrecognized datetime `bad`", err.Error())
	assert.Equal(t, 2, lr.Number())
}

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
	}
}

func TestExpandPaths(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.log", "b.txt", "nested/deep/c.log")

	got, err := ExpandPaths([]string{
		filepath.Join(root, "plain-missing-file"),
		filepath.Join(root, "**", "*.log"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "plain-missing-file"),
		filepath.Join(root, "a.log"),
		filepath.Join(root, "nested", "deep", "c.log"),
	}, got)

	_, err = ExpandPaths([]string{filepath.Join(root, "*.csv")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files matched")

	assert.True(t, HasMeta("logs/**/*.log"))
	assert.False(t, HasMeta("logs/app.log"))
}

func TestOrdered(t *testing.T) {
	var running, peak int32
	var got []int
	err := Ordered(context.Background(), 20, 3,
		func(ctx context.Context, i int) (int, error) {
			cur := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
					break
				}
			}
			// Later indices finish first.
			time.Sleep(time.Duration(20-i) * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return i * i, nil
		},
		func(v int) error {
			got = append(got, v)
			return nil
		})
	require.NoError(t, err)

	want := make([]int, 20)
	for i := range want {
		want[i] = i * i
	}
	assert.Equal(t, want, got)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestOrderedStopsOnError(t *testing.T) {
	var mu sync.Mutex
	var emitted []int
	err := Ordered(context.Background(), 10, 2,
		func(ctx context.Context, i int) (int, error) {
			if i == 4 {
				return 0, fmt.Errorf("failed on %d", i)
			}
			return i, nil
		},
		func(v int) error {
			mu.Lock()
			defer mu.Unlock()
			emitted = append(emitted, v)
			return nil
		})
	require.Error(t, err)
	assert.Equal(t, "failed on 4", err.Error())
	for _, v := range emitted {
		assert.Less(t, v, 4)
	}

	err = Ordered(context.Background(), 5, 2,
		func(ctx context.Context, i int) (int, error) { return i, nil },
		func(v int) error { return errors.New("closed pipe") })
	assert.EqualError(t, err, "closed pipe")
}

func TestFollower(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("first\nsecond\n"), 0o644))

	f, err := NewFollower(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines := make(chan string, 10)
	done := make(chan error, 1)
	go func() {
		done <- f.Run(ctx, func(line []byte) error {
			lines <- string(line)
			return nil
		})
	}()

	next := func() string {
		select {
		case l := <-lines:
			return l
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a followed line")
			return ""
		}
	}
	assert.Equal(t, "first\n", next())
	assert.Equal(t, "second\n", next())

	out, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = out.WriteString("third\npart")
	require.NoError(t, err)
	require.NoError(t, out.Close())
	assert.Equal(t, "third\n", next())

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, "part", next())
}
