package timezone

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/penwyp/biff/internal/core/datetime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) datetime.DateTime {
	t.Helper()
	dt, err := datetime.ParseStrict(s)
	require.NoError(t, err, s)
	return dt
}

func newYork(t *testing.T) datetime.Zone {
	t.Helper()
	z, err := datetime.LoadZone("America/New_York")
	require.NoError(t, err)
	return z
}

func render(dts []datetime.DateTime) []string {
	out := make([]string, len(dts))
	for i, dt := range dts {
		out[i] = dt.String()
	}
	return out
}

func TestSequencer(t *testing.T) {
	from := mustParse(t, "2024-07-20T16:30:55-04:00[America/New_York]").Time()
	transition := mustParse(t, "2024-11-03T06:00:00Z").Time()

	tests := []struct {
		name      string
		from      time.Time
		past      bool
		inclusive bool
		want      []string
	}{
		{
			name: "forward",
			from: from,
			want: []string{
				"2024-11-03T01:00:00-05:00[America/New_York]",
				"2025-03-09T03:00:00-04:00[America/New_York]",
			},
		},
		{
			name: "past",
			from: from,
			past: true,
			want: []string{
				"2024-03-10T03:00:00-04:00[America/New_York]",
				"2023-11-05T01:00:00-05:00[America/New_York]",
			},
		},
		{
			name: "forward from a transition excludes it",
			from: transition,
			want: []string{
				"2025-03-09T03:00:00-04:00[America/New_York]",
				"2025-11-02T01:00:00-05:00[America/New_York]",
			},
		},
		{
			name:      "forward inclusive from a transition",
			from:      transition,
			inclusive: true,
			want: []string{
				"2024-11-03T01:00:00-05:00[America/New_York]",
				"2025-03-09T03:00:00-04:00[America/New_York]",
			},
		},
		{
			name: "past from a transition excludes it",
			from: transition,
			past: true,
			want: []string{
				"2024-03-10T03:00:00-04:00[America/New_York]",
				"2023-11-05T01:00:00-05:00[America/New_York]",
			},
		},
		{
			name:      "past inclusive from a transition",
			from:      transition,
			past:      true,
			inclusive: true,
			want: []string{
				"2024-11-03T01:00:00-05:00[America/New_York]",
				"2024-03-10T03:00:00-04:00[America/New_York]",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := NewSequencer(newYork(t), tt.from, tt.past, tt.inclusive)
			assert.Equal(t, tt.want, render(seq.Take(2)))
		})
	}
}

func TestSequencerNth(t *testing.T) {
	from := mustParse(t, "2024-07-20T16:30:55-04:00[America/New_York]").Time()
	dt, ok := NewSequencer(newYork(t), from, false, false).Nth(2)
	require.True(t, ok)
	assert.Equal(t, "2025-03-09T03:00:00-04:00[America/New_York]", dt.String())
}

func TestSequencerWithoutTransitions(t *testing.T) {
	from := time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, NewSequencer(datetime.Fixed(-4*3600), from, false, false).Take(3))
	assert.Empty(t, NewSequencer(datetime.UTC(), from, true, false).Take(3))

	_, ok := NewSequencer(datetime.Unknown(), from, false, false).Nth(1)
	assert.False(t, ok)
}

func TestCompatible(t *testing.T) {
	names := []string{"America/Chicago", "America/Detroit", "America/New_York", "America/Santiago", "Etc/GMT+4"}

	named := mustParse(t, "2024-07-20T16:30:55-04:00[America/New_York]")
	assert.Equal(t, []string{"America/Detroit", "America/New_York"}, Compatible(named, names))

	fixed := mustParse(t, "2024-07-20T16:30:55-04:00")
	got := Compatible(fixed, names)
	assert.Contains(t, got, "America/New_York")
	assert.Contains(t, got, "Etc/GMT+4")
	assert.NotContains(t, got, "America/Chicago")

	unknown := mustParse(t, "2024-07-20T20:30:55Z")
	assert.Equal(t, []string{"Etc/Unknown"}, Compatible(unknown, names))
}

func TestDescribe(t *testing.T) {
	at := time.Date(2024, 7, 20, 20, 30, 55, 0, time.UTC)
	got := Describe([]string{"America/New_York", "Not/AZone", "Asia/Kolkata"}, at)
	assert.Equal(t, []Entry{
		{Name: "America/New_York", Offset: "-04:00", Abbrev: "EDT"},
		{Name: "Asia/Kolkata", Offset: "+05:30", Abbrev: "IST"},
	}, got)
}

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestListNames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "America/New_York", "TZif2...")
	writeFile(t, root, "America/Argentina/Salta", "TZif2...")
	writeFile(t, root, "UTC", "TZif2...")
	writeFile(t, root, "posix/UTC", "TZif2...")
	writeFile(t, root, "right/UTC", "TZif2...")
	writeFile(t, root, "localtime", "TZif2...")
	writeFile(t, root, "posixrules", "TZif2...")
	writeFile(t, root, "zone.tab", "# tz zone descriptions\n")
	writeFile(t, root, "empty", "")

	got, err := ListNames(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"America/Argentina/Salta", "America/New_York", "UTC"}, got)

	_, err = ListNames(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestRootFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ZONEINFO", dir)
	got, err := Root()
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestSortedLongestFirst(t *testing.T) {
	in := []string{"UTC", "America/New_York", "EST", "Asia/Tokyo"}
	assert.Equal(t, []string{"America/New_York", "Asia/Tokyo", "EST", "UTC"}, SortedLongestFirst(in))
	assert.Equal(t, "UTC", in[0])
}
