// Package timezone enumerates the system time zone database and walks the
// offset transitions of a zone.
package timezone

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/penwyp/biff/internal/util"
	"github.com/pkg/errors"
)

var defaultRoots = []string{
	"/usr/share/zoneinfo",
	"/usr/lib/zoneinfo",
	"/usr/share/lib/zoneinfo",
	"/etc/zoneinfo",
}

var excluded = map[string]bool{
	"localtime":  true,
	"posixrules": true,
}

// Root returns the zoneinfo directory: $ZONEINFO when set, otherwise the
// first default location that exists.
func Root() (string, error) {
	if dir := os.Getenv("ZONEINFO"); dir != "" {
		return dir, nil
	}
	for _, dir := range defaultRoots {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", errors.New("failed to find a time zone database directory")
}

// ListNames returns every zone identifier under root in sorted order,
// skipping the posix/ and right/ trees and files that are not TZif data.
func ListNames(root string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel == "posix" || rel == "right" {
				return filepath.SkipDir
			}
			return nil
		}
		if excluded[rel] || !isTZif(path) {
			return nil
		}
		names = append(names, rel)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read time zone database at %s", root)
	}
	sort.Strings(names)
	util.LogDebugf("found %d time zones under %s", len(names), root)
	return names, nil
}

func isTZif(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	magic := make([]byte, 4)
	if _, err := f.Read(magic); err != nil {
		return false
	}
	return bytes.Equal(magic, []byte("TZif"))
}

var (
	namesOnce sync.Once
	names     []string
	namesErr  error
)

// Names returns the zone identifiers of the system database, loaded once.
func Names() ([]string, error) {
	namesOnce.Do(func() {
		root, err := Root()
		if err != nil {
			namesErr = err
			return
		}
		names, namesErr = ListNames(root)
	})
	return names, namesErr
}

// SortedLongestFirst returns names ordered by descending length, then
// lexically, so alternations prefer the longest identifier.
func SortedLongestFirst(names []string) []string {
	out := append([]string(nil), names...)
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return strings.Compare(out[i], out[j]) < 0
	})
	return out
}
