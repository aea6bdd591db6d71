package reader

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// StatKind selects one timestamp of file metadata.
type StatKind int

const (
	Modified StatKind = iota
	Accessed
	Created
)

func (k StatKind) String() string {
	switch k {
	case Modified:
		return "modified"
	case Accessed:
		return "accessed"
	case Created:
		return "created"
	}
	return "unknown"
}

// ParseStatKinds parses a comma separated list such as "modified,created".
func ParseStatKinds(s string) ([]StatKind, error) {
	var kinds []StatKind
	for _, name := range strings.Split(s, ",") {
		switch strings.TrimSpace(name) {
		case "modify", "modified":
			kinds = append(kinds, Modified)
		case "access", "accessed":
			kinds = append(kinds, Accessed)
		case "create", "created", "creation", "birth":
			kinds = append(kinds, Created)
		default:
			return nil, errors.Errorf("unknown file metadata kind: `%s`", name)
		}
	}
	return kinds, nil
}

// FileTimes holds the timestamps the platform reports for a file. A zero
// value means the file system does not record that kind.
type FileTimes struct {
	Modified time.Time
	Accessed time.Time
	Created  time.Time
}

// Get returns the timestamp of one kind.
func (ft FileTimes) Get(k StatKind) (time.Time, error) {
	var t time.Time
	switch k {
	case Modified:
		t = ft.Modified
	case Accessed:
		t = ft.Accessed
	case Created:
		t = ft.Created
	}
	if t.IsZero() {
		return time.Time{}, errors.Errorf("failed to get %s time", k)
	}
	return t, nil
}

// Stat reads the timestamps of path, following symlinks.
func Stat(path string) (FileTimes, error) {
	ft, err := statTimes(path)
	if err != nil {
		return FileTimes{}, errors.Wrapf(err, "failed to stat %s", path)
	}
	return ft, nil
}
