//go:build !linux

package reader

import "os"

// Outside Linux only the modification time is portable.
func statTimes(path string) (FileTimes, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileTimes{}, err
	}
	return FileTimes{Modified: info.ModTime()}, nil
}
