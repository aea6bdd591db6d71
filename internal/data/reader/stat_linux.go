package reader

import (
	"time"

	"golang.org/x/sys/unix"
)

func statTimes(path string) (FileTimes, error) {
	var stx unix.Statx_t
	mask := unix.STATX_MTIME | unix.STATX_ATIME | unix.STATX_BTIME
	if err := unix.Statx(unix.AT_FDCWD, path, 0, mask, &stx); err != nil {
		return FileTimes{}, err
	}

	var ft FileTimes
	if stx.Mask&unix.STATX_MTIME != 0 {
		ft.Modified = statxTime(stx.Mtime)
	}
	if stx.Mask&unix.STATX_ATIME != 0 {
		ft.Accessed = statxTime(stx.Atime)
	}
	if stx.Mask&unix.STATX_BTIME != 0 {
		ft.Created = statxTime(stx.Btime)
	}
	return ft, nil
}

func statxTime(ts unix.StatxTimestamp) time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec))
}
