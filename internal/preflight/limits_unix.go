//go:build unix

package preflight

import (
	"math"
	"syscall"
)

func openFileLimit() (int, bool) {
	var limit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &limit); err != nil {
		return 0, false
	}
	if uint64(limit.Cur) > math.MaxInt32 {
		return math.MaxInt32, true
	}
	return int(limit.Cur), true
}
