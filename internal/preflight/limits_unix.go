//go:build !windows

package preflight

import (
	"math"
	"syscall"
)

func fileDescriptorLimit() (int, bool) {
	var limit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &limit); err != nil {
		return 0, false
	}
	// RLIM_INFINITY does not fit an int on 32-bit platforms
	if limit.Cur > math.MaxInt32 {
		return math.MaxInt32, true
	}
	return int(limit.Cur), true
}
