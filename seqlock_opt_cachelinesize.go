//go:build !seqlock_opt_cachelinesize_32 && !seqlock_opt_cachelinesize_64 && !seqlock_opt_cachelinesize_128 && !seqlock_opt_cachelinesize_256

package seqlock

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is used in structure padding to prevent false sharing.
// It's automatically calculated using the `golang.org/x/sys` package.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})
