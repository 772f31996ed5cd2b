//go:build seqlock_opt_cachelinesize_32

package seqlock

// CacheLineSize is used in structure padding to prevent false sharing.
const CacheLineSize = 32
