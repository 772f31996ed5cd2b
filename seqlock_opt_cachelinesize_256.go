//go:build seqlock_opt_cachelinesize_256

package seqlock

// CacheLineSize is used in structure padding to prevent false sharing.
const CacheLineSize = 256
