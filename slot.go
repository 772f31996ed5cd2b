package seqlock

import (
	"sync/atomic"
	"unsafe"
)

// seqSlot holds the protected value's byte image inline. Access goes only
// through copyOut/copyIn, which are race-free even though T as a whole has
// no native atomic access: the copy strategy is fixed at compile time.
//
// Copy strategies, selected by build mode and architecture:
//   - race build: both directions use runtime.memmove, which is not
//     instrumented, so the deliberate read/write overlap of a seqlock is
//     not reported. Torn results are still rejected by the caller's
//     sequence re-check.
//   - TSO (amd64/386/s390x): plain typed copies; the atomic sequence
//     operations around the copy act as compiler and hardware fences.
//   - weak memory models, word-copyable T: per-word atomic loads/stores.
//     Go has no byte-granular atomics; uintptr words give the same
//     per-cell atomicity the per-byte fallback would.
//   - weak memory models, odd-shaped T: plain typed copy; the read side
//     issues an atomic store afterwards as an acquire-fence equivalent so
//     the copied bytes cannot be reordered past the sequence re-check.
//
// Neither operation can fail and neither allocates; the worst outcome is a
// stale or torn image that the sequence counter protocol discards.
type seqSlot[T any] struct {
	_   [0]atomic.Uintptr
	buf T
}

// wordCopyable reports whether T can be copied as whole uintptr words.
// The slot buffer itself is always word-aligned; the alignment check is
// for the caller-supplied destination and source values.
//
//go:nosplit
func wordCopyable[T any]() bool {
	var t T
	return unsafe.Sizeof(t) != 0 &&
		unsafe.Sizeof(t)%wordSize == 0 &&
		unsafe.Alignof(t) >= wordSize
}

// copyOut reads the stored bytes into dst with acquire-equivalent
// visibility: any Store published before the surrounding sequence window
// opened is fully visible.
//
//go:nosplit
func (s *seqSlot[T]) copyOut(dst *T) {
	if raceEnabled {
		memmove(
			unsafe.Pointer(dst),
			unsafe.Pointer(&s.buf),
			unsafe.Sizeof(s.buf),
		)
		return
	}
	if isTSO || !wordCopyable[T]() {
		*dst = s.buf
		if !isTSO {
			// Acquire-fence equivalent: an atomic store orders the plain
			// copy above before the caller's sequence re-check.
			var fence atomic.Uintptr
			fence.Store(1)
		}
		return
	}
	n := unsafe.Sizeof(s.buf) / wordSize
	for i := uintptr(0); i < n; i++ {
		src := (*uintptr)(unsafe.Add(unsafe.Pointer(&s.buf), i*wordSize))
		out := (*uintptr)(unsafe.Add(unsafe.Pointer(dst), i*wordSize))
		*out = atomic.LoadUintptr(src)
	}
}

// copyIn is the writer-side mirror: it stores the bytes of *src with
// release-equivalent visibility. Must be called inside an odd sequence
// window.
//
//go:nosplit
func (s *seqSlot[T]) copyIn(src *T) {
	if raceEnabled {
		memmove(
			unsafe.Pointer(&s.buf),
			unsafe.Pointer(src),
			unsafe.Sizeof(s.buf),
		)
		return
	}
	if isTSO || !wordCopyable[T]() {
		s.buf = *src
		return
	}
	n := unsafe.Sizeof(s.buf) / wordSize
	for i := uintptr(0); i < n; i++ {
		in := (*uintptr)(unsafe.Add(unsafe.Pointer(src), i*wordSize))
		dst := (*uintptr)(unsafe.Add(unsafe.Pointer(&s.buf), i*wordSize))
		atomic.StoreUintptr(dst, *in)
	}
}
