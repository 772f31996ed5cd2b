package seqlock

import (
	"sync/atomic"
	"unsafe"
)

// Object is a seqlock wrapping a single value of a bitwise-copyable type T.
// A single writer publishes updates with Store while any number of readers
// observe consistent snapshots with Load / TryLoad. Readers never block the
// writer and never block each other; a read that overlaps a write is
// detected through the sequence counter and retried.
//
// The sequence counter is even when the stored bytes are stable and odd
// while a write is in progress. Each completed Store advances it by 2;
// wraparound is benign because readers only compare two nearby loads for
// equality, never absolute magnitude.
//
// Concurrency model:
//   - Readers: s1 = seq (must be even), copy the slot out, s2 = seq;
//     the snapshot is valid iff s1 == s2. TryLoad is wait-free.
//   - Writer: seq = s+1 (odd), copy the slot in, seq = s+2 (even).
//     Store is wait-free and must not be called concurrently; writer
//     exclusivity is a caller contract, not enforced at runtime.
//
// T must not contain pointers (no pointers, maps, slices, strings, chans,
// funcs or interfaces anywhere in its representation); the constructors
// panic otherwise. This keeps a torn byte image inert: a rejected snapshot
// is discarded without ever being interpreted.
type Object[T any] struct {
	//lint:ignore U1000 prevents false sharing
	pad [(CacheLineSize - unsafe.Sizeof(struct {
		_   noCopy
		seq atomic.Uint64
	}{})%CacheLineSize) % CacheLineSize]byte

	_    noCopy
	seq  atomic.Uint64
	slot seqSlot[T]
}

// New creates an Object holding the zero value of T.
// The zero value is installed through the normal store path, so no
// uninitialized state is ever observable.
func New[T any]() *Object[T] {
	return NewWith(*new(T))
}

// NewWith creates an Object holding the given initial value.
// It panics if T contains pointers in its memory representation.
func NewWith[T any](v T) *Object[T] {
	if iTypeFor[T]().PtrBytes != 0 {
		panic("seqlock: T must be a bitwise-copyable type without pointers")
	}
	o := &Object[T]{}
	o.Store(v)
	return o
}

// Load returns the current value, retrying until a consistent snapshot is
// observed. Wait-free if there are no concurrent writes; otherwise bounded
// only by writer progress. The slow path backs off between attempts.
func (o *Object[T]) Load() T {
	var v T
	if o.TryLoad(&v) {
		return v
	}
	return o.loadSlow()
}

func (o *Object[T]) loadSlow() (v T) {
	var spins int
	for !o.TryLoad(&v) {
		delay(&spins)
	}
	return v
}

// TryLoad attempts to read the current value into out, without retrying.
// It returns false if a write was in flight when it started or overlapped
// the copy; out holds an unspecified value in that case. Wait-free: a
// bounded number of memory operations regardless of writer activity.
//
//go:nosplit
func (o *Object[T]) TryLoad(out *T) bool {
	s1 := o.seq.Load()
	if s1&1 != 0 {
		return false
	}
	o.slot.copyOut(out)
	// Equal and even across the copy window proves no write overlapped it.
	// A write completing in between leaves the counter at s1+2 or later.
	return o.seq.Load() == s1
}

// Store publishes v. Wait-free: no retry loop and no dependency on readers.
//
// Store must only be called from a single writer at a time; concurrent
// calls corrupt the sequence protocol and are not detected.
//
//go:nosplit
func (o *Object[T]) Store(v T) {
	// load+store has better characteristics than Add here: the counter is
	// writer-owned, so there is nothing to contend with.
	s := o.seq.Load()
	o.seq.Store(s + 1)
	o.slot.copyIn(&v)
	o.seq.Store(s + 2)
}

// Sequence returns the current raw sequence counter value. Even values
// indicate a stable object; the counter advances by 2 per completed Store.
// Intended for diagnostics and tests.
//
//go:nosplit
func (o *Object[T]) Sequence() uint64 {
	return o.seq.Load()
}
