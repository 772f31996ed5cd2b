package seqlock

import (
	"time"
	"unsafe"
)

// Ordering assumptions:
//
// We assume that all functions in sync/atomic that perform a memory read
// are at least a read fence, and that all functions that perform a memory
// write are at least a write fence: plain memory operations cannot be
// reordered across the call in either direction, by the compiler or the
// hardware. The Go memory model does not spell this out for mixed
// atomic/non-atomic access, but it is how sync/atomic is implemented on
// every supported architecture and what the runtime itself relies on.
// The sequence counter operations in Object therefore double as the
// acquire/release witnesses for the plain-copy slot strategies.

const wordSize = unsafe.Sizeof(uintptr(0))

// enableSpin controls whether waiting in Load's slow path starts with
// active spinning via runtime_doSpin (the CPU's PAUSE instruction) before
// falling back to sleeping. Spinning wins when the writer's critical
// section is a handful of instructions, which it is here.
const enableSpin = true

// noCopy may be embedded into structs which must not be copied
// after the first use. See https://golang.org/issues/8005#issuecomment-190753527
type noCopy struct{}

// Lock is a no-op used by copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

func delay(spins *int) {
	const yieldSleep = 500 * time.Microsecond
	if enableSpin && runtime_canSpin(*spins) {
		runtime_doSpin()
		*spins++
	} else {
		// time.Sleep with non-zero duration (sub-millisecond level) works
		// effectively as backoff under high concurrency.
		time.Sleep(yieldSleep)
		*spins = 0
	}
}

// nolint:all
//
//go:linkname runtime_canSpin sync.runtime_canSpin
//go:nosplit
func runtime_canSpin(i int) bool

// nolint:all
//
//go:linkname runtime_doSpin sync.runtime_doSpin
//go:nosplit
func runtime_doSpin()

// memmove is runtime.memmove. It is not instrumented by the race detector,
// which is exactly why the race-build slot copy goes through it.
//
// nolint:all
//
//go:linkname memmove runtime.memmove
//go:noescape
func memmove(to, from unsafe.Pointer, n uintptr)

// noescape hides a pointer from escape analysis.  noescape is
// the identity function but escape analysis doesn't think the
// output depends on the input.  noescape is inlined and currently
// compiles down to zero instructions.
// USE CAREFULLY!
//
// nolint:all
//
//go:nosplit
//goland:noinspection ALL
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}

type iTFlag uint8
type iKind uint8
type iNameOff int32

// iTypeOff is the offset to a type from moduledata.types. See resolveTypeOff in runtime.
type iTypeOff int32

// iType mirrors the runtime type descriptor. Only PtrBytes is read here,
// at construction time, to reject value types whose representation
// contains pointers.
//
// Notes:
//   - This relies on Go's internal type representation
//   - It should be verified for compatibility with each Go version upgrade
type iType struct {
	Size_       uintptr
	PtrBytes    uintptr // number of (prefix) bytes in the type that can contain pointers
	Hash        uint32  // hash of type; avoids computation in hash tables
	TFlag       iTFlag  // extra type information flags
	Align_      uint8   // alignment of variable with this type
	FieldAlign_ uint8   // alignment of struct field with this type
	Kind_       iKind   // enumeration for C
	// function for comparing objects of this type
	// (ptr to object A, ptr to object B) -> ==?
	Equal func(unsafe.Pointer, unsafe.Pointer) bool
	// GCData stores the GC type data for the garbage collector.
	GCData    *byte
	Str       iNameOff // string form
	PtrToThis iTypeOff // type for pointer to this type, may be zero
}

func (t *iType) PtrType() *iPtrType {
	return (*iPtrType)(unsafe.Pointer(t))
}

type iPtrType struct {
	iType
	Elem *iType
}

func iTypeOf(a any) *iType {
	eface := *(*iEmptyInterface)(unsafe.Pointer(&a))
	// Types are either static (for compiler-created types) or
	// heap-allocated but always reachable (for reflection-created
	// types, held in the central map). So there is no need to
	// escape types. noescape here help avoid unnecessary escape
	// of v.
	return (*iType)(noescape(unsafe.Pointer(eface.Type)))
}

type iEmptyInterface struct {
	Type *iType
	Data unsafe.Pointer
}

// iTypeFor resolves the type descriptor of T itself, even when T is an
// interface type: boxing a *T keeps T's identity where boxing a T value
// would surface only its dynamic type.
func iTypeFor[T any]() *iType {
	return iTypeOf((*T)(nil)).PtrType().Elem
}
