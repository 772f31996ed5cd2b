//go:build race

package seqlock

// Under the race detector, disable TSO optimizations; the slot copy goes
// through runtime.memmove, which is not instrumented, so the intentional
// reader/writer overlap of a seqlock is not reported. Consistency is still
// guaranteed by the sequence re-check.
const isTSO = false

const raceEnabled = true
