//go:build !race

package seqlock

import "runtime"

// Detect TSO architectures; on TSO, plain copies of the protected bytes
// are safe between the atomic sequence operations that bracket them
const isTSO = runtime.GOARCH == "amd64" ||
	runtime.GOARCH == "386" ||
	runtime.GOARCH == "s390x"

const raceEnabled = false
