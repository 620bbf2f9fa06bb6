// Package builtins is the statically-linked half of the subroutine library:
// a registration table pairing each manifest name in routines/*.yaml with a
// core.Implementation. Splitting metadata (YAML) from behavior (this
// package) keeps declarative shape separate from the Go code that backs it.
package builtins

import "math/rand"

const defaultCandidateCount = 5

// count returns the requested candidate count, or the package default when
// the caller didn't ask for a specific one.
func count(n int) int {
	if n <= 0 {
		return defaultCandidateCount
	}
	return n
}

// randInt returns a uniform value in [lo, hi]. Falls back to lo if the range
// is degenerate, which happens for tight static bounds (e.g. k == n).
func randInt(rng *rand.Rand, lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Int63n(hi-lo+1)
}

// randList fills a slice of the given length with values in [lo, hi].
func randList(rng *rand.Rand, length int, lo, hi int64) []int64 {
	out := make([]int64, length)
	for i := range out {
		out[i] = randInt(rng, lo, hi)
	}
	return out
}

// randLen picks a list length at or above min, biased toward small lists so
// generated examples stay readable.
func randLen(rng *rand.Rand, min int) int {
	return min + rng.Intn(4)
}
