package core

import "math/rand"

// Registry looks up registered subroutines. Populated once at process start
// and immutable thereafter.
type Registry interface {
	Lookup(name string) (Descriptor, Implementation, bool)
	Names() []string // deterministic, lexicographic order
}

// CheckError names which check failed.
type CheckError struct {
	Stage string // "names" | "connectedness" | "static-validity" | "inference"
	Msg   string
}

func (e *CheckError) Error() string { return e.Stage + ": " + e.Msg }

// Rand is the injectable PRNG surface the Enumerator and Generator use, so
// callers can seed it for reproducible runs.
type Rand = *rand.Rand
