// Package registry implements a process-wide, immutable-after-load catalog
// mapping a subroutine name to its Descriptor (parsed from a YAML manifest)
// and Implementation (bound from a statically-linked Go table,
// registry/builtins).
package registry

import (
	"sort"

	"github.com/snow-ghost/listroutines/core"
)

type entry struct {
	descriptor core.Descriptor
	impl       core.Implementation
}

// Registry is the read-only, name-keyed catalog. Safe for concurrent reads
// by construction: it is never mutated after LoadFS returns.
type Registry struct {
	entries map[string]entry
	names   []string // precomputed, sorted once at load time
}

// Lookup implements core.Registry.
func (r *Registry) Lookup(name string) (core.Descriptor, core.Implementation, bool) {
	e, ok := r.entries[name]
	if !ok {
		return core.Descriptor{}, core.Implementation{}, false
	}
	return e.descriptor, e.impl, true
}

// Names implements core.Registry: lexicographic, deterministic order.
func (r *Registry) Names() []string {
	return r.names
}

func newRegistry(entries map[string]entry) *Registry {
	names := make([]string, 0, len(entries))
	for n := range entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return &Registry{entries: entries, names: names}
}

var _ core.Registry = (*Registry)(nil)
