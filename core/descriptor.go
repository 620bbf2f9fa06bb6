package core

import "math/rand"

// ParamSpec declares one parameter slot of a subroutine. By convention a
// subroutine has at most two parameters and they are named "k" and "n".
type ParamSpec struct {
	Name   string   `yaml:"name"`
	Labels []string `yaml:"labels"` // type-template labels for this slot, may reference Name
}

// Descriptor is the catalog entry for a registered subroutine: metadata plus
// the type templates for its input and output slots. Evaluate/GenerateInput
// live in the paired Implementation (see registry/builtins), not here —
// Descriptor is what a YAML manifest deserializes into.
type Descriptor struct {
	Name              string            `yaml:"name"`
	InputLabels       []string          `yaml:"input"`
	OutputLabels      []string          `yaml:"output"`
	Params            []ParamSpec       `yaml:"params"`
	Description       string            `yaml:"description"`
	Deps              []string          `yaml:"deps"`
	ExampleParams     map[string]int64  `yaml:"example_params"`
	Examples          []ManifestValue   `yaml:"examples"`
	DescriptionTokens int               `yaml:"-"`
}

// ManifestValue is the YAML-friendly encoding of a Value: either a scalar or
// a list, disambiguated by which field is present.
type ManifestValue struct {
	Int  *int64  `yaml:"int,omitempty"`
	List []int64 `yaml:"list,omitempty"`
}

// ToValue converts a manifest literal into a core.Value.
func (m ManifestValue) ToValue() Value {
	if m.List != nil {
		return IntList(m.List)
	}
	if m.Int != nil {
		return Int(*m.Int)
	}
	return Int(0)
}

// GenParams bundles the recognized generator options from spec §4.2: a
// requested candidate count, plus optional hints a subroutine's generator
// may use instead of its own defaults.
type GenParams struct {
	Count         int
	LenDefault    func(rng *rand.Rand) int
	LenValid      func(n int) bool
	ElementDefault func(rng *rand.Rand) int64
	ElementValid  func(v int64) bool
}

// Implementation is the statically-linked half of a subroutine: the
// evaluator and input generator bound to a Descriptor's Name. Registered in
// registry/builtins via an init()-populated table.
type Implementation struct {
	// Evaluate computes the subroutine's output given its resolved input
	// value and resolved parameter values (keyed "k", "n").
	Evaluate func(input Value, params map[string]int64) (Value, error)

	// GenerateInput proposes Count candidate inputs for this subroutine,
	// honoring static params already chosen for the consuming node (e.g. a
	// length-at-least-k generator must propose lists of length >= k).
	GenerateInput func(rng *rand.Rand, params GenParams, staticParams map[string]int64) ([]Value, error)

	// GenerateParam samples one candidate value for the named parameter
	// slot, bounded by randLimit, used by the Enumerator when it needs to
	// fabricate a fresh static wire.
	GenerateParam func(rng *rand.Rand, slot string, randLimit int64) int64
}
