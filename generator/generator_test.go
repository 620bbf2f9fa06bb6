package generator

import (
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/listroutines/checker"
	"github.com/snow-ghost/listroutines/core"
	"github.com/snow-ghost/listroutines/evaluator"
	"github.com/snow-ghost/listroutines/registry"
	"github.com/snow-ghost/listroutines/registry/builtins"
	"github.com/snow-ghost/listroutines/typelattice"
)

func testRegistry(t *testing.T) core.Registry {
	t.Helper()
	reg, warnings, err := registry.LoadFS(os.DirFS("../routines"), builtins.Table())
	require.NoError(t, err)
	require.Empty(t, warnings)
	return reg
}

func node(name string, input core.Wire, params ...core.Wire) core.Node {
	return core.Node{Name: name, Input: input, Params: params}
}

// Every generated (in, out) pair must satisfy evaluate(r, in) == out.
func TestGenerate_RoundTrip(t *testing.T) {
	reg := testRegistry(t)
	r := core.Routine{Nodes: []core.Node{
		node("multiply-k", core.DynWire(0), core.StaticWire(3)),
	}}
	T, err := checker.Check(reg, r)
	require.NoError(t, err)

	g := New(reg, 0)
	rng := rand.New(rand.NewSource(1))
	examples, err := g.Generate(rng, r, T, core.GenParams{Count: 5})
	require.NoError(t, err)
	require.Len(t, examples, 5)

	for _, ex := range examples {
		assert.True(t, typelattice.Inhabits(ex.Input, T[0]))
		got, err := evaluator.Evaluate(reg, r, T, ex.Input)
		require.NoError(t, err)
		assert.True(t, got.Equal(ex.Output))
	}
}

func TestGenerate_DefaultsCountToThree(t *testing.T) {
	reg := testRegistry(t)
	r := core.Routine{Nodes: []core.Node{node("sum", core.DynWire(0))}}
	T, err := checker.Check(reg, r)
	require.NoError(t, err)

	g := New(reg, 0)
	rng := rand.New(rand.NewSource(2))
	examples, err := g.Generate(rng, r, T, core.GenParams{})
	require.NoError(t, err)
	assert.Len(t, examples, 3)
}

func TestGenerate_RejectsRoutineNotStartingAtOverallInput(t *testing.T) {
	reg := testRegistry(t)
	r := core.Routine{Nodes: []core.Node{node("double", core.StaticWire(2))}}
	g := New(reg, 0)
	rng := rand.New(rand.NewSource(3))
	dummyT := make([]typelattice.Type, 1)
	_, err := g.Generate(rng, r, dummyT, core.GenParams{})
	assert.Error(t, err)
}

func TestGenerate_UnknownFirstNode(t *testing.T) {
	reg := testRegistry(t)
	r := core.Routine{Nodes: []core.Node{node("not-registered", core.DynWire(0))}}
	g := New(reg, 0)
	rng := rand.New(rand.NewSource(4))
	dummyT := make([]typelattice.Type, 1)
	_, err := g.Generate(rng, r, dummyT, core.GenParams{})
	assert.Error(t, err)
}
