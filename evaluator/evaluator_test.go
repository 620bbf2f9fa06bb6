package evaluator

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/listroutines/checker"
	"github.com/snow-ghost/listroutines/core"
	"github.com/snow-ghost/listroutines/registry"
	"github.com/snow-ghost/listroutines/registry/builtins"
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

func checkAndEvaluate(t *testing.T, reg core.Registry, r core.Routine, input core.Value) (core.Value, error) {
	t.Helper()
	T, err := checker.Check(reg, r)
	require.NoError(t, err)
	return Evaluate(reg, r, T, input)
}

// multiply-k applied elementwise to a list.
func TestEvaluate_MultiplyKElementwise(t *testing.T) {
	reg := testRegistry(t)
	r := core.Routine{Nodes: []core.Node{
		node("multiply-k", core.DynWire(0), core.StaticWire(3)),
	}}
	out, err := checkAndEvaluate(t, reg, r, core.IntList([]int64{1, 2, 3}))
	require.NoError(t, err)
	assert.True(t, out.Equal(core.IntList([]int64{3, 6, 9})))
}

// index-k feeds add-k's k param; the overall input also flows into add-k directly.
func TestEvaluate_IndexThenAdd(t *testing.T) {
	reg := testRegistry(t)
	r := core.Routine{Nodes: []core.Node{
		node("index-k", core.DynWire(0), core.StaticWire(3)),
		node("add-k", core.DynWire(0), core.DynWire(1)),
	}}
	out, err := checkAndEvaluate(t, reg, r, core.IntList([]int64{1, 2, 3, 4, 5}))
	require.NoError(t, err)
	assert.True(t, out.Equal(core.IntList([]int64{4, 5, 6, 7, 8})))
}

// Same routine, input too short for k=3.
func TestEvaluate_IndexThenAddInputTooShort(t *testing.T) {
	reg := testRegistry(t)
	r := core.Routine{Nodes: []core.Node{
		node("index-k", core.DynWire(0), core.StaticWire(3)),
		node("add-k", core.DynWire(0), core.DynWire(1)),
	}}
	T, err := checker.Check(reg, r)
	require.NoError(t, err)
	_, err = Evaluate(reg, r, T, core.IntList([]int64{0, 5}))
	assert.ErrorIs(t, err, ErrInputNotInhabited)
}

// product on a non-empty list.
func TestEvaluate_Product(t *testing.T) {
	reg := testRegistry(t)
	r := core.Routine{Nodes: []core.Node{
		node("product", core.DynWire(0)),
	}}
	out, err := checkAndEvaluate(t, reg, r, core.IntList([]int64{2, 3, 4}))
	require.NoError(t, err)
	assert.True(t, out.Equal(core.Int(24)))
}

// last on an empty list.
func TestEvaluate_LastOnEmptyList(t *testing.T) {
	reg := testRegistry(t)
	r := core.Routine{Nodes: []core.Node{
		node("last", core.DynWire(0)),
	}}
	T, err := checker.Check(reg, r)
	require.NoError(t, err)
	_, err = Evaluate(reg, r, T, core.IntList(nil))
	assert.ErrorIs(t, err, ErrInputNotInhabited)
}

func TestEvaluate_UnknownSubroutineAtRuntime(t *testing.T) {
	reg := testRegistry(t)
	r := core.Routine{Nodes: []core.Node{
		node("sum", core.DynWire(0)),
	}}
	T, err := checker.Check(reg, r)
	require.NoError(t, err)

	bogus := core.Routine{Nodes: []core.Node{node("not-registered", core.DynWire(0))}}
	_, err = Evaluate(reg, bogus, T, core.IntList([]int64{1, 2}))
	assert.Error(t, err)
}
