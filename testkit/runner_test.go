package testkit

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/listroutines/core"
	"github.com/snow-ghost/listroutines/registry"
	"github.com/snow-ghost/listroutines/registry/builtins"
)

func testRegistry(t *testing.T) core.Registry {
	t.Helper()
	fsys := os.DirFS("../routines")
	reg, warnings, err := registry.LoadFS(fsys, builtins.Table())
	require.NoError(t, err)
	require.Empty(t, warnings)
	return reg
}

func singleNode(name string, input core.Wire, params ...core.Wire) core.Routine {
	return core.Routine{Nodes: []core.Node{{Name: name, Input: input, Params: params}}}
}

func TestRunner_Run_AllPass(t *testing.T) {
	reg := testRegistry(t)
	runner := NewRunner(reg)

	cases := []Case{
		{
			Name:    "multiply-k",
			Routine: singleNode("multiply-k", core.DynWire(0), core.StaticWire(3)),
			Input:   core.IntList([]int64{1, 2, 3}),
			Want:    core.IntList([]int64{3, 6, 9}),
		},
		{
			Name:    "sum",
			Routine: singleNode("sum", core.DynWire(0)),
			Input:   core.IntList([]int64{1, 2, 3}),
			Want:    core.Int(6),
		},
	}

	metrics, pass := runner.Run(cases)
	assert.True(t, pass)
	assert.Equal(t, float64(2), metrics["cases_total"])
	assert.Equal(t, float64(2), metrics["cases_passed"])
	assert.Equal(t, float64(0), metrics["cases_failed"])
}

func TestRunner_Run_Failure(t *testing.T) {
	reg := testRegistry(t)
	runner := NewRunner(reg)

	cases := []Case{
		{
			Name:    "wrong expectation",
			Routine: singleNode("double", core.DynWire(0)),
			Input:   core.Int(4),
			Want:    core.Int(9),
		},
	}

	metrics, pass := runner.Run(cases)
	assert.False(t, pass)
	assert.Equal(t, float64(1), metrics["cases_failed"])
}

func TestRunner_Run_BadRoutineFails(t *testing.T) {
	reg := testRegistry(t)
	runner := NewRunner(reg)

	cases := []Case{
		{
			Name:    "unknown subroutine",
			Routine: singleNode("not-a-real-subroutine", core.DynWire(0)),
			Input:   core.Int(1),
			Want:    core.Int(1),
		},
	}

	_, pass := runner.Run(cases)
	assert.False(t, pass)
}
