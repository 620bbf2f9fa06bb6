// Package evaluator takes a routine that has already passed the checker,
// and a concrete input inhabiting T[0], threads values through the DAG, and
// returns the last node's output.
package evaluator

import (
	"fmt"

	"github.com/snow-ghost/listroutines/core"
	"github.com/snow-ghost/listroutines/typelattice"
)

var paramSlotNames = []string{"k", "n"}

// ErrInputNotInhabited is returned when the supplied input does not satisfy
// T[0], the Evaluator's sole precondition beyond a successful Check.
var ErrInputNotInhabited = fmt.Errorf("evaluator: input does not inhabit the routine's inferred input type")

// Evaluate runs r on input, given the type vector T produced by
// checker.Check(reg, r). Returns ErrInputNotInhabited if the precondition
// fails, otherwise the final node's output.
func Evaluate(reg core.Registry, r core.Routine, T []typelattice.Type, input core.Value) (core.Value, error) {
	if !typelattice.Inhabits(input, T[0]) {
		return core.Value{}, ErrInputNotInhabited
	}

	V := make([]core.Value, len(r.Nodes)+1)
	V[0] = input

	for i, node := range r.Nodes {
		_, impl, ok := reg.Lookup(node.Name)
		if !ok {
			return core.Value{}, fmt.Errorf("evaluator: node %d: unknown subroutine %q", i, node.Name)
		}
		in := resolve(node.Input, V)
		params, err := resolveParams(node.Params, V)
		if err != nil {
			return core.Value{}, fmt.Errorf("evaluator: node %d: %w", i, err)
		}
		out, err := impl.Evaluate(in, params)
		if err != nil {
			return core.Value{}, fmt.Errorf("evaluator: node %d (%s): %w", i, node.Name, err)
		}
		V[i+1] = out
	}

	return V[len(r.Nodes)], nil
}

func resolve(w core.Wire, V []core.Value) core.Value {
	if w.Kind == core.WireStatic {
		return core.Int(w.Static)
	}
	return V[w.Ref]
}

// resolveParams applies the fixed k/n naming convention: the first
// parameter wire becomes "k", the second "n".
func resolveParams(params []core.Wire, V []core.Value) (map[string]int64, error) {
	out := make(map[string]int64, len(params))
	for pi, w := range params {
		if pi >= len(paramSlotNames) {
			return nil, fmt.Errorf("too many parameter wires (max %d)", len(paramSlotNames))
		}
		val := resolve(w, V)
		if val.IsList {
			return nil, fmt.Errorf("parameter slot %s resolved to a list, not an int", paramSlotNames[pi])
		}
		out[paramSlotNames[pi]] = val.Int
	}
	return out, nil
}
