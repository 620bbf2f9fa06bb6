// Package checker validates a routine's DAG shape and infers its type
// vector via four short-circuiting checks — known names, connectedness,
// static validity, and bidirectional type inference — that together either
// produce the routine's inferred type vector T or report which check failed.
package checker

import (
	"fmt"

	"github.com/snow-ghost/listroutines/core"
	"github.com/snow-ghost/listroutines/typelattice"
)

// paramSlotNames is the fixed two-name convention primitive subroutines
// accept: the first parameter wire is "k", the second is "n".
var paramSlotNames = []string{"k", "n"}

// Check runs all four stages against r and returns the inferred type vector
// T (length len(r.Nodes)+1) on success. On failure it returns a
// *core.CheckError naming the stage that failed.
func Check(reg core.Registry, r core.Routine) ([]typelattice.Type, error) {
	if err := checkNames(reg, r); err != nil {
		return nil, err
	}
	if err := checkConnectedness(r); err != nil {
		return nil, err
	}
	if err := checkStaticValidity(reg, r); err != nil {
		return nil, err
	}
	return inferTypes(reg, r)
}

func checkNames(reg core.Registry, r core.Routine) error {
	for i, n := range r.Nodes {
		if _, _, ok := reg.Lookup(n.Name); !ok {
			return &core.CheckError{Stage: "names", Msg: fmt.Sprintf("node %d: unknown subroutine %q", i, n.Name)}
		}
	}
	return nil
}

// checkConnectedness requires every dynamic slot index 0..m-1 (the overall
// input, plus every node's output except the last) to be referenced by at
// least one wire, so no node's output is computed and then thrown away.
func checkConnectedness(r core.Routine) error {
	m := len(r.Nodes)
	referenced := make([]bool, m)
	mark := func(w core.Wire) {
		if w.Kind == core.WireDyn && w.Ref < m {
			referenced[w.Ref] = true
		}
	}
	for _, n := range r.Nodes {
		mark(n.Input)
		for _, p := range n.Params {
			mark(p)
		}
	}
	for j := 0; j < m; j++ {
		if !referenced[j] {
			return &core.CheckError{Stage: "connectedness", Msg: fmt.Sprintf("slot %d is never referenced", j)}
		}
	}
	return nil
}

func staticParamsOf(node core.Node) map[string]int64 {
	out := map[string]int64{}
	for pi, w := range node.Params {
		if pi >= len(paramSlotNames) {
			break
		}
		if w.Kind == core.WireStatic {
			out[paramSlotNames[pi]] = w.Static
		}
	}
	return out
}

func checkStaticValidity(reg core.Registry, r core.Routine) error {
	for i, node := range r.Nodes {
		desc, _, _ := reg.Lookup(node.Name)
		sp := staticParamsOf(node)

		for pi, w := range node.Params {
			if w.Kind != core.WireStatic {
				continue
			}
			if pi >= len(desc.Params) {
				return &core.CheckError{Stage: "static-validity", Msg: fmt.Sprintf("node %d: unexpected extra parameter at slot %d", i, pi)}
			}
			tmpl, err := typelattice.ParseTemplate(desc.Params[pi].Labels)
			if err != nil {
				return &core.CheckError{Stage: "static-validity", Msg: err.Error()}
			}
			ty, err := tmpl.Resolve(sp)
			if err != nil {
				return &core.CheckError{Stage: "static-validity", Msg: err.Error()}
			}
			if !typelattice.Inhabits(core.Int(w.Static), ty) {
				return &core.CheckError{Stage: "static-validity", Msg: fmt.Sprintf("node %d: static param %s=%d does not inhabit its declared type", i, desc.Params[pi].Name, w.Static)}
			}
		}

		if node.Input.Kind == core.WireStatic {
			tmpl, err := typelattice.ParseTemplate(desc.InputLabels)
			if err != nil {
				return &core.CheckError{Stage: "static-validity", Msg: err.Error()}
			}
			ty, err := tmpl.Resolve(sp)
			if err != nil {
				return &core.CheckError{Stage: "static-validity", Msg: err.Error()}
			}
			if !typelattice.Inhabits(core.Int(node.Input.Static), ty) {
				return &core.CheckError{Stage: "static-validity", Msg: fmt.Sprintf("node %d: static input %d does not inhabit its declared type", i, node.Input.Static)}
			}
		}
	}
	return nil
}

// inferTypes runs left-to-right bidirectional propagation, narrowing every
// referenced slot's accumulated type by intersection with each consumer's
// requirement.
func inferTypes(reg core.Registry, r core.Routine) ([]typelattice.Type, error) {
	m := len(r.Nodes)
	T := make([]typelattice.Type, m+1)
	for i := range T {
		T[i] = typelattice.AnyType()
	}

	for i, node := range r.Nodes {
		desc, _, _ := reg.Lookup(node.Name)
		sp := staticParamsOf(node)

		inputTmpl, err := typelattice.ParseTemplate(desc.InputLabels)
		if err != nil {
			return nil, &core.CheckError{Stage: "inference", Msg: err.Error()}
		}
		declaredInput, err := inputTmpl.Resolve(sp)
		if err != nil {
			return nil, &core.CheckError{Stage: "inference", Msg: err.Error()}
		}

		outputTmpl, err := typelattice.ParseTemplate(desc.OutputLabels)
		if err != nil {
			return nil, &core.CheckError{Stage: "inference", Msg: err.Error()}
		}
		outputType, err := typelattice.ResolveOutput(outputTmpl, declaredInput, sp)
		if err != nil {
			return nil, &core.CheckError{Stage: "inference", Msg: fmt.Sprintf("node %d: %v", i, err)}
		}
		T[i+1] = outputType

		if node.Input.Kind == core.WireDyn {
			j := node.Input.Ref
			merged, err := typelattice.IntersectIntroduce(T[j], declaredInput, sp)
			if err != nil {
				return nil, &core.CheckError{Stage: "inference", Msg: fmt.Sprintf("node %d: input slot contradicts slot %d's accumulated type: %v", i, j, err)}
			}
			T[j] = merged
		}

		for pi, w := range node.Params {
			if w.Kind != core.WireDyn {
				continue
			}
			if pi >= len(desc.Params) {
				return nil, &core.CheckError{Stage: "inference", Msg: fmt.Sprintf("node %d: unexpected extra parameter at slot %d", i, pi)}
			}
			paramTmpl, err := typelattice.ParseTemplate(desc.Params[pi].Labels)
			if err != nil {
				return nil, &core.CheckError{Stage: "inference", Msg: err.Error()}
			}
			required, err := paramTmpl.Resolve(sp)
			if err != nil {
				return nil, &core.CheckError{Stage: "inference", Msg: err.Error()}
			}
			j := w.Ref
			merged, err := typelattice.IntersectIntroduce(T[j], required, sp)
			if err != nil {
				return nil, &core.CheckError{Stage: "inference", Msg: fmt.Sprintf("node %d: parameter slot contradicts slot %d's accumulated type: %v", i, j, err)}
			}
			T[j] = merged
		}
	}

	if T[0].Base == typelattice.Any {
		return nil, &core.CheckError{Stage: "inference", Msg: "overall input type was never constrained (T[0] = any)"}
	}
	return T, nil
}
