// Package core holds the data model shared by every layer of the routine
// synthesis engine: concrete values, wires, nodes, routines and subroutine
// descriptors. Nothing in here performs type inference or evaluation — that
// lives in typelattice, checker, evaluator, generator and enumerator.
package core

import "fmt"

// Value is a concrete int or int-list. Exactly one of the two forms applies;
// IsList selects which.
type Value struct {
	IsList bool
	Int    int64
	List   []int64
}

// Int wraps a scalar integer value.
func Int(v int64) Value { return Value{Int: v} }

// IntList wraps an integer list value. The slice is not copied.
func IntList(v []int64) Value { return Value{IsList: true, List: v} }

func (v Value) String() string {
	if v.IsList {
		return fmt.Sprintf("%v", v.List)
	}
	return fmt.Sprintf("%d", v.Int)
}

// Equal reports value equality: same shape (scalar vs list), same contents.
func (v Value) Equal(o Value) bool {
	if v.IsList != o.IsList {
		return false
	}
	if !v.IsList {
		return v.Int == o.Int
	}
	if len(v.List) != len(o.List) {
		return false
	}
	for i := range v.List {
		if v.List[i] != o.List[i] {
			return false
		}
	}
	return true
}
