package builtins

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/snow-ghost/listroutines/core"
)

// reverse returns its input with element order flipped; same length.
func reverse() core.Implementation {
	return core.Implementation{
		Evaluate: func(input core.Value, _ map[string]int64) (core.Value, error) {
			if !input.IsList {
				return core.Value{}, fmt.Errorf("reverse: expected int-list input")
			}
			out := make([]int64, len(input.List))
			for i, v := range input.List {
				out[len(out)-1-i] = v
			}
			return core.IntList(out), nil
		},
		GenerateInput: func(rng *rand.Rand, p core.GenParams, _ map[string]int64) ([]core.Value, error) {
			out := make([]core.Value, count(p.Count))
			for i := range out {
				out[i] = core.IntList(randList(rng, randLen(rng, 0), -20, 20))
			}
			return out, nil
		},
	}
}

// sortAsc returns its input sorted ascending; same length, output is sorted.
func sortAsc() core.Implementation {
	return core.Implementation{
		Evaluate: func(input core.Value, _ map[string]int64) (core.Value, error) {
			if !input.IsList {
				return core.Value{}, fmt.Errorf("sort-asc: expected int-list input")
			}
			out := make([]int64, len(input.List))
			copy(out, input.List)
			sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
			return core.IntList(out), nil
		},
		GenerateInput: func(rng *rand.Rand, p core.GenParams, _ map[string]int64) ([]core.Value, error) {
			out := make([]core.Value, count(p.Count))
			for i := range out {
				out[i] = core.IntList(randList(rng, randLen(rng, 0), -20, 20))
			}
			return out, nil
		},
	}
}

// takeK returns the first k elements of its input; declared input type
// "length-at-least:k" guarantees there are enough to take.
func takeK() core.Implementation {
	return core.Implementation{
		Evaluate: func(input core.Value, params map[string]int64) (core.Value, error) {
			if !input.IsList {
				return core.Value{}, fmt.Errorf("take-k: expected int-list input")
			}
			k, ok := params["k"]
			if !ok {
				return core.Value{}, fmt.Errorf("take-k: missing param k")
			}
			if k < 0 || int(k) > len(input.List) {
				return core.Value{}, fmt.Errorf("take-k: k=%d out of range for length %d", k, len(input.List))
			}
			out := make([]int64, k)
			copy(out, input.List[:k])
			return core.IntList(out), nil
		},
		GenerateInput: func(rng *rand.Rand, p core.GenParams, staticParams map[string]int64) ([]core.Value, error) {
			minLen := 0
			if k, ok := staticParams["k"]; ok && int(k) > minLen {
				minLen = int(k)
			}
			out := make([]core.Value, count(p.Count))
			for i := range out {
				out[i] = core.IntList(randList(rng, randLen(rng, minLen), -20, 20))
			}
			return out, nil
		},
		GenerateParam: func(rng *rand.Rand, slot string, randLimit int64) int64 {
			return randInt(rng, 0, randLimit)
		},
	}
}
