package builtins

import (
	"fmt"
	"math/rand"

	"github.com/snow-ghost/listroutines/core"
)

// indexK returns the k-th element of its input, 1-indexed (list[k-1]). The
// declared input type "length-at-least:k" guarantees list[k-1] is in range
// whenever k is a static param the Checker has resolved.
func indexK() core.Implementation {
	return core.Implementation{
		Evaluate: func(input core.Value, params map[string]int64) (core.Value, error) {
			if !input.IsList {
				return core.Value{}, fmt.Errorf("index-k: expected int-list input")
			}
			k, ok := params["k"]
			if !ok {
				return core.Value{}, fmt.Errorf("index-k: missing param k")
			}
			if k < 1 || int(k) > len(input.List) {
				return core.Value{}, fmt.Errorf("index-k: k=%d out of range for length %d", k, len(input.List))
			}
			return core.Int(input.List[k-1]), nil
		},
		GenerateInput: func(rng *rand.Rand, p core.GenParams, staticParams map[string]int64) ([]core.Value, error) {
			minLen := 1
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
			return randInt(rng, 1, randLimit)
		},
	}
}

// last returns the final element of its input.
func last() core.Implementation {
	return core.Implementation{
		Evaluate: func(input core.Value, _ map[string]int64) (core.Value, error) {
			if !input.IsList {
				return core.Value{}, fmt.Errorf("last: expected int-list input")
			}
			if len(input.List) == 0 {
				return core.Value{}, fmt.Errorf("last: empty input")
			}
			return core.Int(input.List[len(input.List)-1]), nil
		},
		GenerateInput: func(rng *rand.Rand, p core.GenParams, _ map[string]int64) ([]core.Value, error) {
			out := make([]core.Value, count(p.Count))
			for i := range out {
				out[i] = core.IntList(randList(rng, randLen(rng, 1), -20, 20))
			}
			return out, nil
		},
	}
}

// sum adds every element of its input.
func sum() core.Implementation {
	return core.Implementation{
		Evaluate: func(input core.Value, _ map[string]int64) (core.Value, error) {
			if !input.IsList {
				return core.Value{}, fmt.Errorf("sum: expected int-list input")
			}
			var total int64
			for _, v := range input.List {
				total += v
			}
			return core.Int(total), nil
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

// product multiplies every element of a non-empty input.
func product() core.Implementation {
	return core.Implementation{
		Evaluate: func(input core.Value, _ map[string]int64) (core.Value, error) {
			if !input.IsList {
				return core.Value{}, fmt.Errorf("product: expected int-list input")
			}
			if len(input.List) == 0 {
				return core.Value{}, fmt.Errorf("product: empty input")
			}
			total := int64(1)
			for _, v := range input.List {
				total *= v
			}
			return core.Int(total), nil
		},
		GenerateInput: func(rng *rand.Rand, p core.GenParams, _ map[string]int64) ([]core.Value, error) {
			out := make([]core.Value, count(p.Count))
			for i := range out {
				out[i] = core.IntList(randList(rng, randLen(rng, 1), -6, 6))
			}
			return out, nil
		},
	}
}

// length reports the element count of its input; always non-negative.
func length() core.Implementation {
	return core.Implementation{
		Evaluate: func(input core.Value, _ map[string]int64) (core.Value, error) {
			if !input.IsList {
				return core.Value{}, fmt.Errorf("length: expected int-list input")
			}
			return core.Int(int64(len(input.List))), nil
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
