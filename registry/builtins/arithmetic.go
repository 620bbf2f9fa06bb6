package builtins

import (
	"fmt"
	"math/rand"

	"github.com/snow-ghost/listroutines/core"
)

// multiplyK multiplies every element of its input list by k.
func multiplyK() core.Implementation {
	return core.Implementation{
		Evaluate: func(input core.Value, params map[string]int64) (core.Value, error) {
			if !input.IsList {
				return core.Value{}, fmt.Errorf("multiply-k: expected int-list input")
			}
			k, ok := params["k"]
			if !ok {
				return core.Value{}, fmt.Errorf("multiply-k: missing param k")
			}
			out := make([]int64, len(input.List))
			for i, x := range input.List {
				out[i] = x * k
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
		GenerateParam: func(rng *rand.Rand, slot string, randLimit int64) int64 {
			return randInt(rng, -randLimit, randLimit)
		},
	}
}

// addK adds k to every element of its input list.
func addK() core.Implementation {
	return core.Implementation{
		Evaluate: func(input core.Value, params map[string]int64) (core.Value, error) {
			if !input.IsList {
				return core.Value{}, fmt.Errorf("add-k: expected int-list input")
			}
			k, ok := params["k"]
			if !ok {
				return core.Value{}, fmt.Errorf("add-k: missing param k")
			}
			out := make([]int64, len(input.List))
			for i, x := range input.List {
				out[i] = x + k
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
		GenerateParam: func(rng *rand.Rand, slot string, randLimit int64) int64 {
			return randInt(rng, -randLimit, randLimit)
		},
	}
}

func negate() core.Implementation {
	return core.Implementation{
		Evaluate: func(input core.Value, _ map[string]int64) (core.Value, error) {
			if input.IsList {
				return core.Value{}, fmt.Errorf("negate: expected int input")
			}
			return core.Int(-input.Int), nil
		},
		GenerateInput: func(rng *rand.Rand, p core.GenParams, _ map[string]int64) ([]core.Value, error) {
			out := make([]core.Value, count(p.Count))
			for i := range out {
				out[i] = core.Int(randInt(rng, -20, 20))
			}
			return out, nil
		},
	}
}

func double() core.Implementation {
	return core.Implementation{
		Evaluate: func(input core.Value, _ map[string]int64) (core.Value, error) {
			if input.IsList {
				return core.Value{}, fmt.Errorf("double: expected int input")
			}
			return core.Int(input.Int * 2), nil
		},
		GenerateInput: func(rng *rand.Rand, p core.GenParams, _ map[string]int64) ([]core.Value, error) {
			out := make([]core.Value, count(p.Count))
			for i := range out {
				out[i] = core.Int(randInt(rng, -20, 20))
			}
			return out, nil
		},
	}
}

func increment() core.Implementation {
	return core.Implementation{
		Evaluate: func(input core.Value, _ map[string]int64) (core.Value, error) {
			if input.IsList {
				return core.Value{}, fmt.Errorf("increment: expected int input")
			}
			return core.Int(input.Int + 1), nil
		},
		GenerateInput: func(rng *rand.Rand, p core.GenParams, _ map[string]int64) ([]core.Value, error) {
			out := make([]core.Value, count(p.Count))
			for i := range out {
				out[i] = core.Int(randInt(rng, -20, 20))
			}
			return out, nil
		},
	}
}

// fibonacci computes the n-th (1-indexed) Fibonacci number iteratively;
// declared input type is "int, positive" so n >= 1 always holds by the time
// Evaluate runs (the Checker rejects routines where that can't be proven).
func fibonacci() core.Implementation {
	return core.Implementation{
		Evaluate: func(input core.Value, _ map[string]int64) (core.Value, error) {
			if input.IsList {
				return core.Value{}, fmt.Errorf("fibonacci: expected int input")
			}
			if input.Int < 1 {
				return core.Value{}, fmt.Errorf("fibonacci: input must be positive")
			}
			var a, b int64 = 0, 1
			for i := int64(1); i < input.Int; i++ {
				a, b = b, a+b
			}
			return core.Int(a), nil
		},
		GenerateInput: func(rng *rand.Rand, p core.GenParams, _ map[string]int64) ([]core.Value, error) {
			out := make([]core.Value, count(p.Count))
			for i := range out {
				out[i] = core.Int(randInt(rng, 1, 25))
			}
			return out, nil
		},
	}
}
