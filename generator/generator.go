// Package generator takes a checked routine, invokes the first node's
// generator, filters candidates by the inferred input type, and pairs each
// accepted input with its evaluated output.
package generator

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"

	"github.com/snow-ghost/listroutines/core"
	"github.com/snow-ghost/listroutines/evaluator"
	"github.com/snow-ghost/listroutines/typelattice"
)

var paramSlotNames = []string{"k", "n"}

const defaultMaxRetries = 5

// Example is one accepted (input, output) pair.
type Example struct {
	Input  core.Value
	Output core.Value
}

// ErrExhausted is returned when the first node's generator could not
// produce a type-inhabiting candidate within the retry budget.
var ErrExhausted = fmt.Errorf("generator: exhausted retries without a candidate inhabiting the routine's input type")

// Generator wraps input generation with a per-subroutine circuit breaker: a
// subroutine whose generator has just exhausted its retries trips its own
// breaker for a cool-off window, so immediately subsequent requests for the
// same broken subroutine fail fast instead of re-spending all the retries.
// A request arriving after the cool-off still gets a fresh retry budget.
type Generator struct {
	reg        core.Registry
	breakers   map[string]*gobreaker.CircuitBreaker
	maxRetries int
}

// New builds a Generator backed by reg. maxRetries <= 0 falls back to
// defaultMaxRetries.
func New(reg core.Registry, maxRetries int) *Generator {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Generator{reg: reg, breakers: make(map[string]*gobreaker.CircuitBreaker), maxRetries: maxRetries}
}

func (g *Generator) breakerFor(name string) *gobreaker.CircuitBreaker {
	if b, ok := g.breakers[name]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "generator-" + name,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
	})
	g.breakers[name] = b
	return b
}

// Generate produces example (input, output) pairs for r (already Checked,
// T is its type vector). gp.Count defaults to 3 when unset.
func (g *Generator) Generate(rng *rand.Rand, r core.Routine, T []typelattice.Type, gp core.GenParams) ([]Example, error) {
	if len(r.Nodes) == 0 {
		return nil, fmt.Errorf("generator: routine has no nodes")
	}
	first := r.Nodes[0]
	if first.Input.Kind != core.WireDyn || first.Input.Ref != 0 {
		return nil, fmt.Errorf("generator: first node's input wire must be (dyn, 0)")
	}
	_, impl, ok := g.reg.Lookup(first.Name)
	if !ok {
		return nil, fmt.Errorf("generator: unknown subroutine %q", first.Name)
	}
	if gp.Count <= 0 {
		gp.Count = 3
	}
	sp := staticParamsOf(first)

	breaker := g.breakerFor(first.Name)
	result, err := breaker.Execute(func() (interface{}, error) {
		return attempt(rng, impl, gp, sp, T[0], g.maxRetries)
	})
	if err != nil {
		slog.Warn("generator: giving up on subroutine", "subroutine", first.Name, "type", T[0], "params", sp, "error", err)
		return nil, ErrExhausted
	}

	accepted := result.([]core.Value)
	out := make([]Example, 0, len(accepted))
	for _, in := range accepted {
		v, err := evaluator.Evaluate(g.reg, r, T, in)
		if err != nil {
			return nil, fmt.Errorf("generator: evaluating accepted candidate: %w", err)
		}
		out = append(out, Example{Input: in, Output: v})
	}
	return out, nil
}

// attempt retries GenerateInput up to maxRetries times until every returned
// candidate inhabits want.
func attempt(rng *rand.Rand, impl core.Implementation, gp core.GenParams, sp map[string]int64, want typelattice.Type, maxRetries int) ([]core.Value, error) {
	var lastErr error
	for try := 0; try < maxRetries; try++ {
		candidates, err := impl.GenerateInput(rng, gp, sp)
		if err != nil {
			lastErr = err
			continue
		}
		allOK := true
		for _, c := range candidates {
			if !typelattice.Inhabits(c, want) {
				allOK = false
				break
			}
		}
		if allOK {
			return candidates, nil
		}
		lastErr = fmt.Errorf("candidate failed to inhabit %v", want)
	}
	return nil, lastErr
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
