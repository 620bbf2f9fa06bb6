// Package testkit is a routine-level test harness: given a registry and a
// batch of (routine, input, expected output) cases, it checks and evaluates
// each one and aggregates pass/fail metrics.
package testkit

import (
	"time"

	"github.com/snow-ghost/listroutines/checker"
	"github.com/snow-ghost/listroutines/core"
	"github.com/snow-ghost/listroutines/evaluator"
)

// Case is one routine-level test: a routine, the input it's run on, and the
// output it must produce.
type Case struct {
	Name    string
	Routine core.Routine
	Input   core.Value
	Want    core.Value
}

// Runner executes a batch of Cases against a registry's Checker+Evaluator.
type Runner struct {
	reg core.Registry
}

// NewRunner builds a Runner bound to reg.
func NewRunner(reg core.Registry) *Runner {
	return &Runner{reg: reg}
}

// Run checks and evaluates every case, returning aggregate metrics plus
// whether every case passed.
func (rn *Runner) Run(cases []Case) (map[string]float64, bool) {
	metrics := map[string]float64{
		"cases_total":       0,
		"cases_passed":      0,
		"cases_failed":      0,
		"duration_ms_total": 0,
	}
	allPassed := true

	for _, tc := range cases {
		start := time.Now()
		metrics["cases_total"]++

		passed := rn.runOne(tc)
		metrics["duration_ms_total"] += float64(time.Since(start).Milliseconds())

		if passed {
			metrics["cases_passed"]++
		} else {
			metrics["cases_failed"]++
			allPassed = false
		}
	}

	return metrics, allPassed
}

func (rn *Runner) runOne(tc Case) bool {
	T, err := checker.Check(rn.reg, tc.Routine)
	if err != nil {
		return false
	}
	got, err := evaluator.Evaluate(rn.reg, tc.Routine, T, tc.Input)
	if err != nil {
		return false
	}
	return got.Equal(tc.Want)
}
