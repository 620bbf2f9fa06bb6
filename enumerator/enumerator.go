// Package enumerator performs iterative-deepening synthesis of well-typed
// routines, deduplicated by sampled behavioral equivalence.
package enumerator

import (
	"log/slog"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/snow-ghost/listroutines/checker"
	"github.com/snow-ghost/listroutines/core"
	"github.com/snow-ghost/listroutines/evaluator"
	"github.com/snow-ghost/listroutines/generator"
	"github.com/snow-ghost/listroutines/typelattice"
)

const (
	maxSize        = 7
	sampleCount    = 4
	regenRetries   = 5
	paramRandLimit = 20
)

var paramSlotNames = []string{"k", "n"}

// Candidate is one enumerated routine paired with its inferred type vector.
type Candidate struct {
	Routine core.Routine
	Types   []typelattice.Type
}

// Stats tracks dedup activity across the enumerator's single-threaded run.
type Stats struct {
	Considered int64
	Discarded  int64
	Kept       int64
}

// Enumerator performs iterative-deepening routine synthesis with
// behavioral-equivalence dedup.
type Enumerator struct {
	reg   core.Registry
	rng   *rand.Rand
	gen   *generator.Generator
	cache *lru.Cache[string, []generator.Example]
	Stats Stats
}

// New builds an Enumerator over reg. rng is injectable so callers can seed
// it for reproducible runs.
func New(reg core.Registry, rng *rand.Rand) *Enumerator {
	c, _ := lru.New[string, []generator.Example](512)
	return &Enumerator{reg: reg, rng: rng, gen: generator.New(reg, 0), cache: c}
}

// Enumerate returns up to bound behaviorally distinct, re-checked routines.
func (e *Enumerator) Enumerate(bound int) ([]Candidate, error) {
	seeds, err := e.seed()
	if err != nil {
		return nil, err
	}
	kept := e.dedup(seeds)

	for len(kept) < bound {
		anyRoom := false
		for _, c := range kept {
			if len(c.Routine.Nodes) < maxSize {
				anyRoom = true
				break
			}
		}
		if !anyRoom {
			slog.Warn("enumerator: size cap reached before bound satisfied", "bound", bound, "kept", len(kept))
			break
		}

		regenerated := make([]Candidate, len(kept))
		for i, c := range kept {
			regenerated[i] = e.regenerateStatics(c)
		}

		var deepened []Candidate
		for _, c := range regenerated {
			if len(c.Routine.Nodes) >= maxSize {
				continue
			}
			deepened = append(deepened, e.deepen(c)...)
		}

		merged := append(append([]Candidate{}, regenerated...), deepened...)
		newKept := e.dedup(merged)
		if len(deepened) == 0 {
			kept = newKept
			break
		}
		kept = newKept
	}

	var final []Candidate
	for _, c := range kept {
		if _, err := checker.Check(e.reg, c.Routine); err == nil {
			final = append(final, c)
		}
	}
	if len(final) > bound {
		final = final[:bound]
	}
	return final, nil
}

// seed builds the size-1 routine for every registered subroutine.
func (e *Enumerator) seed() ([]Candidate, error) {
	var out []Candidate
	for _, name := range e.reg.Names() {
		desc, impl, _ := e.reg.Lookup(name)
		node := core.Node{Name: name, Input: core.DynWire(0)}
		for pi, p := range desc.Params {
			if pi >= len(paramSlotNames) {
				break
			}
			var v int64
			if impl.GenerateParam != nil {
				v = impl.GenerateParam(e.rng, p.Name, paramRandLimit)
			}
			node.Params = append(node.Params, core.StaticWire(v))
		}
		r := core.Routine{Nodes: []core.Node{node}}
		T, err := checker.Check(e.reg, r)
		if err != nil {
			continue
		}
		out = append(out, Candidate{Routine: r, Types: T})
	}
	return out, nil
}

// regenerateStatics re-samples every static wire's value in place, retrying
// up to regenRetries times if the result no longer type-checks; on
// exhaustion the original candidate is kept unchanged.
func (e *Enumerator) regenerateStatics(c Candidate) Candidate {
	for attempt := 0; attempt < regenRetries; attempt++ {
		candidate := cloneRoutine(c.Routine)
		for ni := range candidate.Nodes {
			node := &candidate.Nodes[ni]
			_, impl, _ := e.reg.Lookup(node.Name)
			if impl.GenerateParam == nil {
				continue
			}
			for pi := range node.Params {
				if node.Params[pi].Kind != core.WireStatic {
					continue
				}
				if pi >= len(paramSlotNames) {
					continue
				}
				node.Params[pi] = core.StaticWire(impl.GenerateParam(e.rng, paramSlotNames[pi], paramRandLimit))
			}
		}
		if T, err := checker.Check(e.reg, candidate); err == nil {
			return Candidate{Routine: candidate, Types: T}
		}
	}
	return c
}

// deepen extends c by one node, for every subroutine s and every slot of s
// whose required type is a supertype of c's last output type.
func (e *Enumerator) deepen(c Candidate) []Candidate {
	m := len(c.Routine.Nodes)
	lastType := c.Types[m]
	var out []Candidate

	for _, name := range e.reg.Names() {
		desc, impl, _ := e.reg.Lookup(name)

		sp := map[string]int64{}
		for pi, p := range desc.Params {
			if pi >= len(paramSlotNames) {
				break
			}
			if impl.GenerateParam != nil {
				sp[paramSlotNames[pi]] = impl.GenerateParam(e.rng, p.Name, paramRandLimit)
			}
		}

		inputTmpl, err := typelattice.ParseTemplate(desc.InputLabels)
		if err != nil {
			continue
		}
		requiredInput, err := inputTmpl.Resolve(sp)
		if err != nil {
			continue
		}

		attachable := []int{} // 0 = input slot, i = param slot i (1-indexed)
		if typelattice.Subtype(lastType, requiredInput) {
			attachable = append(attachable, 0)
		}
		paramReqs := make([]typelattice.Type, len(desc.Params))
		paramsOK := true
		for pi, p := range desc.Params {
			tmpl, err := typelattice.ParseTemplate(p.Labels)
			if err != nil {
				paramsOK = false
				break
			}
			req, err := tmpl.Resolve(sp)
			if err != nil {
				paramsOK = false
				break
			}
			paramReqs[pi] = req
			if typelattice.Subtype(lastType, req) {
				attachable = append(attachable, pi+1)
			}
		}
		if !paramsOK {
			// A malformed param template would otherwise leave paramReqs[pi]
			// at its zero value (Base: Any), which Subtype treats as
			// satisfiable by anything — skip the subroutine rather than
			// deepen with an unconstrained slot.
			continue
		}

		for _, attach := range attachable {
			node, ok := e.buildDeepenedNode(c, name, desc, impl, sp, requiredInput, paramReqs, attach, m)
			if !ok {
				continue
			}
			candidateRoutine := cloneRoutine(c.Routine)
			candidateRoutine.Nodes = append(candidateRoutine.Nodes, node)
			T, err := checker.Check(e.reg, candidateRoutine)
			if err != nil {
				continue
			}
			out = append(out, Candidate{Routine: candidateRoutine, Types: T})
		}
	}
	return out
}

func (e *Enumerator) buildDeepenedNode(c Candidate, name string, desc core.Descriptor, impl core.Implementation, sp map[string]int64, requiredInput typelattice.Type, paramReqs []typelattice.Type, attach, m int) (core.Node, bool) {
	node := core.Node{Name: name}
	if len(desc.Params) > 0 {
		node.Params = make([]core.Wire, len(desc.Params))
	}

	if attach == 0 {
		node.Input = core.DynWire(m)
	} else {
		w, ok := e.fillOtherSlot(c, requiredInput, nil)
		if !ok {
			return core.Node{}, false
		}
		node.Input = w
	}

	for pi := range desc.Params {
		if attach == pi+1 {
			node.Params[pi] = core.DynWire(m)
			continue
		}
		pname := desc.Params[pi].Name
		fallback := func() (core.Wire, bool) {
			if impl.GenerateParam == nil {
				return core.Wire{}, false
			}
			return core.StaticWire(impl.GenerateParam(e.rng, pname, paramRandLimit)), true
		}
		w, ok := e.fillOtherSlot(c, paramReqs[pi], fallback)
		if !ok {
			return core.Node{}, false
		}
		node.Params[pi] = w
	}
	return node, true
}

// fillOtherSlot fills every slot besides the one just attached: list-valued
// slots must back-reference an earlier compatible output; scalar slots try
// the same back-reference with probability 0.3, otherwise
// fall back to a fresh static value. When staticFallback is nil (the new
// node's own input slot), there is no literal fallback — the slot must
// resolve via back-reference or the candidate is abandoned.
func (e *Enumerator) fillOtherSlot(c Candidate, required typelattice.Type, staticFallback func() (core.Wire, bool)) (core.Wire, bool) {
	listValued := required.Base == typelattice.IntList
	if listValued {
		return e.backref(c, required)
	}
	if e.rng.Float64() < 0.3 {
		if w, ok := e.backref(c, required); ok {
			return w, true
		}
	}
	if staticFallback != nil {
		return staticFallback()
	}
	return e.backref(c, required)
}

// backref picks uniformly among slots (the overall input, or an earlier
// node's output) whose accumulated type is a subtype of required.
func (e *Enumerator) backref(c Candidate, required typelattice.Type) (core.Wire, bool) {
	var matches []int
	for idx, t := range c.Types {
		if typelattice.Subtype(t, required) {
			matches = append(matches, idx)
		}
	}
	if len(matches) == 0 {
		return core.Wire{}, false
	}
	return core.DynWire(matches[e.rng.Intn(len(matches))]), true
}

// dedup filters cands down to one representative per behavioral-equivalence
// class, in order, tracking Stats.
func (e *Enumerator) dedup(cands []Candidate) []Candidate {
	var kept []Candidate
	for _, c := range cands {
		e.Stats.Considered++
		dup := false
		for _, k := range kept {
			if e.equivalent(c, k) {
				dup = true
				break
			}
		}
		if dup {
			e.Stats.Discarded++
			continue
		}
		kept = append(kept, c)
	}
	e.Stats.Kept = int64(len(kept))
	return kept
}

// equivalent holds when a and b share the same T[0] and, sampling 4 inputs
// from each side, every input of one produces the same output on the other.
// Sampling failure on either side means not-equivalent.
func (e *Enumerator) equivalent(a, b Candidate) bool {
	if !typesEqual(a.Types[0], b.Types[0]) {
		return false
	}
	exA, ok := e.signatureExamples(a)
	if !ok {
		return false
	}
	for _, ex := range exA {
		out, err := evaluator.Evaluate(e.reg, b.Routine, b.Types, ex.Input)
		if err != nil || !out.Equal(ex.Output) {
			return false
		}
	}
	exB, ok := e.signatureExamples(b)
	if !ok {
		return false
	}
	for _, ex := range exB {
		out, err := evaluator.Evaluate(e.reg, a.Routine, a.Types, ex.Input)
		if err != nil || !out.Equal(ex.Output) {
			return false
		}
	}
	return true
}

// signatureExamples returns c's sampled (input, output) trace, memoized by
// the routine's canonical encoding (name sequence + wiring + static values)
// so revisiting the same exact candidate across deepening rounds doesn't
// re-invoke its generator.
func (e *Enumerator) signatureExamples(c Candidate) ([]generator.Example, bool) {
	key := encodeRoutine(c.Routine)
	if ex, ok := e.cache.Get(key); ok {
		return ex, true
	}
	ex, err := e.gen.Generate(e.rng, c.Routine, c.Types, core.GenParams{Count: sampleCount})
	if err != nil {
		return nil, false
	}
	e.cache.Add(key, ex)
	return ex, true
}

func cloneRoutine(r core.Routine) core.Routine {
	nodes := make([]core.Node, len(r.Nodes))
	for i, n := range r.Nodes {
		params := make([]core.Wire, len(n.Params))
		copy(params, n.Params)
		nodes[i] = core.Node{Name: n.Name, Input: n.Input, Params: params}
	}
	return core.Routine{Nodes: nodes}
}

func encodeRoutine(r core.Routine) string {
	var sb strings.Builder
	for i, n := range r.Nodes {
		sb.WriteString(n.Name)
		sb.WriteByte('(')
		sb.WriteString(encodeWire(n.Input))
		for _, p := range n.Params {
			sb.WriteByte(',')
			sb.WriteString(encodeWire(p))
		}
		sb.WriteByte(')')
		if i < len(r.Nodes)-1 {
			sb.WriteByte('|')
		}
	}
	return sb.String()
}

func encodeWire(w core.Wire) string {
	if w.Kind == core.WireStatic {
		return "s" + strconv.FormatInt(w.Static, 10)
	}
	return "d" + strconv.Itoa(w.Ref)
}

func typesEqual(a, b typelattice.Type) bool {
	switch {
	case a.Base != b.Base,
		a.NonNegative != b.NonNegative,
		a.Positive != b.Positive,
		a.Negative != b.Negative,
		a.Even != b.Even,
		a.Odd != b.Odd,
		a.Sorted != b.Sorted:
		return false
	}
	if !int64SetEqual(a.Divisors, b.Divisors) || !int64SetEqual(a.Multiples, b.Multiples) {
		return false
	}
	if a.HasBetween != b.HasBetween || (a.HasBetween && (a.Lo != b.Lo || a.Hi != b.Hi)) {
		return false
	}
	if a.HasLengthExact != b.HasLengthExact || (a.HasLengthExact && a.LengthExact != b.LengthExact) {
		return false
	}
	if a.HasLengthAtLeast != b.HasLengthAtLeast || (a.HasLengthAtLeast && a.LengthAtLeast != b.LengthAtLeast) {
		return false
	}
	return true
}

func int64SetEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	am := append([]int64(nil), a...)
	bm := append([]int64(nil), b...)
	sort.Slice(am, func(i, j int) bool { return am[i] < am[j] })
	sort.Slice(bm, func(i, j int) bool { return bm[i] < bm[j] })
	for i := range am {
		if am[i] != bm[i] {
			return false
		}
	}
	return true
}
