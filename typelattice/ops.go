package typelattice

import "github.com/snow-ghost/listroutines/core"

// Intersect merges two types. It is commutative, associative, idempotent,
// has AnyType() as identity, and returns ErrBottom on contradiction.
func Intersect(a, b Type) (Type, error) {
	base, ok := combineBase(a.Base, b.Base)
	if !ok {
		return Type{}, ErrBottom
	}
	out := Type{Base: base}

	out.Positive = a.Positive || b.Positive
	out.Negative = a.Negative || b.Negative
	out.NonNegative = a.NonNegative || b.NonNegative || out.Positive
	if out.Positive && out.Negative {
		return Type{}, ErrBottom
	}
	if out.Negative && out.NonNegative {
		return Type{}, ErrBottom
	}

	out.Even = a.Even || b.Even
	out.Odd = a.Odd || b.Odd
	if out.Even && out.Odd {
		return Type{}, ErrBottom
	}

	out.Sorted = a.Sorted || b.Sorted
	out.Divisors = unionInt64(a.Divisors, b.Divisors)
	out.Multiples = unionInt64(a.Multiples, b.Multiples)

	switch {
	case a.HasBetween && b.HasBetween:
		lo, hi := maxInt64(a.Lo, b.Lo), minInt64(a.Hi, b.Hi)
		if lo > hi {
			return Type{}, ErrBottom
		}
		out.HasBetween, out.Lo, out.Hi = true, lo, hi
	case a.HasBetween:
		out.HasBetween, out.Lo, out.Hi = true, a.Lo, a.Hi
	case b.HasBetween:
		out.HasBetween, out.Lo, out.Hi = true, b.Lo, b.Hi
	}

	if err := mergeLength(&out, a); err != nil {
		return Type{}, err
	}
	if err := mergeLength(&out, b); err != nil {
		return Type{}, err
	}

	return out, nil
}

// IntersectIntroduce merges a newly-required type into a wire's
// accumulated type, discarding old == any. It is Intersect under a name
// that matches its call site in the checker: each dyn wire narrows the
// producer's slot by the consumer's requirement.
func IntersectIntroduce(old, new Type, _ map[string]int64) (Type, error) {
	return Intersect(old, new)
}

func combineBase(a, b Base) (Base, bool) {
	switch {
	case a == Any:
		return b, true
	case b == Any:
		return a, true
	case a == b:
		return a, true
	default:
		return a, false
	}
}

// mergeLength folds one side's length refinement into out, which may
// already carry a length refinement from the other side or a prior fold.
func mergeLength(out *Type, side Type) error {
	if side.HasLengthExact {
		if out.HasLengthExact && out.LengthExact != side.LengthExact {
			return ErrBottom
		}
		if out.HasLengthAtLeast && side.LengthExact < out.LengthAtLeast {
			return ErrBottom
		}
		out.HasLengthExact = true
		out.LengthExact = side.LengthExact
		out.HasLengthAtLeast = false
		return nil
	}
	if side.HasLengthAtLeast {
		if out.HasLengthExact {
			if out.LengthExact < side.LengthAtLeast {
				return ErrBottom
			}
			return nil
		}
		if out.HasLengthAtLeast {
			out.LengthAtLeast = maxInt64(out.LengthAtLeast, side.LengthAtLeast)
		} else {
			out.HasLengthAtLeast = true
			out.LengthAtLeast = side.LengthAtLeast
		}
	}
	return nil
}

// Subtype reports whether a <= b: every value inhabiting a also inhabits b.
// Reflexive and transitive.
func Subtype(a, b Type) bool {
	if b.Base != Any && a.Base != b.Base {
		return false
	}
	if b.NonNegative && !(a.NonNegative || a.Positive) {
		return false
	}
	if b.Positive && !a.Positive {
		return false
	}
	if b.Negative && !a.Negative {
		return false
	}
	if b.Even && !a.Even {
		return false
	}
	if b.Odd && !a.Odd {
		return false
	}
	if b.Sorted && !a.Sorted {
		return false
	}
	for _, d := range b.Divisors {
		if !containsInt64(a.Divisors, d) {
			return false
		}
	}
	for _, m := range b.Multiples {
		if !impliesMultiple(a.Multiples, m) {
			return false
		}
	}
	if b.HasBetween {
		if !a.HasBetween || a.Lo < b.Lo || a.Hi > b.Hi {
			return false
		}
	}
	if b.HasLengthExact {
		if !a.HasLengthExact || a.LengthExact != b.LengthExact {
			return false
		}
	}
	if b.HasLengthAtLeast {
		min, ok := a.minLength()
		if !ok || min < b.LengthAtLeast {
			return false
		}
	}
	return true
}

// Inhabits reports whether v satisfies every refinement of t.
func Inhabits(v core.Value, t Type) bool {
	if t.Base == Int && v.IsList {
		return false
	}
	if t.Base == IntList && !v.IsList {
		return false
	}
	if !v.IsList {
		return inhabitsScalar(v.Int, t)
	}
	if t.HasLengthExact && int64(len(v.List)) != t.LengthExact {
		return false
	}
	if t.HasLengthAtLeast && int64(len(v.List)) < t.LengthAtLeast {
		return false
	}
	if t.Sorted {
		for i := 1; i < len(v.List); i++ {
			if v.List[i] < v.List[i-1] {
				return false
			}
		}
	}
	for _, e := range v.List {
		if !inhabitsScalar(e, t) {
			return false
		}
	}
	return true
}

func inhabitsScalar(x int64, t Type) bool {
	if t.Positive && x <= 0 {
		return false
	}
	if t.NonNegative && x < 0 {
		return false
	}
	if t.Negative && x >= 0 {
		return false
	}
	if t.Even && x%2 != 0 {
		return false
	}
	if t.Odd && x%2 == 0 {
		return false
	}
	for _, d := range t.Divisors {
		if x == 0 {
			if d != 0 {
				return false
			}
		} else if d%x != 0 {
			return false
		}
	}
	for _, m := range t.Multiples {
		if m == 0 {
			if x != 0 {
				return false
			}
		} else if x%m != 0 {
			return false
		}
	}
	if t.HasBetween && (x < t.Lo || x > t.Hi) {
		return false
	}
	return true
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func containsInt64(xs []int64, v int64) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// impliesMultiple reports whether guaranteeing "multiple of every value in
// have" implies "multiple of want": true when some k in have has k % want
// == 0 (a value that's a multiple of k is necessarily a multiple of any
// divisor of k).
func impliesMultiple(have []int64, want int64) bool {
	if want == 0 {
		return containsInt64(have, 0)
	}
	for _, k := range have {
		if k%want == 0 {
			return true
		}
	}
	return false
}

func unionInt64(a, b []int64) []int64 {
	if len(a) == 0 {
		return append([]int64(nil), b...)
	}
	if len(b) == 0 {
		return append([]int64(nil), a...)
	}
	out := append([]int64(nil), a...)
	for _, v := range b {
		if !containsInt64(out, v) {
			out = append(out, v)
		}
	}
	return out
}
