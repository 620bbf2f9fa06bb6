package typelattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/listroutines/core"
)

func mustParse(t *testing.T, labels ...string) Template {
	t.Helper()
	tmpl, err := ParseTemplate(labels)
	require.NoError(t, err)
	return tmpl
}

func TestParseTemplate_UnknownTag(t *testing.T) {
	_, err := ParseTemplate([]string{"int", "bogus-tag"})
	assert.Error(t, err)
}

func TestParseTemplate_WrongArity(t *testing.T) {
	_, err := ParseTemplate([]string{"int", "between:1"})
	assert.Error(t, err)
}

func TestResolve_ParamSubstitution(t *testing.T) {
	tmpl := mustParse(t, "int", "multiple:k")
	ty, err := tmpl.Resolve(map[string]int64{"k": 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ty.Multiples)
	assert.True(t, Inhabits(core.Int(9), ty))
	assert.False(t, Inhabits(core.Int(10), ty))
}

func TestResolve_UnresolvedParamErrors(t *testing.T) {
	tmpl := mustParse(t, "int", "divisor:k")
	_, err := tmpl.Resolve(nil)
	assert.Error(t, err)
}

func TestResolveOutput_SameLengthLowersToExact(t *testing.T) {
	tmpl := mustParse(t, "int-list", "same-length")
	input := Type{Base: IntList, HasLengthExact: true, LengthExact: 3}
	out, err := ResolveOutput(tmpl, input, nil)
	require.NoError(t, err)
	assert.True(t, out.HasLengthExact)
	assert.Equal(t, int64(3), out.LengthExact)
}

func TestResolveOutput_SameLengthLowersToAtLeast(t *testing.T) {
	tmpl := mustParse(t, "int-list", "same-length")
	input := Type{Base: IntList, HasLengthAtLeast: true, LengthAtLeast: 2}
	out, err := ResolveOutput(tmpl, input, nil)
	require.NoError(t, err)
	assert.True(t, out.HasLengthAtLeast)
	assert.Equal(t, int64(2), out.LengthAtLeast)
}

func TestResolveOutput_NoSmaller(t *testing.T) {
	tmpl := mustParse(t, "int-list", "no-smaller")
	input := Type{Base: IntList, HasLengthAtLeast: true, LengthAtLeast: 4}
	out, err := ResolveOutput(tmpl, input, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), out.LengthAtLeast)
}

func TestResolveOutput_ElementCopiesScalarRefinements(t *testing.T) {
	tmpl := mustParse(t, "int", "element")
	input := Type{Base: IntList, Positive: true, Even: true}
	out, err := ResolveOutput(tmpl, input, nil)
	require.NoError(t, err)
	assert.Equal(t, Int, out.Base)
	assert.True(t, out.Positive)
	assert.True(t, out.Even)
}

func TestIntersect_Commutative(t *testing.T) {
	a := Type{Base: Int, Positive: true}
	b := Type{Base: Int, Even: true}
	ab, err1 := Intersect(a, b)
	ba, err2 := Intersect(b, a)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, ab, ba)
}

func TestIntersect_IdentityWithAny(t *testing.T) {
	a := Type{Base: Int, Even: true, Multiples: []int64{3}}
	out, err := Intersect(a, AnyType())
	require.NoError(t, err)
	assert.Equal(t, a, out)
}

func TestIntersect_Idempotent(t *testing.T) {
	a := Type{Base: Int, Even: true, Multiples: []int64{3}}
	out, err := Intersect(a, a)
	require.NoError(t, err)
	assert.Equal(t, a, out)
}

func TestIntersect_Associative(t *testing.T) {
	a := Type{Base: Int, Positive: true}
	b := Type{Base: Int, Even: true}
	c := Type{Base: Int, HasBetween: true, Lo: 0, Hi: 100}

	ab, err := Intersect(a, b)
	require.NoError(t, err)
	abc1, err := Intersect(ab, c)
	require.NoError(t, err)

	bc, err := Intersect(b, c)
	require.NoError(t, err)
	abc2, err := Intersect(a, bc)
	require.NoError(t, err)

	assert.Equal(t, abc1, abc2)
}

func TestIntersect_ContradictionYieldsBottom(t *testing.T) {
	a := Type{Base: Int, Positive: true}
	b := Type{Base: Int, Negative: true}
	_, err := Intersect(a, b)
	assert.ErrorIs(t, err, ErrBottom)
}

func TestIntersect_ContradictoryLengthExact(t *testing.T) {
	a := Type{Base: IntList, HasLengthExact: true, LengthExact: 3}
	b := Type{Base: IntList, HasLengthExact: true, LengthExact: 4}
	_, err := Intersect(a, b)
	assert.ErrorIs(t, err, ErrBottom)
}

func TestIntersect_DisjointBasesYieldBottom(t *testing.T) {
	a := Type{Base: Int}
	b := Type{Base: IntList}
	_, err := Intersect(a, b)
	assert.ErrorIs(t, err, ErrBottom)
}

func TestSubtype_ReflexiveAndTransitive(t *testing.T) {
	a := Type{Base: Int, Positive: true}
	b := Type{Base: Int}
	c := Type{Base: Any}

	assert.True(t, Subtype(a, a))
	assert.True(t, Subtype(a, b))
	assert.True(t, Subtype(b, c))
	assert.True(t, Subtype(a, c))
}

func TestSubtype_LengthAtLeastNarrower(t *testing.T) {
	narrow := Type{Base: IntList, HasLengthAtLeast: true, LengthAtLeast: 5}
	wide := Type{Base: IntList, HasLengthAtLeast: true, LengthAtLeast: 3}
	assert.True(t, Subtype(narrow, wide))
	assert.False(t, Subtype(wide, narrow))
}

func TestSubtype_BetweenContainment(t *testing.T) {
	narrow := Type{Base: Int, HasBetween: true, Lo: 1, Hi: 5}
	wide := Type{Base: Int, HasBetween: true, Lo: 0, Hi: 10}
	assert.True(t, Subtype(narrow, wide))
	assert.False(t, Subtype(wide, narrow))
}

func TestInhabits_ElementwiseOnList(t *testing.T) {
	ty := Type{Base: IntList, Multiples: []int64{3}}
	assert.True(t, Inhabits(core.IntList([]int64{3, 6, 9}), ty))
	assert.False(t, Inhabits(core.IntList([]int64{3, 6, 10}), ty))
}

func TestInhabits_BaseMismatch(t *testing.T) {
	ty := Type{Base: Int}
	assert.False(t, Inhabits(core.IntList([]int64{1}), ty))

	listTy := Type{Base: IntList}
	assert.False(t, Inhabits(core.Int(1), listTy))
}

func TestInhabits_Sorted(t *testing.T) {
	ty := Type{Base: IntList, Sorted: true}
	assert.True(t, Inhabits(core.IntList([]int64{1, 2, 2, 3}), ty))
	assert.False(t, Inhabits(core.IntList([]int64{3, 1, 2}), ty))
}
