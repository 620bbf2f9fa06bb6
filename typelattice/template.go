package typelattice

import (
	"fmt"
	"strconv"
	"strings"
)

// Arg is a tag argument: either a literal or a reference to a param slot
// named "k" or "n" (the only two names primitive subroutines accept).
type Arg struct {
	Lit   int64
	Param string
}

// Tag is one refinement label, e.g. "divisor:k" or "length-at-least:3".
type Tag struct {
	Name string
	Args []Arg
}

// Template is a type whose refinement arguments may still reference
// unresolved params — what a manifest's input/output/param label list
// parses into, before a node's static_params are known.
type Template struct {
	Base Base
	Tags []Tag
}

var regularTagArity = map[string]int{
	"non-negative":    0,
	"positive":        0,
	"negative":        0,
	"even":            0,
	"odd":             0,
	"sorted":          0,
	"divisor":         1,
	"multiple":        1,
	"between":         2,
	"length-exact":    1,
	"length-at-least": 1,
}

var outputOnlyTagArity = map[string]int{
	"same-length": 0,
	"no-smaller":  0,
	"element":     0,
}

// ParseTemplate lowers raw manifest labels into a Template. The base tag
// ("int" | "int-list" | "any") may appear anywhere in labels; refinement
// tags are "name" or "name:arg1[:arg2]" where each arg is a decimal literal
// or one of the param names "k" / "n".
func ParseTemplate(labels []string) (Template, error) {
	tmpl := Template{Base: Any}
	for _, raw := range labels {
		parts := strings.Split(raw, ":")
		name := parts[0]
		switch name {
		case "int":
			tmpl.Base = Int
			continue
		case "int-list":
			tmpl.Base = IntList
			continue
		case "any":
			tmpl.Base = Any
			continue
		}

		arity, known := regularTagArity[name]
		if !known {
			arity, known = outputOnlyTagArity[name]
		}
		if !known {
			return Template{}, fmt.Errorf("typelattice: unknown refinement tag %q", name)
		}
		args := parts[1:]
		if len(args) != arity {
			return Template{}, fmt.Errorf("typelattice: tag %q wants %d arg(s), got %d", name, arity, len(args))
		}

		tag := Tag{Name: name}
		for _, a := range args {
			if a == "k" || a == "n" {
				tag.Args = append(tag.Args, Arg{Param: a})
				continue
			}
			v, err := strconv.ParseInt(a, 10, 64)
			if err != nil {
				return Template{}, fmt.Errorf("typelattice: bad arg %q in %q: %w", a, raw, err)
			}
			tag.Args = append(tag.Args, Arg{Lit: v})
		}
		tmpl.Tags = append(tmpl.Tags, tag)
	}
	return tmpl, nil
}

func resolveArg(a Arg, params map[string]int64) (int64, error) {
	if a.Param == "" {
		return a.Lit, nil
	}
	v, ok := params[a.Param]
	if !ok {
		return 0, fmt.Errorf("typelattice: unresolved parameter %q", a.Param)
	}
	return v, nil
}

// resolveTag converts one non-output-only tag into the Type increment it
// contributes; callers Intersect the increments together.
func resolveTag(tag Tag, params map[string]int64) (Type, error) {
	switch tag.Name {
	case "non-negative":
		return Type{NonNegative: true}, nil
	case "positive":
		return Type{Positive: true}, nil
	case "negative":
		return Type{Negative: true}, nil
	case "even":
		return Type{Even: true}, nil
	case "odd":
		return Type{Odd: true}, nil
	case "sorted":
		return Type{Sorted: true}, nil
	case "divisor":
		v, err := resolveArg(tag.Args[0], params)
		if err != nil {
			return Type{}, err
		}
		return Type{Divisors: []int64{v}}, nil
	case "multiple":
		v, err := resolveArg(tag.Args[0], params)
		if err != nil {
			return Type{}, err
		}
		return Type{Multiples: []int64{v}}, nil
	case "between":
		lo, err := resolveArg(tag.Args[0], params)
		if err != nil {
			return Type{}, err
		}
		hi, err := resolveArg(tag.Args[1], params)
		if err != nil {
			return Type{}, err
		}
		return Type{HasBetween: true, Lo: lo, Hi: hi}, nil
	case "length-exact":
		n, err := resolveArg(tag.Args[0], params)
		if err != nil {
			return Type{}, err
		}
		return Type{HasLengthExact: true, LengthExact: n}, nil
	case "length-at-least":
		n, err := resolveArg(tag.Args[0], params)
		if err != nil {
			return Type{}, err
		}
		return Type{HasLengthAtLeast: true, LengthAtLeast: n}, nil
	default:
		return Type{}, fmt.Errorf("typelattice: tag %q is output-only, not valid here", tag.Name)
	}
}

// Resolve substitutes params into a non-output template (a declared input
// or parameter-slot type) and returns its concrete Type.
func (t Template) Resolve(params map[string]int64) (Type, error) {
	acc := Type{Base: t.Base}
	for _, tag := range t.Tags {
		inc, err := resolveTag(tag, params)
		if err != nil {
			return Type{}, err
		}
		acc, err = Intersect(acc, inc)
		if err != nil {
			return Type{}, err
		}
	}
	return acc, nil
}

// ResolveOutput substitutes params into a declared output template and
// lowers its output-only tags (same-length, no-smaller, element) against
// the node's already-resolved input type. After lowering, the result
// contains only closed-form refinements; output-only tags are not
// first-class on stored types.
func ResolveOutput(t Template, input Type, params map[string]int64) (Type, error) {
	acc := Type{Base: t.Base}
	var err error
	for _, tag := range t.Tags {
		var inc Type
		switch tag.Name {
		case "same-length":
			switch {
			case input.HasLengthExact:
				inc = Type{HasLengthExact: true, LengthExact: input.LengthExact}
			case input.HasLengthAtLeast:
				inc = Type{HasLengthAtLeast: true, LengthAtLeast: input.LengthAtLeast}
			}
		case "no-smaller":
			if lb, ok := input.minLength(); ok {
				inc = Type{HasLengthAtLeast: true, LengthAtLeast: lb}
			}
		case "element":
			inc = Type{
				Base:        Int,
				NonNegative: input.NonNegative,
				Positive:    input.Positive,
				Negative:    input.Negative,
				Even:        input.Even,
				Odd:         input.Odd,
				HasBetween:  input.HasBetween,
				Lo:          input.Lo,
				Hi:          input.Hi,
				Multiples:   append([]int64(nil), input.Multiples...),
			}
		default:
			inc, err = resolveTag(tag, params)
			if err != nil {
				return Type{}, err
			}
		}
		acc, err = Intersect(acc, inc)
		if err != nil {
			return Type{}, err
		}
	}
	return acc, nil
}
