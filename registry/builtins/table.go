package builtins

import "github.com/snow-ghost/listroutines/core"

var table map[string]core.Implementation

func init() {
	table = map[string]core.Implementation{
		"multiply-k": multiplyK(),
		"add-k":      addK(),
		"negate":     negate(),
		"double":     double(),
		"increment":  increment(),
		"fibonacci":  fibonacci(),
		"index-k":    indexK(),
		"last":       last(),
		"sum":        sum(),
		"product":    product(),
		"length":     length(),
		"reverse":    reverse(),
		"sort-asc":   sortAsc(),
		"take-k":     takeK(),
	}
}

// Table returns the statically-linked name -> Implementation map consulted
// by registry.LoadFS when pairing it against the YAML manifests in
// routines/. Subroutines are compiled in rather than loaded from a
// sandboxed plug-in.
func Table() map[string]core.Implementation {
	return table
}
