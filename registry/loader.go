package registry

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/snow-ghost/listroutines/core"
	"github.com/snow-ghost/listroutines/pkg/tokens"
)

// AllowedDeps is the fixed allow-list of declared dependencies: the shared
// prelude, a math-utility module, and — handled separately, since it's
// data-dependent — any other routine file in the same directory.
var AllowedDeps = map[string]bool{
	"prelude":  true,
	"mathutil": true,
}

// parsed is one manifest file's raw decode, read concurrently and merged
// sequentially so warnings/errors stay in deterministic (path-sorted) order.
type parsed struct {
	path string
	desc core.Descriptor
	err  error
}

// LoadFS scans fsys for "*.yaml" manifests, parsing them concurrently with
// errgroup since this only runs once at process start, before the
// synchronous request loop begins. impls supplies the statically-linked
// evaluator/generator for each name; a manifest with no matching
// implementation is rejected. Returns the registry plus any side-channel
// warnings for manifests that were skipped (unknown dep, missing
// implementation, parse error).
func LoadFS(fsys fs.FS, impls map[string]core.Implementation) (*Registry, []string, error) {
	matches, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, nil, fmt.Errorf("registry: glob manifests: %w", err)
	}
	sort.Strings(matches)

	results := make([]parsed, len(matches))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, name := range matches {
		i, name := i, name
		g.Go(func() error {
			data, err := fs.ReadFile(fsys, name)
			if err != nil {
				results[i] = parsed{path: name, err: fmt.Errorf("read: %w", err)}
				return nil
			}
			var d core.Descriptor
			if err := yaml.Unmarshal(data, &d); err != nil {
				results[i] = parsed{path: name, err: fmt.Errorf("parse: %w", err)}
				return nil
			}
			results[i] = parsed{path: name, desc: d}
			return nil
		})
	}
	_ = g.Wait() // parse errors are per-file and carried in results, not fatal

	names := make(map[string]bool, len(results))
	for _, r := range results {
		if r.err == nil {
			names[r.desc.Name] = true
		}
	}

	entries := make(map[string]entry, len(results))
	var warnings []string
	for _, r := range results {
		if r.err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", r.path, r.err))
			slog.Warn("registry: skipping manifest", "path", r.path, "error", r.err)
			continue
		}
		d := r.desc
		if d.Name == "" {
			d.Name = strings.TrimSuffix(path.Base(r.path), ".yaml")
		}
		if bad := unknownDep(d.Deps, names); bad != "" {
			msg := fmt.Sprintf("%s: dependency %q is not in the allow-list", d.Name, bad)
			warnings = append(warnings, msg)
			slog.Warn("registry: skipping manifest", "name", d.Name, "reason", msg)
			continue
		}
		impl, ok := impls[d.Name]
		if !ok {
			msg := fmt.Sprintf("%s: no statically-linked implementation registered", d.Name)
			warnings = append(warnings, msg)
			slog.Warn("registry: skipping manifest", "name", d.Name, "reason", msg)
			continue
		}
		if d.Description != "" {
			if n, err := tokens.DefaultEncoder().Count(d.Description); err == nil {
				d.DescriptionTokens = n
			}
		}
		entries[d.Name] = entry{descriptor: d, impl: impl}
	}

	return newRegistry(entries), warnings, nil
}

func unknownDep(deps []string, routineNames map[string]bool) string {
	for _, d := range deps {
		if AllowedDeps[d] || routineNames[d] {
			continue
		}
		return d
	}
	return ""
}
