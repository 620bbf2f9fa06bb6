package registry

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/listroutines/core"
	"github.com/snow-ghost/listroutines/registry/builtins"
)

func TestLoadFS_LoadsAllManifests(t *testing.T) {
	reg, warnings, err := LoadFS(os.DirFS("../routines"), builtins.Table())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	names := reg.Names()
	assert.Contains(t, names, "multiply-k")
	assert.Contains(t, names, "add-k")
	assert.Contains(t, names, "index-k")
	assert.Contains(t, names, "sum")

	// Names() is sorted lexicographically (core.Registry's documented contract).
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i])
	}
}

func TestLoadFS_LookupUnknownName(t *testing.T) {
	reg, _, err := LoadFS(os.DirFS("../routines"), builtins.Table())
	require.NoError(t, err)
	_, _, ok := reg.Lookup("does-not-exist")
	assert.False(t, ok)
}

func TestLoadFS_SkipsManifestMissingImplementation(t *testing.T) {
	fsys := fstest.MapFS{
		"orphan.yaml": &fstest.MapFile{Data: []byte(`
name: orphan
input: ["int"]
output: ["int"]
`)},
	}
	reg, warnings, err := LoadFS(fsys, map[string]core.Implementation{})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	_, _, ok := reg.Lookup("orphan")
	assert.False(t, ok)
}

func TestLoadFS_SkipsManifestWithBadDep(t *testing.T) {
	fsys := fstest.MapFS{
		"bad-dep.yaml": &fstest.MapFile{Data: []byte(`
name: bad-dep
input: ["int"]
output: ["int"]
deps: ["not-allowed"]
`)},
	}
	impls := map[string]core.Implementation{"bad-dep": {}}
	reg, warnings, err := LoadFS(fsys, impls)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	_, _, ok := reg.Lookup("bad-dep")
	assert.False(t, ok)
}

func TestLoadFS_SkipsUnparseableManifest(t *testing.T) {
	fsys := fstest.MapFS{
		"broken.yaml": &fstest.MapFile{Data: []byte("not: [valid: yaml")},
	}
	reg, warnings, err := LoadFS(fsys, map[string]core.Implementation{})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Empty(t, reg.Names())
}
