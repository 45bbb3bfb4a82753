package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaths(t *testing.T) *Paths {
	t.Helper()
	paths, err := NewPaths(t.TempDir(), "forms", ".cache")
	require.NoError(t, err)
	return paths
}

func TestPaths_RelativeAbsolute(t *testing.T) {
	paths := newPaths(t)
	abs := filepath.Join(paths.Root(), "forms", "a.xml")

	assert.Equal(t, "forms/a.xml", paths.Relative(abs))
	assert.Equal(t, abs, paths.Absolute("forms/a.xml"))
	assert.Equal(t, "forms/a.xml", paths.Relative("forms/a.xml"))
	assert.Equal(t, "", paths.Relative(""))
	assert.Equal(t, "", paths.Absolute(""))
}

func TestPaths_OutsideRootUnchanged(t *testing.T) {
	paths := newPaths(t)
	outside := filepath.Join(filepath.Dir(paths.Root()), "elsewhere", "a.xml")

	assert.Equal(t, outside, paths.Relative(outside))
	assert.Equal(t, outside, paths.Absolute(outside))
	assert.False(t, paths.Contains(paths.Relative(outside)))
}

func TestPaths_Contains(t *testing.T) {
	paths := newPaths(t)

	assert.True(t, paths.Contains(""))
	assert.True(t, paths.Contains("forms/a.xml"))
	assert.True(t, paths.Contains("forms/../.cache/abc.formdef"))
	assert.False(t, paths.Contains("."))
	assert.False(t, paths.Contains(".."))
	assert.False(t, paths.Contains("../victim"))
	assert.False(t, paths.Contains("forms/../../victim"))
	assert.False(t, paths.Contains(paths.Root()))
	assert.False(t, paths.Contains("/etc/passwd"))
}

func TestLocalArtifacts_RefusesPathsOutsideRoot(t *testing.T) {
	ctx := context.Background()
	paths := newPaths(t)
	artifacts := NewLocalArtifacts(paths)

	victim := filepath.Join(filepath.Dir(paths.Root()), "victim-"+filepath.Base(paths.Root()))
	require.NoError(t, os.MkdirAll(victim, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(victim, "keep.txt"), []byte("keep"), 0o644))
	t.Cleanup(func() { _ = os.RemoveAll(victim) })
	rel := "../" + filepath.Base(victim)

	for _, p := range []string{rel, victim, "/"} {
		err := artifacts.Remove(ctx, p)
		assert.ErrorIs(t, err, ErrOutsideRoot, p)

		_, err = artifacts.Open(ctx, p+"/keep.txt")
		assert.ErrorIs(t, err, ErrOutsideRoot, p)

		ok, err := artifacts.Exists(ctx, p)
		assert.ErrorIs(t, err, ErrOutsideRoot, p)
		assert.False(t, ok)
	}
	_, err := os.Stat(filepath.Join(victim, "keep.txt"))
	assert.NoError(t, err)
}

func TestPaths_Derived(t *testing.T) {
	paths := newPaths(t)

	assert.Equal(t, ".cache/abc.formdef", paths.CachePath("abc"))
	assert.Equal(t, "forms/birds-media", MediaPath("forms/birds.xml"))
	assert.Equal(t, "birds", DisplayName("forms/birds.xml"))
	assert.Equal(t, "forms/birds-media/itemsets.csv", ItemsetsPath("forms/birds-media"))
	assert.Equal(t, "", ItemsetsPath(""))
}

func TestLocalArtifacts(t *testing.T) {
	ctx := context.Background()
	paths := newPaths(t)
	artifacts := NewLocalArtifacts(paths)

	require.NoError(t, os.MkdirAll(paths.Absolute("forms/a-media"), 0o755))
	require.NoError(t, os.WriteFile(paths.Absolute("forms/a-media/photo.jpg"), []byte("jpg"), 0o644))
	require.NoError(t, os.WriteFile(paths.Absolute("forms/a.xml"), []byte("<h:html/>"), 0o644))

	ok, err := artifacts.Exists(ctx, "forms/a-media")
	require.NoError(t, err)
	assert.True(t, ok)

	hash, err := ContentHash(ctx, artifacts, "forms/a.xml")
	require.NoError(t, err)
	assert.Len(t, hash, 32)

	require.NoError(t, artifacts.Remove(ctx, "forms/a-media"))
	require.NoError(t, artifacts.Remove(ctx, "forms/a-media"))
	ok, err = artifacts.Exists(ctx, "forms/a-media")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, artifacts.Remove(ctx, paths.Root()), ErrOutsideRoot)
	assert.ErrorIs(t, artifacts.Remove(ctx, "."), ErrOutsideRoot)
	_, err = ContentHash(ctx, artifacts, "forms/missing.xml")
	assert.Error(t, err)
}
