package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplink/legacymigrate/pkg/apperrors"
)

func TestRegisterAndResolve(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(KindUser, 1633, "surrogate-a"))

	got, ok := r.Resolve(KindUser, 1633)
	assert.True(t, ok)
	assert.Equal(t, "surrogate-a", got)

	_, ok = r.Resolve(KindUser, 9999)
	assert.False(t, ok)

	_, ok = r.Resolve(KindTask, 1633)
	assert.False(t, ok, "kinds are isolated sub-registries")
}

func TestRegisterIdempotent(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(KindUser, 1, "same"))
	require.NoError(t, r.Register(KindUser, 1, "same"))
	assert.Equal(t, 1, r.Count(KindUser))
}

func TestRegisterConflictKeepsFirstMapping(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(KindUser, 1, "first"))
	err := r.Register(KindUser, 1, "second")
	assert.ErrorIs(t, err, apperrors.ErrIdentityConflict)

	got, ok := r.Resolve(KindUser, 1)
	require.True(t, ok)
	assert.Equal(t, "first", got)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, r.Size())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity-map.json")

	r := NewRegistry()
	require.NoError(t, r.Register(KindUser, 1633, "surrogate-a"))
	require.NoError(t, r.Register(KindUser, 1634, "surrogate-b"))
	require.NoError(t, r.Register(KindBank, 3, "surrogate-c"))
	require.NoError(t, r.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Size())
	assert.Equal(t, 2, loaded.Count(KindUser))

	got, ok := loaded.Resolve(KindBank, 3)
	require.True(t, ok)
	assert.Equal(t, "surrogate-c", got)

	assert.Equal(t, []Kind{KindBank, KindUser}, loaded.Kinds())
}

func TestSaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity-map.json")

	r := NewRegistry()
	require.NoError(t, r.Register(KindUser, 1, "a"))
	require.NoError(t, r.Save(path))
	require.NoError(t, r.Register(KindUser, 2, "b"))
	require.NoError(t, r.Save(path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Size())
}

func TestLoadRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity-map.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
