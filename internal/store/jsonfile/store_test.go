package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skykid17/smartlp-sub005/internal/core/kv"
)

func TestKVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "selections.json")
	store := NewKVStore(path)

	require.NoError(t, store.Set(ctx, "smartlp_entries", []string{"1", "2"}))

	// A second instance reads what the first wrote.
	var ids []string
	require.NoError(t, NewKVStore(path).Get(ctx, "smartlp_entries", &ids))
	assert.Equal(t, []string{"1", "2"}, ids)

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed into place")
}

func TestKVStore_Missing(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore(filepath.Join(t.TempDir(), "selections.json"))

	var v []string
	err := store.Get(ctx, "nope", &v)
	assert.ErrorIs(t, err, kv.ErrNotFound)

	has, err := store.Has(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, has)

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestKVStore_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore(filepath.Join(t.TempDir(), "selections.json"))

	require.NoError(t, store.Set(ctx, "b", 1))
	require.NoError(t, store.Set(ctx, "a", 2))
	require.NoError(t, store.Delete(ctx, "b"))
	require.NoError(t, store.Delete(ctx, "missing"))

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, keys)

	entry, err := store.GetRaw(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `2`, string(entry.Value))
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestKVStore_CorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "selections.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewKVStore(path)

	var v []string
	err := store.Get(ctx, "k", &v)
	require.Error(t, err)
	assert.False(t, kv.IsNotFound(err))

	assert.Error(t, store.Set(ctx, "k", []string{"1"}), "refuses to overwrite an unreadable file")
}
