package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alejandrodnm/polyhedx/internal/adapters/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteKV_GetMissing(t *testing.T) {
	kv, err := storage.NewSQLiteKV(":memory:")
	require.NoError(t, err)
	defer kv.Close()

	v, found, err := kv.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, v)
}

func TestSQLiteKV_SetAndGet(t *testing.T) {
	kv, err := storage.NewSQLiteKV(":memory:")
	require.NoError(t, err)
	defer kv.Close()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", []byte(`{"a":1}`)))
	v, found, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"a":1}`, string(v))
}

func TestSQLiteKV_Upsert(t *testing.T) {
	kv, err := storage.NewSQLiteKV(":memory:")
	require.NoError(t, err)
	defer kv.Close()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", []byte("one")))
	require.NoError(t, kv.Set(ctx, "k", []byte("two")))

	v, _, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(v))
}

func TestSQLiteKV_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polyhedx.db")
	ctx := context.Background()

	kv, err := storage.NewSQLiteKV(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "polyhedx_arenas", []byte("[]")))
	require.NoError(t, kv.Close())

	kv, err = storage.NewSQLiteKV(path)
	require.NoError(t, err)
	defer kv.Close()

	v, found, err := kv.Get(ctx, "polyhedx_arenas")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", string(v))
}

func TestSQLiteKV_ReturnedSliceIsCopy(t *testing.T) {
	kv, err := storage.NewSQLiteKV(":memory:")
	require.NoError(t, err)
	defer kv.Close()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", []byte("abc")))
	v, _, _ := kv.Get(ctx, "k")
	v[0] = 'X'

	again, _, _ := kv.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestSQLiteKV_SeesWritesFromOtherConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	ctx := context.Background()

	watcher, err := storage.NewSQLiteKV(path)
	require.NoError(t, err)
	defer watcher.Close()
	other, err := storage.NewSQLiteKV(path)
	require.NoError(t, err)
	defer other.Close()

	require.NoError(t, watcher.Set(ctx, "k", []byte("old")))
	v, _, err := watcher.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "old", string(v))

	require.NoError(t, other.Set(ctx, "k", []byte("new")))
	v, _, err = watcher.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", string(v))

	// un Set con el valor que el watcher vio antes tiene que llegar a disco
	require.NoError(t, watcher.Set(ctx, "k", []byte("old")))
	v, _, err = other.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "old", string(v))
}
