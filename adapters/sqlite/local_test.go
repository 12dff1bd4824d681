package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/wanderlust/pkg/migrate"
)

func openTemp(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "local.db")
	store, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestGet_Absent(t *testing.T) {
	store, _ := openTemp(t)

	v, err := store.Get(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSet_Upsert(t *testing.T) {
	store, _ := openTemp(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("old")))
	require.NoError(t, store.Set(ctx, "k", []byte("new")))

	v, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestDelete(t *testing.T) {
	store, _ := openTemp(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("v")))

	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))

	v, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestReopenKeepsValues(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "local.db")

	first, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "current_identity", []byte(`{"id":"1"}`)))
	require.NoError(t, first.Close())

	second, err := Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	v, err := second.Get(ctx, "current_identity")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(v))
}

func TestMigrationsApplied(t *testing.T) {
	store, _ := openTemp(t)

	version, err := migrate.Version(context.Background(), store.db, "sqlite3")

	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}
