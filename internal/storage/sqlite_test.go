package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardbook/internal/common/errors"
	"cardbook/internal/storage"
)

func newSQLiteStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.NewSQLiteStore(context.Background(),
		filepath.Join(t.TempDir(), "contacts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "abc", []byte("one"), false))
	require.NoError(t, store.Put(ctx, "def", []byte("two"), false))

	entry, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), entry.Data)

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "abc", entries[0].UID)
	assert.Equal(t, "def", entries[1].UID)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.True(t, errors.IsNotFound(err))
}

func TestSQLiteStoreOverwrite(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "abc", []byte("one"), false))
	err := store.Put(ctx, "abc", []byte("two"), false)
	require.Error(t, err)

	require.NoError(t, store.Put(ctx, "abc", []byte("two"), true))
	entry, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), entry.Data)
}

func TestSQLiteStoreDeleteMissing(t *testing.T) {
	store := newSQLiteStore(t)
	err := store.Delete(context.Background(), "missing")
	assert.True(t, errors.IsNotFound(err))
}
