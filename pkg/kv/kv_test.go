package kv_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/Roma7-7-7/love-dialect/pkg/kv"
)

func newSQLite(t *testing.T) *kv.SQLite {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	store, err := kv.NewSQLite(context.Background(), db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return store
}

func TestStores(t *testing.T) {
	stores := map[string]kv.Store{
		"in_memory": kv.NewInMemory(),
		"sqlite":    newSQLite(t),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := store.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(ctx, "users", `{"a":1}`))
			v, ok, err := store.Get(ctx, "users")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"a":1}`, v)

			require.NoError(t, store.Set(ctx, "users", `{"b":2}`))
			v, _, err = store.Get(ctx, "users")
			require.NoError(t, err)
			assert.Equal(t, `{"b":2}`, v)

			require.NoError(t, store.Remove(ctx, "users"))
			_, ok, err = store.Get(ctx, "users")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Remove(ctx, "users"), "removing an absent key is a no-op")
		})
	}
}
