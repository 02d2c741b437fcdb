package metadata

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/betterimg/betterimg/internal/common"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:metadata?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func TestSQLiteRepository_SetGet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "session_token", []byte("tok-1")))

	v, err := r.Get(ctx, "session_token")
	require.NoError(t, err)
	require.Equal(t, []byte("tok-1"), v)
}

func TestSQLiteRepository_SetOverwrites(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("a")))
	require.NoError(t, r.Set(ctx, "k", []byte("b")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("b"), v)
}

func TestSQLiteRepository_GetMissing(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.Get(context.Background(), "absent")
	require.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestSQLiteRepository_DeleteAndClear(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Set(ctx, "b", []byte("2")))

	require.NoError(t, r.Delete(ctx, "a"))
	_, err := r.Get(ctx, "a")
	require.True(t, errors.Is(err, common.ErrorNotFound))

	// delete is a no-op for missing keys
	require.NoError(t, r.Delete(ctx, "a"))

	require.NoError(t, r.Clear(ctx))
	_, err = r.Get(ctx, "b")
	require.True(t, errors.Is(err, common.ErrorNotFound))
}
