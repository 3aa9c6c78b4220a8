package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteCartRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSQLiteCartRepository(filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	defer repo.Close()

	raw, err := repo.Load(ctx, GuestScope)
	require.NoError(t, err)
	assert.Nil(t, raw, "absent partition loads as nil")

	payload := []byte(`[{"id":"l1","productId":"p1","quantity":2}]`)
	require.NoError(t, repo.Save(ctx, GuestScope, payload))

	raw, err = repo.Load(ctx, GuestScope)
	require.NoError(t, err)
	assert.Equal(t, payload, raw)

	// Overwrite, last write wins.
	require.NoError(t, repo.Save(ctx, GuestScope, []byte(`[]`)))
	raw, err = repo.Load(ctx, GuestScope)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), raw)

	require.NoError(t, repo.Delete(ctx, GuestScope))
	raw, err = repo.Load(ctx, GuestScope)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestSQLiteCartRepository_PartitionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSQLiteCartRepository(filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.Save(ctx, UserScope("a"), []byte(`["a"]`)))
	require.NoError(t, repo.Save(ctx, UserScope("b"), []byte(`["b"]`)))

	require.NoError(t, repo.Delete(ctx, UserScope("a")))

	raw, err := repo.Load(ctx, UserScope("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte(`["b"]`), raw, "deleting one scope must not touch another")
}

func TestUserScopeKeys(t *testing.T) {
	assert.Equal(t, "cart_u1", UserScope("u1"))
	assert.Equal(t, "cart_guest", GuestScope)
	assert.Equal(t, "pendingCart", PendingScope)
}
