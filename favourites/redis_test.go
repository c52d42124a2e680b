package favourites

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewStore(rdb)
}

func TestToggle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	on, err := s.Toggle(ctx, "alice", "r1")
	require.NoError(t, err)
	assert.True(t, on)

	ok, err := s.IsFavourite(ctx, "alice", "r1")
	require.NoError(t, err)
	assert.True(t, ok)

	on, err = s.Toggle(ctx, "alice", "r1")
	require.NoError(t, err)
	assert.False(t, on)

	ok, err = s.IsFavourite(ctx, "alice", "r1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListIsPerCustomer(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for _, id := range []string{"r3", "r1", "r2"} {
		_, err := s.Toggle(ctx, "alice", id)
		require.NoError(t, err)
	}
	_, err := s.Toggle(ctx, "bob", "r9")
	require.NoError(t, err)

	alice, err := s.List(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2", "r3"}, alice)

	carol, err := s.List(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, carol)
}
