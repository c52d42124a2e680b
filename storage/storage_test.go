package storage

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, s Storage) {
	ctx := context.Background()

	_, err := s.Get(ctx, "cart-storage:alice")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "cart-storage:alice", []byte(`{"lines":[]}`)))
	require.NoError(t, s.Set(ctx, "cart-storage:bob", []byte(`{"lines":[1]}`)))

	got, err := s.Get(ctx, "cart-storage:alice")
	require.NoError(t, err)
	assert.Equal(t, `{"lines":[]}`, string(got))

	require.NoError(t, s.Set(ctx, "cart-storage:alice", []byte(`{}`)))
	got, err = s.Get(ctx, "cart-storage:alice")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))

	got, err = s.Get(ctx, "cart-storage:bob")
	require.NoError(t, err)
	assert.Equal(t, `{"lines":[1]}`, string(got))
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestMemoryStorageCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	value := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileStorage(t *testing.T) {
	s, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	exerciseStorage(t, s)
}

func TestFileStorageSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "cart-storage", []byte("persisted")))

	reopened, err := NewFileStorage(dir)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "cart-storage")
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))
}

func TestRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	exerciseStorage(t, NewRedisStorage(rdb, 0))
}

func TestRedisStorageTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := NewRedisStorage(rdb, time.Hour)
	require.NoError(t, s.Set(context.Background(), "cart-storage:alice", []byte("x")))
	assert.Equal(t, time.Hour, mr.TTL("cart-storage:alice"))

	mr.FastForward(2 * time.Hour)
	_, err := s.Get(context.Background(), "cart-storage:alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStorageUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	s := NewRedisStorage(rdb, 0)
	err := s.Set(context.Background(), "k", []byte("v"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	for _, retries := range []int{-1, 0, 1, 3} {
		rdb, err := ConnectRedis(&redis.Options{Addr: mr.Addr()}, retries, quietLog())
		require.NoError(t, err, "retries %d", retries)
		require.NotNil(t, rdb, "retries %d", retries)
		require.NoError(t, rdb.Ping(context.Background()).Err())
		rdb.Close()
	}
}

func TestConnectRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	for _, retries := range []int{-1, 0, 1} {
		rdb, err := ConnectRedis(&redis.Options{Addr: addr, MaxRetries: -1}, retries, quietLog())
		assert.Error(t, err, "retries %d", retries)
		assert.Nil(t, rdb, "retries %d", retries)
	}
}
