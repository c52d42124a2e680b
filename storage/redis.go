package storage

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RedisStorage keeps each blob as a plain string value.
type RedisStorage struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStorage wraps an existing client. A zero ttl keeps blobs forever.
func NewRedisStorage(rdb *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{rdb: rdb, ttl: ttl}
}

func (r *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "redis get %s", key)
	}
	return data, nil
}

func (r *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

// ConnectRedis pings until the server answers, backing off exponentially.
// It always makes at least one attempt.
func ConnectRedis(opts *redis.Options, maxRetries int, log *logrus.Entry) (*redis.Client, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	rdb := redis.NewClient(opts)

	var err error
	for i := 0; i < maxRetries; i++ {
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()

		if err == nil {
			log.WithField("addr", opts.Addr).Info("connected to redis")
			return rdb, nil
		}

		if i == maxRetries-1 {
			break
		}

		backoff := time.Duration(1<<i) * time.Second
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
		log.WithError(err).Warnf("redis not ready, retry in %v (%d/%d)", backoff, i+1, maxRetries)
		time.Sleep(backoff)
	}

	rdb.Close()
	return nil, errors.Wrapf(err, "failed to connect to redis after %d retries", maxRetries)
}
