package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "CART_BACKEND", "KAFKA_BROKERS", "RABBITMQ_URL", "REDIS_DB"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "redis", cfg.Cart.Backend)
	assert.Equal(t, "cart-storage", cfg.Cart.Name)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "food-queue", cfg.RabbitMQ.QueueName)
	assert.Equal(t, 5*time.Second, cfg.Dispatch.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.Dispatch.CourierTimeout)
	assert.Equal(t, time.Minute, cfg.Dispatch.SweepInterval)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("CART_BACKEND", "file")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CART_REDIS_TTL", "not-a-duration")
	t.Setenv("DISPATCH_COURIER_TIMEOUT", "90s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "file", cfg.Cart.Backend)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 7*24*time.Hour, cfg.Cart.RedisTTL)
	assert.Equal(t, 90*time.Second, cfg.Dispatch.CourierTimeout)
}
