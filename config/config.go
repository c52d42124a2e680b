package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Cart     CartConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	RabbitMQ RabbitMQConfig
	Dispatch DispatchConfig
	JWT      JWTConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// CartConfig picks where carts are persisted: "memory", "file" or "redis".
type CartConfig struct {
	Backend  string
	Dir      string
	Name     string
	RedisTTL time.Duration
}

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	MaxRetries int
}

// KafkaConfig with no brokers disables the event log.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// RabbitMQConfig with an empty URL disables checkout.
type RabbitMQConfig struct {
	URL       string
	QueueName string
}

// DispatchConfig drives the dispatcher: how long to wait before retrying an
// order no courier could take, and when a busy courier counts as gone.
type DispatchConfig struct {
	RetryDelay     time.Duration
	CourierTimeout time.Duration
	SweepInterval  time.Duration
}

type JWTConfig struct {
	SecretKey string
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Cart: CartConfig{
			Backend:  getEnv("CART_BACKEND", "redis"),
			Dir:      getEnv("CART_DIR", "./data/carts"),
			Name:     getEnv("CART_STORE_NAME", "cart-storage"),
			RedisTTL: getDuration("CART_REDIS_TTL", 7*24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getInt("REDIS_DB", 0),
			MaxRetries: getInt("REDIS_CONNECT_RETRIES", 5),
		},
		Kafka: KafkaConfig{
			Brokers: getList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "food_orders"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:       getEnv("RABBITMQ_URL", ""),
			QueueName: getEnv("RABBITMQ_QUEUE", "food-queue"),
		},
		Dispatch: DispatchConfig{
			RetryDelay:     getDuration("DISPATCH_RETRY_DELAY", 5*time.Second),
			CourierTimeout: getDuration("DISPATCH_COURIER_TIMEOUT", 5*time.Minute),
			SweepInterval:  getDuration("DISPATCH_SWEEP_INTERVAL", time.Minute),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", "my-secret-key"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return d
}

func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
