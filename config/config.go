package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Ledger   LedgerConfig
}

type ServerConfig struct {
	AppEnv         string
	HTTPPort       string
	RequestTimeout time.Duration
	AllowedOrigins []string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

// RedisConfig is optional; an empty Addr disables idempotency keys.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	IdempotencyTTL time.Duration
}

// KafkaConfig is optional; no brokers means the event listener is not started.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// LedgerConfig holds the delivery sizes used by truck actions.
type LedgerConfig struct {
	FullTruck4x5  int64
	FullTruck4x8  int64
	SplitTruck4x5 int64
	SplitTruck4x8 int64
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:         getEnv("APP_ENV", "dev"),
			HTTPPort:       getEnv("HTTP_PORT", ":4000"),
			RequestTimeout: time.Duration(getEnvInt("HTTP_REQUEST_TIMEOUT_MS", 5000)) * time.Millisecond,
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			User:            getEnv("POSTGRES_USER", "ledger"),
			Password:        getEnv("POSTGRES_PASSWORD", "ledger"),
			DBName:          getEnv("POSTGRES_DB", "ledger"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", ""),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvInt("REDIS_DB", 0),
			IdempotencyTTL: time.Duration(getEnvInt("IDEMPOTENCY_TTL_SECONDS", 86400)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC_LEDGER", "ledger.events"),
			GroupID: getEnv("KAFKA_GROUP_LEDGER", "ledger"),
		},
		Ledger: LedgerConfig{
			FullTruck4x5:  int64(getEnvInt("LEDGER_FULL_TRUCK_4X5", 1000)),
			FullTruck4x8:  int64(getEnvInt("LEDGER_FULL_TRUCK_4X8", 640)),
			SplitTruck4x5: int64(getEnvInt("LEDGER_SPLIT_TRUCK_4X5", 500)),
			SplitTruck4x8: int64(getEnvInt("LEDGER_SPLIT_TRUCK_4X8", 300)),
		},
	}
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimPrefix(c.Server.HTTPPort, ":") == "" {
		return errors.New("HTTP_PORT must be provided")
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("HTTP_REQUEST_TIMEOUT_MS must be positive")
	}

	switch {
	case c.Ledger.FullTruck4x5 <= 0:
		return errors.New("LEDGER_FULL_TRUCK_4X5 must be positive")
	case c.Ledger.FullTruck4x8 <= 0:
		return errors.New("LEDGER_FULL_TRUCK_4X8 must be positive")
	case c.Ledger.SplitTruck4x5 <= 0:
		return errors.New("LEDGER_SPLIT_TRUCK_4X5 must be positive")
	case c.Ledger.SplitTruck4x8 <= 0:
		return errors.New("LEDGER_SPLIT_TRUCK_4X8 must be positive")
	}

	if c.Redis.Addr != "" && c.Redis.IdempotencyTTL <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS must be positive when REDIS_ADDR is set")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("KAFKA_TOPIC_LEDGER must be provided when KAFKA_BROKERS is set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return fallback
}
