package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. Values come from the
// environment so main stays lean; dev defaults keep the service bootable
// without external infrastructure.
type Config struct {
	Addr          string
	JWTSigningKey string

	// PostgresDSN enables the postgres stores; empty means in-memory.
	PostgresDSN string

	// RedisURL enables the verification cache; empty disables it.
	RedisURL string

	// LedgerEndpoint is the base URL of the external append-only ledger
	// service; empty selects the embedded in-memory ledger (dev mode).
	LedgerEndpoint string

	// LedgerWriteConcurrency caps in-flight ledger writes so a slow ledger
	// does not pile up pending log entries.
	LedgerWriteConcurrency int

	// KafkaBrokers enables the notification publisher; empty disables it.
	KafkaBrokers []string
	KafkaTopic   string

	// VerifyCacheTTL bounds how long a verification result is reused.
	VerifyCacheTTL time.Duration

	ShutdownTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:                   getenv("CUSTODIA_ADDR", ":8080"),
		JWTSigningKey:          getenv("CUSTODIA_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresDSN:            os.Getenv("CUSTODIA_POSTGRES_DSN"),
		RedisURL:               os.Getenv("CUSTODIA_REDIS_URL"),
		LedgerEndpoint:         os.Getenv("CUSTODIA_LEDGER_ENDPOINT"),
		LedgerWriteConcurrency: getenvInt("CUSTODIA_LEDGER_WRITE_CONCURRENCY", 8),
		KafkaTopic:             getenv("CUSTODIA_KAFKA_TOPIC", "custodia.notifications"),
		VerifyCacheTTL:         getenvDuration("CUSTODIA_VERIFY_CACHE_TTL", time.Minute),
		ShutdownTimeout:        10 * time.Second,
	}
	if brokers := os.Getenv("CUSTODIA_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
