// Package config loads the ambient configuration for the ledger CLI
// command from environment variables, following the teacher repository's
// env + default pattern.
package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Logging  LoggingConfig
	Ingest   IngestConfig
	Kafka    KafkaConfig
	Postgres PostgresConfig
}

type LoggingConfig struct {
	Level  string
	Format string
}

type IngestConfig struct {
	// Workers is the number of producer goroutines feeding the single
	// consumer that owns the engine. Zero means "process inline, no
	// ingest wrapper".
	Workers int
}

type KafkaConfig struct {
	Enabled  bool
	Brokers  []string
	ClientID string
}

type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
}

// Load reads the configuration from environment variables, falling back to
// defaults suitable for a single local run.
func Load() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  getEnv("LEDGER_LOG_LEVEL", "info"),
			Format: getEnv("LEDGER_LOG_FORMAT", "text"),
		},
		Ingest: IngestConfig{
			Workers: getEnvAsInt("LEDGER_WORKERS", 0),
		},
		Kafka: KafkaConfig{
			Enabled:  getEnvAsBool("LEDGER_KAFKA_ENABLED", false),
			Brokers:  strings.Split(getEnv("LEDGER_KAFKA_BROKERS", "localhost:9092"), ","),
			ClientID: getEnv("LEDGER_KAFKA_CLIENT_ID", "ledger-engine"),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("LEDGER_DB_HOST", "localhost"),
			Port:     getEnvAsInt("LEDGER_DB_PORT", 5432),
			Database: getEnv("LEDGER_DB_NAME", "ledger"),
			User:     getEnv("LEDGER_DB_USER", "ledger"),
			Password: getEnv("LEDGER_DB_PASSWORD", ""),
			SSLMode:  getEnv("LEDGER_DB_SSLMODE", "disable"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
