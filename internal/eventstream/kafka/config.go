package kafka

import (
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// Config holds the Kafka producer configuration for the ledger's event
// stream. It mirrors the production settings of a synchronous, durable
// single-producer writer rather than a high-throughput batching one,
// since the volume here is one event per processed row.
type Config struct {
	Brokers         []string
	ClientID        string
	CompressionType string
	RequiredAcks    string
	MaxRetries      int
	RetryBackoff    time.Duration
}

// DefaultConfig returns sane defaults for a local broker.
func DefaultConfig(brokers []string, clientID string) *Config {
	return &Config{
		Brokers:         brokers,
		ClientID:        clientID,
		CompressionType: "snappy",
		RequiredAcks:    "all",
		MaxRetries:      5,
		RetryBackoff:    100 * time.Millisecond,
	}
}

// ToSaramaConfig converts Config into a sarama.Config.
func (c *Config) ToSaramaConfig() (*sarama.Config, error) {
	config := sarama.NewConfig()

	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.Retry.Max = c.MaxRetries
	config.Producer.Retry.Backoff = c.RetryBackoff
	config.ClientID = c.ClientID
	config.Version = sarama.V3_0_0_0

	switch c.RequiredAcks {
	case "all", "-1":
		config.Producer.RequiredAcks = sarama.WaitForAll
	case "1":
		config.Producer.RequiredAcks = sarama.WaitForLocal
	case "0":
		config.Producer.RequiredAcks = sarama.NoResponse
	default:
		return nil, fmt.Errorf("invalid required acks value: %s", c.RequiredAcks)
	}

	switch c.CompressionType {
	case "none":
		config.Producer.Compression = sarama.CompressionNone
	case "gzip":
		config.Producer.Compression = sarama.CompressionGZIP
	case "snappy":
		config.Producer.Compression = sarama.CompressionSnappy
	case "lz4":
		config.Producer.Compression = sarama.CompressionLZ4
	case "zstd":
		config.Producer.Compression = sarama.CompressionZSTD
	default:
		return nil, fmt.Errorf("invalid compression type: %s", c.CompressionType)
	}

	return config, nil
}
