package kafka

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/IBM/sarama"

	"ledger-engine/internal/eventstream"
)

// Publisher publishes ledger events to Kafka topics using a synchronous
// producer, one message per event.
type Publisher struct {
	producer sarama.SyncProducer

	mu     sync.RWMutex
	closed bool
}

// NewPublisher dials the brokers in cfg and returns a ready Publisher.
func NewPublisher(cfg *Config) (*Publisher, error) {
	saramaCfg, err := cfg.ToSaramaConfig()
	if err != nil {
		return nil, fmt.Errorf("eventstream/kafka: bad config: %w", err)
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("eventstream/kafka: failed to dial brokers: %w", err)
	}
	return &Publisher{producer: producer}, nil
}

func (p *Publisher) send(topic, key string, event interface{}) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("eventstream/kafka: publisher is closed")
	}
	p.mu.RUnlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("eventstream/kafka: failed to marshal event: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("eventstream/kafka: failed to send to %s: %w", topic, err)
	}
	return nil
}

// PublishTransaction publishes a TransactionEvent to the accepted or
// rejected topic depending on its outcome.
func (p *Publisher) PublishTransaction(event eventstream.TransactionEvent) error {
	topic := TopicTransactionsAccepted
	if !event.Accepted {
		topic = TopicTransactionsRejected
	}
	key := strconv.FormatUint(uint64(event.Client), 10)
	return p.send(topic, key, event)
}

// PublishAccountLocked publishes an AccountLockedEvent.
func (p *Publisher) PublishAccountLocked(event eventstream.AccountLockedEvent) error {
	key := strconv.FormatUint(uint64(event.Client), 10)
	return p.send(TopicAccountsLocked, key, event)
}

// Close shuts the underlying producer down.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.producer.Close()
}
