// Package eventstream publishes a record of every accepted or rejected
// transaction, and every account lock, to an outbound side channel. It is
// an observability export: nothing in this repository consumes these
// events to decide what to do next, so a publisher going down or slow
// never affects the engine it's observing.
package eventstream

import "time"

// TransactionEvent reports the outcome of a single applied transaction.
type TransactionEvent struct {
	RunID     string    `json:"run_id"`
	Type      string    `json:"type"`
	Client    uint16    `json:"client"`
	Tx        uint32    `json:"tx"`
	Amount    uint64    `json:"amount,omitempty"`
	Accepted  bool      `json:"accepted"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AccountLockedEvent reports that a chargeback locked a client's account.
type AccountLockedEvent struct {
	RunID     string    `json:"run_id"`
	Client    uint16    `json:"client"`
	Tx        uint32    `json:"tx"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is implemented by every event sink this package ships:
// Kafka-backed and no-op.
type Publisher interface {
	PublishTransaction(event TransactionEvent) error
	PublishAccountLocked(event AccountLockedEvent) error
	Close() error
}

// NoOpPublisher discards every event. It is the default when no broker is
// configured.
type NoOpPublisher struct{}

func (NoOpPublisher) PublishTransaction(TransactionEvent) error     { return nil }
func (NoOpPublisher) PublishAccountLocked(AccountLockedEvent) error { return nil }
func (NoOpPublisher) Close() error                                 { return nil }
