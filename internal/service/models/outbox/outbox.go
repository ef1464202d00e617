package outbox

import (
	"time"
)

// Message is a pending notification job persisted in the same transaction
// as the state change that produced it. A worker publishes it to the queue
// after the transaction commits.
type Message struct {
	ID           int64
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}
