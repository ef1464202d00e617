package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is a closed set of notification event kinds. Payload construction
// switches over Kind exhaustively; adding a kind without a payload branch
// fails at dispatch time with ErrUnknownKind instead of sending garbage.
type Kind string

const (
	// Customer-facing order lifecycle events.
	KindOrderConfirmed Kind = "order_confirmed"
	KindOrderRejected  Kind = "order_rejected"
	KindOrderCompleted Kind = "order_completed"

	// Shopkeeper-facing order events.
	KindOrderReceived  Kind = "order_received"
	KindOrderCancelled Kind = "order_cancelled"

	// Promotional broadcast.
	KindAdvertisement Kind = "advertisement"
)

var ErrUnknownKind = errors.New("unknown notification event kind")

// Job is the envelope persisted to the outbox and carried over the queue.
// Exactly one of the order/advertisement field groups is populated,
// depending on Kind.
type Job struct {
	JobID        string  `json:"jobId"`
	Kind         Kind    `json:"kind"`
	ShopID       int64   `json:"shopId"`
	RecipientIDs []int64 `json:"recipientIds"`

	OrderID         int64   `json:"orderId,omitempty"`
	DeliveryTime    *int    `json:"deliveryTimeMinutes,omitempty"`
	RejectionReason *string `json:"rejectionReason,omitempty"`

	AdvertisementID int64  `json:"advertisementId,omitempty"`
	Message         string `json:"message,omitempty"`
}

// Marshal serializes the job for the outbox payload column.
func (j Job) Marshal() ([]byte, error) {
	payload, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification job: %w", err)
	}

	return payload, nil
}

// Unmarshal parses a queue payload back into a job.
func Unmarshal(payload []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(payload, &j); err != nil {
		return Job{}, fmt.Errorf("failed to unmarshal notification job: %w", err)
	}

	return j, nil
}
