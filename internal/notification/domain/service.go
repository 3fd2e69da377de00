package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// DispatchResult is the outcome of one delivery attempt.
type DispatchResult struct {
	Sent      bool           `json:"sent"`
	Detail    string         `json:"detail"`
	MessageID string         `json:"message_id,omitempty"`
	Err       *DispatchError `json:"-"`
}

type Service interface {
	// NotifyPaymentReceived sends one receipt SMS and reports the outcome.
	NotifyPaymentReceived(ctx context.Context, event PaymentCompletedEvent) DispatchResult
	// Deliver dispatches a due outbox row and records the outcome on it.
	Deliver(ctx context.Context, outboxID snowflake.ID) (Delivery, error)
}

// Delivery is the outcome of Deliver. Skipped is set when the row was not
// due, already settled, or claimed by another worker.
type Delivery struct {
	Result   DispatchResult
	Status   OutboxStatus
	Attempts int
	Skipped  bool
}

// RelayStats summarizes one relay pass.
type RelayStats struct {
	Picked  int
	Sent    int
	Retried int
	Failed  int
}
