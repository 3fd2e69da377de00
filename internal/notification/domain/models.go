package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const EventTypePaymentCompleted = "payment.completed"

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "PENDING"
	OutboxStatusSent    OutboxStatus = "SENT"
	OutboxStatusFailed  OutboxStatus = "FAILED"
)

// OutboxMessage is a notification committed together with the business change
// that caused it. Delivery happens later, outside that transaction.
type OutboxMessage struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	EventType     string            `gorm:"type:text;not null" json:"event_type"`
	Payload       datatypes.JSONMap `gorm:"type:jsonb;not null" json:"payload"`
	DedupeKey     string            `gorm:"type:text;not null;uniqueIndex" json:"dedupe_key"`
	Status        OutboxStatus      `gorm:"type:text;not null;index:ix_notification_outbox_due,priority:1" json:"status"`
	Attempts      int               `gorm:"not null;default:0" json:"attempts"`
	NextAttemptAt time.Time         `gorm:"not null;index:ix_notification_outbox_due,priority:2" json:"next_attempt_at"`
	LastError     string            `gorm:"type:text" json:"last_error,omitempty"`
	SentAt        *time.Time        `json:"sent_at,omitempty"`
	CreatedAt     time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null" json:"updated_at"`
}

func (OutboxMessage) TableName() string { return "notification_outbox" }

// PaymentCompletedEvent is emitted once per settled challan.
type PaymentCompletedEvent struct {
	OutboxID      snowflake.ID    `json:"outbox_id"`
	OrgID         snowflake.ID    `json:"organization_id"`
	ChallanNo     string          `json:"challan_no"`
	StudentName   string          `json:"student_name"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	GuardianPhone string          `json:"guardian_phone"`
	PaidAt        time.Time       `json:"paid_at"`
}

// DedupeKey identifies the event independently of the outbox row id.
func (e PaymentCompletedEvent) DedupeKey() string {
	return EventTypePaymentCompleted + ":" + e.ChallanNo
}

func (e PaymentCompletedEvent) Payload() datatypes.JSONMap {
	return datatypes.JSONMap{
		"challan_no":     e.ChallanNo,
		"student_name":   e.StudentName,
		"amount":         e.Amount.StringFixed(2),
		"currency":       e.Currency,
		"guardian_phone": e.GuardianPhone,
		"paid_at":        e.PaidAt.UTC().Format(time.RFC3339),
	}
}

// PaymentCompletedFromOutbox rebuilds the event stored in msg.
func PaymentCompletedFromOutbox(msg OutboxMessage) (PaymentCompletedEvent, error) {
	if msg.EventType != EventTypePaymentCompleted {
		return PaymentCompletedEvent{}, fmt.Errorf("%w: %s", ErrUnsupportedEvent, msg.EventType)
	}
	str := func(key string) string {
		if v, ok := msg.Payload[key].(string); ok {
			return v
		}
		return ""
	}

	amount, err := decimal.NewFromString(str("amount"))
	if err != nil {
		return PaymentCompletedEvent{}, fmt.Errorf("%w: amount", ErrInvalidPayload)
	}
	event := PaymentCompletedEvent{
		OutboxID:      msg.ID,
		OrgID:         msg.OrgID,
		ChallanNo:     str("challan_no"),
		StudentName:   str("student_name"),
		Amount:        amount,
		Currency:      str("currency"),
		GuardianPhone: str("guardian_phone"),
	}
	if paidAt := str("paid_at"); paidAt != "" {
		if t, err := time.Parse(time.RFC3339, paidAt); err == nil {
			event.PaidAt = t
		}
	}
	if event.ChallanNo == "" {
		return PaymentCompletedEvent{}, fmt.Errorf("%w: challan_no", ErrInvalidPayload)
	}
	return event, nil
}

// NewPaymentCompletedMessage builds the outbox row for event, due at now.
func NewPaymentCompletedMessage(id snowflake.ID, event PaymentCompletedEvent, now time.Time) OutboxMessage {
	return OutboxMessage{
		ID:            id,
		OrgID:         event.OrgID,
		EventType:     EventTypePaymentCompleted,
		Payload:       event.Payload(),
		DedupeKey:     event.DedupeKey(),
		Status:        OutboxStatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
