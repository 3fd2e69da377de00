package domain

import (
	"time"

	"github.com/shopspring/decimal"
	challandomain "github.com/smallbiznis/sairex/internal/challan/domain"
	notificationdomain "github.com/smallbiznis/sairex/internal/notification/domain"
)

// Rejection reasons, also used as metric labels.
const (
	RejectNotFound       = "not_found"
	RejectAlreadyPaid    = "already_paid"
	RejectAmountMismatch = "amount_mismatch"
	RejectInvalid        = "invalid_request"
)

type RecordPaymentRequest struct {
	ChallanNo string
	Amount    decimal.Decimal
	// Method defaults to CASH when empty.
	Method string
	// PaidAt defaults to the current time when zero.
	PaidAt time.Time
	// PayerPhone overrides the guardian phone on file for the receipt.
	PayerPhone string
}

type RecordPaymentResult struct {
	Challan challandomain.FeeChallan
	// Event is nil when no guardian phone is known.
	Event *notificationdomain.PaymentCompletedEvent
}
