package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAlreadyPaid    = errors.New("challan_already_paid")
	ErrAmountMismatch = errors.New("amount_mismatch")
	ErrInvalidAmount  = errors.New("invalid_amount")
)

type AlreadyPaidError struct {
	ChallanNo string
	PaidAt    *time.Time
}

func (e *AlreadyPaidError) Error() string {
	if e.PaidAt != nil {
		return fmt.Sprintf("challan %s already paid at %s", e.ChallanNo, e.PaidAt.UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf("challan %s already paid", e.ChallanNo)
}

func (e *AlreadyPaidError) Is(target error) bool { return target == ErrAlreadyPaid }

// AmountMismatchError rejects anything but the exact total; there are no
// partial payments.
type AmountMismatchError struct {
	ChallanNo string
	Expected  decimal.Decimal
	Got       decimal.Decimal
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("challan %s expects %s, got %s", e.ChallanNo, e.Expected.StringFixed(2), e.Got.StringFixed(2))
}

func (e *AmountMismatchError) Is(target error) bool { return target == ErrAmountMismatch }
