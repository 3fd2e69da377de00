package domain

import "context"

type Service interface {
	// RecordPayment settles an UNPAID challan. The challan update, its ledger
	// entry and the receipt outbox row commit together.
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (RecordPaymentResult, error)
}
