package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	challandomain "github.com/smallbiznis/sairex/internal/challan/domain"
	"github.com/smallbiznis/sairex/internal/clock"
	ledgerdomain "github.com/smallbiznis/sairex/internal/ledger/domain"
	notificationdomain "github.com/smallbiznis/sairex/internal/notification/domain"
	obsmetrics "github.com/smallbiznis/sairex/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/sairex/internal/payment/domain"
	tenantdomain "github.com/smallbiznis/sairex/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	ChallanRepo challandomain.Repository
	Outbox      notificationdomain.OutboxRepository
	TenantSvc   tenantdomain.Service
	LedgerSvc   ledgerdomain.Service
	ObsMetrics  *obsmetrics.BillingMetrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	challanRepo challandomain.Repository
	outbox      notificationdomain.OutboxRepository
	tenantSvc   tenantdomain.Service
	ledgerSvc   ledgerdomain.Service
	obsMetrics  *obsmetrics.BillingMetrics
}

func New(p Params) paymentdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		challanRepo: p.ChallanRepo,
		outbox:      p.Outbox,
		tenantSvc:   p.TenantSvc,
		ledgerSvc:   p.LedgerSvc,
		obsMetrics:  p.ObsMetrics,
	}
}

var (
	errSettledConcurrently = errors.New("challan settled concurrently")
	errPaymentPosted       = errors.New("payment ledger entry already exists")
)

func (s *Service) RecordPayment(ctx context.Context, req paymentdomain.RecordPaymentRequest) (paymentdomain.RecordPaymentResult, error) {
	challanNo := challandomain.NormalizeChallanNo(req.ChallanNo)
	method, err := challandomain.ParsePaymentMethod(req.Method)
	if err != nil {
		s.obsMetrics.PaymentRejected(paymentdomain.RejectInvalid)
		return paymentdomain.RecordPaymentResult{}, err
	}
	if req.Amount.IsNegative() {
		s.obsMetrics.PaymentRejected(paymentdomain.RejectInvalid)
		return paymentdomain.RecordPaymentResult{}, paymentdomain.ErrInvalidAmount
	}

	challan, err := s.challanRepo.FindByChallanNo(ctx, s.db, challanNo)
	if err != nil {
		return paymentdomain.RecordPaymentResult{}, challandomain.Persistence("find", err)
	}
	if challan == nil {
		s.obsMetrics.PaymentRejected(paymentdomain.RejectNotFound)
		return paymentdomain.RecordPaymentResult{}, &challandomain.NotFoundError{ChallanNo: challanNo}
	}
	if challan.IsPaid() {
		s.obsMetrics.PaymentRejected(paymentdomain.RejectAlreadyPaid)
		return paymentdomain.RecordPaymentResult{}, &paymentdomain.AlreadyPaidError{ChallanNo: challanNo, PaidAt: challan.PaidAt}
	}
	if !req.Amount.Equal(challan.TotalAmount) {
		s.obsMetrics.PaymentRejected(paymentdomain.RejectAmountMismatch)
		return paymentdomain.RecordPaymentResult{}, &paymentdomain.AmountMismatchError{
			ChallanNo: challanNo,
			Expected:  challan.TotalAmount,
			Got:       req.Amount,
		}
	}

	student, err := s.tenantSvc.GetStudent(ctx, challan.StudentID)
	if err != nil {
		return paymentdomain.RecordPaymentResult{}, err
	}

	paidAt := req.PaidAt
	if paidAt.IsZero() {
		paidAt = s.clock.Now()
	}
	paidAt = paidAt.UTC()

	var event *notificationdomain.PaymentCompletedEvent
	if phone := guardianPhone(req.PayerPhone, student.GuardianPhone); phone != "" {
		event = &notificationdomain.PaymentCompletedEvent{
			OutboxID:      s.genID.Generate(),
			OrgID:         challan.OrgID,
			ChallanNo:     challan.ChallanNo,
			StudentName:   student.FullName,
			Amount:        challan.TotalAmount,
			Currency:      challan.Currency,
			GuardianPhone: phone,
			PaidAt:        paidAt,
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		changed, err := s.challanRepo.MarkPaid(ctx, tx, challandomain.Settlement{
			ChallanID: challan.ID,
			Amount:    req.Amount,
			Method:    method,
			PaidAt:    paidAt,
		})
		if err != nil {
			return err
		}
		if !changed {
			return errSettledConcurrently
		}

		posted, err := s.ledgerSvc.Post(ctx, tx, ledgerdomain.Posting{
			OrgID:      challan.OrgID,
			StudentID:  challan.StudentID,
			SourceType: ledgerdomain.SourceTypePayment,
			SourceID:   challan.ID,
			Currency:   challan.Currency,
			OccurredAt: paidAt,
			Lines: ledgerdomain.Receivable(
				ledgerdomain.AccountCodeCash,
				ledgerdomain.AccountCodeAccountsReceivable,
				req.Amount,
			),
		})
		if err != nil {
			return err
		}
		if !posted {
			return errPaymentPosted
		}

		if event == nil {
			return nil
		}
		msg := notificationdomain.NewPaymentCompletedMessage(event.OutboxID, *event, s.clock.Now())
		inserted, err := s.outbox.Insert(ctx, tx, &msg)
		if err != nil {
			return err
		}
		if !inserted {
			event = nil
		}
		return nil
	})
	if errors.Is(err, errSettledConcurrently) {
		s.obsMetrics.PaymentRejected(paymentdomain.RejectAlreadyPaid)
		alreadyPaid := &paymentdomain.AlreadyPaidError{ChallanNo: challanNo}
		if winner, findErr := s.challanRepo.FindByID(ctx, s.db, challan.ID); findErr == nil && winner != nil {
			alreadyPaid.PaidAt = winner.PaidAt
		}
		return paymentdomain.RecordPaymentResult{}, alreadyPaid
	}
	if err != nil {
		s.log.Error("failed to record payment",
			zap.String("challan_no", challanNo),
			zap.String("reason", obsmetrics.ClassifyStorageError(err)),
			zap.Error(err),
		)
		return paymentdomain.RecordPaymentResult{}, challandomain.Persistence("record_payment", err)
	}

	challan.Status = challandomain.StatusPaid
	challan.PaidAmount = decimal.NewNullDecimal(req.Amount)
	challan.PaymentMethod = method
	challan.PaidAt = &paidAt
	challan.UpdatedAt = paidAt

	s.obsMetrics.PaymentRecorded(string(method))
	s.log.Info("payment recorded",
		zap.String("challan_no", challan.ChallanNo),
		zap.String("org_id", challan.OrgID.String()),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("method", string(method)),
		zap.Bool("notify", event != nil),
	)
	return paymentdomain.RecordPaymentResult{Challan: *challan, Event: event}, nil
}

func guardianPhone(payerPhone, onFile string) string {
	if phone := strings.TrimSpace(payerPhone); phone != "" {
		return phone
	}
	return strings.TrimSpace(onFile)
}
