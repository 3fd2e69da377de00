package service

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/sairex/internal/clock"
	"github.com/smallbiznis/sairex/internal/config"
	"github.com/smallbiznis/sairex/internal/notification/domain"
	obsmetrics "github.com/smallbiznis/sairex/internal/observability/metrics"
	"github.com/smallbiznis/sairex/internal/providers/sms"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deliveryLease keeps a claimed row away from other workers while the
// gateway call is in flight.
const deliveryLease = 5 * time.Minute

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Outbox     domain.OutboxRepository
	SMS        sms.Provider
	Billing    *config.BillingConfigHolder
	ObsMetrics *obsmetrics.BillingMetrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	outbox     domain.OutboxRepository
	sms        sms.Provider
	billing    *config.BillingConfigHolder
	obsMetrics *obsmetrics.BillingMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("notification.service"),
		clock:      p.Clock,
		outbox:     p.Outbox,
		sms:        p.SMS,
		billing:    p.Billing,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) NotifyPaymentReceived(ctx context.Context, event domain.PaymentCompletedEvent) domain.DispatchResult {
	cfg := s.billing.Get()
	messageID := ulid.MustNew(ulid.Timestamp(s.clock.Now()), ulid.DefaultEntropy()).String()
	log := s.log.With(
		zap.String("message_id", messageID),
		zap.String("challan_no", event.ChallanNo),
	)

	receiver, err := domain.NormalizePhone(event.GuardianPhone, cfg.CountryCode)
	if err != nil {
		return s.failed(log, messageID, &domain.DispatchError{Reason: domain.ReasonInvalidPhone, Err: err})
	}
	text, err := domain.RenderReceipt(cfg.ReceiptTemplate, domain.ReceiptData{
		Amount:      event.Amount.String(),
		Currency:    event.Currency,
		StudentName: event.StudentName,
		ChallanNo:   event.ChallanNo,
		Sender:      cfg.SchoolSignature,
	})
	if err != nil {
		return s.failed(log, messageID, &domain.DispatchError{Reason: domain.ReasonTemplate, Err: err})
	}

	resp, err := s.sms.Send(ctx, sms.Message{Receiver: receiver, Text: text})
	if err != nil {
		return s.failed(log, messageID, classifyGatewayError(resp, err))
	}

	s.obsMetrics.Notification(obsmetrics.NotifyOutcomeSent)
	log.Info("payment receipt sent", zap.Int("status_code", resp.StatusCode))
	return domain.DispatchResult{
		Sent:      true,
		Detail:    resp.Body,
		MessageID: messageID,
	}
}

func (s *Service) failed(log *zap.Logger, messageID string, dispatchErr *domain.DispatchError) domain.DispatchResult {
	outcome := obsmetrics.NotifyOutcomeFailed
	if dispatchErr.Reason == domain.ReasonDisabled {
		outcome = obsmetrics.NotifyOutcomeSkipped
	}
	s.obsMetrics.Notification(outcome)
	log.Warn("payment receipt not sent",
		zap.String("reason", dispatchErr.Reason),
		zap.Int("status_code", dispatchErr.StatusCode),
		zap.Error(dispatchErr.Err),
	)
	return domain.DispatchResult{
		Sent:      false,
		Detail:    dispatchErr.Error(),
		MessageID: messageID,
		Err:       dispatchErr,
	}
}

func classifyGatewayError(resp sms.Response, err error) *domain.DispatchError {
	var statusErr *sms.StatusError
	var netErr net.Error
	switch {
	case errors.As(err, &statusErr):
		return &domain.DispatchError{Reason: domain.ReasonGatewayStatus, StatusCode: statusErr.StatusCode, Err: err}
	case errors.Is(err, sms.ErrUnreadableBody):
		return &domain.DispatchError{Reason: domain.ReasonUnreadableBody, StatusCode: resp.StatusCode, Err: err}
	case errors.Is(err, sms.ErrDisabled), errors.Is(err, sms.ErrNotConfigured):
		return &domain.DispatchError{Reason: domain.ReasonDisabled, Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &domain.DispatchError{Reason: domain.ReasonTimeout, Err: err}
	default:
		return &domain.DispatchError{Reason: domain.ReasonTransport, Err: err}
	}
}

func (s *Service) Deliver(ctx context.Context, outboxID snowflake.ID) (domain.Delivery, error) {
	now := s.clock.Now()
	claimed, err := s.outbox.Claim(ctx, s.db, outboxID, now, now.Add(deliveryLease))
	if err != nil {
		return domain.Delivery{}, err
	}
	if !claimed {
		return domain.Delivery{Skipped: true}, nil
	}

	msg, err := s.outbox.FindByID(ctx, s.db, outboxID)
	if err != nil {
		return domain.Delivery{}, err
	}
	if msg == nil {
		return domain.Delivery{}, domain.ErrOutboxNotFound
	}

	attempts := msg.Attempts + 1
	var result domain.DispatchResult
	event, err := domain.PaymentCompletedFromOutbox(*msg)
	if err != nil {
		result = s.failed(s.log.With(zap.String("outbox_id", msg.ID.String())), "",
			&domain.DispatchError{Reason: domain.ReasonTemplate, Err: err})
	} else {
		result = s.NotifyPaymentReceived(ctx, event)
	}

	return s.record(ctx, msg, attempts, result)
}

func (s *Service) record(ctx context.Context, msg *domain.OutboxMessage, attempts int, result domain.DispatchResult) (domain.Delivery, error) {
	now := s.clock.Now()
	delivery := domain.Delivery{Result: result, Attempts: attempts}
	relay := s.billing.Get().Relay

	switch {
	case result.Sent:
		delivery.Status = domain.OutboxStatusSent
		return delivery, s.outbox.MarkSent(ctx, s.db, msg.ID, attempts, now)
	case result.Err.Permanent() || attempts >= relay.MaxAttempts:
		delivery.Status = domain.OutboxStatusFailed
		s.log.Warn("notification given up",
			zap.String("outbox_id", msg.ID.String()),
			zap.Int("attempts", attempts),
			zap.String("reason", result.Err.Reason),
		)
		return delivery, s.outbox.MarkFailed(ctx, s.db, msg.ID, attempts, result.Detail, now)
	default:
		delivery.Status = domain.OutboxStatusPending
		next := now.Add(domain.RetryDelay(relay.BaseBackoff, relay.MaxBackoff, attempts))
		return delivery, s.outbox.MarkRetry(ctx, s.db, msg.ID, attempts, next, result.Detail, now)
	}
}
