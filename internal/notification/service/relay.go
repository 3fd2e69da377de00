package service

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/sairex/internal/clock"
	"github.com/smallbiznis/sairex/internal/config"
	"github.com/smallbiznis/sairex/internal/notification/domain"
	obsmetrics "github.com/smallbiznis/sairex/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RelayParams struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Outbox     domain.OutboxRepository
	Notifier   domain.Service
	Billing    *config.BillingConfigHolder
	ObsMetrics *obsmetrics.BillingMetrics `optional:"true"`
}

// Relay redelivers outbox rows whose first delivery did not succeed.
type Relay struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	outbox     domain.OutboxRepository
	notifier   domain.Service
	billing    *config.BillingConfigHolder
	obsMetrics *obsmetrics.BillingMetrics
}

func NewRelay(p RelayParams) *Relay {
	return &Relay{
		db:         p.DB,
		log:        p.Log.Named("notification.relay"),
		clock:      p.Clock,
		outbox:     p.Outbox,
		notifier:   p.Notifier,
		billing:    p.Billing,
		obsMetrics: p.ObsMetrics,
	}
}

// RunOnce delivers up to one batch of due rows.
func (r *Relay) RunOnce(ctx context.Context) (domain.RelayStats, error) {
	var stats domain.RelayStats
	due, err := r.outbox.ListDue(ctx, r.db, r.clock.Now(), r.billing.Get().Relay.BatchSize)
	if err != nil {
		return stats, err
	}

	var errs error
	for _, msg := range due {
		if err := ctx.Err(); err != nil {
			return stats, errors.Join(errs, err)
		}
		delivery, err := r.notifier.Deliver(ctx, msg.ID)
		if err != nil {
			r.obsMetrics.RelayAttempt("error")
			r.log.Warn("outbox delivery failed", zap.String("outbox_id", msg.ID.String()), zap.Error(err))
			errs = errors.Join(errs, err)
			continue
		}
		if delivery.Skipped {
			continue
		}
		stats.Picked++
		switch delivery.Status {
		case domain.OutboxStatusSent:
			stats.Sent++
		case domain.OutboxStatusFailed:
			stats.Failed++
		default:
			stats.Retried++
		}
		r.obsMetrics.RelayAttempt(strings.ToLower(string(delivery.Status)))
	}

	if stats.Picked > 0 {
		r.log.Info("outbox relay pass",
			zap.Int("picked", stats.Picked),
			zap.Int("sent", stats.Sent),
			zap.Int("retried", stats.Retried),
			zap.Int("failed", stats.Failed),
		)
	}
	return stats, errs
}
