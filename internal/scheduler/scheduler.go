package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sairex/internal/clock"
	notificationdomain "github.com/smallbiznis/sairex/internal/notification/domain"
	obsmetrics "github.com/smallbiznis/sairex/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const JobNotificationRelay = "notification_relay"

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

// OutboxRelay is the part of the notification relay the scheduler drives.
type OutboxRelay interface {
	RunOnce(ctx context.Context) (notificationdomain.RelayStats, error)
}

type Params struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Relay      OutboxRelay
	Config     Config                     `optional:"true"`
	ObsMetrics *obsmetrics.BillingMetrics `optional:"true"`
}

type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	genID      *snowflake.Node
	clock      clock.Clock
	relay      OutboxRelay
	obsMetrics *obsmetrics.BillingMetrics
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.GenID == nil || p.Clock == nil || p.Relay == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        p.Config.withDefaults(),
		genID:      p.GenID,
		clock:      p.Clock,
		relay:      p.Relay,
		obsMetrics: p.ObsMetrics,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context, run *jobRun) error,
) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	run := s.newJobRun(name)
	s.logJobStart(ctx, run)

	err := fn(ctx, run)
	if err != nil {
		run.errors++
	}
	s.logJobFinish(ctx, run)
	if err == nil {
		s.obsMetrics.JobRun(name, obsmetrics.JobOutcomeSuccess)
		return nil
	}

	// A deadline is a soft timeout; unfinished rows stay due for the next tick.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.obsMetrics.JobRun(name, obsmetrics.JobOutcomeTimeout)
		s.logger(ctx).Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	s.obsMetrics.JobRun(name, obsmetrics.JobOutcomeError)
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name string
		Run  func(context.Context, *jobRun) error
	}{
		{JobNotificationRelay, s.NotificationRelayJob},
	}

	for _, job := range jobs {
		if s.isJobEnabled(job.Name) {
			err = errors.Join(err, s.runJob(parent, job.Name, s.cfg.JobTimeout, job.Run))
		}
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

func (s *Scheduler) NotificationRelayJob(ctx context.Context, run *jobRun) error {
	stats, err := s.relay.RunOnce(ctx)
	run.recordRelay(stats)
	return err
}
