package scheduler

import (
	"context"
	"time"

	notificationdomain "github.com/smallbiznis/sairex/internal/notification/domain"
	obslogger "github.com/smallbiznis/sairex/internal/observability/logger"
	"go.uber.org/zap"
)

// jobRun accumulates what one job invocation did for the finish log line.
type jobRun struct {
	job       string
	runID     string
	startedAt time.Time
	errors    int
	relay     notificationdomain.RelayStats
}

func (r *jobRun) recordRelay(stats notificationdomain.RelayStats) {
	r.relay.Picked += stats.Picked
	r.relay.Sent += stats.Sent
	r.relay.Retried += stats.Retried
	r.relay.Failed += stats.Failed
}

func (r *jobRun) idle() bool { return r.relay.Picked == 0 }

func (s *Scheduler) newJobRun(job string) *jobRun {
	return &jobRun{
		job:       job,
		runID:     s.genID.Generate().String(),
		startedAt: s.clock.Now(),
	}
}

func (s *Scheduler) logger(ctx context.Context) *zap.Logger {
	return obslogger.WithContext(ctx, s.log)
}

func (s *Scheduler) logJobStart(ctx context.Context, run *jobRun) {
	s.logger(ctx).Debug("scheduler.job.start", zap.String("job", run.job), zap.String("run_id", run.runID))
}

func (s *Scheduler) logJobFinish(ctx context.Context, run *jobRun) {
	fields := []zap.Field{
		zap.String("job", run.job),
		zap.String("run_id", run.runID),
		zap.Int64("duration_ms", s.clock.Now().Sub(run.startedAt).Milliseconds()),
		zap.Int("picked", run.relay.Picked),
		zap.Int("sent", run.relay.Sent),
		zap.Int("retried", run.relay.Retried),
		zap.Int("failed", run.relay.Failed),
		zap.Int("errors", run.errors),
	}
	log := s.logger(ctx)
	switch {
	case run.errors > 0 || run.relay.Failed > 0:
		log.Warn("scheduler.job.finish", fields...)
	case run.idle():
		log.Debug("scheduler.job.finish", fields...)
	default:
		log.Info("scheduler.job.finish", fields...)
	}
}
