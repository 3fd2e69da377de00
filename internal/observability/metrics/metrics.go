package metrics

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Config labels every series with the running service.
type Config struct {
	ServiceName string
	Environment string
}

const (
	IssueOutcomeCreated  = "created"
	IssueOutcomeExisting = "existing"

	NotifyOutcomeSent    = "sent"
	NotifyOutcomeFailed  = "failed"
	NotifyOutcomeSkipped = "skipped"

	JobOutcomeSuccess = "success"
	JobOutcomeError   = "error"
	JobOutcomeTimeout = "timeout"

	ReasonDeadlineExceeded = "deadline_exceeded"
	ReasonDBLockTimeout    = "db_lock_timeout"
	ReasonUniqueViolation  = "unique_violation"
	ReasonUnknown          = "unknown"
)

// BillingMetrics counts the billing core's externally visible outcomes.
type BillingMetrics struct {
	challansIssued    *prometheus.CounterVec
	paymentsRecorded  *prometheus.CounterVec
	paymentRejections *prometheus.CounterVec
	notifications     *prometheus.CounterVec
	relayAttempts     *prometheus.CounterVec
	jobRuns           *prometheus.CounterVec
}

// New registers the billing collectors on reg.
func New(reg prometheus.Registerer, cfg Config) (*BillingMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	service := strings.TrimSpace(cfg.ServiceName)
	if service == "" {
		service = "sairex"
	}
	env := strings.TrimSpace(cfg.Environment)
	if env == "" {
		env = "unknown"
	}
	constLabels := prometheus.Labels{"service": service, "env": env}

	m := &BillingMetrics{
		challansIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "sairex_challans_issued_total",
			Help:        "Challan issuance requests by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		paymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "sairex_payments_recorded_total",
			Help:        "Payments applied to challans by method.",
			ConstLabels: constLabels,
		}, []string{"method"}),
		paymentRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "sairex_payment_rejections_total",
			Help:        "Payment attempts refused by reason.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "sairex_notifications_total",
			Help:        "Guardian notifications by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		relayAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "sairex_outbox_relay_attempts_total",
			Help:        "Outbox redelivery attempts by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "sairex_scheduler_job_runs_total",
			Help:        "Background job runs by job and outcome.",
			ConstLabels: constLabels,
		}, []string{"job", "outcome"}),
	}

	for _, vec := range []**prometheus.CounterVec{
		&m.challansIssued, &m.paymentsRecorded, &m.paymentRejections, &m.notifications, &m.relayAttempts, &m.jobRuns,
	} {
		registered, err := register(reg, *vec)
		if err != nil {
			return nil, err
		}
		*vec = registered
	}
	return m, nil
}

// register returns the existing collector when an identical one is already
// registered.
func register(reg prometheus.Registerer, vec *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return vec, nil
}

// The recorders are nil-safe so services can take metrics as an optional dependency.

func (m *BillingMetrics) ChallanIssued(created bool) {
	if m == nil {
		return
	}
	outcome := IssueOutcomeExisting
	if created {
		outcome = IssueOutcomeCreated
	}
	m.challansIssued.WithLabelValues(outcome).Inc()
}

func (m *BillingMetrics) PaymentRecorded(method string) {
	if m == nil {
		return
	}
	m.paymentsRecorded.WithLabelValues(strings.ToLower(strings.TrimSpace(method))).Inc()
}

func (m *BillingMetrics) PaymentRejected(reason string) {
	if m == nil {
		return
	}
	m.paymentRejections.WithLabelValues(reason).Inc()
}

func (m *BillingMetrics) Notification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}

func (m *BillingMetrics) RelayAttempt(outcome string) {
	if m == nil {
		return
	}
	m.relayAttempts.WithLabelValues(outcome).Inc()
}

func (m *BillingMetrics) JobRun(job, outcome string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
}

// ClassifyStorageError maps infrastructure failures to a bounded label set.
func ClassifyStorageError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonDeadlineExceeded
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ReasonUniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03":
			return ReasonDBLockTimeout
		case "23505":
			return ReasonUniqueViolation
		}
	}
	return ReasonUnknown
}
