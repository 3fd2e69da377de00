package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBillingMetricsCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := New(registry, Config{ServiceName: "sairex", Environment: "test"})
	require.NoError(t, err)

	m.ChallanIssued(true)
	m.ChallanIssued(true)
	m.ChallanIssued(false)
	m.PaymentRecorded("CASH")
	m.PaymentRejected("already_paid")
	m.Notification(NotifyOutcomeFailed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.challansIssued.WithLabelValues(IssueOutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.challansIssued.WithLabelValues(IssueOutcomeExisting)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.paymentsRecorded.WithLabelValues("cash")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.paymentRejections.WithLabelValues("already_paid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues(NotifyOutcomeFailed)))
}

func TestNewToleratesRepeatedRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := New(registry, Config{})
	require.NoError(t, err)
	_, err = New(registry, Config{})
	require.NoError(t, err)
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *BillingMetrics
	m.ChallanIssued(true)
	m.PaymentRecorded("CASH")
	m.Notification(NotifyOutcomeSent)
}

func TestClassifyStorageError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: ReasonDeadlineExceeded},
		{name: "lock_timeout", err: &pgconn.PgError{Code: "55P03"}, want: ReasonDBLockTimeout},
		{name: "unique_pg", err: &pgconn.PgError{Code: "23505"}, want: ReasonUniqueViolation},
		{name: "unique_gorm", err: gorm.ErrDuplicatedKey, want: ReasonUniqueViolation},
		{name: "unknown", err: errors.New("boom"), want: ReasonUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyStorageError(tc.err))
		})
	}
}
