package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	challandomain "github.com/smallbiznis/sairex/internal/challan/domain"
	challanrepository "github.com/smallbiznis/sairex/internal/challan/repository"
	"github.com/smallbiznis/sairex/internal/clock"
	ledgerdomain "github.com/smallbiznis/sairex/internal/ledger/domain"
	notificationrepository "github.com/smallbiznis/sairex/internal/notification/repository"
	paymentdomain "github.com/smallbiznis/sairex/internal/payment/domain"
	tenantdomain "github.com/smallbiznis/sairex/internal/tenant/domain"
	"github.com/smallbiznis/sairex/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubDirectory struct {
	mock.Mock
	tenantdomain.Service
}

func (s *stubDirectory) GetStudent(ctx context.Context, id snowflake.ID) (tenantdomain.Student, error) {
	args := s.Called(ctx, id)
	return args.Get(0).(tenantdomain.Student), args.Error(1)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Post(ctx context.Context, tx *gorm.DB, posting ledgerdomain.Posting) (bool, error) {
	args := m.Called(ctx, tx, posting)
	return args.Bool(0), args.Error(1)
}

func (m *mockLedger) Balance(ctx context.Context, orgID, studentID snowflake.ID) (decimal.Decimal, error) {
	args := m.Called(ctx, orgID, studentID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func newMockedService(t *testing.T) (paymentdomain.Service, sqlmock.Sqlmock, *mockLedger) {
	t.Helper()
	sqlDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               logger.Discard,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	directory := &stubDirectory{}
	directory.On("GetStudent", mock.Anything, snowflake.ID(300)).
		Return(tenantdomain.Student{ID: 300, OrgID: 100, FullName: "Zain Sheikh", GuardianPhone: "0300-1234567"}, nil)

	ledger := &mockLedger{}
	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       testutil.NewNode(t),
		Clock:       clock.NewFakeClock(paidAt),
		ChallanRepo: challanrepository.Provide(),
		Outbox:      notificationrepository.Provide(),
		TenantSvc:   directory,
		LedgerSvc:   ledger,
	})
	return svc, sqlMock, ledger
}

func unpaidRow() *sqlmock.Rows {
	issued := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "org_id", "campus_id", "student_id", "fee_structure_id", "challan_no", "cycle_key",
		"total_amount", "currency", "issue_date", "due_date", "status", "paid_amount", "payment_method",
		"paid_at", "generated_by", "metadata", "created_at", "updated_at",
	}).AddRow(
		int64(500), int64(100), int64(200), int64(300), int64(400), "CH-ISB-2026-001-FEB26", "FEB26",
		"5000.00", "PKR", issued, issued.AddDate(0, 0, 10), "UNPAID", nil, nil,
		nil, "SYSTEM_AUTO", nil, issued, issued,
	)
}

func payRequest() paymentdomain.RecordPaymentRequest {
	return paymentdomain.RecordPaymentRequest{
		ChallanNo: "CH-ISB-2026-001-FEB26",
		Amount:    decimal.NewFromInt(5000),
		Method:    "CASH",
		PaidAt:    paidAt,
	}
}

func TestRecordPaymentLookupFailureIsPersistenceError(t *testing.T) {
	svc, sqlMock, _ := newMockedService(t)
	sqlMock.ExpectQuery(`FROM fee_challans WHERE challan_no = `).WillReturnError(errors.New("connection refused"))

	_, err := svc.RecordPayment(context.Background(), payRequest())

	var pe *challandomain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "find", pe.Op)
	require.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestRecordPaymentUpdateFailureRollsBack(t *testing.T) {
	svc, sqlMock, ledger := newMockedService(t)
	sqlMock.ExpectQuery(`FROM fee_challans WHERE challan_no = `).WillReturnRows(unpaidRow())
	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(`UPDATE fee_challans`).WillReturnError(errors.New("canceling statement due to lock timeout"))
	sqlMock.ExpectRollback()

	_, err := svc.RecordPayment(context.Background(), payRequest())

	var pe *challandomain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "record_payment", pe.Op)
	assert.ErrorIs(t, err, challandomain.ErrPersistence)
	ledger.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything)
	require.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestRecordPaymentLedgerFailureRollsBackStatus(t *testing.T) {
	svc, sqlMock, ledger := newMockedService(t)
	sqlMock.ExpectQuery(`FROM fee_challans WHERE challan_no = `).WillReturnRows(unpaidRow())
	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(`UPDATE fee_challans`).WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectRollback()
	ledger.On("Post", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("disk full"))

	_, err := svc.RecordPayment(context.Background(), payRequest())

	assert.ErrorIs(t, err, challandomain.ErrPersistence)
	ledger.AssertExpectations(t)
	require.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestRecordPaymentLostCompareAndSwapIsAlreadyPaid(t *testing.T) {
	svc, sqlMock, ledger := newMockedService(t)
	sqlMock.ExpectQuery(`FROM fee_challans WHERE challan_no = `).WillReturnRows(unpaidRow())
	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(`UPDATE fee_challans`).WillReturnResult(sqlmock.NewResult(0, 0))
	sqlMock.ExpectRollback()
	sqlMock.ExpectQuery(`FROM fee_challans WHERE id = `).WillReturnError(errors.New("gone"))

	_, err := svc.RecordPayment(context.Background(), payRequest())

	assert.ErrorIs(t, err, paymentdomain.ErrAlreadyPaid)
	ledger.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything)
	require.NoError(t, sqlMock.ExpectationsWereMet())
}
