package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/sairex/internal/challan/domain"
	"github.com/smallbiznis/sairex/internal/challan/repository"
	"github.com/smallbiznis/sairex/internal/clock"
	"github.com/smallbiznis/sairex/internal/config"
	feeruledomain "github.com/smallbiznis/sairex/internal/feerule/domain"
	ledgerdomain "github.com/smallbiznis/sairex/internal/ledger/domain"
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

func newMockedService(t *testing.T) (domain.Service, sqlmock.Sqlmock, *mockLedger) {
	t.Helper()
	sqlDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               logger.Discard,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	ledger := &mockLedger{}
	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     testutil.NewNode(t),
		Clock:     clock.NewFakeClock(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)),
		Repo:      repository.Provide(),
		LedgerSvc: ledger,
		Billing:   config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
	})
	return svc, sqlMock, ledger
}

func issueRequest() domain.IssueRequest {
	return domain.IssueRequest{
		Student: tenantdomain.Student{ID: 300, OrgID: 100, CampusID: 200, AdmissionNo: "ISB-2026-001"},
		Structure: feeruledomain.FeeStructure{
			ID: 400, OrgID: 100, CampusID: 200, Amount: decimal.NewFromInt(5000), Currency: "PKR",
		},
		CycleKey: "FEB26",
	}
}

const findByNo = `FROM fee_challans WHERE challan_no = `

func TestIssueLookupFailureIsPersistenceError(t *testing.T) {
	svc, sqlMock, ledger := newMockedService(t)
	sqlMock.ExpectQuery(findByNo).WillReturnError(errors.New("connection reset by peer"))

	_, err := svc.Issue(context.Background(), issueRequest())

	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "find", pe.Op)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	ledger.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestIssueInsertFailureRollsBack(t *testing.T) {
	svc, sqlMock, _ := newMockedService(t)
	sqlMock.ExpectQuery(findByNo).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(`INSERT INTO fee_challans`).WillReturnError(&pgconn.PgError{Code: "53300"})
	sqlMock.ExpectRollback()

	_, err := svc.Issue(context.Background(), issueRequest())

	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "issue", pe.Op)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestIssueLedgerFailureRollsBackChallan(t *testing.T) {
	svc, sqlMock, ledger := newMockedService(t)
	sqlMock.ExpectQuery(findByNo).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(`INSERT INTO fee_challans`).WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectRollback()
	ledger.On("Post", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("ledger down"))

	_, err := svc.Issue(context.Background(), issueRequest())

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestIssueLosingInsertRaceReturnsWinner(t *testing.T) {
	svc, sqlMock, _ := newMockedService(t)
	sqlMock.ExpectQuery(findByNo).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(`INSERT INTO fee_challans`).WillReturnError(&pgconn.PgError{Code: "23505"})
	sqlMock.ExpectRollback()
	sqlMock.ExpectQuery(findByNo).WillReturnRows(
		sqlmock.NewRows([]string{"id", "student_id", "challan_no", "status", "total_amount"}).
			AddRow(int64(777), int64(300), "CH-ISB-2026-001-FEB26", "UNPAID", "5000.00"),
	)

	res, err := svc.Issue(context.Background(), issueRequest())

	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.EqualValues(t, 777, res.Challan.ID)
	assert.True(t, decimal.NewFromInt(5000).Equal(res.Challan.TotalAmount))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
