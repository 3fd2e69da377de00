package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/sairex/internal/clock"
	ledgerdomain "github.com/smallbiznis/sairex/internal/ledger/domain"
	"github.com/smallbiznis/sairex/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*gorm.DB, ledgerdomain.Service) {
	t.Helper()
	db := testutil.NewDB(t,
		&ledgerdomain.LedgerAccount{},
		&ledgerdomain.LedgerEntry{},
		&ledgerdomain.LedgerEntryLine{},
	)
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: testutil.NewNode(t),
		Clock: clock.NewFakeClock(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)),
	})
	return db, svc
}

func posting(sourceType ledgerdomain.SourceType, sourceID int64, debit, credit ledgerdomain.AccountCode, amount string) ledgerdomain.Posting {
	return ledgerdomain.Posting{
		OrgID:      10,
		StudentID:  20,
		SourceType: sourceType,
		SourceID:   snowflake.ID(sourceID),
		Currency:   "pkr",
		OccurredAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		Lines:      ledgerdomain.Receivable(debit, credit, decimal.RequireFromString(amount)),
	}
}

func TestPostIsIdempotentPerSource(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	p := posting(ledgerdomain.SourceTypeChallan, 1, ledgerdomain.AccountCodeAccountsReceivable, ledgerdomain.AccountCodeFeeRevenue, "5000")
	inserted, err := svc.Post(ctx, db, p)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = svc.Post(ctx, db, p)
	require.NoError(t, err)
	assert.False(t, inserted)

	var entries, lines, accounts int64
	require.NoError(t, db.Model(&ledgerdomain.LedgerEntry{}).Count(&entries).Error)
	require.NoError(t, db.Model(&ledgerdomain.LedgerEntryLine{}).Count(&lines).Error)
	require.NoError(t, db.Model(&ledgerdomain.LedgerAccount{}).Count(&accounts).Error)
	assert.EqualValues(t, 1, entries)
	assert.EqualValues(t, 2, lines)
	assert.EqualValues(t, 2, accounts)

	var currency string
	require.NoError(t, db.Raw(`SELECT currency FROM ledger_entries`).Scan(&currency).Error)
	assert.Equal(t, "PKR", currency)
}

func TestBalanceTracksReceivable(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	balance, err := svc.Balance(ctx, 10, 20)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	_, err = svc.Post(ctx, db, posting(ledgerdomain.SourceTypeChallan, 1, ledgerdomain.AccountCodeAccountsReceivable, ledgerdomain.AccountCodeFeeRevenue, "5000"))
	require.NoError(t, err)
	_, err = svc.Post(ctx, db, posting(ledgerdomain.SourceTypeChallan, 2, ledgerdomain.AccountCodeAccountsReceivable, ledgerdomain.AccountCodeFeeRevenue, "1500.50"))
	require.NoError(t, err)

	balance, err = svc.Balance(ctx, 10, 20)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("6500.50").Equal(balance), balance.String())

	_, err = svc.Post(ctx, db, posting(ledgerdomain.SourceTypePayment, 1, ledgerdomain.AccountCodeCash, ledgerdomain.AccountCodeAccountsReceivable, "5000"))
	require.NoError(t, err)

	balance, err = svc.Balance(ctx, 10, 20)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1500.50").Equal(balance), balance.String())
}

func TestPostRejectsInvalidPostings(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	unbalanced := posting(ledgerdomain.SourceTypeChallan, 1, ledgerdomain.AccountCodeAccountsReceivable, ledgerdomain.AccountCodeFeeRevenue, "5000")
	unbalanced.Lines[1].Amount = decimal.NewFromInt(4999)
	_, err := svc.Post(ctx, db, unbalanced)
	assert.ErrorIs(t, err, ledgerdomain.ErrUnbalancedEntry)

	noOrg := posting(ledgerdomain.SourceTypeChallan, 1, ledgerdomain.AccountCodeAccountsReceivable, ledgerdomain.AccountCodeFeeRevenue, "5000")
	noOrg.OrgID = 0
	_, err = svc.Post(ctx, db, noOrg)
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidOrganization)

	oneLine := posting(ledgerdomain.SourceTypeChallan, 1, ledgerdomain.AccountCodeAccountsReceivable, ledgerdomain.AccountCodeFeeRevenue, "5000")
	oneLine.Lines = oneLine.Lines[:1]
	_, err = svc.Post(ctx, db, oneLine)
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidEntryLines)
}
