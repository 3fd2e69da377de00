package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/sairex/internal/challan/domain"
	"github.com/smallbiznis/sairex/internal/challan/repository"
	"github.com/smallbiznis/sairex/internal/clock"
	"github.com/smallbiznis/sairex/internal/config"
	feeruledomain "github.com/smallbiznis/sairex/internal/feerule/domain"
	ledgerdomain "github.com/smallbiznis/sairex/internal/ledger/domain"
	ledgerservice "github.com/smallbiznis/sairex/internal/ledger/service"
	tenantdomain "github.com/smallbiznis/sairex/internal/tenant/domain"
	"github.com/smallbiznis/sairex/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var issuedAt = time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	db        *gorm.DB
	svc       domain.Service
	ledger    ledgerdomain.Service
	student   tenantdomain.Student
	structure feeruledomain.FeeStructure
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t,
		&domain.FeeChallan{},
		&ledgerdomain.LedgerAccount{},
		&ledgerdomain.LedgerEntry{},
		&ledgerdomain.LedgerEntryLine{},
	)
	node := testutil.NewNode(t)
	clk := clock.NewFakeClock(issuedAt)
	ledger := ledgerservice.New(ledgerservice.Params{DB: db, Log: zap.NewNop(), GenID: node, Clock: clk})

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clk,
		Repo:      repository.Provide(),
		LedgerSvc: ledger,
		Billing:   config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
	})

	return fixture{
		db:     db,
		svc:    svc,
		ledger: ledger,
		student: tenantdomain.Student{
			ID: 300, OrgID: 100, CampusID: 200,
			AdmissionNo: "ISB-2026-001", FullName: "Zain Sheikh", Grade: "Grade 10",
		},
		structure: feeruledomain.FeeStructure{
			ID: 400, OrgID: 100, CampusID: 200, FeeHeadID: 50,
			Name:            "Grade 10 - Standard Tuition (2026)",
			Amount:          decimal.NewFromInt(5000),
			Currency:        "PKR",
			Frequency:       feeruledomain.FrequencyMonthly,
			ApplicableGrade: "Grade 10",
			IsActive:        true,
		},
	}
}

func countChallans(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&domain.FeeChallan{}).Count(&n).Error)
	return n
}

func TestIssueMonthlyTuition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Issue(ctx, domain.IssueRequest{Student: f.student, Structure: f.structure, CycleKey: "feb26"})
	require.NoError(t, err)
	assert.True(t, res.Created)

	c := res.Challan
	assert.Equal(t, "CH-ISB-2026-001-FEB26", c.ChallanNo)
	assert.Equal(t, domain.StatusUnpaid, c.Status)
	assert.True(t, decimal.NewFromInt(5000).Equal(c.TotalAmount))
	assert.Equal(t, issuedAt.AddDate(0, 0, 10), c.DueDate)
	assert.Equal(t, f.student.OrgID, c.OrgID)
	assert.Equal(t, f.student.CampusID, c.CampusID)
	assert.Equal(t, "SYSTEM_AUTO", c.GeneratedBy)
	assert.False(t, c.PaidAmount.Valid)

	stored, err := f.svc.GetByChallanNo(ctx, " ch-isb-2026-001-feb26 ")
	require.NoError(t, err)
	assert.Equal(t, c.ID, stored.ID)
	assert.True(t, c.TotalAmount.Equal(stored.TotalAmount))
	assert.True(t, c.DueDate.Equal(stored.DueDate))
	assert.Equal(t, "Grade 10", stored.Metadata["grade"])

	balance, err := f.ledger.Balance(ctx, f.student.OrgID, f.student.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5000).Equal(balance))
}

func TestIssueIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := domain.IssueRequest{Student: f.student, Structure: f.structure, CycleKey: "FEB26", DueInDays: 15}

	first, err := f.svc.Issue(ctx, req)
	require.NoError(t, err)

	// A re-run after a fee change still returns the original bill.
	req.Structure.Amount = decimal.NewFromInt(6000)
	second, err := f.svc.Issue(ctx, req)
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Challan.ID, second.Challan.ID)
	assert.Equal(t, first.Challan.ChallanNo, second.Challan.ChallanNo)
	assert.True(t, decimal.NewFromInt(5000).Equal(second.Challan.TotalAmount))
	assert.EqualValues(t, 1, countChallans(t, f.db))

	balance, err := f.ledger.Balance(ctx, f.student.OrgID, f.student.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5000).Equal(balance))
}

func TestIssueConcurrentCallsProduceOneChallan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := domain.IssueRequest{Student: f.student, Structure: f.structure, CycleKey: "MAR26"}

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ids     = map[snowflake.ID]int{}
		created int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.Issue(ctx, req)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			ids[res.Challan.ID]++
			if res.Created {
				created++
			}
		}()
	}
	wg.Wait()

	assert.Len(t, ids, 1)
	assert.Equal(t, 1, created)
	assert.EqualValues(t, 1, countChallans(t, f.db))
}

func TestIssueSeparateCyclesAndStudents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, domain.IssueRequest{Student: f.student, Structure: f.structure, CycleKey: "FEB26"})
	require.NoError(t, err)
	_, err = f.svc.Issue(ctx, domain.IssueRequest{Student: f.student, Structure: f.structure, CycleKey: "MAR26"})
	require.NoError(t, err)

	sibling := f.student
	sibling.ID = 301
	sibling.AdmissionNo = "ISB-2026-002"
	_, err = f.svc.Issue(ctx, domain.IssueRequest{Student: sibling, Structure: f.structure, CycleKey: "FEB26"})
	require.NoError(t, err)

	assert.EqualValues(t, 3, countChallans(t, f.db))
}

func TestIssueRejectsInvalidRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := f.structure
	other.CampusID = 999
	_, err := f.svc.Issue(ctx, domain.IssueRequest{Student: f.student, Structure: other, CycleKey: "FEB26"})
	assert.ErrorIs(t, err, domain.ErrStructureCampusMismatch)

	_, err = f.svc.Issue(ctx, domain.IssueRequest{Student: f.student, Structure: f.structure, CycleKey: "FEB 26"})
	assert.ErrorIs(t, err, domain.ErrInvalidCycleKey)

	_, err = f.svc.Issue(ctx, domain.IssueRequest{Structure: f.structure, CycleKey: "FEB26"})
	assert.ErrorIs(t, err, domain.ErrInvalidStudent)

	assert.EqualValues(t, 0, countChallans(t, f.db))
}

func TestIssueDetectsChallanNoOwnedByAnotherStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, domain.IssueRequest{Student: f.student, Structure: f.structure, CycleKey: "FEB26"})
	require.NoError(t, err)

	// Same admission number in another organization.
	stranger := f.student
	stranger.ID, stranger.OrgID, stranger.CampusID = 900, 901, 902
	structure := f.structure
	structure.OrgID, structure.CampusID = 901, 902

	_, err = f.svc.Issue(ctx, domain.IssueRequest{Student: stranger, Structure: structure, CycleKey: "FEB26"})
	assert.ErrorIs(t, err, domain.ErrChallanNoConflict)
}

func TestGetByChallanNoNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetByChallanNo(context.Background(), "CH-NOPE-FEB26")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "CH-NOPE-FEB26", nf.ChallanNo)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, cycle := range []string{"JAN26", "FEB26", "MAR26"} {
		_, err := f.svc.Issue(ctx, domain.IssueRequest{Student: f.student, Structure: f.structure, CycleKey: cycle})
		require.NoError(t, err)
	}

	first, err := f.svc.List(ctx, domain.ListRequest{OrgID: f.student.OrgID, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.Challans, 2)
	assert.True(t, first.HasMore)
	assert.Equal(t, "CH-ISB-2026-001-MAR26", first.Challans[0].ChallanNo)

	second, err := f.svc.List(ctx, domain.ListRequest{OrgID: f.student.OrgID, PageSize: 2, PageToken: first.NextPageToken})
	require.NoError(t, err)
	require.Len(t, second.Challans, 1)
	assert.False(t, second.HasMore)
	assert.Equal(t, "CH-ISB-2026-001-JAN26", second.Challans[0].ChallanNo)

	filtered, err := f.svc.List(ctx, domain.ListRequest{OrgID: f.student.OrgID, CycleKey: "feb26", Status: "unpaid"})
	require.NoError(t, err)
	require.Len(t, filtered.Challans, 1)

	_, err = f.svc.List(ctx, domain.ListRequest{OrgID: f.student.OrgID, Status: "VOID"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
