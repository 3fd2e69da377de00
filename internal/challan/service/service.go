package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sairex/internal/challan/domain"
	"github.com/smallbiznis/sairex/internal/clock"
	"github.com/smallbiznis/sairex/internal/config"
	ledgerdomain "github.com/smallbiznis/sairex/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/sairex/internal/observability/metrics"
	"github.com/smallbiznis/sairex/pkg/db"
	"github.com/smallbiznis/sairex/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	LedgerSvc  ledgerdomain.Service
	Billing    *config.BillingConfigHolder
	ObsMetrics *obsmetrics.BillingMetrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	ledgerSvc  ledgerdomain.Service
	billing    *config.BillingConfigHolder
	obsMetrics *obsmetrics.BillingMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("challan.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		ledgerSvc:  p.LedgerSvc,
		billing:    p.Billing,
		obsMetrics: p.ObsMetrics,
	}
}

var errLostRace = errors.New("challan inserted concurrently")

func (s *Service) Issue(ctx context.Context, req domain.IssueRequest) (domain.IssueResult, error) {
	student, structure := req.Student, req.Structure
	if student.ID == 0 || student.OrgID == 0 || student.CampusID == 0 {
		return domain.IssueResult{}, domain.ErrInvalidStudent
	}
	if structure.CampusID != student.CampusID || structure.OrgID != student.OrgID {
		return domain.IssueResult{}, domain.ErrStructureCampusMismatch
	}
	if structure.Amount.IsNegative() {
		return domain.IssueResult{}, domain.ErrInvalidAmount
	}

	challanNo, err := domain.BuildChallanNo(student.AdmissionNo, req.CycleKey)
	if err != nil {
		return domain.IssueResult{}, err
	}
	cycleKey, _ := domain.NormalizeCycleKey(req.CycleKey)

	if existing, err := s.existing(ctx, challanNo, student.ID); err != nil || existing != nil {
		if err != nil {
			return domain.IssueResult{}, err
		}
		return domain.IssueResult{Challan: *existing}, nil
	}

	cfg := s.billing.Get()
	dueInDays := req.DueInDays
	if dueInDays <= 0 {
		dueInDays = cfg.DueInDays
	}
	currency := strings.TrimSpace(structure.Currency)
	if currency == "" {
		currency = cfg.Currency
	}

	now := s.clock.Now()
	challan := domain.FeeChallan{
		ID:             s.genID.Generate(),
		OrgID:          student.OrgID,
		CampusID:       student.CampusID,
		StudentID:      student.ID,
		FeeStructureID: structure.ID,
		ChallanNo:      challanNo,
		CycleKey:       cycleKey,
		TotalAmount:    structure.Amount,
		Currency:       currency,
		IssueDate:      now,
		DueDate:        now.AddDate(0, 0, dueInDays),
		Status:         domain.StatusUnpaid,
		GeneratedBy:    cfg.IssuerTag,
		Metadata: datatypes.JSONMap{
			"fee_structure": structure.Name,
			"frequency":     string(structure.Frequency),
			"grade":         structure.ApplicableGrade,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &challan); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return errLostRace
			}
			return err
		}
		_, err := s.ledgerSvc.Post(ctx, tx, ledgerdomain.Posting{
			OrgID:      challan.OrgID,
			StudentID:  challan.StudentID,
			SourceType: ledgerdomain.SourceTypeChallan,
			SourceID:   challan.ID,
			Currency:   challan.Currency,
			OccurredAt: now,
			Lines: ledgerdomain.Receivable(
				ledgerdomain.AccountCodeAccountsReceivable,
				ledgerdomain.AccountCodeFeeRevenue,
				challan.TotalAmount,
			),
		})
		return err
	})
	if errors.Is(err, errLostRace) {
		winner, err := s.existing(ctx, challanNo, student.ID)
		if err != nil {
			return domain.IssueResult{}, err
		}
		if winner == nil {
			return domain.IssueResult{}, domain.Persistence("reread", errLostRace)
		}
		s.log.Info("challan issued concurrently, returning winner", zap.String("challan_no", challanNo))
		return domain.IssueResult{Challan: *winner}, nil
	}
	if err != nil {
		s.log.Error("failed to issue challan",
			zap.String("challan_no", challanNo),
			zap.String("reason", obsmetrics.ClassifyStorageError(err)),
			zap.Error(err),
		)
		return domain.IssueResult{}, domain.Persistence("issue", err)
	}

	s.obsMetrics.ChallanIssued(true)
	s.log.Info("challan issued",
		zap.String("challan_no", challan.ChallanNo),
		zap.String("org_id", challan.OrgID.String()),
		zap.String("student_id", challan.StudentID.String()),
		zap.String("amount", challan.TotalAmount.StringFixed(2)),
	)
	return domain.IssueResult{Challan: challan, Created: true}, nil
}

// existing returns the stored challan for challanNo, or nil. A challan that
// belongs to another student is a conflict, never a match.
func (s *Service) existing(ctx context.Context, challanNo string, studentID snowflake.ID) (*domain.FeeChallan, error) {
	found, err := s.repo.FindByChallanNo(ctx, s.db, challanNo)
	if err != nil {
		return nil, domain.Persistence("find", err)
	}
	if found == nil {
		return nil, nil
	}
	if found.StudentID != studentID {
		return nil, domain.ErrChallanNoConflict
	}
	s.obsMetrics.ChallanIssued(false)
	return found, nil
}

func (s *Service) GetByChallanNo(ctx context.Context, challanNo string) (domain.FeeChallan, error) {
	challanNo = domain.NormalizeChallanNo(challanNo)
	if challanNo == "" {
		return domain.FeeChallan{}, &domain.NotFoundError{ChallanNo: challanNo}
	}
	challan, err := s.repo.FindByChallanNo(ctx, s.db, challanNo)
	if err != nil {
		return domain.FeeChallan{}, domain.Persistence("find", err)
	}
	if challan == nil {
		return domain.FeeChallan{}, &domain.NotFoundError{ChallanNo: challanNo}
	}
	return *challan, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	if req.OrgID == 0 {
		return domain.ListResponse{}, domain.ErrInvalidOrganization
	}

	filter := domain.ListFilter{
		CampusID:  req.CampusID,
		StudentID: req.StudentID,
	}
	if status := domain.Status(strings.ToUpper(strings.TrimSpace(req.Status))); status != "" {
		if status != domain.StatusUnpaid && status != domain.StatusPaid {
			return domain.ListResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if strings.TrimSpace(req.CycleKey) != "" {
		key, err := domain.NormalizeCycleKey(req.CycleKey)
		if err != nil {
			return domain.ListResponse{}, err
		}
		filter.CycleKey = key
	}

	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	items, err := s.repo.List(ctx, s.db, req.OrgID, filter, page)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidPageToken) {
			return domain.ListResponse{}, err
		}
		return domain.ListResponse{}, domain.Persistence("list", err)
	}

	items, pageInfo := pagination.Trim(items, page.Limit(), func(c *domain.FeeChallan) string {
		return c.ID.String()
	})
	challans := make([]domain.FeeChallan, 0, len(items))
	for _, item := range items {
		challans = append(challans, *item)
	}
	return domain.ListResponse{PageInfo: pageInfo, Challans: challans}, nil
}
