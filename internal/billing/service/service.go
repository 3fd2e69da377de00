package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/sairex/internal/billing/domain"
	challandomain "github.com/smallbiznis/sairex/internal/challan/domain"
	feeruledomain "github.com/smallbiznis/sairex/internal/feerule/domain"
	ledgerdomain "github.com/smallbiznis/sairex/internal/ledger/domain"
	notificationdomain "github.com/smallbiznis/sairex/internal/notification/domain"
	paymentdomain "github.com/smallbiznis/sairex/internal/payment/domain"
	tenantdomain "github.com/smallbiznis/sairex/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	TenantSvc  tenantdomain.Service
	FeeRuleSvc feeruledomain.Service
	ChallanSvc challandomain.Service
	PaymentSvc paymentdomain.Service
	Notifier   notificationdomain.Service
	LedgerSvc  ledgerdomain.Service
}

type Service struct {
	log        *zap.Logger
	tenantSvc  tenantdomain.Service
	feeRuleSvc feeruledomain.Service
	challanSvc challandomain.Service
	paymentSvc paymentdomain.Service
	notifier   notificationdomain.Service
	ledgerSvc  ledgerdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("billing.service"),
		tenantSvc:  p.TenantSvc,
		feeRuleSvc: p.FeeRuleSvc,
		challanSvc: p.ChallanSvc,
		paymentSvc: p.PaymentSvc,
		notifier:   p.Notifier,
		ledgerSvc:  p.LedgerSvc,
	}
}

// campus resolves a campus code within an organization. A campus of another
// organization is reported as not found.
func (s *Service) campus(ctx context.Context, orgCode, campusCode string) (tenantdomain.Organization, tenantdomain.Campus, error) {
	org, err := s.tenantSvc.FindOrganization(ctx, orgCode)
	if err != nil {
		return tenantdomain.Organization{}, tenantdomain.Campus{}, err
	}
	campus, err := s.tenantSvc.FindCampus(ctx, campusCode)
	if err != nil {
		return tenantdomain.Organization{}, tenantdomain.Campus{}, err
	}
	if campus.OrgID != org.ID {
		return tenantdomain.Organization{}, tenantdomain.Campus{}, tenantdomain.CampusNotFound(campusCode)
	}
	return org, campus, nil
}

func (s *Service) ResolveRule(ctx context.Context, q domain.ResolveRuleQuery) (feeruledomain.Resolution, error) {
	_, campus, err := s.campus(ctx, q.OrgCode, q.CampusCode)
	if err != nil {
		return feeruledomain.Resolution{}, err
	}
	return s.feeRuleSvc.Lookup(ctx, campus.ID, q.Grade, q.Frequency)
}

func (s *Service) IssueChallan(ctx context.Context, cmd domain.IssueChallanCommand) (domain.IssueChallanResult, error) {
	_, campus, err := s.campus(ctx, cmd.OrgCode, cmd.CampusCode)
	if err != nil {
		return domain.IssueChallanResult{}, err
	}
	student, err := s.tenantSvc.FindStudent(ctx, cmd.AdmissionNo, campus.ID)
	if err != nil {
		return domain.IssueChallanResult{}, err
	}
	structure, err := s.feeRuleSvc.Resolve(ctx, campus.ID, student.Grade, cmd.Frequency)
	if err != nil {
		return domain.IssueChallanResult{}, err
	}

	res, err := s.challanSvc.Issue(ctx, challandomain.IssueRequest{
		Student:   student,
		Structure: structure,
		CycleKey:  cmd.CycleKey,
		DueInDays: cmd.DueInDays,
	})
	if err != nil {
		return domain.IssueChallanResult{}, err
	}
	return domain.IssueChallanResult{Challan: res.Challan, Created: res.Created}, nil
}

// IssueBatch bills every student of a campus grade for one cycle. The rule is
// resolved once; a failure for one student does not stop the rest.
func (s *Service) IssueBatch(ctx context.Context, cmd domain.IssueBatchCommand) (domain.IssueBatchResult, error) {
	if _, err := challandomain.NormalizeCycleKey(cmd.CycleKey); err != nil {
		return domain.IssueBatchResult{}, err
	}
	_, campus, err := s.campus(ctx, cmd.OrgCode, cmd.CampusCode)
	if err != nil {
		return domain.IssueBatchResult{}, err
	}
	structure, err := s.feeRuleSvc.Resolve(ctx, campus.ID, cmd.Grade, cmd.Frequency)
	if err != nil {
		return domain.IssueBatchResult{}, err
	}
	students, err := s.tenantSvc.ListStudents(ctx, campus.ID, cmd.Grade)
	if err != nil {
		return domain.IssueBatchResult{}, err
	}

	result := domain.IssueBatchResult{Structure: structure, Failures: []domain.BatchFailure{}}
	for _, student := range students {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		res, err := s.challanSvc.Issue(ctx, challandomain.IssueRequest{
			Student:   student,
			Structure: structure,
			CycleKey:  cmd.CycleKey,
			DueInDays: cmd.DueInDays,
		})
		switch {
		case err != nil:
			result.Failures = append(result.Failures, domain.BatchFailure{AdmissionNo: student.AdmissionNo, Error: err.Error()})
		case res.Created:
			result.Created++
		default:
			result.Existing++
		}
	}

	s.log.Info("batch issuance finished",
		zap.String("campus_code", campus.CampusCode),
		zap.String("grade", cmd.Grade),
		zap.String("cycle_key", strings.ToUpper(strings.TrimSpace(cmd.CycleKey))),
		zap.Int("created", result.Created),
		zap.Int("existing", result.Existing),
		zap.Int("failed", len(result.Failures)),
	)
	return result, nil
}

func (s *Service) GetChallan(ctx context.Context, challanNo string) (domain.ChallanView, error) {
	challan, err := s.challanSvc.GetByChallanNo(ctx, challanNo)
	if err != nil {
		return domain.ChallanView{}, err
	}
	student, err := s.tenantSvc.GetStudent(ctx, challan.StudentID)
	if err != nil {
		return domain.ChallanView{}, err
	}
	campus, err := s.tenantSvc.GetCampus(ctx, challan.CampusID)
	if err != nil {
		return domain.ChallanView{}, err
	}
	org, err := s.tenantSvc.GetOrganization(ctx, challan.OrgID)
	if err != nil {
		return domain.ChallanView{}, err
	}
	return domain.ChallanView{Challan: challan, Organization: org, Campus: campus, Student: student}, nil
}

func (s *Service) ListChallans(ctx context.Context, q domain.ListChallansQuery) (domain.ListChallansResult, error) {
	org, err := s.tenantSvc.FindOrganization(ctx, q.OrgCode)
	if err != nil {
		return domain.ListChallansResult{}, err
	}
	req := challandomain.ListRequest{
		OrgID:     org.ID,
		Status:    q.Status,
		CycleKey:  q.CycleKey,
		PageToken: q.PageToken,
		PageSize:  q.PageSize,
	}
	if strings.TrimSpace(q.CampusCode) != "" {
		_, campus, err := s.campus(ctx, q.OrgCode, q.CampusCode)
		if err != nil {
			return domain.ListChallansResult{}, err
		}
		req.CampusID = campus.ID
	}

	resp, err := s.challanSvc.List(ctx, req)
	if err != nil {
		return domain.ListChallansResult{}, err
	}
	return domain.ListChallansResult{PageInfo: resp.PageInfo, Challans: resp.Challans}, nil
}

// PayChallan records a confirmed payment and then attempts the receipt. The
// receipt outcome never changes the payment result; undelivered receipts stay
// in the outbox for the relay.
func (s *Service) PayChallan(ctx context.Context, cmd domain.PayChallanCommand) (domain.PayChallanResult, error) {
	if !cmd.Confirm {
		return domain.PayChallanResult{}, domain.ErrNotConfirmed
	}

	view, err := s.GetChallan(ctx, cmd.ChallanNo)
	if err != nil {
		return domain.PayChallanResult{}, err
	}
	amount := view.Challan.TotalAmount
	if cmd.Amount != nil {
		amount = *cmd.Amount
	}

	recorded, err := s.paymentSvc.RecordPayment(ctx, paymentdomain.RecordPaymentRequest{
		ChallanNo:  view.Challan.ChallanNo,
		Amount:     amount,
		Method:     cmd.Method,
		PaidAt:     cmd.PaidAt,
		PayerPhone: cmd.PayerPhone,
	})
	if err != nil {
		return domain.PayChallanResult{}, err
	}

	result := domain.PayChallanResult{Challan: recorded.Challan, Student: view.Student}
	if recorded.Event == nil {
		return result, nil
	}

	delivery, err := s.notifier.Deliver(ctx, recorded.Event.OutboxID)
	switch {
	case err != nil:
		s.log.Warn("receipt delivery deferred to relay",
			zap.String("challan_no", recorded.Challan.ChallanNo),
			zap.Error(err),
		)
		result.Notification = &notificationdomain.DispatchResult{Sent: false, Detail: "queued for retry"}
	case delivery.Skipped:
		result.Notification = &notificationdomain.DispatchResult{Sent: false, Detail: "queued for retry"}
	default:
		result.Notification = &delivery.Result
	}
	return result, nil
}

func (s *Service) Balance(ctx context.Context, q domain.BalanceQuery) (domain.BalanceResult, error) {
	_, campus, err := s.campus(ctx, q.OrgCode, q.CampusCode)
	if err != nil {
		return domain.BalanceResult{}, err
	}
	student, err := s.tenantSvc.FindStudent(ctx, q.AdmissionNo, campus.ID)
	if err != nil {
		return domain.BalanceResult{}, err
	}
	outstanding, err := s.ledgerSvc.Balance(ctx, student.OrgID, student.ID)
	if err != nil {
		return domain.BalanceResult{}, err
	}
	return domain.BalanceResult{Student: student, Outstanding: outstanding}, nil
}
