package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	feeruledomain "github.com/smallbiznis/sairex/internal/feerule/domain"
	ledgerdomain "github.com/smallbiznis/sairex/internal/ledger/domain"
	tenantdomain "github.com/smallbiznis/sairex/internal/tenant/domain"
	"gorm.io/gorm"
)

const (
	DemoOrgCode     = "SAIR-GLOBAL"
	DemoCampusCode  = "ISB-01"
	DemoAdmissionNo = "ISB-2026-001"
	DemoGrade       = "Grade 10"

	demoOrgName       = "Sair Global Education"
	demoCampusName    = "Islamabad City Campus"
	demoCampusSlugSrc = "Islamabad Main"
	demoFeeHead       = "Monthly Tuition"
	demoStructureName = "Grade 10 - Standard Tuition (2026)"
	demoStudentName   = "Zain Sheikh"
)

// DemoTenant is the record set created by EnsureDemoTenant.
type DemoTenant struct {
	Organization tenantdomain.Organization
	Campus       tenantdomain.Campus
	FeeHead      feeruledomain.FeeHead
	Structure    feeruledomain.FeeStructure
	Student      tenantdomain.Student
}

// EnsureDemoTenant seeds one organization, campus, monthly tuition rule and
// student. Existing rows are reused, so it is safe to run on every start.
func EnsureDemoTenant(ctx context.Context, db *gorm.DB, node *snowflake.Node) (DemoTenant, error) {
	if db == nil || node == nil {
		return DemoTenant{}, errors.New("seed database handle is required")
	}

	var out DemoTenant
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		org, err := ensureOrganizationTx(ctx, tx, node, now)
		if err != nil {
			return err
		}
		campus, err := ensureCampusTx(ctx, tx, node, org.ID, now)
		if err != nil {
			return err
		}
		head, err := ensureFeeHeadTx(ctx, tx, node, org.ID, now)
		if err != nil {
			return err
		}
		structure, err := ensureStructureTx(ctx, tx, node, campus, head.ID, now)
		if err != nil {
			return err
		}
		student, err := ensureStudentTx(ctx, tx, node, campus, now)
		if err != nil {
			return err
		}
		if err := ensureLedgerAccounts(ctx, tx, node, org.ID, now); err != nil {
			return err
		}

		out = DemoTenant{Organization: org, Campus: campus, FeeHead: head, Structure: structure, Student: student}
		return nil
	})
	return out, err
}

func ensureOrganizationTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, now time.Time) (tenantdomain.Organization, error) {
	var org tenantdomain.Organization
	err := tx.WithContext(ctx).Where("org_code = ?", DemoOrgCode).First(&org).Error
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return org, err
	}
	org = tenantdomain.Organization{
		ID:               node.Generate(),
		OrgCode:          DemoOrgCode,
		Name:             demoOrgName,
		SubscriptionPlan: "PRO",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return org, tx.WithContext(ctx).Create(&org).Error
}

func ensureCampusTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID, now time.Time) (tenantdomain.Campus, error) {
	var campus tenantdomain.Campus
	err := tx.WithContext(ctx).Where("campus_code = ?", DemoCampusCode).First(&campus).Error
	if err == nil {
		return campus, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return campus, err
	}
	campus = tenantdomain.Campus{
		ID:           node.Generate(),
		OrgID:        orgID,
		CampusCode:   DemoCampusCode,
		CampusSlug:   slug.Make(demoCampusSlugSrc),
		Name:         demoCampusName,
		City:         "Islamabad",
		IsMainCampus: true,
		CreatedAt:    now,
	}
	return campus, tx.WithContext(ctx).Create(&campus).Error
}

func ensureFeeHeadTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID, now time.Time) (feeruledomain.FeeHead, error) {
	var head feeruledomain.FeeHead
	err := tx.WithContext(ctx).Where("org_id = ? AND name = ?", orgID, demoFeeHead).First(&head).Error
	if err == nil {
		return head, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return head, err
	}
	head = feeruledomain.FeeHead{
		ID:              node.Generate(),
		OrgID:           orgID,
		Name:            demoFeeHead,
		BillingType:     feeruledomain.BillingTypeRecurring,
		IsSystemDefault: true,
		CreatedAt:       now,
	}
	return head, tx.WithContext(ctx).Create(&head).Error
}

func ensureStructureTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, campus tenantdomain.Campus, headID snowflake.ID, now time.Time) (feeruledomain.FeeStructure, error) {
	var structure feeruledomain.FeeStructure
	err := tx.WithContext(ctx).
		Where("campus_id = ? AND fee_head_id = ? AND name = ?", campus.ID, headID, demoStructureName).
		First(&structure).Error
	if err == nil {
		return structure, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return structure, err
	}
	structure = feeruledomain.FeeStructure{
		ID:              node.Generate(),
		OrgID:           campus.OrgID,
		CampusID:        campus.ID,
		FeeHeadID:       headID,
		Name:            demoStructureName,
		Amount:          decimal.NewFromInt(5000),
		Currency:        "PKR",
		Frequency:       feeruledomain.FrequencyMonthly,
		ApplicableGrade: DemoGrade,
		IsActive:        true,
		CreatedAt:       now,
	}
	return structure, tx.WithContext(ctx).Create(&structure).Error
}

func ensureStudentTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, campus tenantdomain.Campus, now time.Time) (tenantdomain.Student, error) {
	var student tenantdomain.Student
	err := tx.WithContext(ctx).
		Where("org_id = ? AND admission_no = ?", campus.OrgID, DemoAdmissionNo).
		First(&student).Error
	if err == nil {
		return student, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return student, err
	}
	student = tenantdomain.Student{
		ID:          node.Generate(),
		OrgID:       campus.OrgID,
		CampusID:    campus.ID,
		AdmissionNo: DemoAdmissionNo,
		FullName:    demoStudentName,
		Grade:       DemoGrade,
		CreatedAt:   now,
	}
	return student, tx.WithContext(ctx).Create(&student).Error
}

func ensureLedgerAccounts(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID, now time.Time) error {
	for _, code := range []ledgerdomain.AccountCode{
		ledgerdomain.AccountCodeAccountsReceivable,
		ledgerdomain.AccountCodeCash,
		ledgerdomain.AccountCodeFeeRevenue,
	} {
		err := tx.WithContext(ctx).Exec(`
			INSERT INTO ledger_accounts (id, org_id, code, name, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (org_id, code) DO NOTHING
		`,
			node.Generate(),
			orgID,
			code,
			code.Name(),
			now,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}
