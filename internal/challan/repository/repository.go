package repository

import (
	"context"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sairex/internal/challan/domain"
	"github.com/smallbiznis/sairex/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const challanColumns = `id, org_id, campus_id, student_id, fee_structure_id, challan_no, cycle_key,
	total_amount, currency, issue_date, due_date, status, paid_amount, payment_method, paid_at,
	generated_by, metadata, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, challan *domain.FeeChallan) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO fee_challans (`+challanColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		challan.ID,
		challan.OrgID,
		challan.CampusID,
		challan.StudentID,
		challan.FeeStructureID,
		challan.ChallanNo,
		challan.CycleKey,
		challan.TotalAmount,
		challan.Currency,
		challan.IssueDate,
		challan.DueDate,
		challan.Status,
		challan.PaidAmount,
		nullable(string(challan.PaymentMethod)),
		challan.PaidAt,
		challan.GeneratedBy,
		challan.Metadata,
		challan.CreatedAt,
		challan.UpdatedAt,
	).Error
}

func (r *repo) FindByChallanNo(ctx context.Context, db *gorm.DB, challanNo string) (*domain.FeeChallan, error) {
	var challan domain.FeeChallan
	err := db.WithContext(ctx).Raw(
		`SELECT `+challanColumns+` FROM fee_challans WHERE challan_no = ?`,
		challanNo,
	).Scan(&challan).Error
	if err != nil {
		return nil, err
	}
	if challan.ID == 0 {
		return nil, nil
	}
	return &challan, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.FeeChallan, error) {
	var challan domain.FeeChallan
	err := db.WithContext(ctx).Raw(
		`SELECT `+challanColumns+` FROM fee_challans WHERE id = ?`,
		id,
	).Scan(&challan).Error
	if err != nil {
		return nil, err
	}
	if challan.ID == 0 {
		return nil, nil
	}
	return &challan, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]*domain.FeeChallan, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.FeeChallan{}).
		Where("org_id = ?", orgID)
	if filter.CampusID != 0 {
		stmt = stmt.Where("campus_id = ?", filter.CampusID)
	}
	if filter.StudentID != 0 {
		stmt = stmt.Where("student_id = ?", filter.StudentID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CycleKey != "" {
		stmt = stmt.Where("cycle_key = ?", filter.CycleKey)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		lastID, err := strconv.ParseInt(cursor.ID, 10, 64)
		if err != nil {
			return nil, pagination.ErrInvalidPageToken
		}
		stmt = stmt.Where("id < ?", lastID)
	}

	var challans []*domain.FeeChallan
	err := stmt.
		Order("id desc").
		Limit(page.Limit() + 1).
		Find(&challans).Error
	if err != nil {
		return nil, err
	}
	return challans, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, s domain.Settlement) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE fee_challans
		 SET status = ?, paid_amount = ?, payment_method = ?, paid_at = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.StatusPaid,
		s.Amount,
		string(s.Method),
		s.PaidAt,
		s.PaidAt,
		s.ChallanID,
		domain.StatusUnpaid,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
