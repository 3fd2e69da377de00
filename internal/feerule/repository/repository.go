package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sairex/internal/feerule/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const structureColumns = `id, org_id, campus_id, fee_head_id, name, amount, currency, frequency, applicable_grade, is_active, created_at`

func (r *repo) FindActive(ctx context.Context, db *gorm.DB, key domain.RuleKey) ([]domain.FeeStructure, error) {
	var structures []domain.FeeStructure
	err := db.WithContext(ctx).Raw(
		`SELECT `+structureColumns+`
		 FROM fee_structures
		 WHERE campus_id = ? AND TRIM(applicable_grade) = ? AND UPPER(frequency) = ? AND is_active = ?
		 ORDER BY created_at ASC, id ASC`,
		key.CampusID,
		key.Grade,
		string(key.Frequency),
		true,
	).Scan(&structures).Error
	if err != nil {
		return nil, err
	}
	return structures, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.FeeStructure, error) {
	var structure domain.FeeStructure
	err := db.WithContext(ctx).Raw(
		`SELECT `+structureColumns+` FROM fee_structures WHERE id = ?`,
		id,
	).Scan(&structure).Error
	if err != nil {
		return nil, err
	}
	if structure.ID == 0 {
		return nil, nil
	}
	return &structure, nil
}

func (r *repo) FindHeadByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.FeeHead, error) {
	var head domain.FeeHead
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, billing_type, is_system_default, created_at FROM fee_heads WHERE id = ?`,
		id,
	).Scan(&head).Error
	if err != nil {
		return nil, err
	}
	if head.ID == 0 {
		return nil, nil
	}
	return &head, nil
}
