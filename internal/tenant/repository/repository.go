package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sairex/internal/tenant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const (
	organizationColumns = `id, org_code, name, subscription_plan, created_at, updated_at`
	campusColumns       = `id, org_id, campus_code, campus_slug, name, city, is_main_campus, created_at`
	studentColumns      = `id, org_id, campus_id, admission_no, full_name, grade, guardian_phone, created_at`
)

func (r *repo) FindOrganizationByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Organization, error) {
	var org domain.Organization
	err := db.WithContext(ctx).Raw(
		`SELECT `+organizationColumns+` FROM organizations WHERE org_code = ?`,
		code,
	).Scan(&org).Error
	if err != nil {
		return nil, err
	}
	if org.ID == 0 {
		return nil, nil
	}
	return &org, nil
}

func (r *repo) FindOrganizationByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	err := db.WithContext(ctx).Raw(
		`SELECT `+organizationColumns+` FROM organizations WHERE id = ?`,
		id,
	).Scan(&org).Error
	if err != nil {
		return nil, err
	}
	if org.ID == 0 {
		return nil, nil
	}
	return &org, nil
}

func (r *repo) FindCampusByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Campus, error) {
	var campus domain.Campus
	err := db.WithContext(ctx).Raw(
		`SELECT `+campusColumns+` FROM campuses WHERE campus_code = ?`,
		code,
	).Scan(&campus).Error
	if err != nil {
		return nil, err
	}
	if campus.ID == 0 {
		return nil, nil
	}
	return &campus, nil
}

func (r *repo) FindCampusByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Campus, error) {
	var campus domain.Campus
	err := db.WithContext(ctx).Raw(
		`SELECT `+campusColumns+` FROM campuses WHERE id = ?`,
		id,
	).Scan(&campus).Error
	if err != nil {
		return nil, err
	}
	if campus.ID == 0 {
		return nil, nil
	}
	return &campus, nil
}

func (r *repo) FindStudent(ctx context.Context, db *gorm.DB, admissionNo string, campusID snowflake.ID) (*domain.Student, error) {
	var student domain.Student
	err := db.WithContext(ctx).Raw(
		`SELECT `+studentColumns+` FROM students WHERE admission_no = ? AND campus_id = ?`,
		admissionNo,
		campusID,
	).Scan(&student).Error
	if err != nil {
		return nil, err
	}
	if student.ID == 0 {
		return nil, nil
	}
	return &student, nil
}

func (r *repo) FindStudentByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Student, error) {
	var student domain.Student
	err := db.WithContext(ctx).Raw(
		`SELECT `+studentColumns+` FROM students WHERE id = ?`,
		id,
	).Scan(&student).Error
	if err != nil {
		return nil, err
	}
	if student.ID == 0 {
		return nil, nil
	}
	return &student, nil
}

func (r *repo) ListStudents(ctx context.Context, db *gorm.DB, campusID snowflake.ID, grade string) ([]*domain.Student, error) {
	var students []*domain.Student
	stmt := db.WithContext(ctx).
		Model(&domain.Student{}).
		Where("campus_id = ?", campusID)
	if grade != "" {
		stmt = stmt.Where("grade = ?", grade)
	}
	if err := stmt.Order("admission_no asc").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}
