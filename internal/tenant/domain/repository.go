package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository returns (nil, nil) when a record does not exist.
type Repository interface {
	FindOrganizationByCode(ctx context.Context, db *gorm.DB, code string) (*Organization, error)
	FindOrganizationByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Organization, error)
	FindCampusByCode(ctx context.Context, db *gorm.DB, code string) (*Campus, error)
	FindCampusByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Campus, error)
	FindStudent(ctx context.Context, db *gorm.DB, admissionNo string, campusID snowflake.ID) (*Student, error)
	FindStudentByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Student, error)
	ListStudents(ctx context.Context, db *gorm.DB, campusID snowflake.ID, grade string) ([]*Student, error)
}

// Cache is a read-through cache for organization and campus lookups. A nil
// record with a nil error is a miss.
type Cache interface {
	GetOrganization(ctx context.Context, code string) (*Organization, error)
	SetOrganization(ctx context.Context, org *Organization) error
	GetCampus(ctx context.Context, code string) (*Campus, error)
	SetCampus(ctx context.Context, campus *Campus) error
}
