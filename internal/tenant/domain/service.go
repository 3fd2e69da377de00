package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service is the read-only tenant directory.
type Service interface {
	FindOrganization(ctx context.Context, code string) (Organization, error)
	FindCampus(ctx context.Context, code string) (Campus, error)
	FindStudent(ctx context.Context, admissionNo string, campusID snowflake.ID) (Student, error)

	GetOrganization(ctx context.Context, id snowflake.ID) (Organization, error)
	GetCampus(ctx context.Context, id snowflake.ID) (Campus, error)
	GetStudent(ctx context.Context, id snowflake.ID) (Student, error)
	ListStudents(ctx context.Context, campusID snowflake.ID, grade string) ([]Student, error)
}
