package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// FindActive returns every active structure matching key, oldest first.
	FindActive(ctx context.Context, db *gorm.DB, key RuleKey) ([]FeeStructure, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*FeeStructure, error)
	FindHeadByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*FeeHead, error)
}
