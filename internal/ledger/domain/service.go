package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service interface {
	// Post writes the entry inside tx. It reports false when the source was
	// already posted.
	Post(ctx context.Context, tx *gorm.DB, posting Posting) (bool, error)
	// Balance returns the student's outstanding receivable.
	Balance(ctx context.Context, orgID, studentID snowflake.ID) (decimal.Decimal, error)
}
