package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/sairex/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	CampusID  snowflake.ID
	StudentID snowflake.ID
	Status    Status
	CycleKey  string
}

// Settlement is the set of fields written by the UNPAID to PAID transition.
type Settlement struct {
	ChallanID snowflake.ID
	Amount    decimal.Decimal
	Method    PaymentMethod
	PaidAt    time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, challan *FeeChallan) error
	FindByChallanNo(ctx context.Context, db *gorm.DB, challanNo string) (*FeeChallan, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*FeeChallan, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]*FeeChallan, error)
	// MarkPaid applies s only while the challan is UNPAID and reports whether
	// a row changed.
	MarkPaid(ctx context.Context, db *gorm.DB, s Settlement) (bool, error)
}
