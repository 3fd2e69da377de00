package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusUnpaid Status = "UNPAID"
	StatusPaid   Status = "PAID"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodOnline       PaymentMethod = "ONLINE"
)

// FeeChallan is a bill issued to one student for one billing cycle. It moves
// from UNPAID to PAID exactly once and is never deleted.
type FeeChallan struct {
	ID             snowflake.ID        `gorm:"primaryKey" json:"id"`
	OrgID          snowflake.ID        `gorm:"not null;index" json:"organization_id"`
	CampusID       snowflake.ID        `gorm:"not null;index" json:"campus_id"`
	StudentID      snowflake.ID        `gorm:"not null;index" json:"student_id"`
	FeeStructureID snowflake.ID        `gorm:"not null" json:"fee_structure_id"`
	ChallanNo      string              `gorm:"type:text;not null;uniqueIndex" json:"challan_no"`
	CycleKey       string              `gorm:"type:text;not null" json:"cycle_key"`
	TotalAmount    decimal.Decimal     `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	Currency       string              `gorm:"type:text;not null" json:"currency"`
	IssueDate      time.Time           `gorm:"not null" json:"issue_date"`
	DueDate        time.Time           `gorm:"not null" json:"due_date"`
	Status         Status              `gorm:"type:text;not null;index" json:"status"`
	PaidAmount     decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"paid_amount"`
	PaymentMethod  PaymentMethod       `gorm:"type:text" json:"payment_method,omitempty"`
	PaidAt         *time.Time          `json:"paid_at,omitempty"`
	GeneratedBy    string              `gorm:"type:text;not null" json:"generated_by"`
	Metadata       datatypes.JSONMap   `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"not null" json:"updated_at"`
}

func (FeeChallan) TableName() string { return "fee_challans" }

func (c FeeChallan) IsPaid() bool { return c.Status == StatusPaid }

// Settled reports whether the paid fields satisfy the PAID invariant.
func (c FeeChallan) Settled() bool {
	return c.Status == StatusPaid &&
		c.PaidAmount.Valid &&
		c.PaidAmount.Decimal.Equal(c.TotalAmount) &&
		c.PaidAt != nil &&
		c.PaymentMethod != ""
}
