package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type BillingType string

const (
	BillingTypeOneTime   BillingType = "ONE_TIME"
	BillingTypeRecurring BillingType = "RECURRING"
)

type Frequency string

const (
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyAnnual    Frequency = "ANNUAL"
	FrequencyOneTime   Frequency = "ONE_TIME"
)

// ParseFrequency accepts any casing and surrounding whitespace.
func ParseFrequency(value string) (Frequency, error) {
	switch f := Frequency(normalizeKey(value)); f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyAnnual, FrequencyOneTime:
		return f, nil
	default:
		return "", ErrInvalidFrequency
	}
}

type FeeHead struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID           snowflake.ID `gorm:"not null;uniqueIndex:ux_fee_heads_org_name,priority:1" json:"organization_id"`
	Name            string       `gorm:"type:text;not null;uniqueIndex:ux_fee_heads_org_name,priority:2" json:"name"`
	BillingType     BillingType  `gorm:"type:text;not null" json:"billing_type"`
	IsSystemDefault bool         `gorm:"not null;default:false" json:"is_system_default"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
}

func (FeeHead) TableName() string { return "fee_heads" }

// FeeStructure prices a fee head for one campus, grade and frequency.
type FeeStructure struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID           snowflake.ID    `gorm:"not null;index" json:"organization_id"`
	CampusID        snowflake.ID    `gorm:"not null;index:ix_fee_structures_rule,priority:1" json:"campus_id"`
	FeeHeadID       snowflake.ID    `gorm:"not null;index" json:"fee_head_id"`
	Name            string          `gorm:"type:text;not null" json:"name"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency        string          `gorm:"type:text;not null;default:'PKR'" json:"currency"`
	Frequency       Frequency       `gorm:"type:text;not null;index:ix_fee_structures_rule,priority:3" json:"frequency"`
	ApplicableGrade string          `gorm:"type:text;not null;index:ix_fee_structures_rule,priority:2" json:"applicable_grade"`
	IsActive        bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
}

func (FeeStructure) TableName() string { return "fee_structures" }

// RuleKey identifies the rule a student is billed under.
type RuleKey struct {
	CampusID  snowflake.ID
	Grade     string
	Frequency Frequency
}

func normalizeKey(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}
