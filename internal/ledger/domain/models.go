package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

type SourceType string

const (
	SourceTypeChallan SourceType = "fee_challan" // receivable raised at issuance
	SourceTypePayment SourceType = "payment"     // settlement of a challan
)

type AccountCode string

const (
	AccountCodeAccountsReceivable AccountCode = "accounts_receivable"
	AccountCodeCash               AccountCode = "cash"
	AccountCodeFeeRevenue         AccountCode = "fee_revenue"
)

var accountNames = map[AccountCode]string{
	AccountCodeAccountsReceivable: "Accounts Receivable",
	AccountCodeCash:               "Cash",
	AccountCodeFeeRevenue:         "Fee Revenue",
}

func (c AccountCode) Name() string {
	if name, ok := accountNames[c]; ok {
		return name
	}
	return string(c)
}

// LedgerAccount is a chart-of-accounts row, created lazily per organization.
type LedgerAccount struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	OrgID     snowflake.ID `gorm:"not null;uniqueIndex:ux_ledger_accounts_org_code,priority:1"`
	Code      AccountCode  `gorm:"type:text;not null;uniqueIndex:ux_ledger_accounts_org_code,priority:2"`
	Name      string       `gorm:"type:text;not null"`
	CreatedAt time.Time    `gorm:"not null"`
}

func (LedgerAccount) TableName() string { return "ledger_accounts" }

// LedgerEntry is the immutable header of one financial event. A source may be
// posted at most once.
type LedgerEntry struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	OrgID      snowflake.ID `gorm:"not null;uniqueIndex:ux_ledger_entries_source,priority:1"`
	StudentID  snowflake.ID `gorm:"not null;index"`
	SourceType SourceType   `gorm:"type:text;not null;uniqueIndex:ux_ledger_entries_source,priority:2"`
	SourceID   snowflake.ID `gorm:"not null;uniqueIndex:ux_ledger_entries_source,priority:3"`
	Currency   string       `gorm:"type:text;not null"`
	OccurredAt time.Time    `gorm:"not null"`
	CreatedAt  time.Time    `gorm:"not null"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

type LedgerEntryLine struct {
	ID            snowflake.ID    `gorm:"primaryKey"`
	LedgerEntryID snowflake.ID    `gorm:"not null;index"`
	AccountID     snowflake.ID    `gorm:"not null;index"`
	Direction     Direction       `gorm:"type:text;not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt     time.Time       `gorm:"not null"`
}

func (LedgerEntryLine) TableName() string { return "ledger_entry_lines" }

// PostingLine is one side of a posting, addressed by account code.
type PostingLine struct {
	Account   AccountCode
	Direction Direction
	Amount    decimal.Decimal
}

// Posting describes a balanced entry to write.
type Posting struct {
	OrgID      snowflake.ID
	StudentID  snowflake.ID
	SourceType SourceType
	SourceID   snowflake.ID
	Currency   string
	OccurredAt time.Time
	Lines      []PostingLine
}

// ValidateBalanced checks that debits equal credits.
func ValidateBalanced(lines []PostingLine) error {
	debits, credits := decimal.Zero, decimal.Zero
	for _, line := range lines {
		switch line.Direction {
		case DirectionDebit:
			debits = debits.Add(line.Amount)
		case DirectionCredit:
			credits = credits.Add(line.Amount)
		default:
			return ErrInvalidLineDirection
		}
	}
	if !debits.Equal(credits) {
		return ErrUnbalancedEntry
	}
	return nil
}

// Receivable returns the two-line posting that moves amount from credit to debit.
func Receivable(debit, credit AccountCode, amount decimal.Decimal) []PostingLine {
	return []PostingLine{
		{Account: debit, Direction: DirectionDebit, Amount: amount},
		{Account: credit, Direction: DirectionCredit, Amount: amount},
	}
}
