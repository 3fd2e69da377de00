package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/sairex/internal/clock"
	ledgerdomain "github.com/smallbiznis/sairex/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) ledgerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Post(ctx context.Context, tx *gorm.DB, posting ledgerdomain.Posting) (bool, error) {
	if err := validatePosting(posting); err != nil {
		return false, err
	}
	if tx == nil {
		tx = s.db
	}
	tx = tx.WithContext(ctx)

	now := s.clock.Now()
	entry := ledgerdomain.LedgerEntry{
		ID:         s.genID.Generate(),
		OrgID:      posting.OrgID,
		StudentID:  posting.StudentID,
		SourceType: posting.SourceType,
		SourceID:   posting.SourceID,
		Currency:   strings.ToUpper(strings.TrimSpace(posting.Currency)),
		OccurredAt: posting.OccurredAt.UTC(),
		CreatedAt:  now,
	}
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "org_id"}, {Name: "source_type"}, {Name: "source_id"}},
		DoNothing: true,
	}).Create(&entry)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		s.log.Debug("ledger entry already posted",
			zap.String("source_type", string(posting.SourceType)),
			zap.String("source_id", posting.SourceID.String()),
		)
		return false, nil
	}

	for _, line := range posting.Lines {
		accountID, err := s.ensureAccount(ctx, tx, posting.OrgID, line.Account, now)
		if err != nil {
			return false, err
		}
		if err := tx.Create(&ledgerdomain.LedgerEntryLine{
			ID:            s.genID.Generate(),
			LedgerEntryID: entry.ID,
			AccountID:     accountID,
			Direction:     line.Direction,
			Amount:        line.Amount,
			CreatedAt:     now,
		}).Error; err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *Service) ensureAccount(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, code ledgerdomain.AccountCode, now time.Time) (snowflake.ID, error) {
	account := ledgerdomain.LedgerAccount{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Code:      code,
		Name:      code.Name(),
		CreatedAt: now,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "org_id"}, {Name: "code"}},
		DoNothing: true,
	}).Create(&account).Error; err != nil {
		return 0, err
	}

	var id snowflake.ID
	if err := tx.WithContext(ctx).Raw(
		`SELECT id FROM ledger_accounts WHERE org_id = ? AND code = ?`,
		orgID, code,
	).Scan(&id).Error; err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Service) Balance(ctx context.Context, orgID, studentID snowflake.ID) (decimal.Decimal, error) {
	var balance decimal.NullDecimal
	err := s.db.WithContext(ctx).Raw(
		`SELECT SUM(CASE WHEN l.direction = ? THEN l.amount ELSE -l.amount END)
		FROM ledger_entry_lines l
		JOIN ledger_entries e ON e.id = l.ledger_entry_id
		JOIN ledger_accounts a ON a.id = l.account_id
		WHERE e.org_id = ? AND e.student_id = ? AND a.code = ?`,
		ledgerdomain.DirectionDebit, orgID, studentID, ledgerdomain.AccountCodeAccountsReceivable,
	).Row().Scan(&balance)
	if err != nil {
		return decimal.Zero, err
	}
	if !balance.Valid {
		return decimal.Zero, nil
	}
	return balance.Decimal, nil
}

func validatePosting(p ledgerdomain.Posting) error {
	switch {
	case p.OrgID == 0:
		return ledgerdomain.ErrInvalidOrganization
	case strings.TrimSpace(string(p.SourceType)) == "":
		return ledgerdomain.ErrInvalidSourceType
	case p.SourceID == 0:
		return ledgerdomain.ErrInvalidSourceID
	case strings.TrimSpace(p.Currency) == "":
		return ledgerdomain.ErrInvalidCurrency
	case p.OccurredAt.IsZero():
		return ledgerdomain.ErrInvalidOccurredAt
	case len(p.Lines) < 2:
		return ledgerdomain.ErrInvalidEntryLines
	}
	for _, line := range p.Lines {
		if line.Amount.IsNegative() {
			return ledgerdomain.ErrInvalidLineAmount
		}
	}
	return ledgerdomain.ValidateBalanced(p.Lines)
}
