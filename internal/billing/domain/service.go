package domain

import (
	"context"

	feeruledomain "github.com/smallbiznis/sairex/internal/feerule/domain"
)

// Service composes the directory, rule resolver, challan generator, payment
// ledger and notifier into operator-facing commands.
type Service interface {
	ResolveRule(ctx context.Context, q ResolveRuleQuery) (feeruledomain.Resolution, error)
	IssueChallan(ctx context.Context, cmd IssueChallanCommand) (IssueChallanResult, error)
	IssueBatch(ctx context.Context, cmd IssueBatchCommand) (IssueBatchResult, error)
	GetChallan(ctx context.Context, challanNo string) (ChallanView, error)
	ListChallans(ctx context.Context, q ListChallansQuery) (ListChallansResult, error)
	PayChallan(ctx context.Context, cmd PayChallanCommand) (PayChallanResult, error)
	Balance(ctx context.Context, q BalanceQuery) (BalanceResult, error)
}
