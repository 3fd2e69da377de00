package domain

import (
	"time"

	"github.com/shopspring/decimal"
	challandomain "github.com/smallbiznis/sairex/internal/challan/domain"
	feeruledomain "github.com/smallbiznis/sairex/internal/feerule/domain"
	notificationdomain "github.com/smallbiznis/sairex/internal/notification/domain"
	tenantdomain "github.com/smallbiznis/sairex/internal/tenant/domain"
	"github.com/smallbiznis/sairex/pkg/db/pagination"
)

// PayChallanCommand is the operator's "pay this challan" request.
type PayChallanCommand struct {
	ChallanNo  string
	Confirm    bool
	Method     string
	PayerPhone string
	PaidAt     time.Time

	// Amount defaults to the challan total when nil.
	Amount *decimal.Decimal
}

type PayChallanResult struct {
	Challan challandomain.FeeChallan `json:"challan"`
	Student tenantdomain.Student     `json:"student"`

	// Notification is nil when no guardian phone was available.
	Notification *notificationdomain.DispatchResult `json:"notification,omitempty"`
}

// ChallanView is a challan with the directory records needed to show or print it.
type ChallanView struct {
	Challan      challandomain.FeeChallan  `json:"challan"`
	Organization tenantdomain.Organization `json:"organization"`
	Campus       tenantdomain.Campus       `json:"campus"`
	Student      tenantdomain.Student      `json:"student"`
}

type ResolveRuleQuery struct {
	OrgCode    string
	CampusCode string
	Grade      string
	Frequency  string
}

type IssueChallanCommand struct {
	OrgCode     string
	CampusCode  string
	AdmissionNo string
	Frequency   string
	CycleKey    string
	DueInDays   int
}

type IssueChallanResult struct {
	Challan challandomain.FeeChallan `json:"challan"`
	Created bool                     `json:"created"`
}

type IssueBatchCommand struct {
	OrgCode    string
	CampusCode string
	Grade      string
	Frequency  string
	CycleKey   string
	DueInDays  int
}

type BatchFailure struct {
	AdmissionNo string `json:"admission_no"`
	Error       string `json:"error"`
}

type IssueBatchResult struct {
	Structure feeruledomain.FeeStructure `json:"fee_structure"`
	Created   int                        `json:"created"`
	Existing  int                        `json:"existing"`
	Failures  []BatchFailure             `json:"failures"`
}

type ListChallansQuery struct {
	OrgCode    string
	CampusCode string
	Status     string
	CycleKey   string
	PageToken  string
	PageSize   int
}

type ListChallansResult struct {
	pagination.PageInfo
	Challans []challandomain.FeeChallan `json:"challans"`
}

type BalanceQuery struct {
	OrgCode     string
	CampusCode  string
	AdmissionNo string
}

type BalanceResult struct {
	Student     tenantdomain.Student `json:"student"`
	Outstanding decimal.Decimal      `json:"outstanding"`
}
