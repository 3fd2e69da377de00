package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	feeruledomain "github.com/smallbiznis/sairex/internal/feerule/domain"
	tenantdomain "github.com/smallbiznis/sairex/internal/tenant/domain"
	"github.com/smallbiznis/sairex/pkg/db/pagination"
)

type IssueRequest struct {
	Student   tenantdomain.Student
	Structure feeruledomain.FeeStructure
	CycleKey  string
	// DueInDays <= 0 falls back to the configured default.
	DueInDays int
}

type IssueResult struct {
	Challan FeeChallan
	// Created is false when an existing challan for the cycle was returned.
	Created bool
}

type ListRequest struct {
	OrgID     snowflake.ID
	CampusID  snowflake.ID
	StudentID snowflake.ID
	Status    string
	CycleKey  string
	PageToken string
	PageSize  int
}

type ListResponse struct {
	pagination.PageInfo
	Challans []FeeChallan `json:"challans"`
}

type Service interface {
	Issue(ctx context.Context, req IssueRequest) (IssueResult, error)
	GetByChallanNo(ctx context.Context, challanNo string) (FeeChallan, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}
