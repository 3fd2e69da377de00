package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	billingdomain "github.com/smallbiznis/sairex/internal/billing/domain"
	"github.com/smallbiznis/sairex/internal/providers/pdf"
	"github.com/smallbiznis/sairex/pkg/db/pagination"
)

type issueChallanRequest struct {
	CampusCode  string `json:"campus_code"`
	AdmissionNo string `json:"admission_no"`
	Frequency   string `json:"frequency"`
	CycleKey    string `json:"cycle_key"`
	DueInDays   int    `json:"due_in_days"`
}

func (s *Server) IssueChallan(c *gin.Context) {
	var req issueChallanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.IssueChallan(c.Request.Context(), billingdomain.IssueChallanCommand{
		OrgCode:     strings.TrimSpace(c.Param("org_code")),
		CampusCode:  strings.TrimSpace(req.CampusCode),
		AdmissionNo: strings.TrimSpace(req.AdmissionNo),
		Frequency:   req.Frequency,
		CycleKey:    req.CycleKey,
		DueInDays:   req.DueInDays,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"data": resp})
}

type issueChallanBatchRequest struct {
	CampusCode string `json:"campus_code"`
	Grade      string `json:"grade"`
	Frequency  string `json:"frequency"`
	CycleKey   string `json:"cycle_key"`
	DueInDays  int    `json:"due_in_days"`
}

func (s *Server) IssueChallanBatch(c *gin.Context) {
	var req issueChallanBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.IssueBatch(c.Request.Context(), billingdomain.IssueBatchCommand{
		OrgCode:    strings.TrimSpace(c.Param("org_code")),
		CampusCode: strings.TrimSpace(req.CampusCode),
		Grade:      req.Grade,
		Frequency:  req.Frequency,
		CycleKey:   req.CycleKey,
		DueInDays:  req.DueInDays,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListChallans(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CampusCode string `form:"campus_code"`
		Status     string `form:"status"`
		CycleKey   string `form:"cycle_key"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.ListChallans(c.Request.Context(), billingdomain.ListChallansQuery{
		OrgCode:    strings.TrimSpace(c.Param("org_code")),
		CampusCode: strings.TrimSpace(query.CampusCode),
		Status:     query.Status,
		CycleKey:   query.CycleKey,
		PageToken:  query.PageToken,
		PageSize:   query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Challans,
		"page_info": resp.PageInfo,
	})
}

func (s *Server) GetChallan(c *gin.Context) {
	resp, err := s.billingSvc.GetChallan(c.Request.Context(), strings.TrimSpace(c.Param("challan_no")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetChallanPDF(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := s.billingSvc.GetChallan(ctx, strings.TrimSpace(c.Param("challan_no")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.pdf.GenerateChallan(ctx, pdf.NewChallanData(view))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	body, err := io.ReadAll(doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", view.Challan.ChallanNo+".pdf"))
	c.Data(http.StatusOK, "application/pdf", body)
}

type payChallanRequest struct {
	Confirm    bool             `json:"confirm"`
	Amount     *decimal.Decimal `json:"amount"`
	Method     string           `json:"method"`
	PayerPhone string           `json:"payer_phone"`
	PaidAt     string           `json:"paid_at"`
}

func (s *Server) PayChallan(c *gin.Context) {
	var req payChallanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paidAt, err := parsePaidAt(req.PaidAt)
	if err != nil {
		AbortWithError(c, newValidationError("paid_at", errInvalidPaidAt.Error(), "paid_at must be RFC3339 or YYYY-MM-DD"))
		return
	}
	cmd := billingdomain.PayChallanCommand{
		ChallanNo:  strings.TrimSpace(c.Param("challan_no")),
		Confirm:    req.Confirm,
		Method:     req.Method,
		PayerPhone: strings.TrimSpace(req.PayerPhone),
		Amount:     req.Amount,
		PaidAt:     paidAt,
	}

	resp, err := s.billingSvc.PayChallan(c.Request.Context(), cmd)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetStudentBalance(c *gin.Context) {
	resp, err := s.billingSvc.Balance(c.Request.Context(), billingdomain.BalanceQuery{
		OrgCode:     strings.TrimSpace(c.Param("org_code")),
		CampusCode:  strings.TrimSpace(c.Query("campus_code")),
		AdmissionNo: strings.TrimSpace(c.Param("admission_no")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
