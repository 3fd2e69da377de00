package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/smallbiznis/sairex/internal/billing/domain"
	feeruledomain "github.com/smallbiznis/sairex/internal/feerule/domain"
)

type resolveFeeRuleResponse struct {
	Resolution string                       `json:"resolution"`
	Rule       *feeruledomain.FeeStructure  `json:"rule,omitempty"`
	Candidates []feeruledomain.FeeStructure `json:"candidates,omitempty"`
}

func (s *Server) ResolveFeeRule(c *gin.Context) {
	var query struct {
		CampusCode string `form:"campus_code"`
		Grade      string `form:"grade"`
		Frequency  string `form:"frequency"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	res, err := s.billingSvc.ResolveRule(c.Request.Context(), billingdomain.ResolveRuleQuery{
		OrgCode:    strings.TrimSpace(c.Param("org_code")),
		CampusCode: strings.TrimSpace(query.CampusCode),
		Grade:      query.Grade,
		Frequency:  query.Frequency,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := resolveFeeRuleResponse{Resolution: res.Kind.String()}
	switch res.Kind {
	case feeruledomain.ResolutionUnique:
		rule := res.Rule
		resp.Rule = &rule
	case feeruledomain.ResolutionAmbiguous:
		resp.Candidates = res.Candidates
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
