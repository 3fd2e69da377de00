package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/smallbiznis/sairex/internal/billing/domain"
	challandomain "github.com/smallbiznis/sairex/internal/challan/domain"
	feeruledomain "github.com/smallbiznis/sairex/internal/feerule/domain"
	paymentdomain "github.com/smallbiznis/sairex/internal/payment/domain"
	tenantdomain "github.com/smallbiznis/sairex/internal/tenant/domain"
	"github.com/smallbiznis/sairex/pkg/db/pagination"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// validationSentinels are input errors reported as 400 with their code.
var validationSentinels = []error{
	ErrInvalidRequest,
	errInvalidPaidAt,
	pagination.ErrInvalidPageToken,
	billingdomain.ErrNotConfirmed,
	tenantdomain.ErrInvalidCode,
	tenantdomain.ErrInvalidID,
	tenantdomain.ErrInvalidGrade,
	feeruledomain.ErrInvalidCampus,
	feeruledomain.ErrInvalidGrade,
	feeruledomain.ErrInvalidFrequency,
	challandomain.ErrInvalidCycleKey,
	challandomain.ErrInvalidAdmissionNo,
	challandomain.ErrInvalidPaymentMethod,
	challandomain.ErrInvalidAmount,
	challandomain.ErrInvalidStudent,
	challandomain.ErrInvalidOrganization,
	challandomain.ErrInvalidStatus,
	paymentdomain.ErrInvalidAmount,
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if code, ok := validationErrorCode(err); ok {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: notFoundMessage(err),
		}
	case errors.Is(err, paymentdomain.ErrAlreadyPaid):
		return http.StatusConflict, errorPayload{
			Type:    "already_paid",
			Message: err.Error(),
		}
	case errors.Is(err, challandomain.ErrChallanNoConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, paymentdomain.ErrAmountMismatch):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "amount_mismatch",
			Message: err.Error(),
		}
	case errors.Is(err, feeruledomain.ErrNoApplicableRule):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "no_applicable_rule",
			Message: err.Error(),
		}
	case errors.Is(err, feeruledomain.ErrAmbiguousRule):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "ambiguous_rule",
			Message: err.Error(),
		}
	case errors.Is(err, challandomain.ErrStructureCampusMismatch):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "structure_campus_mismatch",
			Message: err.Error(),
		}
	case errors.Is(err, challandomain.ErrPersistence):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "storage unavailable, retry later",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog returns the payload type the client will see.
func classifyErrorForLog(err error) string {
	_, payload := mapError(err)
	return payload.Type
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func validationErrorCode(err error) (string, bool) {
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error(), true
		}
	}
	return "", false
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, tenantdomain.ErrNotFound),
		errors.Is(err, feeruledomain.ErrNotFound),
		errors.Is(err, challandomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func notFoundMessage(err error) string {
	if errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return "not found"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "payment_not_confirmed":
		return "confirm"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "payment_not_confirmed":
		return "payment must be confirmed"
	default:
		return "invalid value"
	}
}
