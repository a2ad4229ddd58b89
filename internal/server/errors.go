package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	childdomain "github.com/hoikulink/tsumugi/internal/child/domain"
	invoicedomain "github.com/hoikulink/tsumugi/internal/invoice/domain"
	"github.com/hoikulink/tsumugi/internal/month"
	pricelistdomain "github.com/hoikulink/tsumugi/internal/pricelist/domain"
	reservationdomain "github.com/hoikulink/tsumugi/internal/reservation/domain"
	usagedomain "github.com/hoikulink/tsumugi/internal/usage/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
)

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

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    err.Error(),
			Message: validationErrorMessage(err.Error()),
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, childdomain.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Code:    err.Error(),
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Code:    err.Error(),
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logging middleware's error fields.
func classifyErrorForLog(err error) (string, string) {
	switch {
	case err == nil:
		return "", ""
	case isValidationError(err):
		return "validation_error", err.Error()
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized", "unauthorized"
	case errors.Is(err, childdomain.ErrForbidden):
		return "forbidden", "forbidden"
	case isConflictError(err):
		return "conflict", err.Error()
	case isNotFoundError(err):
		return "not_found", err.Error()
	default:
		return "internal_error", "internal_error"
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, month.ErrInvalidMonth),
		errors.Is(err, pricelistdomain.ErrInvalidLabel),
		errors.Is(err, pricelistdomain.ErrInvalidPrices),
		errors.Is(err, pricelistdomain.ErrInvalidPageToken),
		errors.Is(err, reservationdomain.ErrInvalidChildID),
		errors.Is(err, reservationdomain.ErrInvalidDate),
		errors.Is(err, reservationdomain.ErrDateOutsideMonth),
		errors.Is(err, reservationdomain.ErrInvalidKind),
		errors.Is(err, reservationdomain.ErrInvalidOption),
		errors.Is(err, usagedomain.ErrInvalidWeeklyCount),
		errors.Is(err, usagedomain.ErrInvalidWeekday),
		errors.Is(err, invoicedomain.ErrInvalidLabel),
		errors.Is(err, invoicedomain.ErrInvalidTotal):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, pricelistdomain.ErrDuplicateLabel),
		errors.Is(err, reservationdomain.ErrDuplicateDate),
		errors.Is(err, reservationdomain.ErrCutoffPassed):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, childdomain.ErrNotFound),
		errors.Is(err, pricelistdomain.ErrNotFound),
		errors.Is(err, reservationdomain.ErrNotFound),
		errors.Is(err, usagedomain.ErrBasicUsageNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorMessage(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return "invalid " + strings.ReplaceAll(strings.TrimPrefix(code, "invalid_"), "_", " ")
	}
	return "validation error"
}
