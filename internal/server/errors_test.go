package server

import (
	"errors"
	"net/http"
	"testing"

	childdomain "github.com/hoikulink/tsumugi/internal/child/domain"
	invoicedomain "github.com/hoikulink/tsumugi/internal/invoice/domain"
	"github.com/hoikulink/tsumugi/internal/month"
	pricelistdomain "github.com/hoikulink/tsumugi/internal/pricelist/domain"
	reservationdomain "github.com/hoikulink/tsumugi/internal/reservation/domain"
	usagedomain "github.com/hoikulink/tsumugi/internal/usage/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		errType string
		code    string
	}{
		{month.ErrInvalidMonth, http.StatusBadRequest, "validation_error", "invalid_month"},
		{usagedomain.ErrInvalidWeeklyCount, http.StatusBadRequest, "validation_error", "invalid_weekly_count"},
		{reservationdomain.ErrDateOutsideMonth, http.StatusBadRequest, "validation_error", "date_outside_month"},
		{pricelistdomain.ErrInvalidPageToken, http.StatusBadRequest, "validation_error", "invalid_page_token"},
		{invoicedomain.ErrInvalidTotal, http.StatusBadRequest, "validation_error", "invalid_total"},
		{ErrUnauthorized, http.StatusUnauthorized, "unauthorized", ""},
		{childdomain.ErrForbidden, http.StatusForbidden, "forbidden", ""},
		{pricelistdomain.ErrDuplicateLabel, http.StatusConflict, "conflict", "duplicate_label"},
		{reservationdomain.ErrDuplicateDate, http.StatusConflict, "conflict", "duplicate_reservation_date"},
		{reservationdomain.ErrCutoffPassed, http.StatusConflict, "conflict", "reservation_cutoff_passed"},
		{childdomain.ErrNotFound, http.StatusNotFound, "not_found", "child_not_found"},
		{usagedomain.ErrBasicUsageNotFound, http.StatusNotFound, "not_found", "basic_usage_not_found"},
		{gorm.ErrRecordNotFound, http.StatusNotFound, "not_found", "record not found"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal_error", ""},
	}

	for _, tc := range tests {
		t.Run(tc.errType+"/"+tc.code, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.errType, payload.Type)
			assert.Equal(t, tc.code, payload.Code)
		})
	}
}

func TestMapError_WrappedErrorsUnwrap(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), reservationdomain.ErrDuplicateDate)
	status, payload := mapError(wrapped)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "conflict", payload.Type)
}
