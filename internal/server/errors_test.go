package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	aggregatedomain "github.com/voltgrid/enbase/internal/aggregate/domain"
	baselinedomain "github.com/voltgrid/enbase/internal/baseline/domain"
	catalogdomain "github.com/voltgrid/enbase/internal/catalog/domain"
	performancedomain "github.com/voltgrid/enbase/internal/performance/domain"
	seudomain "github.com/voltgrid/enbase/internal/seu/domain"
)

func TestMapErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "seu not found",
			err:    &seudomain.NotFoundError{Name: "Press-9", EnergySource: "electricity"},
			status: http.StatusNotFound,
			code:   "seu_not_found",
		},
		{
			name:   "no active model",
			err:    &baselinedomain.NoActiveModelError{SEU: "Press-9", EnergySource: "electricity"},
			status: http.StatusNotFound,
			code:   "no_active_model",
		},
		{
			name:   "unknown feature",
			err:    &catalogdomain.UnknownFeatureError{EnergySource: "electricity", Invalid: []string{"moon"}},
			status: http.StatusBadRequest,
			code:   "unknown_feature",
		},
		{
			name:   "missing feature",
			err:    baselinedomain.NewMissingFeatureError([]string{"production_count"}, []string{"production_count"}),
			status: http.StatusBadRequest,
			code:   "missing_feature",
		},
		{
			name:   "invalid period",
			err:    &performancedomain.InvalidPeriodError{Input: "January"},
			status: http.StatusBadRequest,
			code:   "invalid_period",
		},
		{
			name:   "insufficient data",
			err:    &aggregatedomain.InsufficientDataError{Days: 2, Minimum: 7},
			status: http.StatusUnprocessableEntity,
			code:   "insufficient_data",
		},
		{
			name:   "rejected model",
			err:    &baselinedomain.LowQualityModelError{RSquared: 0.3, Minimum: 0.5},
			status: http.StatusUnprocessableEntity,
			code:   "low_quality_model",
		},
		{
			name:   "unusable baseline",
			err:    &performancedomain.UnusableBaselineError{Period: "2026-01"},
			status: http.StatusUnprocessableEntity,
			code:   "unusable_baseline",
		},
		{
			name:   "duplicate seu sentinel",
			err:    seudomain.ErrDuplicateSEU,
			status: http.StatusConflict,
			code:   "duplicate_seu",
		},
		{
			name:   "unclassified",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			code:   "internal_error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, payload.ErrorCode)
			assert.False(t, payload.Success)
			assert.NotEmpty(t, payload.Message)
		})
	}
}

func TestMapErrorCarriesSuggestion(t *testing.T) {
	_, payload := mapError(&aggregatedomain.InsufficientDataError{Days: 2, Minimum: 7})
	assert.NotEmpty(t, payload.Suggestion)

	_, payload = mapError(errors.New("boom"))
	assert.NotEmpty(t, payload.Message)
	assert.NotContains(t, payload.Message, "boom", "internal detail stays out of the response")
}

func TestErrorHandlingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/boom", func(c *gin.Context) {
		AbortWithError(c, &baselinedomain.NoActiveModelError{SEU: "Press-9", EnergySource: "electricity"})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error_code":"no_active_model"`)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestClassifyErrorForLog(t *testing.T) {
	family, code := classifyErrorForLog(&seudomain.NotFoundError{Name: "x"})
	assert.Equal(t, "not_found", family)
	assert.Equal(t, "seu_not_found", code)

	family, code = classifyErrorForLog(&baselinedomain.LowQualityModelError{})
	assert.Equal(t, "data_quality", family)
	assert.Equal(t, "low_quality_model", code)

	family, code = classifyErrorForLog(errors.New("boom"))
	assert.Equal(t, "internal", family)
	assert.Equal(t, "internal_error", code)
}
