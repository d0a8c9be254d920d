package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	aggregatedomain "github.com/voltgrid/enbase/internal/aggregate/domain"
	baselinedomain "github.com/voltgrid/enbase/internal/baseline/domain"
	catalogdomain "github.com/voltgrid/enbase/internal/catalog/domain"
	sourcedomain "github.com/voltgrid/enbase/internal/energysource/domain"
	performancedomain "github.com/voltgrid/enbase/internal/performance/domain"
	qualitydomain "github.com/voltgrid/enbase/internal/quality/domain"
	seudomain "github.com/voltgrid/enbase/internal/seu/domain"
)

// errorResponse is the envelope for every failed request. Message and
// suggestion are written to be readable aloud by a conversational client.
type errorResponse struct {
	Success    bool   `json:"success"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// codedError is satisfied by every typed engine error.
type codedError interface {
	error
	ErrorCode() string
}

// suggester adds the optional next-step text.
type suggester interface {
	Suggestion() string
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
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorResponse) {
	var coded codedError
	if !errors.As(err, &coded) {
		return genericError(err)
	}

	payload := errorResponse{
		ErrorCode: coded.ErrorCode(),
		Message:   coded.Error(),
	}
	var s suggester
	if errors.As(err, &s) {
		payload.Suggestion = s.Suggestion()
	}
	return statusFor(err, coded.ErrorCode()), payload
}

func statusFor(err error, code string) int {
	switch code {
	case "seu_not_found", "energy_source_not_found", "no_active_model":
		return http.StatusNotFound
	case "unknown_feature", "missing_feature", "invalid_period":
		return http.StatusBadRequest
	case "insufficient_data", "insufficient_quality_data", "low_quality_model", "unusable_baseline":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func genericError(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, seudomain.ErrInvalidName):
		return http.StatusBadRequest, errorResponse{
			ErrorCode: "invalid_name",
			Message:   "the SEU name is empty or not usable",
		}
	case errors.Is(err, seudomain.ErrEmptyEquipment):
		return http.StatusBadRequest, errorResponse{
			ErrorCode:  "empty_equipment_list",
			Message:    "an SEU needs at least one equipment id",
			Suggestion: "list the meters or machines this SEU covers",
		}
	case errors.Is(err, seudomain.ErrDuplicateSEU):
		return http.StatusConflict, errorResponse{
			ErrorCode:  "duplicate_seu",
			Message:    "an SEU with this name already exists for that energy source",
			Suggestion: "pick a different name or use the existing SEU",
		}
	case errors.Is(err, seudomain.ErrInvalidEquipment):
		return http.StatusBadRequest, errorResponse{
			ErrorCode: "invalid_equipment_id",
			Message:   "one or more equipment ids are empty",
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorResponse{
			ErrorCode: "not_found",
			Message:   "the requested record does not exist",
		}
	default:
		return http.StatusInternalServerError, errorResponse{
			ErrorCode: "internal_error",
			Message:   "something went wrong on our side, try again shortly",
		}
	}
}

// classifyErrorForLog feeds the request logger an error family and code
// without leaking messages into metrics labels.
func classifyErrorForLog(err error) (string, string) {
	var (
		seuNotFound    *seudomain.NotFoundError
		sourceNotFound *sourcedomain.NotFoundError
		unknownFeature *catalogdomain.UnknownFeatureError
		insufficient   *aggregatedomain.InsufficientDataError
		lowQuality     *qualitydomain.InsufficientQualityDataError
		rejected       *baselinedomain.LowQualityModelError
		missing        *baselinedomain.MissingFeatureError
		noModel        *baselinedomain.NoActiveModelError
		badPeriod      *performancedomain.InvalidPeriodError
		unusable       *performancedomain.UnusableBaselineError
	)
	switch {
	case errors.As(err, &seuNotFound), errors.As(err, &sourceNotFound), errors.As(err, &noModel):
		return "not_found", errCode(err)
	case errors.As(err, &unknownFeature), errors.As(err, &missing), errors.As(err, &badPeriod):
		return "validation", errCode(err)
	case errors.As(err, &insufficient), errors.As(err, &lowQuality), errors.As(err, &rejected), errors.As(err, &unusable):
		return "data_quality", errCode(err)
	default:
		return "internal", "internal_error"
	}
}

func errCode(err error) string {
	var coded codedError
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return "internal_error"
}
