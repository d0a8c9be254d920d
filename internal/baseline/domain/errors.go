package domain

import (
	"fmt"
	"sort"
	"strings"
)

// NoActiveModelError is returned from prediction and reporting paths when
// the (SEU, energy source) pair has no active baseline.
type NoActiveModelError struct {
	SEU          string
	EnergySource string
}

func (e *NoActiveModelError) Error() string {
	return fmt.Sprintf("no active baseline model for %q on energy source %q", e.SEU, e.EnergySource)
}

// ErrorCode implements the API error contract.
func (e *NoActiveModelError) ErrorCode() string { return "no_active_model" }

// Suggestion returns a ready-to-speak next step.
func (e *NoActiveModelError) Suggestion() string {
	return fmt.Sprintf("Train a baseline for %s on %s first, then try again.", e.SEU, e.EnergySource)
}

// LowQualityModelError is returned when a fit falls below the minimum
// R-squared gate. Nothing is saved in that case.
type LowQualityModelError struct {
	SEU          string
	EnergySource string
	RSquared     float64
	Minimum      float64
	Features     []string
}

func (e *LowQualityModelError) Error() string {
	return fmt.Sprintf("baseline for %q on %q rejected: r_squared %.3f below minimum %.2f",
		e.SEU, e.EnergySource, e.RSquared, e.Minimum)
}

// ErrorCode implements the API error contract.
func (e *LowQualityModelError) ErrorCode() string { return "low_quality_model" }

// Suggestion returns a ready-to-speak next step.
func (e *LowQualityModelError) Suggestion() string {
	return fmt.Sprintf("The model using %s explained only %.0f%% of energy variation. "+
		"Try different relevant variables, a longer training window, or automatic feature selection.",
		strings.Join(e.Features, ", "), e.RSquared*100)
}

// MissingFeatureError is returned when a prediction request omits features
// the model was trained on. Missing values are never defaulted to zero.
type MissingFeatureError struct {
	Missing  []string
	Required []string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing required features: %s", strings.Join(e.Missing, ", "))
}

// ErrorCode implements the API error contract.
func (e *MissingFeatureError) ErrorCode() string { return "missing_feature" }

// Suggestion returns a ready-to-speak next step.
func (e *MissingFeatureError) Suggestion() string {
	return fmt.Sprintf("This baseline needs values for all of: %s. Provide the missing ones and retry.",
		strings.Join(e.Required, ", "))
}

// NewMissingFeatureError builds the error with deterministic ordering so
// repeated calls produce identical messages.
func NewMissingFeatureError(missing, required []string) *MissingFeatureError {
	m := append([]string(nil), missing...)
	r := append([]string(nil), required...)
	sort.Strings(m)
	sort.Strings(r)
	return &MissingFeatureError{Missing: m, Required: r}
}
