// Package domain defines the feature catalog surface: which driver
// variables exist for an energy source, described for humans.
package domain

import (
	"context"
	"fmt"
	"strings"
)

// FeatureDescriptor describes one candidate driver variable. Descriptors are
// derived from driver data present in the aggregation service, so new
// sensors become usable without code changes.
type FeatureDescriptor struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Unit        string  `json:"unit"`
	Coverage    float64 `json:"coverage"`
}

type Service interface {
	FeaturesFor(ctx context.Context, energySource string) ([]FeatureDescriptor, error)
	// Validate checks every requested feature against the catalog; unknown
	// names fail with *UnknownFeatureError carrying suggestions.
	Validate(ctx context.Context, energySource string, requested []string) error
}

// UnknownFeatureError reports requested features absent from the catalog.
type UnknownFeatureError struct {
	EnergySource string
	Invalid      []string
	Available    []string
	Suggestions  []string
}

func (e *UnknownFeatureError) Error() string {
	return fmt.Sprintf("unknown features %s for energy source %q",
		strings.Join(e.Invalid, ", "), e.EnergySource)
}

func (e *UnknownFeatureError) ErrorCode() string { return "unknown_feature" }

func (e *UnknownFeatureError) Suggestion() string {
	if len(e.Suggestions) > 0 {
		return "did you mean: " + strings.Join(e.Suggestions, ", ")
	}
	if len(e.Available) == 0 {
		return fmt.Sprintf("no driver data exists yet for %s", e.EnergySource)
	}
	return "available features: " + strings.Join(e.Available, ", ")
}
