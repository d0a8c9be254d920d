// Package domain turns trained baseline models into plain language. All
// functions here are pure; persistence and lookups live in the service.
package domain

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	catalogdomain "github.com/voltgrid/enbase/internal/catalog/domain"
)

// maxDrivers caps how many drivers the summary names. Three covers what a
// person retains from a spoken answer.
const maxDrivers = 3

// Driver is one model coefficient described for humans, ranked by absolute
// contribution.
type Driver struct {
	Feature     string  `json:"feature"`
	DisplayName string  `json:"display_name"`
	Coefficient float64 `json:"coefficient"`
	// Direction is "increases" or "reduces".
	Direction string `json:"direction"`
}

// Explanation is the speakable description of one active baseline.
type Explanation struct {
	SEU          string   `json:"seu"`
	EnergySource string   `json:"energy_source"`
	ModelVersion int      `json:"model_version"`
	RSquared     float64  `json:"r_squared"`
	Accuracy     string   `json:"accuracy"`
	Drivers      []Driver `json:"drivers"`
	Formula      string   `json:"formula"`
	Scenario     string   `json:"scenario,omitempty"`
	Summary      string   `json:"summary"`
}

// Service produces explanations for active baselines.
type Service interface {
	Explain(ctx context.Context, seuName, energySource string) (*Explanation, error)
	// ExplainAll explains every active baseline, skipping SEUs without one.
	ExplainAll(ctx context.Context) ([]Explanation, error)
}

// AccuracyDescription maps R-squared onto the spoken accuracy ladder.
func AccuracyDescription(rSquared float64) string {
	switch {
	case rSquared >= 0.95:
		return "highly accurate"
	case rSquared >= 0.85:
		return "very accurate"
	case rSquared >= 0.70:
		return "moderately accurate"
	default:
		return "of limited accuracy, consider retraining"
	}
}

// RankDrivers orders model features by absolute coefficient, largest first,
// keeping at most maxDrivers entries.
func RankDrivers(features []string, coefficients map[string]float64) []Driver {
	drivers := make([]Driver, 0, len(features))
	for _, feature := range features {
		coefficient := coefficients[feature]
		direction := "increases"
		if coefficient < 0 {
			direction = "reduces"
		}
		drivers = append(drivers, Driver{
			Feature:     feature,
			DisplayName: catalogdomain.DisplayName(feature),
			Coefficient: coefficient,
			Direction:   direction,
		})
	}
	sort.SliceStable(drivers, func(i, j int) bool {
		return math.Abs(drivers[i].Coefficient) > math.Abs(drivers[j].Coefficient)
	})
	if len(drivers) > maxDrivers {
		drivers = drivers[:maxDrivers]
	}
	return drivers
}

// SimplifiedFormula renders the regression as speakable arithmetic, e.g.
// "expected kWh = 1200 + 0.006 x production volume - 15 x cooling degree days".
func SimplifiedFormula(unit string, intercept float64, features []string, coefficients map[string]float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "expected %s = %s", unit, formatNumber(intercept))
	for _, feature := range features {
		coefficient := coefficients[feature]
		op := "+"
		if coefficient < 0 {
			op = "-"
		}
		fmt.Fprintf(&b, " %s %s x %s", op, formatNumber(math.Abs(coefficient)), catalogdomain.DisplayName(feature))
	}
	return b.String()
}

// Summarize builds the one-breath spoken summary from the parts.
func Summarize(seuName, energySource string, rSquared float64, drivers []Driver) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The %s baseline for %s is %s, explaining %.0f%% of energy variation.",
		energySource, seuName, AccuracyDescription(rSquared), rSquared*100)
	if len(drivers) == 0 {
		return b.String()
	}

	parts := make([]string, 0, len(drivers))
	for _, d := range drivers {
		parts = append(parts, fmt.Sprintf("%s, which %s consumption", d.DisplayName, d.Direction))
	}
	switch len(parts) {
	case 1:
		fmt.Fprintf(&b, " The main driver is %s.", parts[0])
	default:
		fmt.Fprintf(&b, " The main drivers are %s; and %s.",
			strings.Join(parts[:len(parts)-1], "; "), parts[len(parts)-1])
	}
	return b.String()
}

// formatNumber keeps small coefficients readable without scientific
// notation and drops trailing zeros from large ones.
func formatNumber(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs != 0 && abs < 0.01:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", v), "0"), ".")
	case abs < 100:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
	default:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
	}
}
