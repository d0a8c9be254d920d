// Package domain defines the boundary to the external time-series
// aggregation service. Everything downstream (quality scoring, training,
// performance evaluation) consumes the exact same daily rows, so coefficient
// scales can never drift between training and evaluation.
package domain

import (
	"context"
	"fmt"
	"time"
)

// Request identifies one aggregate window for one SEU's equipment set.
type Request struct {
	EquipmentIDs []string
	EnergySource string
	Start        time.Time
	End          time.Time
}

// DailyRow is one calendar day of aggregated energy plus driver values.
// Callers needing monthly or quarterly totals sum over daily rows.
type DailyRow struct {
	Date         time.Time          `json:"date"`
	EnergyTotal  float64            `json:"energy_total"`
	Drivers      map[string]float64 `json:"drivers"`
	ReadingCount int                `json:"reading_count"`
}

// DriverInfo describes a driver variable that has non-null data for an
// energy source. The feature catalog is built from these, never hardcoded.
type DriverInfo struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Coverage float64 `json:"coverage"`
}

type Provider interface {
	DailyAggregates(ctx context.Context, req Request) ([]DailyRow, error)
	ListDrivers(ctx context.Context, energySource string) ([]DriverInfo, error)
}

// InsufficientDataError reports a window with fewer qualifying days than the
// engine minimum.
type InsufficientDataError struct {
	Days    int
	Minimum int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("only %d qualifying days in range, need at least %d", e.Days, e.Minimum)
}

func (e *InsufficientDataError) ErrorCode() string { return "insufficient_data" }

func (e *InsufficientDataError) Suggestion() string {
	return fmt.Sprintf("widen the date range until it covers at least %d days with readings", e.Minimum)
}
