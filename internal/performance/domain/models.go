// Package domain holds performance report records: how actual consumption
// compares to the active baseline over a reporting period.
package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Compliance statuses derived from the percent deviation bands.
const (
	StatusCompliant = "compliant"
	StatusWarning   = "warning"
	StatusCritical  = "critical"
)

// PerformanceReport is one evaluated period for an (SEU, energy source)
// pair. Reports are never edited in place: a regenerated period inserts a
// new row and stamps SupersededAt on the old one, keeping the audit trail.
type PerformanceReport struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	SEUID          snowflake.ID `json:"seu_id" gorm:"column:seu_id;not null;index:ix_performance_reports_pair,priority:1"`
	EnergySourceID snowflake.ID `json:"energy_source_id" gorm:"not null;index:ix_performance_reports_pair,priority:2"`
	ModelID        snowflake.ID `json:"model_id" gorm:"not null"`

	Period      string    `json:"period" gorm:"type:text;not null;index:ix_performance_reports_pair,priority:3"`
	PeriodStart time.Time `json:"period_start" gorm:"not null"`
	PeriodEnd   time.Time `json:"period_end" gorm:"not null"`

	ActualConsumption   float64 `json:"actual_consumption" gorm:"not null"`
	ExpectedConsumption float64 `json:"expected_consumption" gorm:"not null"`
	DeviationAbsolute   float64 `json:"deviation_absolute" gorm:"not null"`
	DeviationPercent    float64 `json:"deviation_percent" gorm:"not null"`

	ComplianceStatus string  `json:"compliance_status" gorm:"type:text;not null"`
	CusumValue       float64 `json:"cusum_value" gorm:"not null"`
	DriftDetected    bool    `json:"drift_detected" gorm:"not null"`

	// DataQualityScore is the composite quality of the period's aggregate
	// window; low scores downgrade how much to trust the deviation.
	DataQualityScore float64 `json:"data_quality_score" gorm:"not null;default:0"`

	// Degree-day totals are set for temperature-sensitive energy sources.
	HeatingDegreeDays *float64 `json:"heating_degree_days,omitempty"`
	CoolingDegreeDays *float64 `json:"cooling_degree_days,omitempty"`

	DaysEvaluated int        `json:"days_evaluated" gorm:"not null"`
	SupersededAt  *time.Time `json:"superseded_at"`
	CreatedAt     time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PerformanceReport) TableName() string { return "performance_reports" }

// Superseded reports whether a newer report replaced this one.
func (r *PerformanceReport) Superseded() bool { return r.SupersededAt != nil }

// ReportRequest asks for one period's report.
type ReportRequest struct {
	SEU          string `json:"seu" binding:"required"`
	EnergySource string `json:"energy_source" binding:"required"`
	Period       string `json:"period" binding:"required"`
}

// ReportResult wraps the stored report with speakable output.
type ReportResult struct {
	Report  *PerformanceReport `json:"report"`
	Unit    string             `json:"unit"`
	Message string             `json:"message"`
}

// BatchRequest evaluates one period across SEUs. EnergySource empty means
// all sources.
type BatchRequest struct {
	Period       string `json:"period" binding:"required"`
	EnergySource string `json:"energy_source"`
}

// BatchFailure records one SEU the batch could not report on.
type BatchFailure struct {
	SEU          string `json:"seu"`
	EnergySource string `json:"energy_source"`
	ErrorCode    string `json:"error_code"`
	Message      string `json:"message"`
}

// BatchResult aggregates a batch run. A pair failing never aborts the rest
// of the batch; only context cancellation does.
type BatchResult struct {
	Period   string         `json:"period"`
	Reports  []ReportResult `json:"reports"`
	Failures []BatchFailure `json:"failures"`
}

// UnusableBaselineError reports a period whose expected consumption came
// out non-positive, so deviation percentages would be meaningless.
type UnusableBaselineError struct {
	Period string
}

func (e *UnusableBaselineError) Error() string {
	return fmt.Sprintf("expected consumption for %s is not positive, baseline unusable for this period", e.Period)
}

func (e *UnusableBaselineError) ErrorCode() string { return "unusable_baseline" }

func (e *UnusableBaselineError) Suggestion() string {
	return "check the period's driver data, or retrain the baseline over a window that matches current operations"
}

// Service evaluates periods against active baselines.
type Service interface {
	GenerateReport(ctx context.Context, req ReportRequest) (*ReportResult, error)
	GenerateBatch(ctx context.Context, req BatchRequest) (*BatchResult, error)
	ListReports(ctx context.Context, seuName, energySource string, limit int) ([]PerformanceReport, error)
}
