// Package domain holds data-quality scoring types for aggregate windows.
package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// DataQualityRecord is the persisted audit row of one scoring run.
type DataQualityRecord struct {
	ID                  snowflake.ID `json:"id" gorm:"primaryKey"`
	SEUID               snowflake.ID `json:"seu_id" gorm:"column:seu_id;not null;index"`
	CheckDate           time.Time    `json:"check_date" gorm:"not null"`
	WindowStart         time.Time    `json:"window_start" gorm:"not null"`
	WindowEnd           time.Time    `json:"window_end" gorm:"not null"`
	ExpectedDays        int          `json:"expected_days" gorm:"not null"`
	UsableDays          int          `json:"usable_days" gorm:"not null"`
	CompletenessPercent float64      `json:"completeness_percent" gorm:"not null"`
	OutlierCount        int          `json:"outlier_count" gorm:"not null"`
	CompositeScore      float64      `json:"composite_score" gorm:"not null"`
	CreatedAt           time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (DataQualityRecord) TableName() string { return "data_quality_records" }

// DayScore is the quality verdict for a single aggregate day.
type DayScore struct {
	Date         time.Time
	Completeness float64
	Outlier      bool
	Score        float64
}

// WindowScore summarizes an aggregate window.
type WindowScore struct {
	Days                []DayScore
	CompletenessPercent float64
	OutlierCount        int
	Composite           float64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *DataQualityRecord) error
	ListBySEU(ctx context.Context, db *gorm.DB, seuID snowflake.ID, limit int) ([]DataQualityRecord, error)
}

// InsufficientQualityDataError reports a window whose usable days dropped
// below the minimum after quality filtering.
type InsufficientQualityDataError struct {
	UsableDays   int
	TotalDays    int
	Minimum      int
	QualityFloor float64
}

func (e *InsufficientQualityDataError) Error() string {
	return fmt.Sprintf("only %d of %d days meet the quality floor %.2f, need at least %d",
		e.UsableDays, e.TotalDays, e.QualityFloor, e.Minimum)
}

func (e *InsufficientQualityDataError) ErrorCode() string { return "insufficient_quality_data" }

func (e *InsufficientQualityDataError) Suggestion() string {
	return fmt.Sprintf("pick a window with at least %d days of reliable readings, or investigate sensor gaps first", e.Minimum)
}
