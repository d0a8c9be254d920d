package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository stores performance reports. Lookups are always keyed by both
// SEU and energy source, matching the baseline store.
type Repository interface {
	// FindCurrent returns the non-superseded report for the pair and period,
	// or nil when none exists.
	FindCurrent(ctx context.Context, db *gorm.DB, seuID, energySourceID snowflake.ID, period string) (*PerformanceReport, error)

	// InsertSuperseding inserts the report, stamping SupersededAt on any
	// current report for the same pair and period in the same transaction.
	InsertSuperseding(ctx context.Context, db *gorm.DB, report *PerformanceReport) error

	// List returns reports for the pair, newest period first, current
	// versions only.
	List(ctx context.Context, db *gorm.DB, seuID, energySourceID snowflake.ID, limit int) ([]PerformanceReport, error)
}
