package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository stores baseline models and their adjustment trail. Every model
// lookup is keyed by both the SEU and the energy source; there is
// deliberately no way to fetch a model by SEU alone.
type Repository interface {
	// FindActive returns the active model for the pair, or nil when none.
	FindActive(ctx context.Context, db *gorm.DB, seuID, energySourceID snowflake.ID) (*BaselineModel, error)

	// FindByID returns a model by primary key, or nil when absent.
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*BaselineModel, error)

	// ListVersions returns all versions for the pair, newest first.
	ListVersions(ctx context.Context, db *gorm.DB, seuID, energySourceID snowflake.ID) ([]BaselineModel, error)

	// Activate atomically deactivates the current active model for the pair
	// (if any), inserts the new model with the next version number as active,
	// and appends the adjustment record. Readers never observe a state with
	// zero or two active models.
	Activate(ctx context.Context, db *gorm.DB, model *BaselineModel, adjustment *BaselineAdjustment) error

	// ListAdjustments returns the adjustment trail for an SEU, newest first.
	ListAdjustments(ctx context.Context, db *gorm.DB, seuID snowflake.ID) ([]BaselineAdjustment, error)
}
