package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, seu *SEU) error
	Update(ctx context.Context, db *gorm.DB, seu *SEU) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SEU, error)
	// FindByCode resolves an SEU by its code AND energy source. Both keys are
	// mandatory: lookups by code alone would silently share one registry
	// entry across carriers.
	FindByCode(ctx context.Context, db *gorm.DB, code string, energySourceID snowflake.ID) (*SEU, error)
	List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]SEU, error)
}
