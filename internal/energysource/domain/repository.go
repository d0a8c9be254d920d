package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, source *EnergySource) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*EnergySource, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*EnergySource, error)
	List(ctx context.Context, db *gorm.DB) ([]EnergySource, error)
}
