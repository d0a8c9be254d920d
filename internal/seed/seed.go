// Package seed bootstraps reference data so a fresh install answers
// questions immediately.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	sourcedomain "github.com/voltgrid/enbase/internal/energysource/domain"
)

// defaultEnergySources covers the carriers most industrial sites meter.
// Electricity and gas respond to weather; steam and compressed air are
// driven by process load.
var defaultEnergySources = []sourcedomain.EnergySource{
	{Code: "electricity", Name: "Electricity", Unit: "kWh", ConversionFactor: 1, TemperatureSensitive: true},
	{Code: "natural_gas", Name: "Natural gas", Unit: "m3", ConversionFactor: 10.55, TemperatureSensitive: true},
	{Code: "steam", Name: "Steam", Unit: "kg", ConversionFactor: 0.75, TemperatureSensitive: false},
	{Code: "compressed_air", Name: "Compressed air", Unit: "m3", ConversionFactor: 0.12, TemperatureSensitive: false},
}

// EnsureDefaultEnergySources inserts the default carriers that are not
// present yet. Existing rows are left untouched.
func EnsureDefaultEnergySources(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, source := range defaultEnergySources {
			var existing sourcedomain.EnergySource
			err := tx.Where("code = ?", source.Code).Limit(1).Find(&existing).Error
			if err != nil {
				return err
			}
			if existing.ID != 0 {
				continue
			}

			source.ID = node.Generate()
			source.CreatedAt = time.Now().UTC()
			if err := tx.Create(&source).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
