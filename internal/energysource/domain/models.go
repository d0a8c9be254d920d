// Package domain contains reference data for energy carriers.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// EnergySource describes one energy carrier. Reference data: created at
// system setup, never mutated afterwards.
type EnergySource struct {
	ID snowflake.ID `json:"id" gorm:"primaryKey"`
	// Code is the unique lookup key, e.g. "electricity" or "natural_gas".
	Code             string    `json:"code" gorm:"type:text;not null;uniqueIndex:ux_energy_sources_code"`
	Name             string    `json:"name" gorm:"type:text;not null"`
	Unit             string    `json:"unit" gorm:"type:text;not null"`
	ConversionFactor float64   `json:"conversion_factor" gorm:"not null;default:1"`
	// TemperatureSensitive marks carriers whose consumption tracks outdoor
	// temperature; their models use degree-days instead of raw temperature.
	TemperatureSensitive bool      `json:"temperature_sensitive" gorm:"not null;default:false"`
	CreatedAt            time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (EnergySource) TableName() string { return "energy_sources" }
