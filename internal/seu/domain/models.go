// Package domain contains the Significant Energy User registry models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SEU is one equipment group paired with exactly one energy carrier, the
// atomic unit of baseline modeling. Equipment consuming two carriers is two
// SEUs; one SEU never mixes units.
type SEU struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	Code           string       `json:"code" gorm:"type:text;not null;uniqueIndex:ux_seus_code_source,priority:1"`
	Name           string       `json:"name" gorm:"type:text;not null"`
	EnergySourceID snowflake.ID `json:"energy_source_id" gorm:"not null;uniqueIndex:ux_seus_code_source,priority:2"`
	// EquipmentIDs is the ordered, non-empty list of equipment identifiers
	// this SEU aggregates over. All members report the same energy source.
	EquipmentIDs datatypes.JSONSlice[string] `json:"equipment_ids" gorm:"not null"`
	Active       bool                        `json:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time                   `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time                   `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SEU) TableName() string { return "seus" }
