// Package domain contains the baseline model records and the prediction
// math shared by training, evaluation and explanation.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Confidence flags assigned by the trainer's acceptance gates.
const (
	ConfidenceStandard = "standard"
	ConfidenceLow      = "low_confidence"
	// ConfidenceOverfit marks suspiciously perfect fits for human review;
	// the model still saves and activates.
	ConfidenceOverfit = "possible_overfit_or_multicollinearity"
)

// Adjustment types recorded when a baseline is (re)trained.
const (
	AdjustmentInitial          = "initial_training"
	AdjustmentScheduledRetrain = "scheduled_retrain"
	AdjustmentEquipmentChange  = "equipment_change"
	AdjustmentProcessChange    = "process_change"
	AdjustmentManual           = "manual"
)

// BaselineModel is one trained regression baseline. Identity is the
// composite (SEU, energy source, version): the energy source id appears in
// every uniqueness constraint and every lookup so one equipment group can
// never share a model across carriers.
type BaselineModel struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	SEUID          snowflake.ID `json:"seu_id" gorm:"column:seu_id;not null;uniqueIndex:ux_baseline_models_version,priority:1"`
	EnergySourceID snowflake.ID `json:"energy_source_id" gorm:"not null;uniqueIndex:ux_baseline_models_version,priority:2"`
	Version        int          `json:"version" gorm:"not null;uniqueIndex:ux_baseline_models_version,priority:3"`

	TrainedAt   time.Time `json:"trained_at" gorm:"not null"`
	WindowStart time.Time `json:"window_start" gorm:"not null"`
	WindowEnd   time.Time `json:"window_end" gorm:"not null"`

	FeatureNames datatypes.JSONSlice[string]             `json:"feature_names" gorm:"not null"`
	Coefficients datatypes.JSONType[map[string]float64] `json:"coefficients" gorm:"not null"`
	Intercept    float64                                 `json:"intercept" gorm:"not null"`

	RSquared           float64 `json:"r_squared" gorm:"not null"`
	RMSE               float64 `json:"rmse" gorm:"not null"`
	PredictionInterval float64 `json:"prediction_interval" gorm:"not null"`
	SampleCount        int     `json:"sample_count" gorm:"not null"`
	Confidence         string  `json:"confidence" gorm:"type:text;not null"`

	IsActive  bool      `json:"is_active" gorm:"not null;default:false;index:ix_baseline_models_active"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (BaselineModel) TableName() string { return "baseline_models" }

// BaselineAdjustment is the append-only audit trail of baseline changes.
type BaselineAdjustment struct {
	ID               snowflake.ID  `json:"id" gorm:"primaryKey"`
	SEUID            snowflake.ID  `json:"seu_id" gorm:"column:seu_id;not null;index"`
	AdjustedAt       time.Time     `json:"adjusted_at" gorm:"not null"`
	AdjustmentType   string        `json:"adjustment_type" gorm:"type:text;not null"`
	Reason           string        `json:"reason" gorm:"type:text;not null"`
	OldModelID       *snowflake.ID `json:"old_model_id"`
	NewModelID       snowflake.ID  `json:"new_model_id" gorm:"not null"`
	AdjustmentFactor float64       `json:"adjustment_factor" gorm:"not null;default:1"`
	CreatedAt        time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (BaselineAdjustment) TableName() string { return "baseline_adjustments" }
