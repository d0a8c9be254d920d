package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// FeatureAuto asks the trainer to pick regressors by forward stepwise
// selection instead of taking a caller-supplied list.
const FeatureAuto = "auto"

// TrainRequest describes one training run.
type TrainRequest struct {
	SEU          string    `json:"seu" binding:"required"`
	EnergySource string    `json:"energy_source" binding:"required"`
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`

	// Features is an explicit regressor list, or empty / ["auto"] for
	// automatic selection.
	Features []string `json:"features"`

	// AdjustmentType defaults to initial_training for version 1 and
	// scheduled_retrain afterwards when left empty.
	AdjustmentType string `json:"adjustment_type"`
	Reason         string `json:"reason"`
}

// AutoSelect reports whether the request asks for stepwise selection.
func (r TrainRequest) AutoSelect() bool {
	return len(r.Features) == 0 || (len(r.Features) == 1 && r.Features[0] == FeatureAuto)
}

// TrainResult is the outcome of a successful training run.
type TrainResult struct {
	Model       *BaselineModel `json:"model"`
	Unit        string         `json:"unit"`
	UsableDays  int            `json:"usable_days"`
	DroppedDays int            `json:"dropped_days"`
	// FormulaReadable phrases the fitted relationship for a conversational
	// caller, e.g. "Energy consumption increases with production volume".
	FormulaReadable string `json:"formula_readable"`
	Message         string `json:"message"`
}

// PredictRequest evaluates the active baseline for a pair against caller
// supplied driver values.
type PredictRequest struct {
	SEU          string             `json:"seu" binding:"required"`
	EnergySource string             `json:"energy_source" binding:"required"`
	Features     map[string]float64 `json:"features" binding:"required"`
}

// PredictResult carries the prediction plus the model it came from.
type PredictResult struct {
	Prediction   *Prediction  `json:"prediction"`
	ModelID      snowflake.ID `json:"model_id"`
	ModelVersion int          `json:"model_version"`
	Confidence   string       `json:"confidence"`
	Message      string       `json:"message"`
}

// Service trains baselines and evaluates predictions.
type Service interface {
	Train(ctx context.Context, req TrainRequest) (*TrainResult, error)
	Predict(ctx context.Context, req PredictRequest) (*PredictResult, error)

	// ActiveModel resolves the SEU and source by name and returns the
	// active baseline, or NoActiveModelError.
	ActiveModel(ctx context.Context, seuName, energySource string) (*BaselineModel, error)
}
