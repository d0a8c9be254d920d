package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func testModel() *BaselineModel {
	return &BaselineModel{
		FeatureNames: datatypes.NewJSONSlice([]string{"production_count", "operating_hours"}),
		Coefficients: datatypes.NewJSONType(map[string]float64{
			"production_count": 0.006,
			"operating_hours":  12.5,
		}),
		Intercept:          1200,
		PredictionInterval: 45,
	}
}

func TestPredictPointAndBounds(t *testing.T) {
	m := testModel()

	p, err := m.Predict(map[string]float64{
		"production_count": 10000,
		"operating_hours":  16,
	})
	assert.NoError(t, err)

	expected := 1200 + 0.006*10000 + 12.5*16
	assert.Equal(t, expected, p.PointEstimate)
	assert.Equal(t, expected-45, p.LowerBound)
	assert.Equal(t, expected+45, p.UpperBound)
}

func TestPredictRepeatable(t *testing.T) {
	m := testModel()
	features := map[string]float64{
		"production_count": 8421.37,
		"operating_hours":  19.25,
	}

	first, err := m.Predict(features)
	assert.NoError(t, err)
	second, err := m.Predict(features)
	assert.NoError(t, err)

	// Bit-identical on repeat evaluation, not merely close.
	assert.Equal(t, first.PointEstimate, second.PointEstimate)
	assert.Equal(t, first.LowerBound, second.LowerBound)
	assert.Equal(t, first.UpperBound, second.UpperBound)
}

func TestPredictMissingFeatures(t *testing.T) {
	m := testModel()

	_, err := m.Predict(map[string]float64{"operating_hours": 16})

	var missing *MissingFeatureError
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"production_count"}, missing.Missing)
	assert.Equal(t, []string{"operating_hours", "production_count"}, missing.Required)
	assert.Equal(t, "missing_feature", missing.ErrorCode())
	assert.NotEmpty(t, missing.Suggestion())
}

func TestPredictZeroValueIsNotMissing(t *testing.T) {
	m := testModel()

	p, err := m.Predict(map[string]float64{
		"production_count": 0,
		"operating_hours":  0,
	})
	assert.NoError(t, err)
	assert.Equal(t, 1200.0, p.PointEstimate)
}
