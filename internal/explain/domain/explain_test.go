package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccuracyDescriptionLadder(t *testing.T) {
	cases := []struct {
		rSquared float64
		want     string
	}{
		{0.99, "highly accurate"},
		{0.95, "highly accurate"},
		{0.94, "very accurate"},
		{0.85, "very accurate"},
		{0.84, "moderately accurate"},
		{0.70, "moderately accurate"},
		{0.69, "of limited accuracy, consider retraining"},
		{0, "of limited accuracy, consider retraining"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AccuracyDescription(tc.rSquared), "r_squared %.2f", tc.rSquared)
	}
}

func TestRankDriversOrderAndCap(t *testing.T) {
	features := []string{"production_count", "operating_hours", "occupancy", "shift_count"}
	coefficients := map[string]float64{
		"production_count": 0.006,
		"operating_hours":  12.5,
		"occupancy":        -3.2,
		"shift_count":      0.4,
	}

	drivers := RankDrivers(features, coefficients)

	assert.Len(t, drivers, 3)
	assert.Equal(t, "operating_hours", drivers[0].Feature)
	assert.Equal(t, "occupancy", drivers[1].Feature)
	assert.Equal(t, "shift_count", drivers[2].Feature)

	assert.Equal(t, "increases", drivers[0].Direction)
	assert.Equal(t, "reduces", drivers[1].Direction)
	assert.Equal(t, "operating hours", drivers[0].DisplayName)
	assert.Equal(t, "building occupancy", drivers[1].DisplayName)
}

func TestRankDriversEmpty(t *testing.T) {
	assert.Empty(t, RankDrivers(nil, nil))
}

func TestSimplifiedFormula(t *testing.T) {
	formula := SimplifiedFormula("kWh", 1200,
		[]string{"production_count", "cooling_degree_days"},
		map[string]float64{
			"production_count":    0.006,
			"cooling_degree_days": -15,
		})

	assert.Equal(t,
		"expected kWh = 1200 + 0.006 x production volume - 15 x cooling degree days",
		formula)
}

func TestSummarizeNamesDrivers(t *testing.T) {
	drivers := []Driver{
		{DisplayName: "production volume", Direction: "increases"},
		{DisplayName: "outdoor temperature", Direction: "reduces"},
	}

	summary := Summarize("Compressor-1", "electricity", 0.87, drivers)

	assert.Contains(t, summary, "The electricity baseline for Compressor-1 is very accurate")
	assert.Contains(t, summary, "explaining 87% of energy variation")
	assert.Contains(t, summary, "production volume, which increases consumption")
	assert.Contains(t, summary, "outdoor temperature, which reduces consumption")
}

func TestSummarizeNoDrivers(t *testing.T) {
	summary := Summarize("Boiler-2", "natural_gas", 0.72, nil)

	assert.Contains(t, summary, "moderately accurate")
	assert.NotContains(t, summary, "driver")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0.006", formatNumber(0.006))
	assert.Equal(t, "12.5", formatNumber(12.5))
	assert.Equal(t, "1200", formatNumber(1200))
	assert.Equal(t, "0", formatNumber(0))
}
