package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHeatingDegreeDays(t *testing.T) {
	// Warm days contribute nothing.
	assert.Equal(t, 11.0, HeatingDegreeDays([]float64{10, 15, 21, 25}, 18))
	assert.Equal(t, 0.0, HeatingDegreeDays(nil, 18))
}

func TestCoolingDegreeDays(t *testing.T) {
	assert.Equal(t, 10.0, CoolingDegreeDays([]float64{10, 15, 21, 25}, 18))
	assert.Equal(t, 0.0, CoolingDegreeDays([]float64{5, 12}, 18))
}

func TestNormalizeTemperatureSplitsDriver(t *testing.T) {
	rows := []DailyRow{
		{
			Date:        time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			EnergyTotal: 2400,
			Drivers: map[string]float64{
				DriverOutdoorTemp:  5,
				"production_count": 900,
			},
			ReadingCount: 24,
		},
		{
			Date:        time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
			EnergyTotal: 1800,
			Drivers: map[string]float64{
				DriverOutdoorTemp: 28,
			},
			ReadingCount: 24,
		},
	}

	out := NormalizeTemperature(rows, 18)

	winter := out[0].Drivers
	assert.NotContains(t, winter, DriverOutdoorTemp)
	assert.Equal(t, 13.0, winter[DriverHeatingDegreeDays])
	assert.Equal(t, 0.0, winter[DriverCoolingDegreeDays])
	assert.Equal(t, 900.0, winter["production_count"], "other drivers pass through")

	summer := out[1].Drivers
	assert.Equal(t, 0.0, summer[DriverHeatingDegreeDays])
	assert.Equal(t, 10.0, summer[DriverCoolingDegreeDays])
}

func TestNormalizeTemperatureWithoutDriver(t *testing.T) {
	rows := []DailyRow{{
		Date:         time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		EnergyTotal:  500,
		Drivers:      map[string]float64{"operating_hours": 16},
		ReadingCount: 24,
	}}

	out := NormalizeTemperature(rows, 18)

	assert.Equal(t, rows[0].Drivers, out[0].Drivers)
	assert.Equal(t, rows[0].EnergyTotal, out[0].EnergyTotal)
}

func TestNormalizeTemperatureDoesNotMutateInput(t *testing.T) {
	rows := []DailyRow{{
		Date:         time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		Drivers:      map[string]float64{DriverOutdoorTemp: 5},
		ReadingCount: 24,
	}}

	_ = NormalizeTemperature(rows, 18)

	assert.Contains(t, rows[0].Drivers, DriverOutdoorTemp)
}
