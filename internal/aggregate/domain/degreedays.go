package domain

import "math"

// Driver names with engine-level meaning. OutdoorTemp rows are rewritten to
// degree-day features for temperature-sensitive energy sources; raw
// temperature systematically underperforms degree-days for HVAC-type loads.
const (
	DriverOutdoorTemp       = "outdoor_temp"
	DriverHeatingDegreeDays = "heating_degree_days"
	DriverCoolingDegreeDays = "cooling_degree_days"
)

// HeatingDegreeDays sums max(0, base-t) over daily mean temperatures.
func HeatingDegreeDays(dailyTemps []float64, baseTemp float64) float64 {
	total := 0.0
	for _, t := range dailyTemps {
		total += math.Max(0, baseTemp-t)
	}
	return total
}

// CoolingDegreeDays sums max(0, t-base) over daily mean temperatures.
func CoolingDegreeDays(dailyTemps []float64, baseTemp float64) float64 {
	total := 0.0
	for _, t := range dailyTemps {
		total += math.Max(0, t-baseTemp)
	}
	return total
}

// NormalizeTemperature replaces the raw outdoor temperature driver with
// per-day heating and cooling degree-day drivers. Rows without an
// outdoor_temp driver pass through untouched.
func NormalizeTemperature(rows []DailyRow, baseTemp float64) []DailyRow {
	out := make([]DailyRow, len(rows))
	for i, row := range rows {
		drivers := make(map[string]float64, len(row.Drivers)+1)
		for name, value := range row.Drivers {
			if name == DriverOutdoorTemp {
				drivers[DriverHeatingDegreeDays] = math.Max(0, baseTemp-value)
				drivers[DriverCoolingDegreeDays] = math.Max(0, value-baseTemp)
				continue
			}
			drivers[name] = value
		}
		out[i] = DailyRow{
			Date:         row.Date,
			EnergyTotal:  row.EnergyTotal,
			Drivers:      drivers,
			ReadingCount: row.ReadingCount,
		}
	}
	return out
}
