package domain

import "strings"

// phraseEntry maps a raw driver identifier to speakable text. Unmapped names
// fall back to a title-cased form of the identifier, so new drivers get a
// reasonable description without code changes.
type phraseEntry struct {
	Display string
	Unit    string
}

var phraseTable = map[string]phraseEntry{
	"production_count":    {Display: "production volume", Unit: "units"},
	"operating_hours":     {Display: "operating hours", Unit: "hours"},
	"outdoor_temp":        {Display: "outdoor temperature", Unit: "degrees Celsius"},
	"heating_degree_days": {Display: "heating degree days", Unit: "degree days"},
	"cooling_degree_days": {Display: "cooling degree days", Unit: "degree days"},
	"occupancy":           {Display: "building occupancy", Unit: "people"},
	"humidity":            {Display: "relative humidity", Unit: "percent"},
	"line_speed":          {Display: "line speed", Unit: "units per hour"},
	"shift_count":         {Display: "number of shifts", Unit: "shifts"},
	"compressed_air_flow": {Display: "compressed air flow", Unit: "cubic meters"},
	"steam_pressure":      {Display: "steam pressure", Unit: "bar"},
}

// DisplayName returns the human phrase for a driver identifier.
func DisplayName(feature string) string {
	if entry, ok := phraseTable[feature]; ok {
		return entry.Display
	}
	return titleCase(feature)
}

// UnitFor returns the spoken unit for a driver identifier, empty if unknown.
func UnitFor(feature string) string {
	if entry, ok := phraseTable[feature]; ok {
		return entry.Unit
	}
	return ""
}

func titleCase(feature string) string {
	words := strings.FieldsFunc(feature, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
