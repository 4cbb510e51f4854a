package telemetry

import "time"

// BaseEnergy is the energy level before any modifier applies.
const BaseEnergy = 100.0

// Factors records the inputs that shaped one sample.
type Factors struct {
	Weather          string  `json:"weather,omitempty"`
	WeatherModifier  float64 `json:"weather_modifier"`
	Temperature      float64 `json:"temperature"`
	TempModifier     float64 `json:"temp_modifier"`
	NearRoute        bool    `json:"near_route"`
	LocationModifier float64 `json:"location_modifier"`
}

// Sample is one energy reading pushed over a live channel.
type Sample struct {
	EnergyLevel float64   `json:"energy_level"`
	Timestamp   time.Time `json:"timestamp"`
	Factors     *Factors  `json:"factors,omitempty"`
}

// ClampEnergy bounds a raw energy value to the reportable range.
func ClampEnergy(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
