package explorer

import (
	"fmt"
	"time"
)

// TelemetryView renders the most recent sample for the inspected entity.
// It keeps no history: each pushed sample fully replaces the previous one,
// and a stalled channel keeps showing the last sample with its timestamp.
type TelemetryView struct {
	sample *Sample
}

// Apply replaces the displayed reading with the given sample.
func (v *TelemetryView) Apply(sample Sample) {
	v.sample = &sample
}

// Reset clears the view, as when the inspected entity changes.
func (v *TelemetryView) Reset() {
	v.sample = nil
}

// Current returns the displayed sample, or nil before the first push.
func (v *TelemetryView) Current() *Sample {
	return v.sample
}

// Render formats the displayed reading for a terminal surface.
func (v *TelemetryView) Render() string {
	if v.sample == nil {
		return "waiting for telemetry..."
	}
	line := fmt.Sprintf("energy %.1f%% at %s",
		v.sample.EnergyLevel,
		v.sample.Timestamp.Local().Format(time.Kitchen))
	if f := v.sample.Factors; f != nil {
		line += fmt.Sprintf(" (weather %s x%.2f, temp %.1fC x%.2f",
			f.Weather, f.WeatherModifier, f.Temperature, f.TempModifier)
		if f.NearRoute {
			line += fmt.Sprintf(", near route x%.2f", f.LocationModifier)
		}
		line += ")"
	}
	return line
}
