package application

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	catalog "pokefinder-cloud/internal/catalog/domain"
	telemetry "pokefinder-cloud/internal/telemetry/domain"
)

type fixedWeather struct {
	weather Weather
	err     error
}

func (f fixedWeather) Current(context.Context, float64, float64) (Weather, error) {
	return f.weather, f.err
}

func testConfig() Config {
	return Config{SampleInterval: 5 * time.Second, VariancePct: 0}
}

func newTestSimulator(t *testing.T, weather WeatherProvider, routes RouteChecker, cfg Config) *Simulator {
	t.Helper()
	sim, err := NewSimulator(weather, routes, cfg, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	return sim
}

var downtown = &catalog.Coordinate{Latitude: 34.05, Longitude: -118.24}

func TestSampleModifiers(t *testing.T) {
	tests := []struct {
		name    string
		weather Weather
		want    float64
	}{
		{"clear mild", Weather{Description: "clear sky", TempC: 20}, 100},
		{"rain", Weather{Description: "light rain", TempC: 20}, 80},
		{"snow", Weather{Description: "snow", TempC: 5}, 90},
		{"freezing clear", Weather{Description: "clear sky", TempC: -5}, 90},
		{"hot clear", Weather{Description: "clear sky", TempC: 35}, 100},
		{"freezing rain", Weather{Description: "freezing rain", TempC: -2}, 72},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newTestSimulator(t, fixedWeather{weather: tt.weather}, nil, testConfig())
			sample := sim.Sample(context.Background(), downtown)
			if diff := sample.EnergyLevel - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("energy = %v, want %v", sample.EnergyLevel, tt.want)
			}
			if sample.Factors == nil {
				t.Fatal("sample missing factors")
			}
		})
	}
}

func TestSampleClampedToHundred(t *testing.T) {
	// 100 * 1.1 would exceed the cap without clamping.
	sim := newTestSimulator(t, fixedWeather{weather: Weather{Description: "clear", TempC: 35}}, nil, testConfig())
	sample := sim.Sample(context.Background(), downtown)
	if sample.EnergyLevel > 100 {
		t.Errorf("energy = %v, want <= 100", sample.EnergyLevel)
	}
}

func TestSampleVarianceStaysInRange(t *testing.T) {
	cfg := testConfig()
	cfg.VariancePct = 0.2
	sim := newTestSimulator(t, fixedWeather{weather: Weather{Description: "light rain", TempC: 20}}, nil, cfg)

	for i := 0; i < 200; i++ {
		sample := sim.Sample(context.Background(), downtown)
		if sample.EnergyLevel < 80*0.8-1e-9 || sample.EnergyLevel > 80*1.2+1e-9 {
			t.Fatalf("energy = %v outside variance envelope", sample.EnergyLevel)
		}
	}
}

func TestSampleWeatherFailureFallsBack(t *testing.T) {
	sim := newTestSimulator(t, fixedWeather{err: errors.New("upstream down")}, nil, testConfig())
	sample := sim.Sample(context.Background(), downtown)
	if sample.EnergyLevel != telemetry.BaseEnergy {
		t.Errorf("energy = %v, want base %v", sample.EnergyLevel, telemetry.BaseEnergy)
	}
	if sample.Factors != nil {
		t.Error("fallback sample should carry no factors")
	}
}

func TestSampleNoProviderFallsBack(t *testing.T) {
	sim := newTestSimulator(t, nil, nil, testConfig())
	sample := sim.Sample(context.Background(), downtown)
	if sample.EnergyLevel != telemetry.BaseEnergy {
		t.Errorf("energy = %v, want base", sample.EnergyLevel)
	}
}

func TestNearRouteBoost(t *testing.T) {
	routes := NewPolylineRoutes([]catalog.Coordinate{*downtown}, 1)
	sim := newTestSimulator(t, fixedWeather{weather: Weather{Description: "clear", TempC: 20}}, routes, testConfig())

	sample := sim.Sample(context.Background(), downtown)
	if sample.EnergyLevel != 100 {
		t.Errorf("boosted energy = %v, want clamped 100", sample.EnergyLevel)
	}
	if sample.Factors == nil || !sample.Factors.NearRoute {
		t.Error("factors should mark near_route")
	}

	far := &catalog.Coordinate{Latitude: 35.0, Longitude: -119.0}
	sample = sim.Sample(context.Background(), far)
	if sample.Factors.NearRoute {
		t.Error("distant coordinate marked near route")
	}
}

func TestClampEnergy(t *testing.T) {
	if got := telemetry.ClampEnergy(-3); got != 0 {
		t.Errorf("ClampEnergy(-3) = %v", got)
	}
	if got := telemetry.ClampEnergy(120); got != 100 {
		t.Errorf("ClampEnergy(120) = %v", got)
	}
	if got := telemetry.ClampEnergy(55.5); got != 55.5 {
		t.Errorf("ClampEnergy(55.5) = %v", got)
	}
}
