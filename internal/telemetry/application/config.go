package application

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines energy telemetry configuration.
type Config struct {
	SampleInterval   time.Duration `yaml:"sample_interval"`
	VariancePct      float64       `yaml:"variance_pct"`
	RouteProximityKm float64       `yaml:"route_proximity_km"`
	WeatherAPIKey    string        `yaml:"weather_api_key"`
	WeatherBaseURL   string        `yaml:"weather_base_url"`
}

// LoadConfig loads config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		SampleInterval:   5 * time.Second,
		VariancePct:      0.2,
		RouteProximityKm: getenvFloatDefault("TELEMETRY_ROUTE_PROXIMITY_KM", 0.5),
		WeatherAPIKey:    os.Getenv("OPENWEATHER_API_KEY"),
	}

	if path := os.Getenv("TELEMETRY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if raw := os.Getenv("TELEMETRY_SAMPLE_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, err
		}
		cfg.SampleInterval = parsed
	}
	if cfg.SampleInterval <= 0 {
		return cfg, errors.New("telemetry: sample interval must be positive")
	}
	if cfg.VariancePct < 0 || cfg.VariancePct >= 1 {
		return cfg, errors.New("telemetry: variance must be in [0, 1)")
	}
	return cfg, nil
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
