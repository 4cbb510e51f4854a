package application

import (
	"context"
	"errors"
	"log"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	catalog "pokefinder-cloud/internal/catalog/domain"
	telemetry "pokefinder-cloud/internal/telemetry/domain"
)

// Weather is a current-conditions reading at a coordinate.
type Weather struct {
	Description string
	TempC       float64
}

// WeatherProvider loads current conditions. Implementations should return an
// error rather than fabricate data; the simulator falls back to base energy.
type WeatherProvider interface {
	Current(ctx context.Context, lat, lng float64) (Weather, error)
}

// RouteChecker reports whether a coordinate lies near a patrol route.
type RouteChecker interface {
	NearRoute(coordinate catalog.Coordinate) bool
}

// Simulator produces energy samples for catalog entities.
type Simulator struct {
	weather WeatherProvider
	routes  RouteChecker
	cfg     Config
	logger  *log.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator constructs a simulator. A nil weather provider degrades to
// base-energy samples, matching behavior with no API key configured.
func NewSimulator(weather WeatherProvider, routes RouteChecker, cfg Config, rng *rand.Rand, logger *log.Logger) (*Simulator, error) {
	if cfg.SampleInterval <= 0 {
		return nil, errors.New("telemetry: sample interval must be positive")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Simulator{weather: weather, routes: routes, cfg: cfg, rng: rng, logger: logger}, nil
}

// Interval returns the configured sampling period.
func (s *Simulator) Interval() time.Duration {
	return s.cfg.SampleInterval
}

// Sample computes one energy reading for an entity at the given coordinate.
// Weather lookup failures degrade to base energy rather than erroring.
func (s *Simulator) Sample(ctx context.Context, coordinate *catalog.Coordinate) telemetry.Sample {
	now := time.Now().UTC()
	if s.weather == nil || coordinate == nil {
		return telemetry.Sample{EnergyLevel: telemetry.BaseEnergy, Timestamp: now}
	}

	weather, err := s.weather.Current(ctx, coordinate.Latitude, coordinate.Longitude)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Printf("weather lookup (%.4f, %.4f): %v", coordinate.Latitude, coordinate.Longitude, err)
		}
		return telemetry.Sample{EnergyLevel: telemetry.BaseEnergy, Timestamp: now}
	}

	factors := s.resolveFactors(weather, coordinate)
	modifier := factors.WeatherModifier * factors.TempModifier * factors.LocationModifier
	energy := telemetry.BaseEnergy * modifier * s.variance()

	return telemetry.Sample{
		EnergyLevel: telemetry.ClampEnergy(energy),
		Timestamp:   now,
		Factors:     &factors,
	}
}

func (s *Simulator) resolveFactors(weather Weather, coordinate *catalog.Coordinate) telemetry.Factors {
	factors := telemetry.Factors{
		Weather:          weather.Description,
		WeatherModifier:  1.0,
		Temperature:      weather.TempC,
		TempModifier:     1.0,
		LocationModifier: 1.0,
	}

	description := strings.ToLower(weather.Description)
	switch {
	case strings.Contains(description, "rain"):
		factors.WeatherModifier = 0.8
	case strings.Contains(description, "snow"):
		factors.WeatherModifier = 0.9
	}

	if weather.TempC < 0 {
		factors.TempModifier = 0.9
	} else if weather.TempC > 30 {
		factors.TempModifier = 1.1
	}

	if s.routes != nil && coordinate != nil && s.routes.NearRoute(*coordinate) {
		factors.NearRoute = true
		factors.LocationModifier = 1.05
	}
	return factors
}

func (s *Simulator) variance() float64 {
	if s.cfg.VariancePct == 0 {
		return 1.0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return 1 - s.cfg.VariancePct + s.rng.Float64()*2*s.cfg.VariancePct
}

// PolylineRoutes checks route proximity against fixed polyline vertices.
type PolylineRoutes struct {
	points      []catalog.Coordinate
	proximityKm float64
}

// NewPolylineRoutes constructs a checker over route vertices.
func NewPolylineRoutes(points []catalog.Coordinate, proximityKm float64) *PolylineRoutes {
	if proximityKm <= 0 {
		proximityKm = 0.5
	}
	return &PolylineRoutes{points: points, proximityKm: proximityKm}
}

// NearRoute reports whether the coordinate is within the proximity radius of
// any route vertex.
func (p *PolylineRoutes) NearRoute(coordinate catalog.Coordinate) bool {
	for _, point := range p.points {
		if haversineKm(coordinate, point) <= p.proximityKm {
			return true
		}
	}
	return false
}

const earthRadiusKm = 6371.0

func haversineKm(a, b catalog.Coordinate) float64 {
	latA := a.Latitude * math.Pi / 180
	latB := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
