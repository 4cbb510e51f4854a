package application

import (
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"strings"

	catalog "pokefinder-cloud/internal/catalog/domain"
)

// Region is a named polyline area entities can spawn in.
type Region struct {
	Name   string               `json:"name"`
	Points []catalog.Coordinate `json:"points"`
}

// Bounds returns the region's bounding box.
func (r Region) Bounds() (minLat, maxLat, minLng, maxLng float64, ok bool) {
	if len(r.Points) == 0 {
		return 0, 0, 0, 0, false
	}
	minLat, maxLat = r.Points[0].Latitude, r.Points[0].Latitude
	minLng, maxLng = r.Points[0].Longitude, r.Points[0].Longitude
	for _, point := range r.Points[1:] {
		if point.Latitude < minLat {
			minLat = point.Latitude
		}
		if point.Latitude > maxLat {
			maxLat = point.Latitude
		}
		if point.Longitude < minLng {
			minLng = point.Longitude
		}
		if point.Longitude > maxLng {
			maxLng = point.Longitude
		}
	}
	return minLat, maxLat, minLng, maxLng, true
}

// RandomPoint draws a uniform point from the region's bounding box.
func (r Region) RandomPoint(rng *rand.Rand) (catalog.Coordinate, bool) {
	minLat, maxLat, minLng, maxLng, ok := r.Bounds()
	if !ok {
		return catalog.Coordinate{}, false
	}
	return catalog.Coordinate{
		Latitude:  minLat + rng.Float64()*(maxLat-minLat),
		Longitude: minLng + rng.Float64()*(maxLng-minLng),
	}, true
}

// RegionSet maps entity names onto spawn regions by first letter: names
// starting with A-J land in the first region, the rest in the second.
type RegionSet struct {
	FirstHalf  Region
	SecondHalf Region
}

// DefaultRegions covers two Los Angeles areas matching the demo map center.
func DefaultRegions() RegionSet {
	return RegionSet{
		FirstHalf: Region{
			Name: "A-J",
			Points: []catalog.Coordinate{
				{Latitude: 34.01, Longitude: -118.50},
				{Latitude: 34.10, Longitude: -118.50},
				{Latitude: 34.10, Longitude: -118.36},
				{Latitude: 34.01, Longitude: -118.36},
			},
		},
		SecondHalf: Region{
			Name: "K-Z",
			Points: []catalog.Coordinate{
				{Latitude: 34.01, Longitude: -118.30},
				{Latitude: 34.12, Longitude: -118.30},
				{Latitude: 34.12, Longitude: -118.16},
				{Latitude: 34.01, Longitude: -118.16},
			},
		},
	}
}

// LoadRegions reads a two-region set from a JSON file.
func LoadRegions(path string) (RegionSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RegionSet{}, err
	}
	var regions []Region
	if err := json.Unmarshal(data, &regions); err != nil {
		return RegionSet{}, err
	}
	if len(regions) != 2 {
		return RegionSet{}, errors.New("catalog: region file must define exactly two regions")
	}
	return RegionSet{FirstHalf: regions[0], SecondHalf: regions[1]}, nil
}

// ForName picks the region for an entity name.
func (s RegionSet) ForName(name string) Region {
	trimmed := strings.TrimSpace(strings.ToUpper(name))
	if trimmed == "" || trimmed[0] <= 'J' {
		return s.FirstHalf
	}
	return s.SecondHalf
}
