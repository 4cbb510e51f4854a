package domain

import (
	"errors"
	"strings"
	"time"
)

// Source identifies how an entity entered the catalog.
type Source string

const (
	// SourceCSV marks entities bulk-imported from a user CSV upload.
	SourceCSV Source = "CSV"
	// SourceAPI marks entities fetched from the upstream catalog.
	SourceAPI Source = "API"
)

// NormalizeSource validates a provenance tag.
func NormalizeSource(value string) (Source, bool) {
	switch Source(strings.ToUpper(value)) {
	case SourceCSV:
		return SourceCSV, true
	case SourceAPI:
		return SourceAPI, true
	default:
		return "", false
	}
}

// Coordinate is a latitude/longitude pair. Entities either carry both
// components or neither.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Pokemon is a catalogued collectible entity with optional geolocation.
type Pokemon struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	TypePrimary   string             `json:"type_primary"`
	TypeSecondary string             `json:"type_secondary,omitempty"`
	Coordinate    *Coordinate        `json:"coordinate,omitempty"`
	LocationName  string             `json:"location_name,omitempty"`
	Sprite        string             `json:"sprite,omitempty"`
	Moves         []string           `json:"moves"`
	Abilities     []string           `json:"abilities"`
	Stats         map[string]int     `json:"stats"`
	Height        float64            `json:"height,omitempty"`
	Weight        float64            `json:"weight,omitempty"`
	Category      string             `json:"category,omitempty"`
	Source        Source             `json:"source"`
	UploadedBy    string             `json:"uploaded_by,omitempty"`
	IsFavorite    bool               `json:"is_favorite"`
	CreatedAt     time.Time          `json:"created_at"`
}

// HasCoordinate reports whether the entity carries a full coordinate pair.
func (p *Pokemon) HasCoordinate() bool {
	return p != nil && p.Coordinate != nil
}

// Mappable reports whether the entity qualifies for a map marker: it needs
// both a coordinate pair and a sprite to render.
func (p *Pokemon) Mappable() bool {
	return p.HasCoordinate() && p.Sprite != ""
}

// Validate checks invariants before persistence.
func (p *Pokemon) Validate() error {
	if p == nil {
		return errors.New("catalog: nil pokemon")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("catalog: empty name")
	}
	if strings.TrimSpace(p.TypePrimary) == "" {
		return errors.New("catalog: empty primary type")
	}
	if _, ok := NormalizeSource(string(p.Source)); !ok {
		return errors.New("catalog: invalid source")
	}
	if p.Coordinate != nil {
		if p.Coordinate.Latitude < -90 || p.Coordinate.Latitude > 90 {
			return errors.New("catalog: latitude out of range")
		}
		if p.Coordinate.Longitude < -180 || p.Coordinate.Longitude > 180 {
			return errors.New("catalog: longitude out of range")
		}
	}
	return nil
}
