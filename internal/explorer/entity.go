package explorer

// Provenance distinguishes bulk-imported entities from externally fetched
// ones.
type Provenance string

const (
	ProvenanceCSV Provenance = "CSV"
	ProvenanceAPI Provenance = "API"
)

// Coordinate is a latitude/longitude pair. Both fields are always present
// together.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Entity is one catalogued record as served by the backend.
type Entity struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	TypePrimary   string         `json:"type_primary"`
	TypeSecondary string         `json:"type_secondary,omitempty"`
	Coordinate    *Coordinate    `json:"coordinate,omitempty"`
	LocationName  string         `json:"location_name,omitempty"`
	Sprite        string         `json:"sprite,omitempty"`
	Moves         []string       `json:"moves,omitempty"`
	Abilities     []string       `json:"abilities,omitempty"`
	Stats         map[string]int `json:"stats,omitempty"`
	Height        float64        `json:"height,omitempty"`
	Weight        float64        `json:"weight,omitempty"`
	Category      string         `json:"category,omitempty"`
	Source        Provenance     `json:"source"`
	IsFavorite    bool           `json:"is_favorite"`
}

// HasCoordinate reports whether the entity carries a coordinate pair.
func (e *Entity) HasCoordinate() bool {
	return e != nil && e.Coordinate != nil
}

// Mappable reports whether the entity can be placed on the map: it needs
// both a coordinate pair and a marker image.
func (e *Entity) Mappable() bool {
	return e.HasCoordinate() && e.Sprite != ""
}
