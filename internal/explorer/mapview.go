package explorer

import (
	"errors"
	"sync"
	"time"
)

// TileLayer is one of the selectable map tile sources.
type TileLayer string

const (
	LayerStreet      TileLayer = "street"
	LayerSatellite   TileLayer = "satellite"
	LayerTopographic TileLayer = "topographic"
	LayerTerrain     TileLayer = "terrain"
)

// TileSource describes a tile layer's template and required attribution.
type TileSource struct {
	Name        string
	URLTemplate string
	Attribution string
}

// TileSources is the closed set of selectable layers.
var TileSources = map[TileLayer]TileSource{
	LayerStreet: {
		Name:        "Street Map",
		URLTemplate: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors",
	},
	LayerSatellite: {
		Name:        "Satellite",
		URLTemplate: "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "© Esri",
	},
	LayerTopographic: {
		Name:        "Topographic",
		URLTemplate: "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors",
	},
	LayerTerrain: {
		Name:        "Terrain",
		URLTemplate: "https://server.arcgisonline.com/ArcGIS/rest/services/World_Terrain_Base/MapServer/tile/{z}/{y}/{x}",
		Attribution: "© Esri",
	},
}

// Marker is one placed map pin.
type Marker struct {
	EntityID   string
	Coordinate Coordinate
	Image      string
	Label      string
}

// ViewportCommand is a one-shot imperative camera instruction consumed by
// the rendering surface; it is not persisted state.
type ViewportCommand struct {
	Target   Coordinate
	Zoom     int
	Duration time.Duration
}

// DefaultViewport centers on Los Angeles, matching the seeded regions.
var DefaultViewport = ViewportCommand{
	Target: Coordinate{Latitude: 34.0522, Longitude: -118.2437},
	Zoom:   13,
}

const (
	flyToZoom     = 15
	flyToDuration = 1500 * time.Millisecond
)

// MapController owns marker placement and the viewport. The rendering
// surface consumes ViewportCommands from the sink; callers with only
// declarative entity data use FlyTo.
type MapController struct {
	sink          func(ViewportCommand)
	onMarkerClick func(*Entity)

	mu       sync.Mutex
	layer    TileLayer
	markers  []Marker
	entities map[string]*Entity
}

// NewMapController constructs a controller. sink receives viewport commands;
// onMarkerClick reports marker selections back to the caller and may be nil.
func NewMapController(sink func(ViewportCommand), onMarkerClick func(*Entity)) (*MapController, error) {
	if sink == nil {
		return nil, errors.New("explorer: nil viewport sink")
	}
	return &MapController{
		sink:          sink,
		onMarkerClick: onMarkerClick,
		layer:         LayerStreet,
		entities:      map[string]*Entity{},
	}, nil
}

// Layer returns the active tile layer.
func (m *MapController) Layer() TileLayer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.layer
}

// SetLayer switches the tile source. Unknown layers are ignored.
func (m *MapController) SetLayer(layer TileLayer) {
	if _, ok := TileSources[layer]; !ok {
		return
	}
	m.mu.Lock()
	m.layer = layer
	m.mu.Unlock()
}

// SetEntities derives the marker set from the full collection. Entities
// without both a coordinate pair and a marker image are silently excluded.
func (m *MapController) SetEntities(entities []Entity) {
	markers := make([]Marker, 0, len(entities))
	index := make(map[string]*Entity, len(entities))
	for i := range entities {
		entity := &entities[i]
		if !entity.Mappable() {
			continue
		}
		index[entity.ID] = entity
		markers = append(markers, Marker{
			EntityID:   entity.ID,
			Coordinate: *entity.Coordinate,
			Image:      entity.Sprite,
			Label:      entity.Name,
		})
	}

	m.mu.Lock()
	m.markers = markers
	m.entities = index
	m.mu.Unlock()
}

// Markers returns the currently placed markers.
func (m *MapController) Markers() []Marker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markers
}

// FlyTo issues a smooth viewport transition to the entity's coordinate.
// Entities without coordinates are a no-op, not an error.
func (m *MapController) FlyTo(entity *Entity) {
	if !entity.HasCoordinate() {
		return
	}
	m.sink(ViewportCommand{
		Target:   *entity.Coordinate,
		Zoom:     flyToZoom,
		Duration: flyToDuration,
	})
}

// ClickMarker reports the clicked entity back through the marker callback.
// Clicks on unknown markers are ignored.
func (m *MapController) ClickMarker(entityID string) {
	m.mu.Lock()
	entity := m.entities[entityID]
	callback := m.onMarkerClick
	m.mu.Unlock()

	if entity == nil || callback == nil {
		return
	}
	callback(entity)
}
