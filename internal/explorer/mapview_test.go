package explorer

import "testing"

func TestSetEntitiesPlacesOnlyMappableMarkers(t *testing.T) {
	controller, err := NewMapController(func(ViewportCommand) {}, nil)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	coord := Coordinate{Latitude: 34.05, Longitude: -118.24}
	controller.SetEntities([]Entity{
		{ID: "full", Name: "Pikachu", Coordinate: &coord, Sprite: "pikachu.png"},
		{ID: "no-coords", Name: "Mew", Sprite: "mew.png"},
		{ID: "no-sprite", Name: "Ditto", Coordinate: &coord},
	})

	markers := controller.Markers()
	if len(markers) != 1 {
		t.Fatalf("got %d markers, want 1", len(markers))
	}
	if markers[0].EntityID != "full" || markers[0].Image != "pikachu.png" {
		t.Fatalf("unexpected marker %+v", markers[0])
	}
}

func TestFlyToEmitsSingleBoundedCommand(t *testing.T) {
	var commands []ViewportCommand
	controller, err := NewMapController(func(cmd ViewportCommand) {
		commands = append(commands, cmd)
	}, nil)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	controller.FlyTo(&Entity{ID: "grounded", Name: "Snorlax"})
	if len(commands) != 0 {
		t.Fatalf("fly-to without coordinates emitted %d commands", len(commands))
	}

	coord := Coordinate{Latitude: 34.07, Longitude: -118.44}
	controller.FlyTo(&Entity{ID: "7", Coordinate: &coord})
	if len(commands) != 1 {
		t.Fatalf("got %d commands, want 1", len(commands))
	}
	cmd := commands[0]
	if cmd.Target != coord {
		t.Fatalf("command target %+v, want %+v", cmd.Target, coord)
	}
	if cmd.Duration <= 0 {
		t.Fatalf("command duration %v, want a positive transition", cmd.Duration)
	}
}

func TestClickMarkerReportsKnownEntities(t *testing.T) {
	var clicked []*Entity
	controller, err := NewMapController(func(ViewportCommand) {}, func(entity *Entity) {
		clicked = append(clicked, entity)
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	coord := Coordinate{Latitude: 34.0, Longitude: -118.0}
	controller.SetEntities([]Entity{
		{ID: "a", Name: "Eevee", Coordinate: &coord, Sprite: "eevee.png"},
	})

	controller.ClickMarker("missing")
	if len(clicked) != 0 {
		t.Fatal("unknown marker click reached the callback")
	}

	controller.ClickMarker("a")
	if len(clicked) != 1 || clicked[0].ID != "a" {
		t.Fatalf("clicked = %v", clicked)
	}
}

func TestSetLayerRejectsUnknownLayers(t *testing.T) {
	controller, err := NewMapController(func(ViewportCommand) {}, nil)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	if controller.Layer() != LayerStreet {
		t.Fatalf("default layer = %s", controller.Layer())
	}

	controller.SetLayer(LayerTerrain)
	if controller.Layer() != LayerTerrain {
		t.Fatalf("layer = %s after SetLayer(terrain)", controller.Layer())
	}

	controller.SetLayer(TileLayer("holographic"))
	if controller.Layer() != LayerTerrain {
		t.Fatal("unknown layer replaced the active one")
	}
}

func TestTileSourcesCarryAttribution(t *testing.T) {
	for layer, source := range TileSources {
		if source.URLTemplate == "" || source.Attribution == "" {
			t.Errorf("layer %s missing url or attribution", layer)
		}
	}
}
