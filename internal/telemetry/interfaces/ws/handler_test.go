package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	catalog "pokefinder-cloud/internal/catalog/domain"
	telemetry "pokefinder-cloud/internal/telemetry/domain"
)

type staticLookup struct {
	entities map[string]*catalog.Pokemon
}

func (s staticLookup) Get(_ context.Context, id, _ string) (*catalog.Pokemon, error) {
	return s.entities[id], nil
}

type staticSampler struct {
	interval time.Duration
	energy   float64
}

func (s staticSampler) Sample(context.Context, *catalog.Coordinate) telemetry.Sample {
	return telemetry.Sample{EnergyLevel: s.energy, Timestamp: time.Now().UTC()}
}

func (s staticSampler) Interval() time.Duration { return s.interval }

type countingGauge struct {
	inc, dec atomic.Int32
}

func (g *countingGauge) Inc() { g.inc.Add(1) }
func (g *countingGauge) Dec() { g.dec.Add(1) }

func newTestServer(t *testing.T, lookup EntityLookup, sampler Sampler, gauge SessionGauge) *httptest.Server {
	t.Helper()
	handler, err := NewHandler(lookup, sampler, gauge, nil)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	router := mux.NewRouter()
	handler.Mount(router)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func wsURL(server *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + path
}

func TestEnergyChannelStreamsSamples(t *testing.T) {
	lookup := staticLookup{entities: map[string]*catalog.Pokemon{
		"p1": {ID: "p1", Name: "Pikachu", Coordinate: &catalog.Coordinate{Latitude: 34.05, Longitude: -118.24}},
	}}
	server := newTestServer(t, lookup, staticSampler{interval: 20 * time.Millisecond, energy: 80}, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "/ws/pokemon/p1/energy/"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	for i := 0; i < 2; i++ {
		var sample telemetry.Sample
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		if err := conn.ReadJSON(&sample); err != nil {
			t.Fatalf("read sample %d: %v", i, err)
		}
		if sample.EnergyLevel != 80 {
			t.Errorf("energy = %v, want 80", sample.EnergyLevel)
		}
		if sample.Timestamp.IsZero() {
			t.Error("sample missing timestamp")
		}
	}
}

func TestEnergyChannelUnknownEntityCloses4004(t *testing.T) {
	server := newTestServer(t, staticLookup{}, staticSampler{interval: time.Second}, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "/ws/pokemon/missing/energy/"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	if !websocket.IsCloseError(err, CloseUnknownEntity) {
		t.Fatalf("err = %v (%T), want close 4004", err, closeErr)
	}
}

func TestEnergyChannelTracksSessions(t *testing.T) {
	lookup := staticLookup{entities: map[string]*catalog.Pokemon{
		"p1": {ID: "p1", Name: "Pikachu"},
	}}
	gauge := &countingGauge{}
	server := newTestServer(t, lookup, staticSampler{interval: 10 * time.Millisecond, energy: 100}, gauge)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "/ws/pokemon/p1/energy/"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	var sample telemetry.Sample
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	if err := conn.ReadJSON(&sample); err != nil {
		t.Fatalf("read: %v", err)
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if gauge.dec.Load() == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if gauge.inc.Load() != 1 || gauge.dec.Load() != 1 {
		t.Fatalf("gauge inc=%d dec=%d, want 1/1", gauge.inc.Load(), gauge.dec.Load())
	}
}
