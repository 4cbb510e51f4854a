package explorer

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SampleFactors is the optional contributing-factor breakdown attached to a
// sample.
type SampleFactors struct {
	Weather          string  `json:"weather,omitempty"`
	WeatherModifier  float64 `json:"weather_modifier"`
	Temperature      float64 `json:"temperature"`
	TempModifier     float64 `json:"temp_modifier"`
	NearRoute        bool    `json:"near_route"`
	LocationModifier float64 `json:"location_modifier"`
}

// Sample is one pushed energy reading.
type Sample struct {
	EnergyLevel float64        `json:"energy_level"`
	Timestamp   time.Time      `json:"timestamp"`
	Factors     *SampleFactors `json:"factors,omitempty"`
}

// Dialer opens a websocket connection; *websocket.Dialer satisfies it.
type Dialer interface {
	Dial(urlStr string, requestHeader map[string][]string) (*websocket.Conn, error)
}

type gorillaDialer struct{ d *websocket.Dialer }

func (g gorillaDialer) Dial(urlStr string, header map[string][]string) (*websocket.Conn, error) {
	conn, resp, err := g.d.Dial(urlStr, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

// EndpointResolver builds the channel endpoint for an entity id. *Client
// satisfies it.
type EndpointResolver interface {
	ChannelURL(id string) (string, error)
}

// TelemetryChannel maintains at most one push subscription at a time, keyed
// by the inspected entity's id. There is no automatic reconnect: a dropped
// channel leaves the view showing the last sample with its timestamp.
type TelemetryChannel struct {
	resolver EndpointResolver
	dialer   Dialer
	logger   *log.Logger

	mu       sync.Mutex
	entityID string
	conn     *websocket.Conn
	done     chan struct{}
	latest   *Sample
	onSample func(Sample)
}

// NewTelemetryChannel constructs a channel. onSample is invoked for every
// accepted sample, after the latest-sample slot has been replaced.
func NewTelemetryChannel(resolver EndpointResolver, onSample func(Sample), logger *log.Logger) (*TelemetryChannel, error) {
	if resolver == nil {
		return nil, errors.New("explorer: nil endpoint resolver")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &TelemetryChannel{
		resolver: resolver,
		dialer:   gorillaDialer{d: websocket.DefaultDialer},
		logger:   logger,
		onSample: onSample,
	}, nil
}

// Open subscribes to the entity's energy stream. Any prior channel is closed
// synchronously first so two channels never race to update the same view.
func (c *TelemetryChannel) Open(entityID string) error {
	if entityID == "" {
		return errors.New("explorer: empty entity id")
	}

	c.Close()

	endpoint, err := c.resolver.ChannelURL(entityID)
	if err != nil {
		return err
	}
	conn, err := c.dialer.Dial(endpoint, nil)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.entityID = entityID
	c.conn = conn
	c.done = done
	// The previous entity's reading must not show for the new one.
	c.latest = nil
	c.mu.Unlock()

	c.logger.Printf("energy channel open for %s", entityID)
	go c.readLoop(conn, done)
	return nil
}

// Close tears down the subscription. Safe to call when nothing is open.
func (c *TelemetryChannel) Close() {
	c.mu.Lock()
	conn := c.conn
	done := c.done
	c.conn = nil
	c.done = nil
	c.entityID = ""
	c.mu.Unlock()

	if conn == nil {
		return
	}
	close(done)
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	_ = conn.WriteMessage(websocket.CloseMessage, message)
	_ = conn.Close()
}

// EntityID returns the id of the open subscription, or empty.
func (c *TelemetryChannel) EntityID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entityID
}

// Latest returns the most recent accepted sample, if any.
func (c *TelemetryChannel) Latest() (Sample, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return Sample{}, false
	}
	return *c.latest, true
}

func (c *TelemetryChannel) readLoop(conn *websocket.Conn, done chan struct{}) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-done:
			default:
				// Platform-level failure; no reconnect is attempted.
				c.logger.Printf("energy channel read: %v", err)
			}
			return
		}

		// Messages without an energy level (e.g. server-side error
		// notes) are ignored rather than emitted as partial samples.
		var probe struct {
			EnergyLevel *float64 `json:"energy_level"`
		}
		if err := json.Unmarshal(payload, &probe); err != nil || probe.EnergyLevel == nil {
			continue
		}
		var sample Sample
		if err := json.Unmarshal(payload, &sample); err != nil {
			continue
		}

		c.mu.Lock()
		if c.done != done {
			// A newer subscription owns the view now.
			c.mu.Unlock()
			return
		}
		c.latest = &sample
		callback := c.onSample
		c.mu.Unlock()

		if callback != nil {
			callback(sample)
		}
	}
}
