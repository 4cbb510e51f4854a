package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	catalog "pokefinder-cloud/internal/catalog/domain"
	"pokefinder-cloud/internal/observability/metrics"
	telemetry "pokefinder-cloud/internal/telemetry/domain"
)

// CloseUnknownEntity is sent when the requested entity does not exist.
const CloseUnknownEntity = 4004

const writeWait = 10 * time.Second

// EntityLookup resolves catalog entities for channel subjects.
type EntityLookup interface {
	Get(ctx context.Context, id, userID string) (*catalog.Pokemon, error)
}

// Sampler produces the payload pushed on each tick.
type Sampler interface {
	Sample(ctx context.Context, coordinate *catalog.Coordinate) telemetry.Sample
	Interval() time.Duration
}

// SessionGauge tracks open live channels.
type SessionGauge interface {
	Inc()
	Dec()
}

type nopGauge struct{}

func (nopGauge) Inc() {}
func (nopGauge) Dec() {}

// Handler serves the per-entity energy websocket.
type Handler struct {
	lookup   EntityLookup
	sampler  Sampler
	sessions SessionGauge
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewHandler constructs a websocket handler.
func NewHandler(lookup EntityLookup, sampler Sampler, sessions SessionGauge, logger *log.Logger) (*Handler, error) {
	if lookup == nil {
		return nil, errors.New("ws handler: nil lookup")
	}
	if sampler == nil {
		return nil, errors.New("ws handler: nil sampler")
	}
	if sessions == nil {
		sessions = nopGauge{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		lookup:   lookup,
		sampler:  sampler,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}, nil
}

// Mount registers the energy channel route.
func (h *Handler) Mount(router *mux.Router) {
	router.HandleFunc("/ws/pokemon/{id}/energy/", h.serveEnergy).Methods(http.MethodGet)
}

func (h *Handler) serveEnergy(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade energy channel: %v", err)
		return
	}
	defer conn.Close()

	entity, err := h.lookup.Get(r.Context(), id, "")
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		h.logger.Printf("lookup entity %s: %v", id, err)
		h.closeWith(conn, websocket.CloseInternalServerErr, "lookup failed")
		return
	}
	if entity == nil || errors.Is(err, catalog.ErrNotFound) {
		h.closeWith(conn, CloseUnknownEntity, "unknown entity")
		return
	}

	h.sessions.Inc()
	defer h.sessions.Dec()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader drains control frames and unblocks on client close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.pushSamples(ctx, conn, entity)
}

func (h *Handler) pushSamples(ctx context.Context, conn *websocket.Conn, entity *catalog.Pokemon) {
	ticker := time.NewTicker(h.sampler.Interval())
	defer ticker.Stop()

	for {
		sample := h.sampler.Sample(ctx, entity.Coordinate)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(sample); err != nil {
			return
		}
		metrics.IncSamplePushed()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *Handler) closeWith(conn *websocket.Conn, code int, reason string) {
	message := websocket.FormatCloseMessage(code, reason)
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, message)
}
