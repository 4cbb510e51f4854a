package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	catalogapp "pokefinder-cloud/internal/catalog/application"
)

// Stream broadcasts catalog change events to SSE subscribers. Slow
// subscribers drop events rather than block publishers.
type Stream struct {
	mu     sync.Mutex
	subs   map[chan catalogapp.Event]struct{}
	logger *log.Logger
}

// NewStream constructs a stream broker.
func NewStream(logger *log.Logger) *Stream {
	if logger == nil {
		logger = log.Default()
	}
	return &Stream{subs: map[chan catalogapp.Event]struct{}{}, logger: logger}
}

// Notify implements catalogapp.EventNotifier.
func (s *Stream) Notify(_ context.Context, event catalogapp.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (s *Stream) subscribe() chan catalogapp.Event {
	ch := make(chan catalogapp.Event, 16)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Stream) unsubscribe(ch chan catalogapp.Event) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}

// ServeHTTP streams catalog events as server-sent events until the client
// disconnects.
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-ch:
			payload, err := json.Marshal(event)
			if err != nil {
				s.logger.Printf("encode stream event: %v", err)
				continue
			}
			if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
