package application

import (
	"context"
	"time"
)

// EventKind labels a catalog change event.
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventDeleted   EventKind = "deleted"
	EventFavorited EventKind = "favorited"
	EventImported  EventKind = "imported"
)

// Event is a catalog change broadcast to stream subscribers.
type Event struct {
	Kind      EventKind `json:"kind"`
	PokemonID string    `json:"pokemon_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Count     int       `json:"count,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	At        time.Time `json:"at"`
}

// EventNotifier receives catalog change events. Implementations must not
// block; delivery is best-effort.
type EventNotifier interface {
	Notify(ctx context.Context, event Event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) {}

func nowUTC() time.Time { return time.Now().UTC() }
