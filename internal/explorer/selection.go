package explorer

import (
	"errors"
	"log"
	"sync"
)

// SelectionOrigin says where a selection gesture came from. Only list-row
// selections trigger map navigation; a marker click already has the entity
// in view.
type SelectionOrigin int

const (
	OriginListRow SelectionOrigin = iota
	OriginMarker
)

// Channel is the telemetry subscription controlled by the selection.
type Channel interface {
	Open(entityID string) error
	Close()
}

// Navigator receives fly-to commands for list-row selections.
type Navigator interface {
	FlyTo(entity *Entity)
}

// SelectionController holds at most one inspected entity and is the single
// authoritative trigger for channel lifecycle: selecting a different entity
// or clearing always closes the previous channel before a new one opens;
// re-selecting the current entity touches nothing.
type SelectionController struct {
	channel   Channel
	navigator Navigator
	logger    *log.Logger

	mu       sync.Mutex
	selected *Entity
}

// NewSelectionController constructs a controller. navigator may be nil when
// no map surface is attached.
func NewSelectionController(channel Channel, navigator Navigator, logger *log.Logger) (*SelectionController, error) {
	if channel == nil {
		return nil, errors.New("explorer: nil channel")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SelectionController{channel: channel, navigator: navigator, logger: logger}, nil
}

// Selected returns the currently inspected entity, or nil.
func (s *SelectionController) Selected() *Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Select replaces the current selection. Selecting the entity already
// inspected is a no-op on the channel; it is not torn down and reopened.
func (s *SelectionController) Select(entity *Entity, origin SelectionOrigin) error {
	if entity == nil || entity.ID == "" {
		return errors.New("explorer: select requires an entity with an id")
	}

	s.mu.Lock()
	same := s.selected != nil && s.selected.ID == entity.ID
	s.selected = entity
	s.mu.Unlock()

	if !same {
		s.channel.Close()
		if err := s.channel.Open(entity.ID); err != nil {
			s.logger.Printf("open energy channel for %s: %v", entity.ID, err)
			return err
		}
	}

	if origin == OriginListRow && s.navigator != nil {
		s.navigator.FlyTo(entity)
	}
	return nil
}

// Clear empties the selection and closes any open channel.
func (s *SelectionController) Clear() {
	s.mu.Lock()
	wasSelected := s.selected != nil
	s.selected = nil
	s.mu.Unlock()

	if wasSelected {
		s.channel.Close()
	}
}
