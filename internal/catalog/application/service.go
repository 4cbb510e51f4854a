package application

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pokefinder-cloud/internal/catalog/infrastructure/postgres"

	catalog "pokefinder-cloud/internal/catalog/domain"
)

// PokemonReader lists and loads catalog entities.
type PokemonReader interface {
	List(ctx context.Context, filter postgres.ListFilter) (catalog.Page, error)
	Get(ctx context.Context, id, userID string) (*catalog.Pokemon, error)
	All(ctx context.Context) ([]catalog.Pokemon, error)
}

// PokemonWriter mutates catalog entities.
type PokemonWriter interface {
	Delete(ctx context.Context, id string) error
}

// FavoriteToggler flips per-user favorite flags.
type FavoriteToggler interface {
	Toggle(ctx context.Context, userID, pokemonID string) (bool, error)
	ListIDs(ctx context.Context, userID string) ([]string, error)
}

// Service exposes the catalog use cases.
type Service struct {
	reader    PokemonReader
	writer    PokemonWriter
	favorites FavoriteToggler
	notifier  EventNotifier
	logger    *log.Logger
}

// NewService constructs the catalog service.
func NewService(reader PokemonReader, writer PokemonWriter, favorites FavoriteToggler, notifier EventNotifier, logger *log.Logger) (*Service, error) {
	if reader == nil {
		return nil, errors.New("catalog: nil reader")
	}
	if writer == nil {
		return nil, errors.New("catalog: nil writer")
	}
	if favorites == nil {
		return nil, errors.New("catalog: nil favorites")
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{reader: reader, writer: writer, favorites: favorites, notifier: notifier, logger: logger}, nil
}

// ListQuery carries the list operation's parameters.
type ListQuery struct {
	Page   int
	Source string
	Search string
	UserID string
}

// List returns one page of the catalog. Page numbers outside the valid range
// surface catalog.ErrInvalidPage rather than being clamped.
func (s *Service) List(ctx context.Context, query ListQuery) (catalog.Page, error) {
	var source string
	if query.Source != "" {
		normalized, ok := catalog.NormalizeSource(query.Source)
		if !ok {
			return catalog.Page{}, fmt.Errorf("catalog: unknown source %q", query.Source)
		}
		source = string(normalized)
	}
	page := query.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return catalog.Page{}, catalog.ErrInvalidPage
	}
	return s.reader.List(ctx, postgres.ListFilter{
		Source: source,
		Search: query.Search,
		UserID: query.UserID,
		Page:   page,
		Size:   catalog.DefaultPageSize,
	})
}

// Get loads a single entity with the caller's favorite flag resolved.
func (s *Service) Get(ctx context.Context, id, userID string) (*catalog.Pokemon, error) {
	entity, err := s.reader.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, catalog.ErrNotFound
	}
	return entity, nil
}

// All returns the unpaginated catalog, used for map markers and exports.
func (s *Service) All(ctx context.Context) ([]catalog.Pokemon, error) {
	return s.reader.All(ctx)
}

// Delete removes an entity and broadcasts the change.
func (s *Service) Delete(ctx context.Context, id, actor string) error {
	entity, err := s.reader.Get(ctx, id, "")
	if err != nil {
		return err
	}
	if entity == nil {
		return catalog.ErrNotFound
	}
	if err := s.writer.Delete(ctx, id); err != nil {
		return err
	}
	s.notifier.Notify(ctx, Event{Kind: EventDeleted, PokemonID: id, Name: entity.Name, Actor: actor, At: nowUTC()})
	return nil
}

// ToggleFavorite flips the caller's favorite flag and reports the new state.
func (s *Service) ToggleFavorite(ctx context.Context, id, userID string) (bool, error) {
	entity, err := s.reader.Get(ctx, id, userID)
	if err != nil {
		return false, err
	}
	if entity == nil {
		return false, catalog.ErrNotFound
	}
	favored, err := s.favorites.Toggle(ctx, userID, id)
	if err != nil {
		return false, err
	}
	s.notifier.Notify(ctx, Event{Kind: EventFavorited, PokemonID: id, Name: entity.Name, Actor: userID, At: nowUTC()})
	return favored, nil
}

// FavoriteIDs lists the caller's favorite entity ids.
func (s *Service) FavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	return s.favorites.ListIDs(ctx, userID)
}
