package application

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"strconv"
	"strings"

	"github.com/google/uuid"

	catalog "pokefinder-cloud/internal/catalog/domain"
	"pokefinder-cloud/internal/catalog/infrastructure/pokeapi"
)

// SpeciesFetcher loads upstream catalog records by ordinal.
type SpeciesFetcher interface {
	Fetch(ctx context.Context, ordinal int) (*pokeapi.Species, error)
}

// Importer ingests entities from CSV uploads and the upstream catalog.
type Importer struct {
	repo     BatchCreator
	fetcher  SpeciesFetcher
	regions  RegionSet
	notifier EventNotifier
	rng      *rand.Rand
	logger   *log.Logger
}

// BatchCreator is the persistence port for bulk inserts.
type BatchCreator interface {
	CreateBatch(ctx context.Context, entities []catalog.Pokemon) error
}

// NewImporter constructs an importer.
func NewImporter(repo BatchCreator, fetcher SpeciesFetcher, regions RegionSet, notifier EventNotifier, rng *rand.Rand, logger *log.Logger) (*Importer, error) {
	if repo == nil {
		return nil, errors.New("importer: nil repo")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Importer{repo: repo, fetcher: fetcher, regions: regions, notifier: notifier, rng: rng, logger: logger}, nil
}

// ImportCSV parses a header-keyed CSV stream and bulk-inserts the rows in a
// single transaction. Expected columns: Pokemon, Lat, Long, Type, Location,
// and optionally Moves (JSON array) and Sprite.
func (im *Importer) ImportCSV(ctx context.Context, reader io.Reader, uploadedBy string) (int, error) {
	if im == nil {
		return 0, errors.New("importer: nil importer")
	}
	if reader == nil {
		return 0, catalog.ErrEmptyFile
	}

	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return 0, catalog.ErrEmptyFile
		}
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"Pokemon", "Lat", "Long", "Type"} {
		if _, ok := columns[required]; !ok {
			return 0, fmt.Errorf("catalog: csv missing column %q", required)
		}
	}

	var entities []catalog.Pokemon
	for {
		record, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return 0, fmt.Errorf("read csv row: %w", err)
		}
		entity, err := parseCSVRow(record, columns, uploadedBy)
		if err != nil {
			return 0, err
		}
		entities = append(entities, *entity)
	}
	if len(entities) == 0 {
		return 0, catalog.ErrEmptyFile
	}

	if err := im.repo.CreateBatch(ctx, entities); err != nil {
		return 0, err
	}
	im.notifier.Notify(ctx, Event{Kind: EventImported, Count: len(entities), Actor: uploadedBy, At: nowUTC()})
	return len(entities), nil
}

func parseCSVRow(record []string, columns map[string]int, uploadedBy string) (*catalog.Pokemon, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	name := field("Pokemon")
	if name == "" {
		return nil, errors.New("catalog: csv row missing name")
	}
	lat, err := strconv.ParseFloat(field("Lat"), 64)
	if err != nil {
		return nil, fmt.Errorf("catalog: csv row %q: bad latitude: %w", name, err)
	}
	lng, err := strconv.ParseFloat(field("Long"), 64)
	if err != nil {
		return nil, fmt.Errorf("catalog: csv row %q: bad longitude: %w", name, err)
	}

	moves := []string{}
	if raw := field("Moves"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &moves); err != nil {
			return nil, fmt.Errorf("catalog: csv row %q: bad moves: %w", name, err)
		}
	}

	entity := &catalog.Pokemon{
		ID:           uuid.NewString(),
		Name:         name,
		TypePrimary:  field("Type"),
		Coordinate:   &catalog.Coordinate{Latitude: lat, Longitude: lng},
		LocationName: field("Location"),
		Sprite:       field("Sprite"),
		Moves:        moves,
		Source:       catalog.SourceCSV,
		UploadedBy:   uploadedBy,
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}
	return entity, nil
}

// FetchFromAPI ingests the first limit species from the upstream catalog,
// assigning each a coordinate drawn from its name's spawn region. Individual
// fetch failures are logged and skipped, matching bulk-ingest semantics.
func (im *Importer) FetchFromAPI(ctx context.Context, limit int) (int, error) {
	if im == nil {
		return 0, errors.New("importer: nil importer")
	}
	if im.fetcher == nil {
		return 0, errors.New("importer: no species fetcher configured")
	}
	if limit <= 0 {
		limit = 100
	}

	var entities []catalog.Pokemon
	for ordinal := 1; ordinal <= limit; ordinal++ {
		species, err := im.fetcher.Fetch(ctx, ordinal)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			im.logger.Printf("fetch species %d: %v", ordinal, err)
			continue
		}

		var coordinate *catalog.Coordinate
		if coord, ok := im.regions.ForName(species.Name).RandomPoint(im.rng); ok {
			coordinate = &coord
		}
		entities = append(entities, catalog.Pokemon{
			ID:            uuid.NewString(),
			Name:          species.Name,
			TypePrimary:   species.TypePrimary,
			TypeSecondary: species.TypeSecondary,
			Coordinate:    coordinate,
			Sprite:        species.Sprite,
			Moves:         species.Moves,
			Abilities:     species.Abilities,
			Stats:         species.Stats,
			Height:        species.Height,
			Weight:        species.Weight,
			Category:      species.Category,
			Source:        catalog.SourceAPI,
		})
	}
	if len(entities) == 0 {
		return 0, errors.New("catalog: upstream fetch produced no entities")
	}

	if err := im.repo.CreateBatch(ctx, entities); err != nil {
		return 0, err
	}
	im.notifier.Notify(ctx, Event{Kind: EventImported, Count: len(entities), At: nowUTC()})
	return len(entities), nil
}
