package integration_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"

	catalog "pokefinder-cloud/internal/catalog/domain"
	catalogrepo "pokefinder-cloud/internal/catalog/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS pokemon (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type_primary TEXT NOT NULL,
	type_secondary TEXT NOT NULL DEFAULT '',
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	location_name TEXT NOT NULL DEFAULT '',
	sprite TEXT NOT NULL DEFAULT '',
	moves JSONB NOT NULL DEFAULT '[]',
	abilities JSONB NOT NULL DEFAULT '[]',
	stats JSONB NOT NULL DEFAULT '{}',
	height DOUBLE PRECISION NOT NULL DEFAULT 0,
	weight DOUBLE PRECISION NOT NULL DEFAULT 0,
	category TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	uploaded_by TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS idx_pokemon_name ON pokemon (name, id)`,
	`CREATE TABLE IF NOT EXISTS favorite_pokemon (
	user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	pokemon_id TEXT NOT NULL REFERENCES pokemon (id) ON DELETE CASCADE,
	PRIMARY KEY (user_id, pokemon_id)
)`,
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return db
}

func seedBatch(count int, source catalog.Source) []catalog.Pokemon {
	entities := make([]catalog.Pokemon, count)
	for i := range entities {
		entities[i] = catalog.Pokemon{
			ID:          fmt.Sprintf("itest-%s-%03d", source, i),
			Name:        fmt.Sprintf("Testmon %03d", i),
			TypePrimary: "Electric",
			Coordinate:  &catalog.Coordinate{Latitude: 34.05, Longitude: -118.24},
			Sprite:      "testmon.png",
			Source:      source,
		}
	}
	return entities
}

func TestPokemonRepository_ListPagesAndFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, _ = db.ExecContext(ctx, "DELETE FROM pokemon WHERE id LIKE 'itest-%'")

	repo := catalogrepo.NewPokemonRepository(db)
	if err := repo.CreateBatch(ctx, seedBatch(25, catalog.SourceCSV)); err != nil {
		t.Fatalf("create csv batch: %v", err)
	}
	if err := repo.CreateBatch(ctx, seedBatch(3, catalog.SourceAPI)); err != nil {
		t.Fatalf("create api batch: %v", err)
	}

	page, err := repo.List(ctx, catalogrepo.ListFilter{
		Source: string(catalog.SourceCSV),
		Search: "Testmon",
		Page:   1,
		Size:   catalog.DefaultPageSize,
	})
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if page.Count != 25 || len(page.Items) != 20 {
		t.Fatalf("page 1: count %d, %d items", page.Count, len(page.Items))
	}

	page, err = repo.List(ctx, catalogrepo.ListFilter{
		Source: string(catalog.SourceCSV),
		Search: "Testmon",
		Page:   2,
		Size:   catalog.DefaultPageSize,
	})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page.Items) != 5 {
		t.Fatalf("page 2: %d items", len(page.Items))
	}

	page, err = repo.List(ctx, catalogrepo.ListFilter{
		Source: string(catalog.SourceAPI),
		Search: "Testmon",
		Page:   1,
		Size:   catalog.DefaultPageSize,
	})
	if err != nil {
		t.Fatalf("list api: %v", err)
	}
	if page.Count != 3 {
		t.Fatalf("api count = %d", page.Count)
	}
}

func TestPokemonRepository_GetAndDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, _ = db.ExecContext(ctx, "DELETE FROM pokemon WHERE id LIKE 'itest-%'")

	repo := catalogrepo.NewPokemonRepository(db)
	entities := seedBatch(1, catalog.SourceCSV)
	if err := repo.CreateBatch(ctx, entities); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(ctx, entities[0].ID, "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Name != entities[0].Name {
		t.Fatalf("get returned %+v", got)
	}

	if err := repo.Delete(ctx, entities[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, entities[0].ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
	if got, err := repo.Get(ctx, entities[0].ID, ""); err != nil || got != nil {
		t.Fatalf("get after delete = %+v, %v", got, err)
	}
}

func TestFavoriteRepository_ToggleRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	userID := "itest-user-fav"
	_, _ = db.ExecContext(ctx, "DELETE FROM pokemon WHERE id LIKE 'itest-%'")
	_, _ = db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", userID)
	if _, err := db.ExecContext(ctx,
		"INSERT INTO users (id, username, password_hash) VALUES ($1, $2, $3)",
		userID, "itest-fav", "x"); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	repo := catalogrepo.NewPokemonRepository(db)
	entities := seedBatch(1, catalog.SourceCSV)
	if err := repo.CreateBatch(ctx, entities); err != nil {
		t.Fatalf("create: %v", err)
	}

	favorites := catalogrepo.NewFavoriteRepository(db)
	on, err := favorites.Toggle(ctx, userID, entities[0].ID)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !on {
		t.Fatal("first toggle should favorite")
	}

	ids, err := favorites.ListIDs(ctx, userID)
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != entities[0].ID {
		t.Fatalf("favorite ids = %v", ids)
	}

	got, err := repo.Get(ctx, entities[0].ID, userID)
	if err != nil {
		t.Fatalf("get with user: %v", err)
	}
	if got == nil || !got.IsFavorite {
		t.Fatalf("entity not flagged favorite: %+v", got)
	}

	off, err := favorites.Toggle(ctx, userID, entities[0].ID)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if off {
		t.Fatal("second toggle should unfavorite")
	}
}
