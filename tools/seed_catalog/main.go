// Command seed_catalog provisions the schema and seeds demo data for local
// development and integration tests.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/crypto/bcrypt"
)

type config struct {
	dsn          string
	createSchema bool
	seedEntities int
	seedUser     string
	seedPassword string
}

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
	`CREATE TABLE IF NOT EXISTS revoked_tokens (
	token_id TEXT PRIMARY KEY,
	expires_at TIMESTAMPTZ NOT NULL
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
	`CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	actor TEXT NOT NULL DEFAULT '',
	action TEXT NOT NULL,
	resource_type TEXT NOT NULL DEFAULT '',
	resource_id TEXT NOT NULL DEFAULT '',
	metadata JSONB,
	payload_digest TEXT NOT NULL DEFAULT '',
	ip TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
}

var seedNames = []struct {
	name    string
	primary string
}{
	{"Bulbasaur", "Grass"},
	{"Charmander", "Fire"},
	{"Squirtle", "Water"},
	{"Pikachu", "Electric"},
	{"Jigglypuff", "Fairy"},
	{"Meowth", "Normal"},
	{"Psyduck", "Water"},
	{"Machop", "Fighting"},
	{"Geodude", "Rock"},
	{"Gastly", "Ghost"},
	{"Onix", "Rock"},
	{"Krabby", "Water"},
	{"Voltorb", "Electric"},
	{"Exeggcute", "Grass"},
	{"Cubone", "Ground"},
	{"Hitmonlee", "Fighting"},
	{"Koffing", "Poison"},
	{"Rhyhorn", "Ground"},
	{"Tangela", "Grass"},
	{"Kangaskhan", "Normal"},
	{"Horsea", "Water"},
	{"Staryu", "Water"},
	{"Scyther", "Bug"},
	{"Electabuzz", "Electric"},
	{"Magmar", "Fire"},
}

func main() {
	cfg := parseConfig()
	if cfg.dsn == "" {
		log.Fatal("PG_DSN or DATABASE_URL is required")
	}

	db, err := sql.Open("pgx", cfg.dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if cfg.createSchema {
		log.Printf("creating schema")
		for _, stmt := range schemaStatements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				log.Fatalf("create schema: %v", err)
			}
		}
	}

	if cfg.seedUser != "" {
		if err := seedUser(ctx, db, cfg.seedUser, cfg.seedPassword); err != nil {
			log.Fatalf("seed user: %v", err)
		}
		log.Printf("seeded user %q", cfg.seedUser)
	}

	if cfg.seedEntities > 0 {
		count, err := seedEntities(ctx, db, cfg.seedEntities)
		if err != nil {
			log.Fatalf("seed entities: %v", err)
		}
		log.Printf("seeded %d entities", count)
	}
}

func parseConfig() config {
	var cfg config
	flag.StringVar(&cfg.dsn, "dsn", envDefault("PG_DSN", os.Getenv("DATABASE_URL")), "postgres dsn")
	flag.BoolVar(&cfg.createSchema, "create-schema", true, "create tables if missing")
	flag.IntVar(&cfg.seedEntities, "entities", 25, "number of demo entities to insert (0 to skip)")
	flag.StringVar(&cfg.seedUser, "user", "ash", "demo username to create (empty to skip)")
	flag.StringVar(&cfg.seedPassword, "password", "pikachu-rules", "demo user password")
	flag.Parse()
	return cfg
}

func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func seedUser(ctx context.Context, db *sql.DB, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
INSERT INTO users (id, username, email, password_hash)
VALUES ($1, $2, $3, $4)
ON CONFLICT (username) DO NOTHING`,
		uuid.NewString(), username, username+"@example.test", string(hash))
	return err
}

func seedEntities(ctx context.Context, db *sql.DB, limit int) (int, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck // rollback is a no-op after commit

	count := 0
	for i := 0; i < limit && i < len(seedNames); i++ {
		seed := seedNames[i]
		moves, _ := json.Marshal([]string{"tackle", "growl"})
		_, err := tx.ExecContext(ctx, `
INSERT INTO pokemon (
	id, name, type_primary, latitude, longitude, location_name, sprite, moves, source
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'API')
ON CONFLICT (id) DO NOTHING`,
			uuid.NewString(),
			seed.name,
			seed.primary,
			34.01+rng.Float64()*0.11,
			-118.50+rng.Float64()*0.34,
			"Los Angeles",
			fmt.Sprintf("https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/%d.png", i+1),
			moves,
		)
		if err != nil {
			return count, err
		}
		count++
	}
	return count, tx.Commit()
}
