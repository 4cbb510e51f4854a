package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	catalog "pokefinder-cloud/internal/catalog/domain"
)

const (
	defaultPokemonTable   = "pokemon"
	defaultFavoritesTable = "favorite_pokemon"
)

// DBTX abstracts *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner can open transactions; *sql.DB satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// PokemonRepository is a Postgres implementation for catalog entities.
type PokemonRepository struct {
	db       DBTX
	tx       TxBeginner
	table    string
	favTable string
}

// NewPokemonRepository constructs a repository. db is used for queries; when
// it is also a TxBeginner (a *sql.DB), batch inserts run in one transaction.
func NewPokemonRepository(db DBTX, opts ...PokemonOption) *PokemonRepository {
	repo := &PokemonRepository{db: db, table: defaultPokemonTable, favTable: defaultFavoritesTable}
	if beginner, ok := db.(TxBeginner); ok {
		repo.tx = beginner
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// PokemonOption configures the repository.
type PokemonOption func(*PokemonRepository)

// WithPokemonTable overrides the default table name.
func WithPokemonTable(table string) PokemonOption {
	return func(repo *PokemonRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// ListFilter narrows a catalog listing.
type ListFilter struct {
	Source string
	Search string
	UserID string
	Page   int
	Size   int
}

// List returns one page of entities ordered by name, with the total count
// and the requesting user's favorite flags resolved.
func (r *PokemonRepository) List(ctx context.Context, filter ListFilter) (catalog.Page, error) {
	if r == nil || r.db == nil {
		return catalog.Page{}, errors.New("pokemon repo: nil db")
	}
	if filter.Page < 1 {
		return catalog.Page{}, catalog.ErrInvalidPage
	}
	if filter.Size <= 0 {
		filter.Size = catalog.DefaultPageSize
	}

	where, args := r.buildWhere(filter)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s p %s`, r.table, where)
	var count int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return catalog.Page{}, err
	}

	page := catalog.Page{Number: filter.Page, Count: count, PageSize: filter.Size}
	if err := page.ValidateNumber(); err != nil {
		return catalog.Page{}, err
	}

	favJoin := "FALSE AS is_favorite"
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		favJoin = fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s f WHERE f.pokemon_id = p.id AND f.user_id = $%d) AS is_favorite",
			r.favTable, len(args))
	}

	args = append(args, filter.Size, (filter.Page-1)*filter.Size)
	listQuery := fmt.Sprintf(`
SELECT p.id, p.name, p.type_primary, p.type_secondary, p.latitude, p.longitude,
	p.location_name, p.sprite, p.moves, p.abilities, p.stats,
	p.height, p.weight, p.category, p.source, p.uploaded_by, p.created_at,
	%s
FROM %s p
%s
ORDER BY p.name, p.id
LIMIT $%d OFFSET $%d`, favJoin, r.table, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return catalog.Page{}, err
	}
	defer rows.Close()

	for rows.Next() {
		entity, err := scanPokemon(rows)
		if err != nil {
			return catalog.Page{}, err
		}
		page.Items = append(page.Items, *entity)
	}
	if err := rows.Err(); err != nil {
		return catalog.Page{}, err
	}
	return page, nil
}

func (r *PokemonRepository) buildWhere(filter ListFilter) (string, []any) {
	var clauses []string
	var args []any
	if filter.Source != "" {
		args = append(args, filter.Source)
		clauses = append(clauses, fmt.Sprintf("p.source = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		idx := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(p.name ILIKE $%d OR p.type_primary ILIKE $%d OR p.type_secondary ILIKE $%d OR p.category ILIKE $%d)",
			idx, idx, idx, idx))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// Get loads one entity by id; favorite flag is resolved for userID when set.
func (r *PokemonRepository) Get(ctx context.Context, id, userID string) (*catalog.Pokemon, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("pokemon repo: nil db")
	}
	if id == "" {
		return nil, errors.New("pokemon repo: empty id")
	}

	favJoin := "FALSE AS is_favorite"
	args := []any{id}
	if userID != "" {
		args = append(args, userID)
		favJoin = fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s f WHERE f.pokemon_id = p.id AND f.user_id = $2) AS is_favorite",
			r.favTable)
	}

	query := fmt.Sprintf(`
SELECT p.id, p.name, p.type_primary, p.type_secondary, p.latitude, p.longitude,
	p.location_name, p.sprite, p.moves, p.abilities, p.stats,
	p.height, p.weight, p.category, p.source, p.uploaded_by, p.created_at,
	%s
FROM %s p
WHERE p.id = $1
LIMIT 1`, favJoin, r.table)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return scanPokemon(rows)
}

// All streams every entity, unpaginated, for map marker derivation and exports.
func (r *PokemonRepository) All(ctx context.Context) ([]catalog.Pokemon, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("pokemon repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT p.id, p.name, p.type_primary, p.type_secondary, p.latitude, p.longitude,
	p.location_name, p.sprite, p.moves, p.abilities, p.stats,
	p.height, p.weight, p.category, p.source, p.uploaded_by, p.created_at,
	FALSE AS is_favorite
FROM %s p
ORDER BY p.name, p.id`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Pokemon
	for rows.Next() {
		entity, err := scanPokemon(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *entity)
	}
	return result, rows.Err()
}

// CreateBatch inserts entities in a single transaction so partial imports are
// rolled back on error.
func (r *PokemonRepository) CreateBatch(ctx context.Context, entities []catalog.Pokemon) error {
	if r == nil || r.db == nil {
		return errors.New("pokemon repo: nil db")
	}
	if len(entities) == 0 {
		return nil
	}
	for i := range entities {
		if err := entities[i].Validate(); err != nil {
			return err
		}
	}

	if r.tx == nil {
		for i := range entities {
			if err := r.insertOne(ctx, r.db, &entities[i]); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := r.tx.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // rollback is a no-op after commit

	for i := range entities {
		if err := r.insertOne(ctx, tx, &entities[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PokemonRepository) insertOne(ctx context.Context, db DBTX, entity *catalog.Pokemon) error {
	moves, err := json.Marshal(orEmptySlice(entity.Moves))
	if err != nil {
		return err
	}
	abilities, err := json.Marshal(orEmptySlice(entity.Abilities))
	if err != nil {
		return err
	}
	stats, err := json.Marshal(orEmptyMap(entity.Stats))
	if err != nil {
		return err
	}

	var lat, lng sql.NullFloat64
	if entity.Coordinate != nil {
		lat = sql.NullFloat64{Float64: entity.Coordinate.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: entity.Coordinate.Longitude, Valid: true}
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, name, type_primary, type_secondary, latitude, longitude,
	location_name, sprite, moves, abilities, stats,
	height, weight, category, source, uploaded_by
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16
)`, r.table)

	_, err = db.ExecContext(ctx, query,
		entity.ID, entity.Name, entity.TypePrimary, entity.TypeSecondary, lat, lng,
		entity.LocationName, entity.Sprite, moves, abilities, stats,
		entity.Height, entity.Weight, entity.Category, string(entity.Source), nullString(entity.UploadedBy),
	)
	return err
}

// Delete removes an entity. Returns catalog.ErrNotFound when absent.
func (r *PokemonRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("pokemon repo: nil db")
	}
	if id == "" {
		return errors.New("pokemon repo: empty id")
	}
	result, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func scanPokemon(rows *sql.Rows) (*catalog.Pokemon, error) {
	var (
		entity     catalog.Pokemon
		lat, lng   sql.NullFloat64
		uploadedBy sql.NullString
		moves      []byte
		abilities  []byte
		stats      []byte
	)
	if err := rows.Scan(
		&entity.ID,
		&entity.Name,
		&entity.TypePrimary,
		&entity.TypeSecondary,
		&lat,
		&lng,
		&entity.LocationName,
		&entity.Sprite,
		&moves,
		&abilities,
		&stats,
		&entity.Height,
		&entity.Weight,
		&entity.Category,
		&entity.Source,
		&uploadedBy,
		&entity.CreatedAt,
		&entity.IsFavorite,
	); err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		entity.Coordinate = &catalog.Coordinate{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	entity.UploadedBy = uploadedBy.String
	entity.CreatedAt = entity.CreatedAt.UTC()
	if err := json.Unmarshal(moves, &entity.Moves); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(abilities, &entity.Abilities); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stats, &entity.Stats); err != nil {
		return nil, err
	}
	return &entity, nil
}

func orEmptySlice(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func orEmptyMap(values map[string]int) map[string]int {
	if values == nil {
		return map[string]int{}
	}
	return values
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
