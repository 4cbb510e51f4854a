package postgres

import (
	"context"
	"errors"
	"fmt"
)

// FavoriteRepository manages per-user favorite flags.
type FavoriteRepository struct {
	db    DBTX
	table string
}

// NewFavoriteRepository constructs a repository.
func NewFavoriteRepository(db DBTX) *FavoriteRepository {
	return &FavoriteRepository{db: db, table: defaultFavoritesTable}
}

// Toggle flips the favorite flag for (userID, pokemonID) and reports the new
// state: true when the entity is now a favorite.
func (r *FavoriteRepository) Toggle(ctx context.Context, userID, pokemonID string) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("favorite repo: nil db")
	}
	if userID == "" || pokemonID == "" {
		return false, errors.New("favorite repo: empty key")
	}

	insert := fmt.Sprintf(`
INSERT INTO %s (user_id, pokemon_id)
VALUES ($1, $2)
ON CONFLICT (user_id, pokemon_id) DO NOTHING`, r.table)

	result, err := r.db.ExecContext(ctx, insert, userID, pokemonID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return true, nil
	}

	remove := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND pokemon_id = $2`, r.table)
	if _, err := r.db.ExecContext(ctx, remove, userID, pokemonID); err != nil {
		return false, err
	}
	return false, nil
}

// ListIDs returns the ids of a user's favorite entities.
func (r *FavoriteRepository) ListIDs(ctx context.Context, userID string) ([]string, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("favorite repo: nil db")
	}
	if userID == "" {
		return nil, errors.New("favorite repo: empty user id")
	}

	query := fmt.Sprintf(`SELECT pokemon_id FROM %s WHERE user_id = $1 ORDER BY created_at`, r.table)
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
