package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const defaultRevokedTokensTable = "revoked_tokens"

// RevokedTokenRepository records logged-out session token ids.
type RevokedTokenRepository struct {
	db    DBTX
	table string
}

// NewRevokedTokenRepository constructs a repository.
func NewRevokedTokenRepository(db DBTX) *RevokedTokenRepository {
	return &RevokedTokenRepository{db: db, table: defaultRevokedTokensTable}
}

// Revoke marks a token id as revoked until its natural expiry.
func (r *RevokedTokenRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("token repo: nil db")
	}
	if tokenID == "" {
		return errors.New("token repo: empty token id")
	}

	query := fmt.Sprintf(`
INSERT INTO %s (token_id, expires_at)
VALUES ($1, $2)
ON CONFLICT (token_id) DO NOTHING`, r.table)

	_, err := r.db.ExecContext(ctx, query, tokenID, expiresAt.UTC())
	return err
}

// IsRevoked implements auth.TokenRevoker.
func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("token repo: nil db")
	}
	if tokenID == "" {
		return false, nil
	}

	query := fmt.Sprintf(`SELECT 1 FROM %s WHERE token_id = $1 LIMIT 1`, r.table)
	var one int
	if err := r.db.QueryRowContext(ctx, query, tokenID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Prune deletes revocation records whose tokens have expired anyway.
func (r *RevokedTokenRepository) Prune(ctx context.Context, now time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("token repo: nil db")
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at < $1`, r.table)
	_, err := r.db.ExecContext(ctx, query, now.UTC())
	return err
}
