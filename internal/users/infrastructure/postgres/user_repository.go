package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	users "pokefinder-cloud/internal/users/domain"
)

const defaultUsersTable = "users"

// DBTX abstracts *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UserRepository is a Postgres implementation for accounts.
type UserRepository struct {
	db    DBTX
	table string
}

// NewUserRepository constructs a repository.
func NewUserRepository(db DBTX, opts ...UserOption) *UserRepository {
	repo := &UserRepository{db: db, table: defaultUsersTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// UserOption configures the repository.
type UserOption func(*UserRepository)

// WithUsersTable overrides the default table name.
func WithUsersTable(table string) UserOption {
	return func(repo *UserRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// GetByUsername loads a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	if username == "" {
		return nil, errors.New("user repo: empty username")
	}

	query := fmt.Sprintf(`
SELECT id, username, email, first_name, last_name, password_hash, created_at
FROM %s
WHERE username = $1
LIMIT 1`, r.table)

	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

// Get loads a user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*users.User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	if id == "" {
		return nil, errors.New("user repo: empty id")
	}

	query := fmt.Sprintf(`
SELECT id, username, email, first_name, last_name, password_hash, created_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// Create inserts a new user. Returns ErrUsernameTaken on conflict.
func (r *UserRepository) Create(ctx context.Context, user *users.User) error {
	if r == nil || r.db == nil {
		return errors.New("user repo: nil db")
	}
	if err := user.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (id, username, email, first_name, last_name, password_hash)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (username) DO NOTHING`, r.table)

	result, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return users.ErrUsernameTaken
	}
	return nil
}

func (r *UserRepository) scanOne(row *sql.Row) (*users.User, error) {
	var user users.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return &user, nil
}
