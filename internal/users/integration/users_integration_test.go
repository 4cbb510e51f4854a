package integration_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"pokefinder-cloud/internal/auth"
	usersapp "pokefinder-cloud/internal/users/application"
	usersrepo "pokefinder-cloud/internal/users/infrastructure/postgres"

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
	`CREATE TABLE IF NOT EXISTS revoked_tokens (
	token_id TEXT PRIMARY KEY,
	expires_at TIMESTAMPTZ NOT NULL
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

func TestUsers_RegisterLoginLogoutLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	secret := []byte("integration-test-secret")

	_, _ = db.ExecContext(ctx, "DELETE FROM users WHERE username = 'itest-trainer'")
	_, _ = db.ExecContext(ctx, "DELETE FROM revoked_tokens")

	repo := usersrepo.NewUserRepository(db)
	revoker := usersrepo.NewRevokedTokenRepository(db)
	service, err := usersapp.NewService(repo, revoker, secret, time.Hour)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	session, err := service.Register(ctx, usersapp.RegisterInput{
		Username: "itest-trainer",
		Email:    "trainer@example.com",
		Password: "pikachu-is-best",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if session.Token == "" || session.User.Username != "itest-trainer" {
		t.Fatalf("session = %+v", session)
	}

	if _, err := service.Register(ctx, usersapp.RegisterInput{
		Username: "itest-trainer",
		Password: "another-password",
	}); err == nil {
		t.Fatal("duplicate username accepted")
	}

	if _, err := service.Login(ctx, "itest-trainer", "wrong-password"); err == nil {
		t.Fatal("wrong password accepted")
	}
	session, err = service.Login(ctx, "itest-trainer", "pikachu-is-best")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := auth.ParseToken(session.Token, secret)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if err := service.Logout(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		t.Fatalf("logout: %v", err)
	}

	revoked, err := revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if !revoked {
		t.Fatal("token not revoked after logout")
	}

	if err := revoker.Prune(ctx, time.Now().Add(2*time.Hour)); err != nil {
		t.Fatalf("prune: %v", err)
	}
	revoked, err = revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		t.Fatalf("is revoked after prune: %v", err)
	}
	if revoked {
		t.Fatal("expired revocation survived pruning")
	}
}
