package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pokefinder-cloud/internal/auth"
	users "pokefinder-cloud/internal/users/domain"
)

// UserRepository is the persistence port the service needs.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*users.User, error)
	Get(ctx context.Context, id string) (*users.User, error)
	Create(ctx context.Context, user *users.User) error
}

// TokenRevoker records revoked session tokens.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// Session is an issued token plus the owning user's profile.
type Session struct {
	Token string        `json:"token"`
	User  users.Profile `json:"user"`
}

// Service provides register/login/logout.
type Service struct {
	repo     UserRepository
	revoker  TokenRevoker
	secret   []byte
	tokenTTL time.Duration
}

// NewService constructs a user service.
func NewService(repo UserRepository, revoker TokenRevoker, secret []byte, tokenTTL time.Duration) (*Service, error) {
	if repo == nil {
		return nil, errors.New("users service: nil repo")
	}
	if len(secret) == 0 {
		return nil, errors.New("users service: empty secret")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{repo: repo, revoker: revoker, secret: secret, tokenTTL: tokenTTL}, nil
}

// RegisterInput carries registration fields.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Register creates an account and returns a fresh session.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	if s == nil {
		return nil, errors.New("users service: nil service")
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, errors.New("users service: username required")
	}
	if len(input.Password) < 8 {
		return nil, errors.New("users service: password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &users.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.newSession(user)
}

// Login verifies credentials and returns a fresh session.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	if s == nil {
		return nil, errors.New("users service: nil service")
	}
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, users.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, users.ErrInvalidCredentials
	}
	return s.newSession(user)
}

// Logout revokes the presented token server-side.
func (s *Service) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s == nil {
		return errors.New("users service: nil service")
	}
	if s.revoker == nil || tokenID == "" {
		return nil
	}
	return s.revoker.Revoke(ctx, tokenID, expiresAt)
}

func (s *Service) newSession(user *users.User) (*Session, error) {
	token, err := auth.IssueToken(user.ID, user.Username, s.secret, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user.Profile()}, nil
}
