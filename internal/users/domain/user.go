package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound indicates the user does not exist.
	ErrNotFound = errors.New("users: not found")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("users: username taken")
	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("users: invalid credentials")
)

// User represents a registered account.
type User struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
}

// Validate checks required fields.
func (u *User) Validate() error {
	if u == nil {
		return errors.New("users: nil user")
	}
	if strings.TrimSpace(u.Username) == "" {
		return errors.New("users: empty username")
	}
	if u.PasswordHash == "" {
		return errors.New("users: empty password hash")
	}
	return nil
}

// Profile is the public view of a user returned by the API.
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Profile returns the public view of the user.
func (u *User) Profile() Profile {
	if u == nil {
		return Profile{}
	}
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
