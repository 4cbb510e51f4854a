package explorer

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Profile is the signed-in user's public view, kept alongside the token.
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Credentials is the persisted session state.
type Credentials struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// CredentialStore persists the session token and last-known profile in a
// local file, the explorer's equivalent of browser-local storage.
type CredentialStore struct {
	path string
}

// NewCredentialStore constructs a store rooted at path. An empty path
// defaults to a dotfile in the user's home directory.
func NewCredentialStore(path string) (*CredentialStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".pokefinder", "session.json")
	}
	return &CredentialStore{path: path}, nil
}

// Load reads the stored session. A missing file yields empty credentials,
// not an error.
func (s *CredentialStore) Load() (Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// Save writes the session to disk, creating parent directories as needed.
func (s *CredentialStore) Save(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the stored session. Clearing an absent session is a no-op.
func (s *CredentialStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
