package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoCredentials is returned when no credential blob is stored
var ErrNoCredentials = errors.New("client: no stored credentials")

// CredentialStore persists the {user, token} blob between runs
type CredentialStore interface {
	Load() (*Auth, error)
	Save(auth *Auth) error
	Clear() error
}

// fileCredentialStore keeps the credential blob in a JSON file
type fileCredentialStore struct {
	path string
	mu   sync.Mutex
}

// NewFileCredentialStore creates a CredentialStore backed by the given
// file path
func NewFileCredentialStore(path string) CredentialStore {
	return &fileCredentialStore{path: path}
}

func (s *fileCredentialStore) Load() (*Auth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCredentials
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var auth Auth
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if auth.Token == "" {
		return nil, ErrNoCredentials
	}
	return &auth, nil
}

func (s *fileCredentialStore) Save(auth *Auth) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(auth, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credentials dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

func (s *fileCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// memoryCredentialStore holds the blob in process memory only. The
// mock service uses it so nothing touches disk.
type memoryCredentialStore struct {
	mu   sync.Mutex
	auth *Auth
}

// NewMemoryCredentialStore creates a CredentialStore that never persists
func NewMemoryCredentialStore() CredentialStore {
	return &memoryCredentialStore{}
}

func (s *memoryCredentialStore) Load() (*Auth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auth == nil {
		return nil, ErrNoCredentials
	}
	copied := *s.auth
	return &copied, nil
}

func (s *memoryCredentialStore) Save(auth *Auth) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *auth
	s.auth = &copied
	return nil
}

func (s *memoryCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = nil
	return nil
}
