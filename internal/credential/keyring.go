// Package credential keeps secrets in the system keyring instead of the
// config file.
package credential

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/99designs/keyring"

	"github.com/nhle/project-tracker/internal/model"
)

const serviceName = "tracker"

// JWTSecretKey is the keyring entry holding auth.jwt_secret.
const JWTSecretKey = "auth.jwt_secret"

// ErrNotFound is returned by Get when no entry exists for the key.
var ErrNotFound = errors.New("credential not found")

// Store reads and writes credentials in one opened keyring.
type Store struct {
	ring keyring.Keyring
}

// Open opens the first usable backend listed in cfg. The file backend
// encrypts entries under cfg.FileDir with cfg.FilePassword.
func Open(cfg model.CredentialsConfig) (*Store, error) {
	backends := make([]keyring.BackendType, 0, len(cfg.Backends))
	for _, b := range cfg.Backends {
		backends = append(backends, keyring.BackendType(b))
	}
	ring, err := keyring.Open(keyring.Config{
		ServiceName:              serviceName,
		AllowedBackends:          backends,
		FileDir:                  cfg.FileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(cfg.FilePassword),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Store{ring: ring}, nil
}

// Get retrieves a credential value by key.
func (s *Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key. A missing key is not an error.
func (s *Store) Delete(key string) error {
	err := s.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}
