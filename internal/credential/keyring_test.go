package credential

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nhle/project-tracker/internal/model"
)

func openFileStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(model.CredentialsConfig{
		Backends:     []string{"file"},
		FileDir:      dir,
		FilePassword: "test-key",
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestFileBackendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := openFileStore(t, dir)

	if _, err := s.Get(JWTSecretKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty keyring = %v, want ErrNotFound", err)
	}

	if err := s.Set(JWTSecretKey, "first"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(JWTSecretKey, "second"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	// A fresh handle over the same directory sees the stored value.
	got, err := openFileStore(t, dir).Get(JWTSecretKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "second" {
		t.Errorf("Get = %q, want second", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("keyring dir has %d entries, want 1", len(entries))
	}
	raw, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(raw) == "second" {
		t.Error("secret stored in plain text")
	}

	if err := s.Delete(JWTSecretKey); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(JWTSecretKey); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(JWTSecretKey); err != nil {
		t.Errorf("second Delete = %v, want nil", err)
	}
}

func TestFileBackendWrongPassword(t *testing.T) {
	dir := t.TempDir()
	if err := openFileStore(t, dir).Set(JWTSecretKey, "secret"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	other, err := Open(model.CredentialsConfig{Backends: []string{"file"}, FileDir: dir, FilePassword: "wrong"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := other.Get(JWTSecretKey); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Get with wrong password = %v, want a decryption error", err)
	}
}
