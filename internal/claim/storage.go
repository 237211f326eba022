package claim

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage persists the receipt images attached to claims. A claim record
// carries only the name returned by Save; the bytes live behind this
// interface so the database never holds image data.
type Storage interface {
	// Save stores a receipt image and returns the name to record on the claim
	Save(filename string, data []byte) (string, error)

	// Get returns the bytes of a stored receipt image
	Get(name string) ([]byte, error)

	// Delete removes a stored receipt image
	Delete(name string) error
}

// LocalStorage keeps receipt images as flat files in one directory. Names are
// already unique (the service prefixes the claim ID), so no sub-layout is
// needed for the single-tenant deployment this serves.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the receipt directory if it does not exist
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating receipt directory: %w", err)
	}

	return &LocalStorage{dir: dir}, nil
}

// receiptPath resolves a stored name inside the receipt directory. Names must
// be bare filenames; anything carrying path elements is rejected so a claim
// record can never reference a file outside the directory.
func (l *LocalStorage) receiptPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid receipt name %q", name)
	}
	return filepath.Join(l.dir, name), nil
}

// Save writes a receipt image. The directory is re-created on demand in case
// it was pruned while the server was running.
func (l *LocalStorage) Save(filename string, data []byte) (string, error) {
	path, err := l.receiptPath(filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return "", fmt.Errorf("creating receipt directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("storing receipt %s: %w", filename, err)
	}
	return filename, nil
}

// Get reads a stored receipt image
func (l *LocalStorage) Get(name string) ([]byte, error) {
	path, err := l.receiptPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading receipt %s: %w", name, err)
	}
	return data, nil
}

// Delete removes a stored receipt image
func (l *LocalStorage) Delete(name string) error {
	path, err := l.receiptPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting receipt %s: %w", name, err)
	}
	return nil
}
