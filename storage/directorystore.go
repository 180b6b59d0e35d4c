package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

/*
DirectoryStore stores objects as files under a local directory. Keys may
contain slashes, which map to subdirectories. This is the provider used for
locally packed tile datasets.
*/

////////////////////////////////////////////////////////////////////////////////

// DirectoryStore is a directory-backed store.
type DirectoryStore struct {
	root string
}

// NewDirectoryStore creates a new DirectoryStore rooted at root.
func NewDirectoryStore(root string) *DirectoryStore {
	return &DirectoryStore{root: root}
}

// Put stores an object in the directory, creating intermediate directories
// as needed.
func (d *DirectoryStore) Put(_ context.Context, key string, data []byte) error {
	path := filepath.Join(d.root, key)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write failure: %w", err)
	}
	return nil
}

// Get retrieves an object from the directory.
func (d *DirectoryStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.root, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("read failure: %w", err)
	}
	return data, nil
}

// Delete removes an object from the directory.
func (d *DirectoryStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(filepath.Join(d.root, key)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

func (d *DirectoryStore) String() string {
	return "directory:" + d.root
}
