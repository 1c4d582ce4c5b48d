//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package authorizer

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store persists authorizer state. Load is tolerant of missing or
// malformed data; Save must be atomic with respect to crashes.
type Store interface {
	Load() (*AuthState, error)
	Save(*AuthState) error
}

// FileStore keeps the state in a single JSON file, written atomically
// via a temp file and rename.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (fs *FileStore) Load() (*AuthState, error) {
	raw, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return NewAuthState(), nil
	} else if err != nil {
		return nil, err
	}
	return parseState(raw), nil
}

func (fs *FileStore) Save(state *AuthState) error {
	raw, err := marshalState(state)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(fs.path), filepath.Base(fs.path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}

// MemStore keeps the state in memory only. It is used by tests and by
// servers configured without a durable auth store.
type MemStore struct {
	state []byte
}

func NewMemStore() *MemStore { return &MemStore{} }

func (ms *MemStore) Load() (*AuthState, error) {
	if ms.state == nil {
		return NewAuthState(), nil
	}
	return parseState(ms.state), nil
}

func (ms *MemStore) Save(state *AuthState) error {
	raw, err := marshalState(state)
	if err != nil {
		return err
	}
	ms.state = raw
	return nil
}
