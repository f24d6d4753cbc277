package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SavedSession is what survives a restart.
type SavedSession struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Store persists the session between runs.  Load returns a zero
// SavedSession when nothing was saved.
type Store interface {
	Load() (SavedSession, error)
	Save(SavedSession) error
	Clear() error
}

// FileStore keeps the session in a JSON file readable only by its owner.
type FileStore struct {
	Path string
}

// DefaultSessionPath is <user config dir>/insurance-catalog/session.json.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "insurance-catalog", "session.json"), nil
}

func (s FileStore) Load() (SavedSession, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return SavedSession{}, nil
		}
		return SavedSession{}, fmt.Errorf("read session: %w", err)
	}
	var ss SavedSession
	if err := json.Unmarshal(data, &ss); err != nil {
		return SavedSession{}, fmt.Errorf("decode session: %w", err)
	}
	return ss, nil
}

func (s FileStore) Save(ss SavedSession) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(ss, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s FileStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu sync.Mutex
	ss SavedSession
}

func (m *MemoryStore) Load() (SavedSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ss, nil
}

func (m *MemoryStore) Save(ss SavedSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ss = ss
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ss = SavedSession{}
	return nil
}
