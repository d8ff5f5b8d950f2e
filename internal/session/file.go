package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileData is the on-disk layout of a FileStore.
type fileData struct {
	Values  map[string]string `json:"values"`
	Cookies []Cookie          `json:"cookies,omitempty"`
}

// FileStore is a Store and CookieStore backed by a JSON file.
type FileStore struct {
	path string
	mu   sync.RWMutex
	data fileData
}

// DefaultPath returns the per-user session file under the OS temp directory
func DefaultPath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("ayurchat-%d", os.Getuid()), "session.json")
}

// OpenFileStore loads the store at path, starting empty if it doesn't exist
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		data: fileData{Values: make(map[string]string)},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", path, err)
	}
	if s.data.Values == nil {
		s.data.Values = make(map[string]string)
	}

	return s, nil
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data.Values[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Values[key] = value
	return s.saveLocked()
}

func (s *FileStore) Cookies() []Cookie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyCookies(s.data.Cookies)
}

func (s *FileStore) SetCookies(cookies []Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Cookies = copyCookies(cookies)
	return s.saveLocked()
}

// Clear removes every value and cookie and deletes the file
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = fileData{Values: make(map[string]string)}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// saveLocked writes the file atomically. MUST be called with s.mu held.
func (s *FileStore) saveLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to chmod session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	return nil
}
