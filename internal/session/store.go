// Package session keeps the client-side login flag and the backend session
// cookies between invocations.
//
// The default FileStore lives under the OS temp directory, so like a browser's
// sessionStorage it does not survive a reboot. The flag is trusted on read; the
// backend is never asked whether the session is still valid.
package session

import (
	"strconv"
	"sync"
)

// FlagKey is the fixed key the logged-in flag is stored under.
const FlagKey = "isLoggedIn"

// Store is a string key/value store scoped to the current session.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// CookieStore persists the backend's cookies between client instances.
type CookieStore interface {
	Cookies() []Cookie
	SetCookies(cookies []Cookie) error
}

// LoggedIn reports whether the flag holds the literal "true".
func LoggedIn(s Store) bool {
	v, ok := s.Get(FlagKey)
	return ok && v == "true"
}

// SetLoggedIn writes "true" or "false" under FlagKey.
func SetLoggedIn(s Store, loggedIn bool) error {
	return s.Set(FlagKey, strconv.FormatBool(loggedIn))
}

// MemoryStore is an in-process Store and CookieStore.
type MemoryStore struct {
	mu      sync.RWMutex
	values  map[string]string
	cookies []Cookie
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Cookies() []Cookie {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyCookies(m.cookies)
}

func (m *MemoryStore) SetCookies(cookies []Cookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cookies = copyCookies(cookies)
	return nil
}
