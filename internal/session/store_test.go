package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggedIn_DefaultsToFalse(t *testing.T) {
	s := NewMemoryStore()
	assert.False(t, LoggedIn(s))
}

func TestLoggedIn_OnlyLiteralTrue(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"false", false},
		{"TRUE", false},
		{"1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			s := NewMemoryStore()
			require.NoError(t, s.Set(FlagKey, tt.value))
			assert.Equal(t, tt.want, LoggedIn(s))
		})
	}
}

func TestSetLoggedIn_WritesLiterals(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, SetLoggedIn(s, true))
	v, ok := s.Get(FlagKey)
	require.True(t, ok)
	assert.Equal(t, "true", v)

	require.NoError(t, SetLoggedIn(s, false))
	v, _ = s.Get(FlagKey)
	assert.Equal(t, "false", v)
}

func TestMemoryStore_CookiesAreCopied(t *testing.T) {
	s := NewMemoryStore()
	in := []Cookie{{Name: "sessionid", Value: "abc"}}
	require.NoError(t, s.SetCookies(in))

	in[0].Value = "mutated"
	out := s.Cookies()
	assert.Equal(t, "abc", out[0].Value)

	out[0].Value = "mutated again"
	assert.Equal(t, "abc", s.Cookies()[0].Value)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s, err := OpenFileStore(path)
	require.NoError(t, err)
	assert.False(t, LoggedIn(s))

	require.NoError(t, SetLoggedIn(s, true))
	require.NoError(t, s.SetCookies([]Cookie{
		{Name: "csrftoken", Value: "tok"},
		{Name: "sessionid", Value: "sid"},
	}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	assert.True(t, LoggedIn(reopened))
	assert.Equal(t, s.Cookies(), reopened.Cookies())
	assert.Equal(t, path, reopened.Path())
}

func TestFileStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := OpenFileStore(path)
	require.NoError(t, err)
	require.NoError(t, SetLoggedIn(s, true))

	require.NoError(t, s.Clear())
	assert.False(t, LoggedIn(s))
	assert.Empty(t, s.Cookies())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing twice is fine
	require.NoError(t, s.Clear())
}

func TestOpenFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := OpenFileStore(path)
	assert.Error(t, err)
}

func TestOpenFileStore_NullValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"values":null}`), 0o600))

	s, err := OpenFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("k", "v"))
}

func TestDefaultPath(t *testing.T) {
	p := DefaultPath()
	assert.True(t, filepath.IsAbs(p))
	assert.Equal(t, "session.json", filepath.Base(p))
}
