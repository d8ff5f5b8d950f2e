package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/diogo/ayurchat/internal/api"
	"github.com/diogo/ayurchat/internal/browser"
	"github.com/diogo/ayurchat/internal/session"
)

type testEnv struct {
	deps   *Dependencies
	client *api.MockClient
	store  *session.MemoryStore
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	copied []string
}

// newTestEnv isolates config and logs in a temp HOME and wires mocks
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	env := &testEnv{
		client: &api.MockClient{},
		store:  session.NewMemoryStore(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	env.deps = &Dependencies{
		Client: env.client,
		Store:  env.store,
		TUI:    &DefaultTUI{},
		Clipboard: func(s string) error {
			env.copied = append(env.copied, s)
			return nil
		},
		ExtractCookies: func(context.Context, browser.SupportedBrowser, string, ...string) (*browser.ExtractResult, error) {
			return nil, errors.New("browser access disabled in tests")
		},
		StdoutIsTTY: func() bool { return false },
		Stdin:       &bytes.Buffer{},
		Stdout:      env.stdout,
		Stderr:      env.stderr,
	}
	return env
}

func (e *testEnv) run(args ...string) error {
	cmd := NewRootCmd(e.deps)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}
