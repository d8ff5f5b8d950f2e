package commands

import (
	"errors"
	"strings"
	"testing"

	apierrors "github.com/diogo/ayurchat/internal/errors"
	"github.com/diogo/ayurchat/internal/models"
	"github.com/diogo/ayurchat/internal/session"
)

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	env.client.CookiesVal = []session.Cookie{{Name: "sessionid", Value: "abc"}, {Name: "csrftoken", Value: "tok"}}

	if err := env.run("login", "--email", " asha@example.com ", "--name", "Asha"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(env.client.LoginCalls) != 1 || env.client.LoginCalls[0] != [2]string{"asha@example.com", "Asha"} {
		t.Errorf("LoginCalls = %v", env.client.LoginCalls)
	}
	if !session.LoggedIn(env.store) {
		t.Error("flag should be set after login")
	}
	out := env.stdout.String()
	if !strings.Contains(out, models.WelcomeText("Asha")) {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(out, "Logged in") {
		t.Errorf("chat screen not shown: %q", out)
	}
	if len(env.store.Cookies()) != 2 {
		t.Errorf("cookies not persisted: %v", env.store.Cookies())
	}
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		loginErr  error
		wantAlert string
		wantCalls int
		check     func(error) bool
	}{
		{
			name:      "missing name",
			args:      []string{"login", "--email", "asha@example.com"},
			wantAlert: models.LoginValidationText,
			wantCalls: 0,
			check:     apierrors.IsValidationError,
		},
		{
			name:      "blank email",
			args:      []string{"login", "--email", "   ", "--name", "Asha"},
			wantAlert: models.LoginValidationText,
			wantCalls: 0,
			check:     apierrors.IsValidationError,
		},
		{
			name:      "rejected",
			args:      []string{"login", "--email", "a@b.c", "--name", "A"},
			loginErr:  apierrors.NewAuthError(401, models.DefaultLoginPath, "unknown user"),
			wantAlert: models.LoginFailedText,
			wantCalls: 1,
			check:     apierrors.IsAuthError,
		},
		{
			name:      "network",
			args:      []string{"login", "--email", "a@b.c", "--name", "A"},
			loginErr:  apierrors.NewNetworkError("login", models.DefaultLoginPath, errors.New("connection refused")),
			wantAlert: models.LoginErrorText,
			wantCalls: 1,
			check:     apierrors.IsNetworkError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.client.LoginErr = tt.loginErr

			err := env.run(tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error type: %v", err)
			}
			if !strings.Contains(env.stdout.String(), tt.wantAlert) {
				t.Errorf("stdout = %q, want alert %q", env.stdout.String(), tt.wantAlert)
			}
			if len(env.client.LoginCalls) != tt.wantCalls {
				t.Errorf("LoginCalls = %d, want %d", len(env.client.LoginCalls), tt.wantCalls)
			}
			if session.LoggedIn(env.store) {
				t.Error("flag must stay unset")
			}
		})
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	if err := session.SetLoggedIn(env.store, true); err != nil {
		t.Fatal(err)
	}

	if err := env.run("logout"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, logout := env.client.Calls(); logout != 1 {
		t.Errorf("LogoutCalls = %d, want 1", logout)
	}
	if v, _ := env.store.Get(session.FlagKey); v != "false" {
		t.Errorf("flag = %q, want false", v)
	}
	if !strings.Contains(env.stdout.String(), models.LogoutText) {
		t.Errorf("stdout = %q", env.stdout.String())
	}
}

func TestLogout_BackendErrorIsOnlyLogged(t *testing.T) {
	env := newTestEnv(t)
	env.client.LogoutErr = errors.New("server down")

	if err := env.run("logout"); err != nil {
		t.Fatalf("logout should not fail on backend error: %v", err)
	}
	if session.LoggedIn(env.store) {
		t.Error("flag should be cleared anyway")
	}
}

func TestStatus(t *testing.T) {
	t.Run("logged out", func(t *testing.T) {
		env := newTestEnv(t)
		if err := env.run("status"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := env.stdout.String()
		if !strings.Contains(out, "Not logged in") {
			t.Errorf("stdout = %q", out)
		}
		if !strings.Contains(out, "Session cookie: no") {
			t.Errorf("stdout = %q", out)
		}
		if ask, login, logout := env.client.Calls(); ask+login+logout != 0 {
			t.Error("status must not call the backend")
		}
	})

	t.Run("logged in with session", func(t *testing.T) {
		env := newTestEnv(t)
		_ = session.SetLoggedIn(env.store, true)
		_ = env.store.SetCookies([]session.Cookie{{Name: "sessionid", Value: "abc"}})
		env.client.CookiesVal = env.store.Cookies()

		if err := env.run("status"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := env.stdout.String()
		if !strings.Contains(out, "Logged in") || !strings.Contains(out, "Session cookie: yes") {
			t.Errorf("stdout = %q", out)
		}
		if !strings.Contains(out, "CSRF cookie:    no") {
			t.Errorf("stdout = %q", out)
		}
	})
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)
	env.client.IndexVal = "Welcome to the AyurVeda API"

	if err := env.run("ping"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.client.IndexCalls != 1 {
		t.Errorf("IndexCalls = %d, want 1", env.client.IndexCalls)
	}
	out := env.stdout.String()
	if !strings.Contains(out, models.DefaultBaseURL) || !strings.Contains(out, "Welcome to the AyurVeda API") {
		t.Errorf("stdout = %q", out)
	}
}

func TestPing_Error(t *testing.T) {
	env := newTestEnv(t)
	env.client.IndexErr = apierrors.NewNetworkError("index", models.DefaultIndexPath, errors.New("refused"))

	err := env.run("ping")
	if err == nil || !apierrors.IsNetworkError(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}
