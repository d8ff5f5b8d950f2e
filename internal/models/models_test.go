package models

import "testing"

func TestRoleLabel(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "AyurVeda Assistant"},
		{Role("system"), "AyurVeda Assistant"},
	}

	for _, tt := range tests {
		if got := tt.role.Label(); got != tt.want {
			t.Errorf("Role(%q).Label() = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestMessageConstructors(t *testing.T) {
	u := UserMessage("hi")
	if u.Role != RoleUser || u.Content != "hi" {
		t.Errorf("UserMessage() = %+v", u)
	}

	a := AssistantMessage("hello")
	if a.Role != RoleAssistant || a.Content != "hello" {
		t.Errorf("AssistantMessage() = %+v", a)
	}
}

func TestWelcomeText(t *testing.T) {
	if got := WelcomeText("Ann"); got != "Welcome, Ann!" {
		t.Errorf("WelcomeText() = %q", got)
	}
}

func TestJSONHeaders(t *testing.T) {
	h := JSONHeaders()
	if h["Content-Type"] != "application/json" {
		t.Errorf("Content-Type = %q", h["Content-Type"])
	}
	if _, ok := DefaultHeaders()["Content-Type"]; ok {
		t.Error("DefaultHeaders() must not carry a Content-Type")
	}
}
