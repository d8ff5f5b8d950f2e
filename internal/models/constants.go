// Package models contains data types and constants for the ayurchat backend API.
package models

import "fmt"

// Default backend location and endpoint paths, relative to the base URL.
const (
	DefaultBaseURL    = "http://127.0.0.1:8000"
	DefaultIndexPath  = "/api/"
	DefaultChatPath   = "/api/chat/"
	DefaultLoginPath  = "/api/login/"
	DefaultLogoutPath = "/api/logout/"
)

// CSRF round-trip names. The backend decides both; the client only echoes
// the cookie value back in the header.
const (
	DefaultCSRFCookie = "csrftoken"
	DefaultCSRFHeader = "X-CSRFToken"
	SessionCookie     = "sessionid"
)

// RequestIDHeader carries a per-request UUID for log correlation.
const RequestIDHeader = "X-Request-ID"

// Fixed user-facing texts.
const (
	AssistantName       = "AyurVeda Assistant"
	UserName            = "You"
	ThinkingText        = "🕉️ AyurVeda Assistant is thinking..."
	FallbackAnswer      = "🙏 I apologize, but I encountered an error. Please check the server logs."
	LoginValidationText = "Please enter both email and name."
	LoginFailedText     = "Login failed."
	LoginErrorText      = "An error occurred during login."
	LogoutText          = "You have been logged out."
)

// WelcomeText is the confirmation shown after a successful login.
func WelcomeText(name string) string {
	return fmt.Sprintf("Welcome, %s!", name)
}

// DefaultHeaders returns the headers sent with every backend request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Accept":          "application/json",
		"Accept-Language": "en-US,en;q=0.9",
		"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// JSONHeaders returns the headers for requests carrying a JSON body
func JSONHeaders() map[string]string {
	h := DefaultHeaders()
	h["Content-Type"] = "application/json"
	return h
}
