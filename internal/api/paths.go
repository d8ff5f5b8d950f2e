// Package api provides the HTTP client for the ayurchat chat and auth backend.
package api

// GJSON paths for extracting values from backend responses.
const (
	PathAnswer   = "answer"
	PathQuestion = "question"
	PathError    = "error"
	PathDetail   = "detail"
	PathMessage  = "message"
	PathSuccess  = "success"
	PathEmail    = "email"
	PathName     = "name"
)

// Paths are the backend endpoint paths, relative to the base URL.
type Paths struct {
	Index  string
	Chat   string
	Login  string
	Logout string
}
