package models

// ChatRequest is the body posted to the chat endpoint
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse is the success body of the chat endpoint
type ChatResponse struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer"`
}

// LoginRequest is the body posted to the login endpoint
type LoginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginResponse is the (optional) success body of the login endpoint.
// The widget only looks at the status code; these fields are informational.
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
}
