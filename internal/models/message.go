package models

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Label returns the display header for the role
func (r Role) Label() string {
	if r == RoleUser {
		return UserName
	}
	return AssistantName
}

// Message represents one entry of the visible transcript
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a message authored by the user
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds a message authored by the assistant
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
