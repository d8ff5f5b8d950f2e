package widget

import "github.com/diogo/ayurchat/internal/models"

// ViewState is which of the two screens is visible.
type ViewState int

const (
	LoginScreen ViewState = iota
	ChatScreen
)

func (s ViewState) String() string {
	switch s {
	case LoginScreen:
		return "login"
	case ChatScreen:
		return "chat"
	default:
		return "unknown"
	}
}

// View is everything the widget needs from a presentation surface.
// Implementations must tolerate calls from any goroutine.
type View interface {
	ShowLoginScreen()
	ShowChatScreen()
	AppendNode(node Node)
	ShowThinking(text string)
	RemoveThinking()
	ClearInput()
	SetSendEnabled(enabled bool)
	ScrollToBottom()
	Alert(text string)
}

// Node is a rendered transcript entry. Content is raw text; escaping and
// styling belong to the view.
type Node struct {
	Class   string
	Header  string
	Content string
	Role    models.Role
}

// Node classes
const (
	ClassUser      = "user-message"
	ClassAssistant = "bot-message"
)

// RenderMessage maps a message to its display node.
func RenderMessage(msg models.Message) Node {
	class := ClassAssistant
	if msg.Role == models.RoleUser {
		class = ClassUser
	}
	return Node{
		Class:   class,
		Header:  msg.Role.Label(),
		Content: msg.Content,
		Role:    msg.Role,
	}
}
