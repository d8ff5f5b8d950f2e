package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/ayurchat/internal/widget"
)

// Messages produced by ProgramView. Each one mirrors a widget.View call.
type (
	showLoginMsg      struct{}
	showChatMsg       struct{}
	appendNodeMsg     struct{ node widget.Node }
	showThinkingMsg   struct{ text string }
	removeThinkingMsg struct{}
	clearInputMsg     struct{}
	sendEnabledMsg    struct{ enabled bool }
	scrollBottomMsg   struct{}
	alertMsg          struct{ text string }
)

// ProgramView implements widget.View by forwarding every call to a running
// bubbletea program, so the model is only ever mutated by its update loop.
// Calls made before Bind are dropped.
type ProgramView struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

var _ widget.View = (*ProgramView)(nil)

// NewProgramView creates an unbound view
func NewProgramView() *ProgramView {
	return &ProgramView{}
}

// Bind attaches the view to a program's Send function
func (v *ProgramView) Bind(send func(tea.Msg)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.send = send
}

func (v *ProgramView) post(msg tea.Msg) {
	v.mu.RLock()
	send := v.send
	v.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (v *ProgramView) ShowLoginScreen()            { v.post(showLoginMsg{}) }
func (v *ProgramView) ShowChatScreen()             { v.post(showChatMsg{}) }
func (v *ProgramView) AppendNode(node widget.Node) { v.post(appendNodeMsg{node: node}) }
func (v *ProgramView) ShowThinking(text string)    { v.post(showThinkingMsg{text: text}) }
func (v *ProgramView) RemoveThinking()             { v.post(removeThinkingMsg{}) }
func (v *ProgramView) ClearInput()                 { v.post(clearInputMsg{}) }
func (v *ProgramView) SetSendEnabled(enabled bool) { v.post(sendEnabledMsg{enabled: enabled}) }
func (v *ProgramView) ScrollToBottom()             { v.post(scrollBottomMsg{}) }
func (v *ProgramView) Alert(text string)           { v.post(alertMsg{text: text}) }
