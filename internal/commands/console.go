package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/ayurchat/internal/models"
	"github.com/diogo/ayurchat/internal/render"
	"github.com/diogo/ayurchat/internal/widget"
)

// consoleView prints the widget's effects as plain lines, for the
// non-interactive login, logout and status commands.
type consoleView struct {
	out        io.Writer
	renderOpts render.Options
	width      int
}

var _ widget.View = (*consoleView)(nil)

func newConsoleView(out io.Writer, opts render.Options, width int) *consoleView {
	return &consoleView{out: out, renderOpts: opts, width: width}
}

func (v *consoleView) ShowLoginScreen() {
	fmt.Fprintln(v.out, dimStyle().Render("Not logged in. Run 'ayurchat login --email <email> --name <name>' to start."))
}

func (v *consoleView) ShowChatScreen() {
	fmt.Fprintln(v.out, successStyle().Render("✓ Logged in. Run 'ayurchat chat' to start chatting."))
}

func (v *consoleView) AppendNode(node widget.Node) {
	fmt.Fprintln(v.out, renderAnswerBlock(node, v.width, v.renderOpts))
}

func (v *consoleView) ShowThinking(text string) {
	fmt.Fprintln(v.out, dimStyle().Italic(true).Render(text))
}

func (v *consoleView) RemoveThinking()     {}
func (v *consoleView) ClearInput()         {}
func (v *consoleView) SetSendEnabled(bool) {}
func (v *consoleView) ScrollToBottom()     {}

func (v *consoleView) Alert(text string) {
	fmt.Fprintln(v.out, alertStyle().Render("! "+text))
}

// renderAnswerBlock draws a transcript entry as a labelled bubble
func renderAnswerBlock(node widget.Node, width int, opts render.Options) string {
	bubbleWidth := width - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	theme := render.GetTUITheme()
	color := theme.Secondary
	content := render.Sanitize(node.Content)
	icon := "● "
	if node.Role == models.RoleAssistant {
		color = theme.Primary
		content = render.Answer(node.Content, opts.WithWidth(contentWidth))
		icon = "🕉 "
	}

	label := lipgloss.NewStyle().Foreground(color).Bold(true).Render(icon + node.Header)
	bubble := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Foreground(theme.Text).
		Padding(0, 1).
		Width(bubbleWidth).
		Render(content)
	return label + "\n" + bubble
}

func dimStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(render.GetTUITheme().TextDim)
}

func successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(render.GetTUITheme().Primary).Bold(true)
}

func alertStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(render.GetTUITheme().Warning).Bold(true)
}
