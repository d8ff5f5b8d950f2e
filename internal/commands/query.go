package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/ayurchat/internal/config"
	"github.com/diogo/ayurchat/internal/models"
	"github.com/diogo/ayurchat/internal/render"
	"github.com/diogo/ayurchat/internal/session"
	"github.com/diogo/ayurchat/internal/tui"
	"github.com/diogo/ayurchat/internal/widget"
)

// Gradient colors for the spinner: saffron, turmeric, leaf and lotus
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff9933"),
	lipgloss.Color("#e3a018"),
	lipgloss.Color("#f4c542"),
	lipgloss.Color("#9ccc65"),
	lipgloss.Color("#4caf50"),
	lipgloss.Color("#26a69a"),
	lipgloss.Color("#ec8fb0"),
	lipgloss.Color("#d4737f"),
}

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

// newSpinner creates a new animated spinner writing to out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	spinIdx := s.frame % len(chars)
	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(render.GetTUITheme().TextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(render.GetTUITheme().Text).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s", spinnerChar, msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done
	fmt.Fprintln(s.out, successStyle().Render("✓ "+message))
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// NewAskCmd creates the one-shot ask command
func NewAskCmd(deps *Dependencies) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Long: `Send one question to the assistant and print the answer.

The question is read from --file, piped stdin or the argument. When stdout
is not a terminal only the raw answer is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			question, ok, err := readQuestion(deps.Stdin, args, file)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no question given")
			}

			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			return runAsk(cmd.Context(), deps, cfg, question, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Save the answer to a file")
	cmd.Flags().StringP("file", "f", "", "Read the question from a file")
	return cmd
}

// runAsk sends one question and prints or saves the answer. Decoration goes
// to stderr and is skipped when stdout is not a terminal.
func runAsk(ctx context.Context, deps *Dependencies, cfg config.Config, question, output string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}
	rawOutput := !deps.stdoutIsTTY()

	store, client, err := deps.backend(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if !session.LoggedIn(store) {
		logger().Debug().Msg("asking without a login flag; the backend decides")
	}

	var spin *spinner
	if !rawOutput {
		spin = newSpinner(deps.Stderr, "Consulting the "+models.AssistantName)
		spin.start()
	}

	start := time.Now()
	resp, err := client.Ask(ctx, question)
	elapsed := time.Since(start)
	persistCookies(store, client)

	if err != nil {
		if !rawOutput {
			spin.stopWithError()
		}
		return fmt.Errorf("ask failed: %w", err)
	}
	if !rawOutput {
		spin.stopWithSuccess("Done")
	}
	logger().Debug().Dur("elapsed", elapsed).Int("answer_len", len(resp.Answer)).Msg("answer received")

	text := resp.Answer

	if rawOutput {
		if output != "" {
			return writeAnswer(output, text)
		}
		fmt.Fprint(deps.Stdout, text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(deps.Stdout)
		}
		return nil
	}

	fmt.Fprintln(deps.Stderr)

	if cfg.CopyToClipboard {
		if err := deps.Clipboard(text); err != nil {
			fmt.Fprintln(deps.Stderr, alertStyle().Render(fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else {
			fmt.Fprintln(deps.Stderr, successStyle().Render("✓ Copied to clipboard"))
		}
	}

	if output != "" {
		if err := writeAnswer(output, text); err != nil {
			return err
		}
		fmt.Fprintln(deps.Stderr, successStyle().Render(fmt.Sprintf("✓ Answer saved to %s", output)))
		return nil
	}

	node := widget.RenderMessage(models.AssistantMessage(text))
	fmt.Fprintln(deps.Stdout, renderAnswerBlock(node, getTerminalWidth(), render.OptionsFromConfig(cfg.Markdown)))
	return nil
}

func writeAnswer(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// formatErrorMessage formats an error with the context it happened in
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}
	return tui.FormatError(fmt.Errorf("%s: %w", context, err))
}
