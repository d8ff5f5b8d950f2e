package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/diogo/ayurchat/internal/config"
	"github.com/diogo/ayurchat/internal/models"
	"github.com/diogo/ayurchat/internal/render"
	"github.com/diogo/ayurchat/internal/transcript"
	"github.com/diogo/ayurchat/internal/tui"
	"github.com/diogo/ayurchat/internal/widget"
)

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive chat",
		Long: `Start the interactive chat with the AyurVeda Assistant.

If this session is already logged in the chat opens directly; otherwise the
login form is shown first. Inside the chat:
  /logout          log out and return to the login form
  /clear           clear the screen
  /export <file>   save the transcript (.md or .json)
  Ctrl+Y           copy the last answer
  exit, Esc        quit`,
		Annotations: map[string]string{annotationTUI: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), deps, cfg)
		},
	}
}

func runChat(ctx context.Context, deps *Dependencies, cfg config.Config) error {
	store, client, err := deps.backend(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if cfg.TUITheme != "" && !render.SetTUITheme(cfg.TUITheme) {
		log.Warn().Str("theme", cfg.TUITheme).Msg("unknown TUI theme, using default")
	}
	tui.UpdateTheme()

	view := tui.NewProgramView()
	w := widget.New(view, client, client, store,
		widget.WithLogger(log.Logger.With().Str("component", "widget").Logger()))

	log.Info().Str("base_url", client.BaseURL()).Msg("chat started")

	runErr := deps.TUI.Run(ctx, w, view,
		tui.WithRenderOptions(render.OptionsFromConfig(cfg.Markdown)),
		tui.WithExportMeta(transcript.Meta{Title: models.AssistantName, BaseURL: client.BaseURL()}),
		tui.WithClipboard(deps.Clipboard),
	)

	// a logout dispatched just before quitting still gets to finish
	w.Wait()
	persistCookies(store, client)

	if runErr != nil {
		return fmt.Errorf("chat failed: %w", runErr)
	}
	return nil
}
