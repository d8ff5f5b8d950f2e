package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewPingCmd creates the ping command
func NewPingCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend is reachable",
		Long: `Call the backend index endpoint and print its message.

The call also picks up a fresh CSRF cookie, which is saved with the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings()
			if err != nil {
				return err
			}

			store, client, err := deps.backend(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			start := time.Now()
			message, err := client.Index(cmd.Context())
			if err != nil {
				return fmt.Errorf("ping %s failed: %w", client.BaseURL(), err)
			}
			persistCookies(store, client)

			fmt.Fprintln(deps.Stdout, successStyle().Render(
				fmt.Sprintf("✓ %s answered in %s", client.BaseURL(), time.Since(start).Round(time.Millisecond))))
			if message != "" {
				fmt.Fprintln(deps.Stdout, dimStyle().Render("  "+message))
			}
			return nil
		},
	}
}
