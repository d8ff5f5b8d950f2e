package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/ayurchat/internal/config"
	"github.com/diogo/ayurchat/internal/render"
)

// NewConfigCmd creates a new config command
func NewConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration after applying the config file, .env and
AYURCHAT_* environment overrides.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprintln(deps.Stdout, string(data))
			return nil
		},
	}

	cmd.AddCommand(newConfigSetCmd(deps), newConfigThemesCmd(deps))
	return cmd
}

func newConfigSetCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a configuration value",
		Long:  "Change a configuration value. Keys: " + strings.Join(config.SettableKeys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			key, value := args[0], args[1]
			if key == "tui_theme" {
				if _, ok := render.GetTUIThemeByName(value); !ok {
					return fmt.Errorf("unknown TUI theme %q (valid: %s)", value, strings.Join(render.TUIThemeNames(), ", "))
				}
			}
			if err := cfg.Set(key, value); err != nil {
				return err
			}
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}

			path, _ := config.GetConfigPath()
			fmt.Fprintln(deps.Stdout, successStyle().Render(fmt.Sprintf("✓ %s updated in %s", key, path)))
			return nil
		},
	}
}

func newConfigThemesCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the TUI and markdown themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(deps.Stdout, "TUI themes (tui_theme):")
			for _, t := range render.AvailableTUIThemes() {
				fmt.Fprintf(deps.Stdout, "  %-12s %s\n", t.Name, t.Description)
			}
			fmt.Fprintln(deps.Stdout)
			fmt.Fprintln(deps.Stdout, "Markdown themes (markdown_style):")
			for _, t := range render.AvailableThemes() {
				fmt.Fprintf(deps.Stdout, "  %-12s %s\n", t.Name, t.Description)
			}
			return nil
		},
	}
}
