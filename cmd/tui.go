// Package cmd command line
package cmd

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Laisky/smart-email-finder/cmd/tui"
	"github.com/Laisky/smart-email-finder/internal/finder/model"
	"github.com/Laisky/smart-email-finder/library/config"
	"github.com/Laisky/smart-email-finder/library/log"
)

var tuiCMD = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI",
	Long: `Launch an interactive Terminal User Interface (TUI) for the email finder.

The TUI lets you:
  • Pick a search source (hunter, serpapi, duckduckgo, auto)
  • Search a company domain or name, optionally for a named person
  • Browse found, provider and generated addresses
  • Generate personalized addresses from a Hunter.io sample

Example:
  go run main.go tui

Keyboard shortcuts:
  Enter       Search
  Tab         Next input field
  Ctrl+S      Switch source
  ↑/↓         Pick a Hunter.io address
  Ctrl+P      Personalize from the picked address
  Ctrl+D      Drop the newest result
  Ctrl+R      Reset
  Esc         Quit`,
	Args: gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func init() {
	rootCMD.AddCommand(tuiCMD)
}

// runTUI starts the interactive Terminal User Interface and returns any start/run error.
func runTUI(ctx context.Context) error {
	a, err := newApp(ctx, config.NewSettingsFromShared())
	if err != nil {
		return errors.Wrap(err, "build app")
	}

	m := tui.NewModel(ctx, a.service, model.NewState(), a.defaultMode())
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
		tea.WithContext(ctx),
	)

	_, err = p.Run()
	return errors.WithStack(err)
}
