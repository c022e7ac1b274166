package cmd

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/smart-email-finder/internal/finder/model"
	"github.com/Laisky/smart-email-finder/library/config"
	"github.com/Laisky/smart-email-finder/library/log"
	"github.com/Laisky/smart-email-finder/library/search"
)

const lookupTimeout = 3 * time.Minute

var lookupCMD = &cobra.Command{
	Use:   "lookup <query>",
	Short: "run one lookup and print the result as JSON",
	Long: `Run one search plus generation pass headlessly and print the aggregated
state (results, found, domain and generated emails) as JSON.

Example:
  smart-email-finder lookup acme.com --source hunter --target-user "Jane Doe"`,
	Args: cobra.ExactArgs(1),
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), lookupTimeout)
		defer cancel()

		return runLookup(ctx, config.NewSettingsFromShared(), cmd.OutOrStdout(), args[0],
			gconfig.Shared.GetString("source"),
			gconfig.Shared.GetString("target-user"))
	},
}

func runLookup(ctx context.Context, settings *config.Settings, out io.Writer, query, source, targetUser string) error {
	a, err := newApp(ctx, settings)
	if err != nil {
		return errors.Wrap(err, "build app")
	}

	mode := a.defaultMode()
	if source != "" {
		if mode, err = search.ParseMode(source); err != nil {
			return errors.WithStack(err)
		}
	}

	state := model.NewState()
	_, lookupErr := a.service.Lookup(ctx, state, mode, query, targetUser)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state.Snapshot()); err != nil {
		return errors.Wrap(err, "encode state")
	}

	if lookupErr != nil {
		return errors.Wrap(lookupErr, "lookup")
	}
	return nil
}

func init() {
	lookupCMD.Flags().String("source", "", "hunter | serpapi | duckduckgo | auto, defaults to settings.search.default_mode")
	lookupCMD.Flags().String("target-user", "", "person name to personalize generated addresses for")
	rootCMD.AddCommand(lookupCMD)
}
