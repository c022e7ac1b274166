package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Laisky/smart-email-finder/internal/web"
	"github.com/Laisky/smart-email-finder/library/config"
	"github.com/Laisky/smart-email-finder/library/log"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `HTTP API service for the email finder`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := runAPI(ctx); err != nil {
			log.Logger.Panic("api server exit", zap.Error(err))
		}
	},
}

func runAPI(ctx context.Context) error {
	settings := config.NewSettingsFromShared()
	if listen := gconfig.Shared.GetString("listen"); listen != "" {
		settings.Web.Listen = listen
	}

	a, err := newApp(ctx, settings)
	if err != nil {
		return errors.Wrap(err, "build app")
	}
	ctrl, err := a.controller()
	if err != nil {
		return errors.Wrap(err, "new controller")
	}

	if !gconfig.Shared.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := web.NewEngine(web.EngineConfig{
		AllowedOrigins: settings.Web.AllowedOrigins,
		EnableMetrics:  settings.Web.EnableMetrics,
	}, ctrl)
	if err != nil {
		return errors.Wrap(err, "new gin engine")
	}

	log.Logger.Info("starting email finder",
		zap.String("default_mode", string(a.defaultMode())),
		zap.String("generation", settings.Generation.Provider),
		zap.Bool("serpapi_key", settings.Search.SerpAPI.APIKey != ""),
		zap.Bool("hunter_key", settings.Search.Hunter.APIKey != ""),
		zap.Bool("generation_key", settings.Generation.APIKey != ""))
	return web.RunServer(ctx, settings.Web.Listen, engine, a.sessions)
}

func init() {
	rootCMD.AddCommand(apiCMD)
}
