package cmd

import (
	"context"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"

	"github.com/Laisky/smart-email-finder/internal/finder/controller"
	"github.com/Laisky/smart-email-finder/internal/finder/service"
	"github.com/Laisky/smart-email-finder/internal/finder/session"
	"github.com/Laisky/smart-email-finder/library/config"
	"github.com/Laisky/smart-email-finder/library/llm"
	"github.com/Laisky/smart-email-finder/library/log"
	"github.com/Laisky/smart-email-finder/library/search"
	"github.com/Laisky/smart-email-finder/library/search/duckduckgo"
	"github.com/Laisky/smart-email-finder/library/search/hunter"
	"github.com/Laisky/smart-email-finder/library/search/serpgoogle"
)

// app is the wired object graph shared by every subcommand.
type app struct {
	settings *config.Settings
	general  *serpgoogle.SearchEngine
	privacy  *duckduckgo.SearchEngine
	hunter   *hunter.Client
	service  *service.Service
	sessions *session.Registry
}

func newApp(ctx context.Context, settings *config.Settings) (*app, error) {
	httpcli, err := gutils.NewHTTPClient(
		gutils.WithHTTPClientTimeout(settings.Search.HTTPTimeout),
	)
	if err != nil {
		return nil, errors.Wrap(err, "new http client")
	}

	a := &app{settings: settings}
	a.general = serpgoogle.NewSearchEngine(settings.Search.SerpAPI.APIKey,
		serpgoogle.WithHTTPClient(httpcli),
		serpgoogle.WithEndpoint(settings.Search.SerpAPI.Endpoint),
		serpgoogle.WithLogger(log.Logger.Named("serpapi")),
	)
	a.privacy = duckduckgo.NewSearchEngine(
		duckduckgo.WithHTTPClient(httpcli),
		duckduckgo.WithEndpoint(settings.Search.DuckDuckGo.Endpoint),
		duckduckgo.WithLogger(log.Logger.Named("duckduckgo")),
	)
	a.hunter = hunter.NewClient(settings.Search.Hunter.APIKey,
		hunter.WithHTTPClient(httpcli),
		hunter.WithEndpoint(settings.Search.Hunter.Endpoint),
		hunter.WithLogger(log.Logger.Named("hunter")),
	)

	policy := search.NewPolicy(a.hunter, a.general, a.privacy,
		search.WithPolicyLogger(log.Logger.Named("policy")))

	genHTTPCli, err := gutils.NewHTTPClient(
		gutils.WithHTTPClientTimeout(settings.Generation.Timeout),
	)
	if err != nil {
		return nil, errors.Wrap(err, "new generation http client")
	}
	backend, err := llm.New(ctx, llm.Config{
		Backend:     settings.Generation.Provider,
		Model:       settings.Generation.Model,
		APIKey:      settings.Generation.APIKey,
		Endpoint:    settings.Generation.Endpoint,
		Temperature: settings.Generation.Temperature,
		HTTPClient:  genHTTPCli,
	})
	if err != nil {
		return nil, errors.Wrap(err, "new generation backend")
	}
	generator := service.NewGenerator(backend,
		service.WithGeneratorTimeout(settings.Generation.Timeout),
		service.WithGeneratorLogger(log.Logger.Named("generator")),
	)

	if a.service, err = service.New(policy, generator,
		service.WithLogger(log.Logger.Named("finder"))); err != nil {
		return nil, errors.Wrap(err, "new finder service")
	}

	a.sessions = session.NewRegistry(settings.Session.IdleTTL,
		session.WithLogger(log.Logger.Named("sessions")))
	return a, nil
}

// defaultMode is the configured mode, or hunter when it does not parse.
func (a *app) defaultMode() search.Mode {
	mode, err := search.ParseMode(a.settings.Search.DefaultMode)
	if err != nil {
		return search.ModeHunter
	}
	return mode
}

func (a *app) controller() (*controller.Controller, error) {
	return controller.New(controller.Deps{
		General:     a.general,
		Privacy:     a.privacy,
		Hunter:      a.hunter,
		Service:     a.service,
		Sessions:    a.sessions,
		DefaultMode: a.defaultMode(),
	})
}
