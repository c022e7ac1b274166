// Package web gin server
package web

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Laisky/smart-email-finder/library/log"
)

const shutdownTimeout = 10 * time.Second

// Routes mounts application handlers on the engine.
type Routes interface {
	Register(r gin.IRouter)
}

// Background is a long-running job that lives as long as the server.
type Background interface {
	Run(ctx context.Context) error
}

// EngineConfig configures the gin engine.
type EngineConfig struct {
	AllowedOrigins []string
	// EnableMetrics mounts the prometheus and pprof handlers. It registers
	// global collectors, so it must be enabled at most once per process.
	EnableMetrics bool
}

// NewEngine builds the gin engine with the middleware stack, the health probe
// and routes.
func NewEngine(cfg EngineConfig, routes Routes) (*gin.Engine, error) {
	server := gin.New()
	server.ContextWithFallback = true
	server.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(log.Logger.Level().String()),
			gmw.WithLogger(log.Logger.Named("gin")),
		),
		newCORSMiddleware(cfg.AllowedOrigins),
	)

	if cfg.EnableMetrics {
		if err := gmw.EnableMetric(server); err != nil {
			return nil, errors.Wrap(err, "enable metric server")
		}
	}

	server.Any("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world")
	})

	if routes != nil {
		routes.Register(server)
	}
	return server, nil
}

// RunServer serves handler on addr until ctx is cancelled, running jobs
// alongside. The first failure stops everything.
func RunServer(ctx context.Context, addr string, handler http.Handler, jobs ...Background) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		g.Go(func() error {
			return job.Run(gctx)
		})
	}

	g.Go(func() error {
		log.Logger.Info("listening on http", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Logger.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown http server")
		}
		return nil
	})

	return g.Wait()
}

func newCORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.ToLower(strings.TrimRight(origin, "/"))] = struct{}{}
	}

	return func(ctx *gin.Context) {
		origin := strings.TrimSpace(ctx.Request.Header.Get("Origin"))
		allowedOrigin := ""
		if origin != "" {
			if _, ok := allowed[strings.ToLower(origin)]; ok || allowAll {
				allowedOrigin = origin
			}
		}

		if allowedOrigin != "" {
			ctx.Header("Access-Control-Allow-Origin", allowedOrigin)
			ctx.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			ctx.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin, X-Requested-With")
			ctx.Header("Access-Control-Max-Age", "86400") // 24 hours
			ctx.Header("Vary", "Origin")

			if ctx.Request.Method == http.MethodOptions {
				ctx.AbortWithStatus(http.StatusNoContent)
				return
			}
		} else if origin != "" && ctx.Request.Method == http.MethodOptions {
			// deny preflight from disallowed origins
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}

		ctx.Next()
	}
}
