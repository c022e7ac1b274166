package web

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ginModeOnce sync.Once
)

func setupGinTestMode() {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})
}

func TestCORSMiddleware(t *testing.T) {
	setupGinTestMode()
	t.Parallel()

	tests := []struct {
		name           string
		allowed        []string
		method         string
		origin         string
		expectedStatus int
		expectedOrigin string
	}{
		{
			name:           "No origin header - should pass through",
			allowed:        []string{"https://app.example.com"},
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Listed origin - GET request",
			allowed:        []string{"https://app.example.com"},
			method:         http.MethodGet,
			origin:         "https://app.example.com",
			expectedStatus: http.StatusOK,
			expectedOrigin: "https://app.example.com",
		},
		{
			name:           "Listed origin matched case insensitively",
			allowed:        []string{"https://App.Example.com/"},
			method:         http.MethodPost,
			origin:         "https://app.example.com",
			expectedStatus: http.StatusOK,
			expectedOrigin: "https://app.example.com",
		},
		{
			name:           "Listed origin - OPTIONS preflight",
			allowed:        []string{"https://app.example.com"},
			method:         http.MethodOptions,
			origin:         "https://app.example.com",
			expectedStatus: http.StatusNoContent,
			expectedOrigin: "https://app.example.com",
		},
		{
			name:           "Unlisted origin - OPTIONS preflight",
			allowed:        []string{"https://app.example.com"},
			method:         http.MethodOptions,
			origin:         "https://evil.com",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Unlisted origin - GET request",
			allowed:        []string{"https://app.example.com"},
			method:         http.MethodGet,
			origin:         "https://evil.com",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Wildcard allows any origin",
			allowed:        []string{"*"},
			method:         http.MethodGet,
			origin:         "http://localhost:3000",
			expectedStatus: http.StatusOK,
			expectedOrigin: "http://localhost:3000",
		},
		{
			name:           "Empty list allows any origin",
			method:         http.MethodOptions,
			origin:         "http://localhost:3000",
			expectedStatus: http.StatusNoContent,
			expectedOrigin: "http://localhost:3000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := gin.New()
			router.Use(newCORSMiddleware(tt.allowed))
			router.Any("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			})

			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, "Status code mismatch")
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"), "CORS origin header mismatch")
			if tt.expectedOrigin != "" {
				assert.Equal(t, "GET, POST, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
				assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
				assert.Equal(t, "Origin", w.Header().Get("Vary"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
			}
		})
	}
}

type routesFunc func(r gin.IRouter)

func (f routesFunc) Register(r gin.IRouter) { f(r) }

func TestNewEngine(t *testing.T) {
	setupGinTestMode()
	t.Parallel()

	var loggerFromStdCtx bool
	engine, err := NewEngine(EngineConfig{AllowedOrigins: []string{"*"}}, routesFunc(func(r gin.IRouter) {
		r.GET("/ping", func(c *gin.Context) {
			// handlers hand the gin context down as a plain context
			_, loggerFromStdCtx = gmw.GetGinCtxFromStdCtx(context.Context(c))
			gmw.GetLogger(c).Named("ping").Debug("ping")
			c.String(http.StatusOK, "pong")
		})
	}))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "hello, world", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "pong", w.Body.String())
	require.True(t, loggerFromStdCtx)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

type blockingJob struct {
	started chan struct{}
	stopped chan struct{}
}

func (j *blockingJob) Run(ctx context.Context) error {
	close(j.started)
	<-ctx.Done()
	close(j.stopped)
	return nil
}

func TestRunServerStopsOnCancel(t *testing.T) {
	setupGinTestMode()
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	engine, err := NewEngine(EngineConfig{}, nil)
	require.NoError(t, err)

	job := &blockingJob{started: make(chan struct{}), stopped: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunServer(ctx, addr, engine, job)
	}()

	<-job.started
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	<-job.stopped
}
