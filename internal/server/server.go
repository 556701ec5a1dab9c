// Package server is the admin HTTP surface: health, metrics, upstream
// status and a notation codec playground.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/i4/internal/auth"
	"github.com/danmuck/i4/internal/observability"
	"github.com/danmuck/i4/internal/router"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	appName = "i4-admin"
	version = "0.1.0"

	shutdownTimeout = 5 * time.Second
)

// StatusSource reports the upstream connection state.
type StatusSource interface {
	Snapshot() router.Status
}

// Config is the admin listener setup. An empty Token leaves /v1 open.
type Config struct {
	Addr        string
	CorsOrigins []string
	Token       string
}

type Server struct {
	addr     string
	router   *gin.Engine
	status   StatusSource
	guard    auth.Validator
	appeared time.Time
	logger   zerolog.Logger
}

// New builds the admin server with its middleware and routes registered.
func New(cfg Config, status StatusSource, logger zerolog.Logger) *Server {
	observability.RegisterMetrics()
	logger = logger.With().Str("component", "server").Logger()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.RequestMetrics(appName))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", auth.TokenHeader},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		addr:     cfg.Addr,
		router:   r,
		status:   status,
		appeared: time.Now(),
		logger:   logger,
	}
	if cfg.Token != "" {
		s.guard = auth.StaticToken{Token: cfg.Token}
	}
	s.registerRoutes()
	return s
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

// Serve listens on the configured address until ctx is done, then drains
// in-flight requests.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("admin listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
