// Package server wires the HTTP surface: GraphQL, health and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nhle/project-tracker/internal/auth"
)

// RouterConfig collects what NewRouter mounts.
type RouterConfig struct {
	Schema       *graphql.Schema
	Issuer       *auth.TokenIssuer // nil accepts anonymous requests only
	AuthRequired bool
	Health       map[string]Pinger
	Log          zerolog.Logger
	Development  bool
	RatePerIP    string // limiter notation, e.g. "300-M"; empty disables
	Metrics      bool   // expose /metrics
}

// NewRouter builds the HTTP handler.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	ipLimit, err := newIPRateLimiter(cfg.RatePerIP)
	if err != nil {
		return nil, fmt.Errorf("configuring rate limit: %w", err)
	}

	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(prometheusMiddleware)
	}
	r.Use(secureHandler(cfg.Development))
	r.Use(ipLimit)

	r.Get("/health", (&healthHandler{checks: cfg.Health}).ServeHTTP)
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(chimid.AllowContentType("application/json"))
		r.Use(authenticator(cfg.Issuer, cfg.AuthRequired))
		r.Method(http.MethodPost, "/graphql", &relay.Handler{Schema: cfg.Schema})
	})

	return r, nil
}

// Serve runs handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, readTimeout, writeTimeout time.Duration, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
