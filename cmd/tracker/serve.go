package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/project-tracker/internal/auth"
	"github.com/nhle/project-tracker/internal/graph"
	"github.com/nhle/project-tracker/internal/server"
	"github.com/nhle/project-tracker/internal/tenant"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the GraphQL server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler, cleanup, err := c.buildServer(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := c.cfg.Server
			return server.Serve(ctx, srv.Addr, handler,
				time.Duration(srv.ReadTimeoutSec)*time.Second,
				time.Duration(srv.WriteTimeoutSec)*time.Second,
				c.log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// buildServer opens every dependency and returns the HTTP handler along
// with a function releasing them.
func (c *cli) buildServer(ctx context.Context) (http.Handler, func(), error) {
	var issuer *auth.TokenIssuer
	if secret := c.jwtSecret(); secret != "" {
		var err error
		issuer, err = auth.NewTokenIssuer(secret, c.cfg.Auth.Issuer)
		if err != nil {
			return nil, nil, err
		}
	} else if c.cfg.Auth.Required {
		return nil, nil, errors.New("auth.required is set but auth.jwt_secret is neither configured nor in the keyring")
	}

	s, err := c.openStore()
	if err != nil {
		return nil, nil, err
	}
	stats, redis := c.openCache(ctx)
	cleanup := func() {
		if redis != nil {
			if err := redis.Close(); err != nil {
				c.log.Warn().Err(err).Msg("closing redis")
			}
		}
		if err := s.Close(); err != nil {
			c.log.Warn().Err(err).Msg("closing database")
		}
	}

	schema, err := graph.NewSchema(c.newService(s, stats))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("parsing schema: %w", err)
	}

	health := map[string]server.Pinger{"database": s}
	if redis != nil {
		health["cache"] = redis
	}

	handler, err := server.NewRouter(server.RouterConfig{
		Schema:       schema,
		Issuer:       issuer,
		AuthRequired: c.cfg.Auth.Required,
		Health:       health,
		Log:          c.log,
		Development:  c.cfg.Server.Development,
		RatePerIP:    c.cfg.Server.RatePerIP,
		Metrics:      true,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	c.log.Info().
		Str("driver", c.cfg.Database.Driver).
		Str("scoping", tenant.ModeFor(c.cfg.Scoping.Strict).String()).
		Bool("auth_required", c.cfg.Auth.Required).
		Bool("cache", redis != nil).
		Msg("server configured")
	return handler, cleanup, nil
}
