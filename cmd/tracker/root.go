package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nhle/project-tracker/internal/auth"
	"github.com/nhle/project-tracker/internal/cache"
	"github.com/nhle/project-tracker/internal/credential"
	"github.com/nhle/project-tracker/internal/model"
	"github.com/nhle/project-tracker/internal/store"
	"github.com/nhle/project-tracker/internal/tenant"
	"github.com/nhle/project-tracker/internal/tracker"
)

// operator is the principal CLI commands act as.
var operator = &auth.Principal{Subject: "cli", Admin: true}

// cli carries what every subcommand needs once the root has loaded config.
type cli struct {
	configPath string
	cfg        *model.AppConfig
	log        zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "tracker",
		Short:         "Multi-tenant project tracker",
		Long:          "tracker serves a GraphQL API over organizations, projects, tasks and comments.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := model.LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			log, err := newLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c.log = log
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", model.DefaultConfigPath(), "path to config file")

	root.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newOrgCmd(c),
		newStatsCmd(c),
		newTokenCmd(c),
		newConfigCmd(c),
	)
	return root
}

// newLogger builds the process logger. Pretty output goes through a
// ConsoleWriter; otherwise lines are JSON.
func newLogger(cfg model.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// openStore connects to the configured database, creating the parent
// directory of a SQLite file when needed.
func (c *cli) openStore() (*store.SQLStore, error) {
	db := c.cfg.Database
	dsn := db.DSN
	if dsn == "" {
		dsn = model.DefaultDatabasePath()
	}
	if (db.Driver == "" || db.Driver == "sqlite") && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	return store.Open(db.Driver, dsn)
}

// openCache dials Redis when a URL is configured and falls back to no
// caching otherwise. An unreachable server is logged and skipped.
func (c *cli) openCache(ctx context.Context) (cache.StatsCache, *cache.Redis) {
	if c.cfg.Cache.RedisURL == "" {
		return cache.Noop{}, nil
	}
	ttl := time.Duration(c.cfg.Cache.TTLSec) * time.Second
	r, err := cache.Dial(ctx, c.cfg.Cache.RedisURL, ttl)
	if err != nil {
		c.log.Warn().Err(err).Msg("redis unavailable; continuing without stats cache")
		return cache.Noop{}, nil
	}
	return r, r
}

// jwtSecret returns auth.jwt_secret from the config, falling back to the
// keyring entry written by config init. An unusable keyring yields "".
func (c *cli) jwtSecret() string {
	if c.cfg.Auth.JWTSecret != "" {
		return c.cfg.Auth.JWTSecret
	}
	creds, err := credential.Open(c.cfg.Credentials)
	if err != nil {
		c.log.Debug().Err(err).Msg("keyring unavailable")
		return ""
	}
	secret, err := creds.Get(credential.JWTSecretKey)
	if err != nil && !errors.Is(err, credential.ErrNotFound) {
		c.log.Warn().Err(err).Msg("reading jwt secret from keyring")
	}
	return secret
}

// newService wires a tracker.Service over s using the loaded config.
func (c *cli) newService(s store.Store, stats cache.StatsCache) *tracker.Service {
	resolver := tenant.NewResolver(s,
		tenant.WithMode(tenant.ModeFor(c.cfg.Scoping.Strict)),
		tenant.WithAuthRequired(c.cfg.Auth.Required),
	)
	return tracker.NewService(s, resolver,
		tracker.WithLogger(c.log),
		tracker.WithCache(stats),
		tracker.WithValidation(c.cfg.Validation.Enabled),
	)
}

// operatorContext returns ctx acting as the CLI operator.
func operatorContext(ctx context.Context) context.Context {
	return auth.WithPrincipal(ctx, operator)
}
