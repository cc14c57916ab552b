package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string `mapstructure:"addr" yaml:"addr"`
	ReadTimeoutSec  int    `mapstructure:"read_timeout_sec" yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `mapstructure:"write_timeout_sec" yaml:"write_timeout_sec"`

	// Development relaxes the security headers middleware.
	Development bool `mapstructure:"development" yaml:"development"`

	// RatePerIP is a limiter rate such as "100-M". Empty disables limiting.
	RatePerIP string `mapstructure:"rate_per_ip" yaml:"rate_per_ip"`
}

// DatabaseConfig selects the SQL driver ("sqlite" or "pgx") and its DSN.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

// AuthConfig controls bearer token verification.
type AuthConfig struct {
	// Required rejects requests without a valid token. When false the
	// server accepts anonymous callers.
	Required    bool   `mapstructure:"required" yaml:"required"`
	JWTSecret   string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	Issuer      string `mapstructure:"issuer" yaml:"issuer"`
	TokenTTLSec int    `mapstructure:"token_ttl_sec" yaml:"token_ttl_sec"`
}

// ScopingConfig selects how task and comment mutations are scoped.
type ScopingConfig struct {
	// Strict verifies the full organization chain of every task and
	// comment mutation. Lenient mode looks entities up by bare id.
	Strict bool `mapstructure:"strict" yaml:"strict"`
}

// ValidationConfig toggles mutation input validation.
type ValidationConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// CacheConfig configures the optional Redis stats cache.
type CacheConfig struct {
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`
	TTLSec   int    `mapstructure:"ttl_sec" yaml:"ttl_sec"`
}

// CredentialsConfig selects where secrets such as auth.jwt_secret are kept
// when they are not in the config file.
type CredentialsConfig struct {
	// Backends lists keyring backends in order of preference, for example
	// "keychain", "secret-service", "wincred", "pass" or "file".
	Backends     []string `mapstructure:"backends" yaml:"backends"`
	FileDir      string   `mapstructure:"file_dir" yaml:"file_dir"`
	FilePassword string   `mapstructure:"file_password" yaml:"file_password"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Database    DatabaseConfig    `mapstructure:"database" yaml:"database"`
	Auth        AuthConfig        `mapstructure:"auth" yaml:"auth"`
	Scoping     ScopingConfig     `mapstructure:"scoping" yaml:"scoping"`
	Validation  ValidationConfig  `mapstructure:"validation" yaml:"validation"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Credentials CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/tracker/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "tracker", "config.yaml")
}

// DefaultDatabasePath returns the default SQLite database location.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tracker.db"
	}
	return filepath.Join(home, ".local", "share", "tracker", "tracker.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout_sec", 10)
	v.SetDefault("server.write_timeout_sec", 10)
	v.SetDefault("server.development", false)
	v.SetDefault("server.rate_per_ip", "300-M")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", DefaultDatabasePath())
	v.SetDefault("auth.required", true)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "tracker")
	v.SetDefault("auth.token_ttl_sec", 3600)
	v.SetDefault("scoping.strict", true)
	v.SetDefault("validation.enabled", true)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl_sec", 30)
	v.SetDefault("credentials.backends", []string{"keychain", "secret-service", "wincred", "pass", "file"})
	v.SetDefault("credentials.file_dir", "~/.config/tracker/credentials")
	v.SetDefault("credentials.file_password", "tracker-file-key")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// DefaultAppConfig returns the configuration used when no file or
// environment override is present.
func DefaultAppConfig() *AppConfig {
	v := viper.New()
	setDefaults(v)
	cfg := &AppConfig{}
	// Defaults only contain plain scalars, decoding cannot fail.
	_ = v.Unmarshal(cfg)
	return cfg
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with TRACKER_ override file values
// (TRACKER_DATABASE_DSN overrides database.dsn). A missing file is not an
// error: defaults and environment still apply.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("database", cfg.Database)
	v.Set("auth", cfg.Auth)
	v.Set("scoping", cfg.Scoping)
	v.Set("validation", cfg.Validation)
	v.Set("cache", cfg.Cache)
	v.Set("credentials", cfg.Credentials)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
