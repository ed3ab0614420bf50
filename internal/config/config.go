// Package config loads settings for the scrumstore and scrumboard binaries.
//
// Values are resolved in order: built-in defaults, an optional YAML file,
// environment variables, then command-line flags that were set explicitly.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"scrumboard/internal/util"
)

// Config holds all application configuration.
type Config struct {
	LogLevel string      `yaml:"log_level"`
	Store    StoreConfig `yaml:"store"`
	Board    BoardConfig `yaml:"board"`
}

// StoreConfig configures the document store backend.
type StoreConfig struct {
	Addr   string `yaml:"addr"`
	DBPath string `yaml:"db_path"`
	// SeedAdmin is "email:password" for an admin created at startup.
	SeedAdmin string `yaml:"seed_admin"`
}

// BoardConfig configures the dashboard web app.
type BoardConfig struct {
	Addr          string `yaml:"addr"`
	StoreURL      string `yaml:"store_url"`
	SessionSecret string `yaml:"session_secret"`
	StaticDir     string `yaml:"static_dir"`
	SecureCookie  bool   `yaml:"secure_cookie"`
}

const devSessionSecret = "dev-secret-change-me"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Store: StoreConfig{
			Addr:   ":4000",
			DBPath: "data/scrumstore.db",
		},
		Board: BoardConfig{
			Addr:          ":8080",
			StoreURL:      "http://localhost:4000",
			SessionSecret: devSessionSecret,
		},
	}
}

// Load resolves defaults, the YAML file at path (skipped when empty) and
// environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.LogLevel = util.EnvOrDefault("SCRUMBOARD_LOG_LEVEL", cfg.LogLevel)
	cfg.Store.Addr = util.EnvOrDefault("SCRUMSTORE_ADDR", cfg.Store.Addr)
	cfg.Store.DBPath = util.EnvOrDefault("SCRUMSTORE_DB_PATH", cfg.Store.DBPath)
	cfg.Store.SeedAdmin = util.EnvOrDefault("SCRUMSTORE_SEED_ADMIN", cfg.Store.SeedAdmin)
	cfg.Board.Addr = util.EnvOrDefault("SCRUMBOARD_ADDR", cfg.Board.Addr)
	cfg.Board.StoreURL = util.EnvOrDefault("SCRUMBOARD_STORE_URL", cfg.Board.StoreURL)
	cfg.Board.SessionSecret = util.EnvOrDefault("SCRUMBOARD_SESSION_SECRET", cfg.Board.SessionSecret)
	cfg.Board.StaticDir = util.EnvOrDefault("SCRUMBOARD_STATIC_DIR", cfg.Board.StaticDir)
	cfg.Board.SecureCookie = util.EnvBool("SCRUMBOARD_SECURE_COOKIE", cfg.Board.SecureCookie)

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Board.SessionSecret == "" {
		return errors.New("session secret must not be empty")
	}
	if c.Store.SeedAdmin != "" {
		if _, _, err := c.Store.SeedCredentials(); err != nil {
			return err
		}
	}
	return nil
}

// SeedCredentials splits SeedAdmin into email and password.
func (s StoreConfig) SeedCredentials() (string, string, error) {
	email, password, ok := strings.Cut(s.SeedAdmin, ":")
	if !ok || strings.TrimSpace(email) == "" || password == "" {
		return "", "", fmt.Errorf("seed admin must look like email:password")
	}
	return strings.TrimSpace(email), password, nil
}

// UsesDevSecret reports whether the board still signs sessions with the
// built-in development secret.
func (c *Config) UsesDevSecret() bool {
	return c.Board.SessionSecret == devSessionSecret
}

// ParseLevel maps a level name onto slog levels.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// flagBinding ties a flag name to the string field it overrides.
type flagBinding struct {
	name string
	dst  *string
}

// RegisterStoreFlags declares the scrumstore flags on fs.
func RegisterStoreFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("addr", d.Store.Addr, "HTTP listen address")
	fs.String("db", d.Store.DBPath, "Path to sqlite database file")
	fs.String("seed-admin", "", "Create an admin account email:password at startup")
	fs.String("log-level", d.LogLevel, "Log level (debug, info, warn, error)")
}

// RegisterBoardFlags declares the scrumboard flags on fs.
func RegisterBoardFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("addr", d.Board.Addr, "HTTP listen address")
	fs.String("store-url", d.Board.StoreURL, "Base URL of the scrum store")
	fs.String("static", "", "Directory with static assets")
	fs.Bool("secure-cookie", false, "Mark the session cookie Secure")
	fs.String("log-level", d.LogLevel, "Log level (debug, info, warn, error)")
}

// ApplyStoreFlags copies the scrumstore flags set explicitly onto c.
func (c *Config) ApplyStoreFlags(fs *pflag.FlagSet) error {
	return c.apply(fs, []flagBinding{
		{"addr", &c.Store.Addr},
		{"db", &c.Store.DBPath},
		{"seed-admin", &c.Store.SeedAdmin},
		{"log-level", &c.LogLevel},
	})
}

// ApplyBoardFlags copies the scrumboard flags set explicitly onto c.
func (c *Config) ApplyBoardFlags(fs *pflag.FlagSet) error {
	if fs.Changed("secure-cookie") {
		v, err := fs.GetBool("secure-cookie")
		if err != nil {
			return err
		}
		c.Board.SecureCookie = v
	}
	return c.apply(fs, []flagBinding{
		{"addr", &c.Board.Addr},
		{"store-url", &c.Board.StoreURL},
		{"static", &c.Board.StaticDir},
		{"log-level", &c.LogLevel},
	})
}

func (c *Config) apply(fs *pflag.FlagSet, bindings []flagBinding) error {
	for _, b := range bindings {
		if !fs.Changed(b.name) {
			continue
		}
		v, err := fs.GetString(b.name)
		if err != nil {
			return err
		}
		*b.dst = v
	}
	return c.validate()
}

// String returns a representation with the session secret masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Store: %s db=%s, Board: %s store=%s, Secret: *** (masked) ***}",
		c.Store.Addr, c.Store.DBPath, c.Board.Addr, c.Board.StoreURL)
}
