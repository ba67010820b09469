// Package config loads server and ledger settings from defaults, an optional
// config file, a .env file, SPLITPARTNER_* environment variables and CLI flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mmynk/splitpartner/internal/calculator"
	"github.com/mmynk/splitpartner/internal/models"
)

// EnvPrefix is prepended to every environment variable, e.g.
// SPLITPARTNER_AUTH_JWT_SECRET for auth.jwt_secret.
const EnvPrefix = "SPLITPARTNER"

var (
	ErrMissingJWTSecret = errors.New("auth.jwt_secret is required")
	ErrInvalidPort      = errors.New("server.port must be between 1 and 65535")
	ErrNoCategories     = errors.New("ledger.categories must not be empty")
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
	// StaticPath is a directory of frontend files; empty disables static serving.
	StaticPath string `mapstructure:"static_path"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenDuration time.Duration `mapstructure:"token_duration"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LedgerConfig tunes expense validation and dashboard output.
type LedgerConfig struct {
	Categories    []string `mapstructure:"categories"`
	TopCategories int      `mapstructure:"top_categories"`
	// ExcludePaidShares leaves settled shares out of partner balances.
	ExcludePaidShares bool `mapstructure:"exclude_paid_shares"`
	// StrictPercentages rejects shares outside [0, 100] on write.
	StrictPercentages bool `mapstructure:"strict_percentages"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_path", "")
	v.SetDefault("database.path", "./data/splitpartner.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_duration", 24*time.Hour)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("ledger.categories", models.DefaultCategories())
	v.SetDefault("ledger.top_categories", calculator.DefaultTopCategories)
	v.SetDefault("ledger.exclude_paid_shares", false)
	v.SetDefault("ledger.strict_percentages", true)
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configFile (when set) into v and decodes the result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	categories := make([]string, 0, len(c.Ledger.Categories))
	seen := make(map[string]bool, len(c.Ledger.Categories))
	for _, cat := range c.Ledger.Categories {
		cat = strings.ToLower(strings.TrimSpace(cat))
		if cat == "" || seen[cat] {
			continue
		}
		seen[cat] = true
		categories = append(categories, cat)
	}
	c.Ledger.Categories = categories

	if c.Ledger.TopCategories <= 0 {
		c.Ledger.TopCategories = calculator.DefaultTopCategories
	}
}

// Validate checks settings every command depends on.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if len(c.Ledger.Categories) == 0 {
		return ErrNoCategories
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	return nil
}

// ValidateServer additionally checks settings needed to serve RPCs.
func (c *Config) ValidateServer() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.Auth.TokenDuration <= 0 {
		return errors.New("auth.token_duration must be positive")
	}
	return nil
}
