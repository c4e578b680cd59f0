// Package config loads the service configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pandapos/internal/meal"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Environment string `yaml:"environment"`

	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
		Debug  bool   `yaml:"debug"`
	} `yaml:"database"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`

	MetricsConfig struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`

	Ordering struct {
		TaxRate float64      `yaml:"tax_rate"`
		Pricing meal.Pricing `yaml:"pricing"`
	} `yaml:"ordering"`

	Promo struct {
		OpenAIKey string `yaml:"openai_key"`
		Model     string `yaml:"model"`
		From      string `yaml:"from"`
	} `yaml:"promo"`

	Seed bool `yaml:"seed"`
}

// ErrMissingJWTSecret is returned when no signing secret is configured
var ErrMissingJWTSecret = errors.New("auth.jwt_secret (or JWT_SECRET) is required")

// Default returns the configuration used when the file leaves a key unset
func Default() *Config {
	cfg := &Config{Environment: "development", Seed: true}
	cfg.Server.Port = 8080
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Database.Driver = "sqlite3"
	cfg.Database.URL = "pandapos.db"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Auth.TokenTTL = 12 * time.Hour
	cfg.MetricsConfig.Enabled = true
	cfg.MetricsConfig.Port = 9090
	cfg.MetricsConfig.Path = "/metrics"
	cfg.Ordering.TaxRate = 0.0825
	cfg.Ordering.Pricing = meal.DefaultPricing()
	cfg.Promo.Model = "gpt-4o-mini"
	cfg.Promo.From = "promotions@pandapos.local"
	return cfg
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file is not an error; the defaults and environment are
// used instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}

	str(&c.Environment, "PANDAPOS_ENV")
	str(&c.Database.Driver, "PANDAPOS_DB_DRIVER")
	str(&c.Database.URL, "DATABASE_URL", "PANDAPOS_DB_URL")
	str(&c.Log.Level, "PANDAPOS_LOG_LEVEL")
	str(&c.Log.Format, "PANDAPOS_LOG_FORMAT")
	str(&c.Auth.JWTSecret, "JWT_SECRET", "PANDAPOS_JWT_SECRET")
	str(&c.Promo.OpenAIKey, "OPENAI_API_KEY")
	str(&c.Promo.Model, "PANDAPOS_PROMO_MODEL")

	if v, ok := lookup("PANDAPOS_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PANDAPOS_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("PANDAPOS_TAX_RATE"); ok && v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid PANDAPOS_TAX_RATE %q: %w", v, err)
		}
		c.Ordering.TaxRate = rate
	}
	if v, ok := lookup("PANDAPOS_ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	return nil
}

// Validate checks the configuration for values the service cannot run without
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Ordering.TaxRate < 0 || c.Ordering.TaxRate >= 1 {
		return fmt.Errorf("tax rate %v must be in [0, 1)", c.Ordering.TaxRate)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if len(c.Ordering.Pricing.Base) == 0 {
		c.Ordering.Pricing = meal.DefaultPricing()
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
