package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	HTTP struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"http"`
	Database struct {
		Driver string `yaml:"driver"` // sqlite | postgres
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
	Sales struct {
		ShortfallPolicy string `yaml:"shortfall_policy"` // lenient | strict
	} `yaml:"sales"`
	Forecast struct {
		DefaultWindow int     `yaml:"default_window"`
		DefaultMargin float64 `yaml:"default_margin"`
	} `yaml:"forecast"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = ":8081"
	cfg.HTTP.CORSOrigins = []string{"http://localhost:5173"}
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "food_business.db"
	cfg.Log.Level = "info"
	cfg.Sales.ShortfallPolicy = "lenient"
	cfg.Forecast.DefaultWindow = 7
	cfg.Forecast.DefaultMargin = 0.20
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"
	return cfg
}

// Load builds the configuration from defaults, an optional .env file, an optional
// YAML file and finally LEDGER_* environment variables, in that order.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HTTP.Addr = getEnv("LEDGER_HTTP_ADDR", c.HTTP.Addr)
	c.Database.Driver = getEnv("LEDGER_DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("LEDGER_DB_DSN", c.Database.DSN)
	c.Log.Level = getEnv("LEDGER_LOG_LEVEL", c.Log.Level)
	c.Sales.ShortfallPolicy = getEnv("LEDGER_SHORTFALL_POLICY", c.Sales.ShortfallPolicy)

	if v := os.Getenv("LEDGER_CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		c.HTTP.CORSOrigins = origins
	}
	if v := os.Getenv("LEDGER_DEFAULT_MARGIN"); v != "" {
		margin, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("LEDGER_DEFAULT_MARGIN: %w", err)
		}
		c.Forecast.DefaultMargin = margin
	}
	return nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn is required")
	}
	switch c.Sales.ShortfallPolicy {
	case "lenient", "strict":
	default:
		return fmt.Errorf("unsupported shortfall policy %q", c.Sales.ShortfallPolicy)
	}
	switch c.Forecast.DefaultWindow {
	case 7, 30, 90:
	default:
		return fmt.Errorf("default forecast window must be 7, 30 or 90, got %d", c.Forecast.DefaultWindow)
	}
	if m := c.Forecast.DefaultMargin; math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
		return fmt.Errorf("default margin must be a non-negative number, got %v", m)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with /, got %q", c.Metrics.Path)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
