package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTP.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "lenient", cfg.Sales.ShortfallPolicy)
	assert.Equal(t, 7, cfg.Forecast.DefaultWindow)
	assert.InDelta(t, 0.20, cfg.Forecast.DefaultMargin, 1e-9)
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "config.yaml")
	yml := `
http:
  addr: ":9000"
database:
  driver: postgres
  dsn: "host=db user=ledger"
sales:
  shortfall_policy: strict
forecast:
  default_window: 30
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("LEDGER_HTTP_ADDR", ":9100")
	t.Setenv("LEDGER_CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("LEDGER_DEFAULT_MARGIN", "0.35")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.HTTP.Addr, "env must win over yaml")
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=ledger", cfg.Database.DSN)
	assert.Equal(t, "strict", cfg.Sales.ShortfallPolicy)
	assert.Equal(t, 30, cfg.Forecast.DefaultWindow)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CORSOrigins)
	assert.InDelta(t, 0.35, cfg.Forecast.DefaultMargin, 1e-9)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEDGER_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LEDGER_LOG_LEVEL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }},
		{"unknown policy", func(c *Config) { c.Sales.ShortfallPolicy = "block" }},
		{"bad window", func(c *Config) { c.Forecast.DefaultWindow = 14 }},
		{"negative margin", func(c *Config) { c.Forecast.DefaultMargin = -0.1 }},
		{"NaN margin", func(c *Config) { c.Forecast.DefaultMargin = math.NaN() }},
		{"infinite margin", func(c *Config) { c.Forecast.DefaultMargin = math.Inf(1) }},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestLoad_RejectsNonNumericMarginFromEnv(t *testing.T) {
	for _, v := range []string{"NaN", "+Inf", "-1"} {
		t.Run(v, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv("LEDGER_DEFAULT_MARGIN", v)

			_, err := Load("")
			assert.ErrorContains(t, err, "default margin")
		})
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
