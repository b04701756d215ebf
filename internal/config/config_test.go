package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func validConfig() Config {
	var cfg Config
	cfg.Source.Kind = "file"
	cfg.Source.Path = "postings.yml"
	ApplyDefaults(&cfg)
	return cfg
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "config.yml", `
source:
  kind: file
  path: postings.yml
cache:
  ttl_seconds: 120
`)
	t.Setenv("JOBPAY_PORT", "9001")
	t.Setenv("JOBPAY_SOURCE_PATH", "/tmp/other.yml")

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.App.Port)
	assert.Equal(t, "/tmp/other.yml", cfg.Source.Path)
	assert.Equal(t, 120, cfg.Cache.TTLSeconds)
	assert.Equal(t, 120, cfg.Refresh.IntervalSeconds)
	assert.Equal(t, DefaultTopCompanies, cfg.Analysis.TopCompanies)
	assert.Equal(t, DefaultRedisPrefix, cfg.Cache.RedisPrefix)
	assert.Len(t, cfg.Analysis.Keywords, 10)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := writeFile(t, dir, "bad.yml", "app: [unterminated")
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestShippedConfigIsValid(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "config.yml"))
	require.NoError(t, err)
	assert.NoError(t, Validate(cfg))
	assert.Equal(t, "sqlite", cfg.Source.Kind)
}

func TestNormalizeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.App.Port = 70000 }, "app.port must be 1..65535"},
		{"unknown kind", func(c *Config) { c.Source.Kind = "ftp" }, `source.kind "ftp" is not one of file, sqlite, postgres, http, html, multi`},
		{"file without path", func(c *Config) { c.Source.Path = " " }, "source.path is required when kind=file"},
		{"postgres without dsn", func(c *Config) { c.Source.Kind = "postgres" }, "source.dsn is required when kind=postgres"},
		{"http without url", func(c *Config) { c.Source.Kind = "http" }, "source.url is required when kind=http"},
		{"html without card", func(c *Config) {
			c.Source.Kind = "html"
			c.Source.URL = "https://example.com/jobs"
		}, "source.html.card selector is required when kind=html"},
		{"empty multi", func(c *Config) { c.Source.Kind = "multi" }, "source.sources must list at least one source when kind=multi"},
		{"nested multi", func(c *Config) {
			c.Source.Kind = "multi"
			c.Source.Sources = []Source{{Kind: "multi"}}
		}, "source.sources[0] cannot itself be multi"},
		{"bad child", func(c *Config) {
			c.Source.Kind = "multi"
			c.Source.Sources = []Source{{Kind: "file", Path: "a.yml"}, {Kind: "http"}}
		}, "source.sources[1].url is required when kind=http"},
		{"negative ttl", func(c *Config) { c.Cache.TTLSeconds = -1 }, "cache.ttl_seconds must be >= 0"},
		{"negative workers", func(c *Config) { c.Normalize.Workers = -2 }, "normalize.workers must be >= 0"},
		{"refresh without interval", func(c *Config) {
			c.Refresh.Enabled = true
			c.Refresh.IntervalSeconds = 0
		}, "refresh.interval_seconds must be > 0 when refresh.enabled=true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			_, vr := NormalizeAndValidate(cfg)
			if tt.wantErr == "" {
				assert.True(t, vr.OK(), "errors: %v", vr.Errors)
				return
			}
			assert.Contains(t, vr.Errors, tt.wantErr)
		})
	}
}

func TestNormalizeAndValidate_Normalizes(t *testing.T) {
	cfg := validConfig()
	cfg.Analysis.Keywords = []string{" Forklift ", "forklift", "", "Driver"}
	cfg.Cities.Aliases = map[string]string{" Edison NJ ": " Edison ", "": "x"}
	cfg.Analysis.TopCompanies = 40

	out, vr := NormalizeAndValidate(cfg)
	assert.True(t, vr.OK())
	assert.Equal(t, []string{"Forklift", "Driver"}, out.Analysis.Keywords)
	assert.Equal(t, map[string]string{"edison nj": "Edison"}, out.Cities.Aliases)
	assert.Len(t, vr.Warnings, 2)

	// the input is not modified
	assert.Len(t, cfg.Analysis.Keywords, 4)
}

func TestSaveAtomic(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "config.yml")

	cfg := validConfig()
	require.NoError(t, SaveAtomic(p, cfg))

	cfg.App.Port = 9100
	require.NoError(t, SaveAtomic(p, cfg))

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9100, got.App.Port)

	_, err = os.Stat(p + ".bak")
	assert.NoError(t, err)

	cfg.App.Port = -1
	err = SaveAtomic(p, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.port must be 1..65535")

	got, err = Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9100, got.App.Port)
}

func TestEnsureUserConfig(t *testing.T) {
	dir := t.TempDir()
	def := writeFile(t, dir, "default.yml", "app:\n  port: 1234\n")
	dataDir := filepath.Join(dir, "data")

	p, err := EnsureUserConfig(dataDir, def)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), p)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "1234")

	// an existing user file is left alone
	require.NoError(t, os.WriteFile(p, []byte("app:\n  port: 5678\n"), 0o644))
	_, err = EnsureUserConfig(dataDir, def)
	require.NoError(t, err)
	b, _ = os.ReadFile(p)
	assert.Contains(t, string(b), "5678")
}

func TestOverlayCityAliases(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "aliases.yml", "aliases:\n  \"edison nj\": Edison\n  newark: Newark City\n")

	var cfg Config
	cfg.Cities.Aliases = map[string]string{"newark": "Newark"}
	require.NoError(t, OverlayCityAliases(&cfg, p))
	assert.Equal(t, "Edison", cfg.Cities.Aliases["edison nj"])
	assert.Equal(t, "Newark City", cfg.Cities.Aliases["newark"])

	assert.NoError(t, OverlayCityAliases(&cfg, filepath.Join(dir, "missing.yml")))
	assert.NoError(t, OverlayCityAliases(&cfg, ""))

	bad := writeFile(t, dir, "bad.yml", "aliases: [1, 2")
	assert.Error(t, OverlayCityAliases(&cfg, bad))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, ".env", "JOBPAY_LOG_LEVEL=debug\n")
	t.Setenv("JOBPAY_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("JOBPAY_LOG_LEVEL"))

	require.NoError(t, LoadDotEnv(p, filepath.Join(dir, "missing.env")))
	o, err := ReadEnv()
	require.NoError(t, err)
	assert.Equal(t, "debug", o.LogLevel)
}
