package config

import (
	"errors"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvOverrides are read from the process environment (after an optional
// .env file). Set values win over the YAML file.
type EnvOverrides struct {
	DataDir         string  `env:"DATA_DIR"`
	Port            int     `env:"PORT"`
	LogLevel        string  `env:"LOG_LEVEL"`
	SourceKind      string  `env:"SOURCE_KIND"`
	SourcePath      string  `env:"SOURCE_PATH"`
	SourceURL       string  `env:"SOURCE_URL"`
	SourceDSN       string  `env:"SOURCE_DSN"`
	SourceRPS       float64 `env:"SOURCE_RPS"`
	CacheTTLSeconds int     `env:"CACHE_TTL_SECONDS"`
	RedisAddr       string  `env:"REDIS_ADDR"`
	RedisDB         int     `env:"REDIS_DB"`
}

const EnvPrefix = "JOBPAY_"

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ReadEnv parses JOBPAY_* variables.
func ReadEnv() (EnvOverrides, error) {
	var o EnvOverrides
	err := env.ParseWithOptions(&o, env.Options{Prefix: EnvPrefix})
	return o, err
}

// ApplyEnv copies every set override into cfg.
func ApplyEnv(cfg *Config) error {
	o, err := ReadEnv()
	if err != nil {
		return err
	}
	o.apply(cfg)
	return nil
}

func (o EnvOverrides) apply(cfg *Config) {
	setStr := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}

	setStr(&cfg.App.DataDir, o.DataDir)
	setStr(&cfg.App.LogLevel, o.LogLevel)
	setStr(&cfg.Source.Kind, o.SourceKind)
	setStr(&cfg.Source.Path, o.SourcePath)
	setStr(&cfg.Source.URL, o.SourceURL)
	setStr(&cfg.Source.DSN, o.SourceDSN)
	setStr(&cfg.Cache.RedisAddr, o.RedisAddr)

	if o.Port != 0 {
		cfg.App.Port = o.Port
	}
	if o.SourceRPS > 0 {
		cfg.Source.RequestsPerSecond = o.SourceRPS
	}
	if o.CacheTTLSeconds != 0 {
		cfg.Cache.TTLSeconds = o.CacheTTLSeconds
	}
	if o.RedisDB != 0 {
		cfg.Cache.RedisDB = o.RedisDB
	}
}
