// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"jobpay-engine/internal/aggregate"
)

// HTMLSelectors locate the fields of one job card on a listing page.
type HTMLSelectors struct {
	Card     string `yaml:"card" json:"card"`
	Title    string `yaml:"title" json:"title"`
	Company  string `yaml:"company" json:"company"`
	Location string `yaml:"location" json:"location"`
	Salary   string `yaml:"salary" json:"salary"`
	Benefits string `yaml:"benefits" json:"benefits"`
	Link     string `yaml:"link" json:"link"`
}

type Source struct {
	Kind string `yaml:"kind" json:"kind"` // file | sqlite | postgres | http | html | multi
	Name string `yaml:"name" json:"name"`

	Path  string `yaml:"path" json:"path"`   // file, sqlite
	URL   string `yaml:"url" json:"url"`     // http, html
	DSN   string `yaml:"dsn" json:"dsn"`     // postgres
	Table string `yaml:"table" json:"table"` // postgres

	// OS keychain account holding the database password, used when the DSN
	// carries none.
	PasswordKeyring string `yaml:"password_keyring" json:"password_keyring"`

	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"`
	TimeoutSeconds    int           `yaml:"timeout_seconds" json:"timeout_seconds"`
	HTML              HTMLSelectors `yaml:"html" json:"html"`

	Sources []Source `yaml:"sources" json:"sources"` // multi
}

type Config struct {
	App struct {
		Port       int    `yaml:"port" json:"port"`
		DataDir    string `yaml:"data_dir" json:"data_dir"`
		LogLevel   string `yaml:"log_level" json:"log_level"`
		PrettyLogs bool   `yaml:"pretty_logs" json:"pretty_logs"`
		// Imported postings older than this are deleted; 0 keeps them.
		RetentionDays int `yaml:"retention_days" json:"retention_days"`
	} `yaml:"app" json:"app"`

	Source Source `yaml:"source" json:"source"`

	Cache struct {
		TTLSeconds           int    `yaml:"ttl_seconds" json:"ttl_seconds"`
		RedisAddr            string `yaml:"redis_addr" json:"redis_addr"`
		RedisDB              int    `yaml:"redis_db" json:"redis_db"`
		RedisPrefix          string `yaml:"redis_prefix" json:"redis_prefix"`
		RedisPasswordKeyring string `yaml:"redis_password_keyring" json:"redis_password_keyring"`
	} `yaml:"cache" json:"cache"`

	Normalize struct {
		Workers int `yaml:"workers" json:"workers"`
	} `yaml:"normalize" json:"normalize"`

	Cities struct {
		Aliases     map[string]string `yaml:"aliases" json:"aliases"`
		AliasesFile string            `yaml:"aliases_file" json:"aliases_file"`
	} `yaml:"cities" json:"cities"`

	Analysis struct {
		Keywords     []string `yaml:"keywords" json:"keywords"`
		TopCompanies int      `yaml:"top_companies" json:"top_companies"`
		Outliers     int      `yaml:"outliers" json:"outliers"`
	} `yaml:"analysis" json:"analysis"`

	Refresh struct {
		Enabled         bool `yaml:"enabled" json:"enabled"`
		IntervalSeconds int  `yaml:"interval_seconds" json:"interval_seconds"`
	} `yaml:"refresh" json:"refresh"`
}

const (
	DefaultPort            = 38471
	DefaultCacheTTLSeconds = 600
	DefaultTopCompanies    = 10
	DefaultRedisPrefix     = "jobpay:source:"
)

// Load reads the YAML file at path, fills defaults and applies environment
// overrides.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	ApplyDefaults(&cfg)
	return cfg, nil
}

// ApplyDefaults fills zero values.
func ApplyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = DefaultPort
	}
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = "."
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.Source.Kind == "" {
		cfg.Source.Kind = "sqlite"
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = DefaultCacheTTLSeconds
	}
	if cfg.Cache.RedisPrefix == "" {
		cfg.Cache.RedisPrefix = DefaultRedisPrefix
	}
	if len(cfg.Analysis.Keywords) == 0 {
		cfg.Analysis.Keywords = append([]string(nil), aggregate.DefaultKeywords...)
	}
	if cfg.Analysis.TopCompanies == 0 {
		cfg.Analysis.TopCompanies = DefaultTopCompanies
	}
	if cfg.Analysis.Outliers == 0 {
		cfg.Analysis.Outliers = aggregate.DefaultOutliers
	}
	if cfg.Refresh.IntervalSeconds == 0 {
		cfg.Refresh.IntervalSeconds = cfg.Cache.TTLSeconds
	}
}
