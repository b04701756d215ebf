package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"jobpay-engine/internal/config"
	"jobpay-engine/internal/httpapi"
	"jobpay-engine/internal/insights"
	"jobpay-engine/internal/logger"
	"jobpay-engine/internal/scheduler"
	"jobpay-engine/internal/source"
	"jobpay-engine/internal/store"
)

func main() {
	if err := run(); err != nil {
		log := logger.Get()
		log.Fatal().Err(err).Msg("engine stopped")
	}
}

func run() error {
	defaultCfgPath := flag.String("config", filepath.Join("config", "config.yml"), "default config copied into the data dir on first start")
	importPath := flag.String("import", "", "import postings from a JSON or YAML file into the local store and exit")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	// Engine data dir: env wins (a desktop shell can pass one), else local folder.
	dataDir := os.Getenv(config.EnvPrefix + "DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	userCfgPath, err := config.EnsureUserConfig(dataDir, *defaultCfgPath)
	if err != nil {
		return fmt.Errorf("config bootstrap failed: %w", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		if err := config.OverlayCityAliases(&cfg, cfg.Cities.AliasesFile); err != nil {
			return cfg, fmt.Errorf("city aliases: %w", err)
		}
		return cfg, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	cfgVal.Store(cfg)

	logger.Init(cfg.App.LogLevel, cfg.App.PrettyLogs)
	log := logger.For("engine")

	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock data dir: %w", err)
	}
	if !locked {
		return fmt.Errorf("another engine is already using %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	dbPath := filepath.Join(dataDir, source.DefaultDBName)
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	a, err := newApp(cfg, dataDir, db)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *importPath != "" {
		return a.importFile(ctx, *importPath)
	}

	if cfg.Refresh.Enabled {
		interval := time.Duration(cfg.Refresh.IntervalSeconds) * time.Second
		insights.StartRefresher(ctx, a.refresher, interval)
		log.Info().Dur("interval", interval).Msg("background refresh enabled")
	}
	if cfg.App.RetentionDays > 0 && a.importer != nil {
		retention := time.Duration(cfg.App.RetentionDays) * 24 * time.Hour
		go scheduler.Every(ctx, 24*time.Hour, "retention", func(ctx context.Context) error {
			n, err := a.importer.Cleanup(ctx, retention)
			if err == nil && n > 0 {
				log.Info().Int64("deleted", n).Msg("old postings removed")
			}
			return err
		})
	}

	mux := httpapi.NewMux(httpapi.Deps{
		Service:     a.service,
		Refresher:   a.refresher,
		Importer:    a.importer,
		Store:       db,
		Hub:         a.hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
	})

	// Bind to loopback only; the engine serves a local UI.
	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           httpapi.Chain(mux, httpapi.RequestID, httpapi.Recover, httpapi.AccessLog, httpapi.Cors),
		ReadHeaderTimeout: 5 * time.Second,
	}

	token, tokenPath, err := shutdownToken(dataDir)
	if err != nil {
		return err
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("addr", "http://"+addr).
		Str("db", dbPath).
		Str("config", userCfgPath).
		Str("source", a.service.Source().Name()).
		Str("shutdown_token_file", tokenPath).
		Msg("engine listening")

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("engine stopped")
	return nil
}
