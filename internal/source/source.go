package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"jobpay-engine/internal/config"
	"jobpay-engine/internal/domain"
	"jobpay-engine/internal/store"
)

// Source yields raw postings in source order.
type Source interface {
	Name() string
	FetchAll(ctx context.Context) ([]domain.RawRecord, error)
}

var ErrUnknownKind = errors.New("unknown source kind")

// Options carries process-wide resources the sources may share.
type Options struct {
	DataDir string
	// Store is reused by a sqlite source without an explicit path.
	Store *store.DB
}

// DefaultDBName is the sqlite file inside the data dir.
const DefaultDBName = "jobpay.db"

// New builds the source described by cfg.
func New(cfg config.Source, opts Options) (Source, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.Kind))
	name := strings.TrimSpace(cfg.Name)

	switch kind {
	case "file":
		return NewFile(nameOr(name, "file:"+cfg.Path), cfg.Path), nil

	case "sqlite":
		if cfg.Path == "" && opts.Store != nil {
			return NewSQLite(nameOr(name, "sqlite:"+DefaultDBName), opts.Store, false), nil
		}
		path := cfg.Path
		if path == "" {
			path = filepath.Join(opts.DataDir, DefaultDBName)
		}
		db, err := store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite source %s: %w", path, err)
		}
		return NewSQLite(nameOr(name, "sqlite:"+path), db, true), nil

	case "postgres":
		return NewPostgres(nameOr(name, "postgres:"+tableOr(cfg.Table)), cfg)

	case "http":
		return NewHTTP(nameOr(name, "http:"+cfg.URL), cfg.URL, timeoutOf(cfg), cfg.RequestsPerSecond), nil

	case "html":
		return NewHTML(nameOr(name, "html:"+cfg.URL), cfg.URL, cfg.HTML, timeoutOf(cfg), cfg.RequestsPerSecond), nil

	case "multi":
		children := make([]Source, 0, len(cfg.Sources))
		for i, sub := range cfg.Sources {
			if strings.EqualFold(sub.Kind, "multi") {
				closeAll(children)
				return nil, fmt.Errorf("sources[%d]: nested multi source", i)
			}
			child, err := New(sub, opts)
			if err != nil {
				closeAll(children)
				return nil, fmt.Errorf("sources[%d]: %w", i, err)
			}
			children = append(children, child)
		}
		return NewMulti(nameOr(name, "multi"), children...), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
}

// Close releases resources held by s, if any.
func Close(s Source) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func closeAll(ss []Source) {
	for _, s := range ss {
		_ = Close(s)
	}
}

// RecordsFromDocuments converts decoded documents, keeping their order.
func RecordsFromDocuments(docs []map[string]any) []domain.RawRecord {
	out := make([]domain.RawRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.RawRecordFromDocument(d))
	}
	return out
}

// documentsOf accepts a decoded array of objects, or an object holding one
// under "postings". Elements that are not objects are skipped.
func documentsOf(v any) ([]map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		inner, ok := m["postings"]
		if !ok {
			return nil, errors.New(`expected an array of postings or an object with a "postings" array`)
		}
		v = inner
	}
	xs, ok := v.([]any)
	if !ok {
		if v == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("expected an array of postings, got %T", v)
	}
	out := make([]map[string]any, 0, len(xs))
	for _, x := range xs {
		if d, ok := x.(map[string]any); ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func nameOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}

func timeoutOf(cfg config.Source) time.Duration {
	if cfg.TimeoutSeconds > 0 {
		return time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return 20 * time.Second
}
