package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobpay-engine/internal/config"
	"jobpay-engine/internal/domain"
	"jobpay-engine/internal/secrets"
)

const DefaultPostgresTable = "postings"

// PostgresSource reads documents from a table shaped
// (id bigserial primary key, doc jsonb not null).
type PostgresSource struct {
	name  string
	pool  *pgxpool.Pool
	table string
}

// NewPostgres builds the pool without connecting; the first fetch dials.
func NewPostgres(name string, cfg config.Source) (*PostgresSource, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	pc.MaxConns = 4
	pc.MinConns = 0
	pc.MaxConnLifetime = time.Hour

	// poolers in transaction mode do not keep prepared statements
	pc.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	if pc.ConnConfig.Password == "" {
		pw, err := secrets.ResolvePassword(secrets.SourcePasswordEnv, cfg.PasswordKeyring)
		if err != nil {
			return nil, err
		}
		pc.ConnConfig.Password = pw
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pc)
	if err != nil {
		return nil, fmt.Errorf("unable to create pool: %w", err)
	}
	return &PostgresSource{name: name, pool: pool, table: tableOr(cfg.Table)}, nil
}

func (s *PostgresSource) Name() string { return s.name }

func (s *PostgresSource) FetchAll(ctx context.Context) ([]domain.RawRecord, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s ORDER BY id ASC`, pgx.Identifier(strings.Split(s.table, ".")).Sanitize())

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	var docs []map[string]any
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var d map[string]any
		if err := json.Unmarshal(raw, &d); err != nil || d == nil {
			continue
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return RecordsFromDocuments(docs), nil
}

func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}

func tableOr(t string) string {
	if t = strings.TrimSpace(t); t != "" {
		return t
	}
	return DefaultPostgresTable
}
