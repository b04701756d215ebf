package source

import (
	"context"

	"jobpay-engine/internal/domain"
	"jobpay-engine/internal/store"
)

// SQLiteSource reads the postings table of the local store.
type SQLiteSource struct {
	name string
	db   *store.DB
	own  bool
}

// NewSQLite wraps db. When own is set, Close closes db.
func NewSQLite(name string, db *store.DB, own bool) *SQLiteSource {
	return &SQLiteSource{name: name, db: db, own: own}
}

func (s *SQLiteSource) Name() string { return s.name }

func (s *SQLiteSource) DB() *store.DB { return s.db }

func (s *SQLiteSource) FetchAll(ctx context.Context) ([]domain.RawRecord, error) {
	docs, err := store.ListPostingDocs(ctx, s.db.Pool)
	if err != nil {
		return nil, err
	}
	return RecordsFromDocuments(docs), nil
}

func (s *SQLiteSource) Close() error {
	if !s.own {
		return nil
	}
	return s.db.Close()
}
