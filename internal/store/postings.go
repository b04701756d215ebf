package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Document is one posting as stored: the raw, loosely typed JSON object.
type Document = map[string]any

func Migrate(db *sql.DB) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1 ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS postings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  doc TEXT NOT NULL,
  source_key TEXT NOT NULL DEFAULT '',
  imported_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_postings_source_key
ON postings(source_key)
WHERE source_key != '';
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_postings_imported_at
ON postings(imported_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

// SourceKey identifies a posting for de-duplication: its url, when it has one.
func SourceKey(doc Document) string {
	if u, ok := doc["url"].(string); ok {
		return strings.TrimSpace(u)
	}
	return ""
}

// InsertPostings stores docs in one transaction. Documents whose url is
// already stored are skipped; added counts the new rows.
func InsertPostings(ctx context.Context, db *sql.DB, docs []Document, now time.Time) (added int, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO postings (doc, source_key, imported_at)
VALUES (?, ?, ?);`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	at := now.UTC().Format(time.RFC3339)
	for i, d := range docs {
		b, err := json.Marshal(d)
		if err != nil {
			return 0, fmt.Errorf("encode posting %d: %w", i, err)
		}
		res, err := stmt.ExecContext(ctx, string(b), SourceKey(d), at)
		if err != nil {
			return 0, fmt.Errorf("insert posting %d: %w", i, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// ListPostingDocs returns every stored document in insertion order. Rows whose
// doc is not a JSON object are skipped.
func ListPostingDocs(ctx context.Context, db *sql.DB) ([]Document, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, doc FROM postings ORDER BY id ASC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var id int64
		var raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		var d Document
		if err := json.Unmarshal([]byte(raw), &d); err != nil || d == nil {
			continue
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func CountPostings(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM postings;`).Scan(&n)
	return n, err
}

// CleanupOldPostings deletes postings imported before cutoff.
func CleanupOldPostings(ctx context.Context, db *sql.DB, cutoff time.Time) (deleted int64, err error) {
	res, err := db.ExecContext(ctx, `
DELETE FROM postings
WHERE imported_at < ?;
`, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("cleanup old postings: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
