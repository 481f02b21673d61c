package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"dealerhub/record"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every imported record as a JSON document in one table.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := NewSQLiteStore(db)
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// NewSQLiteStore wraps an already opened database. The schema is not created.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	body TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_kind_created ON documents (kind, created_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite db: %w", err)
	}
	return nil
}

// MaxBatchWrites is 0: one SQLite transaction takes any number of rows.
func (s *SQLiteStore) MaxBatchWrites() int {
	return 0
}

// WriteBatch inserts docs in a single transaction. Any failure rolls back
// the whole batch.
func (s *SQLiteStore) WriteBatch(ctx context.Context, docs []record.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	const insertStmt = `
INSERT INTO documents (
	id,
	kind,
	body,
	created_at,
	updated_at
) VALUES (?, ?, ?, ?, ?);`

	stmt, err := tx.PrepareContext(ctx, insertStmt)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		body, err := json.Marshal(doc.Payload)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode %s %s: %w", doc.Kind, doc.ID, err)
		}
		if _, err := stmt.ExecContext(
			ctx,
			doc.ID,
			string(doc.Kind),
			string(body),
			doc.CreatedAt.UTC().Format(time.RFC3339Nano),
			doc.UpdatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %s %s: %w", doc.Kind, doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListDocuments returns all documents of kind in creation order.
func (s *SQLiteStore) ListDocuments(ctx context.Context, kind record.Kind) ([]record.Document, error) {
	const query = `
SELECT
	id,
	body,
	created_at,
	updated_at
FROM documents
WHERE kind = ?
ORDER BY created_at, id;
`

	rows, err := s.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := make([]record.Document, 0, 256)
	for rows.Next() {
		var (
			doc        record.Document
			body       string
			createdRaw string
			updatedRaw string
		)
		if err := rows.Scan(&doc.ID, &body, &createdRaw, &updatedRaw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.Kind = kind

		payload, err := record.NewPayload(kind)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(body), payload); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", kind, doc.ID, err)
		}
		doc.Payload = record.Deref(payload)

		doc.CreatedAt, err = time.Parse(time.RFC3339Nano, createdRaw)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdRaw, err)
		}
		doc.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedRaw)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at %q: %w", updatedRaw, err)
		}

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// CountDocuments returns the number of stored documents per kind.
func (s *SQLiteStore) CountDocuments(ctx context.Context) (map[record.Kind]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM documents GROUP BY kind;`)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	defer rows.Close()

	counts := make(map[record.Kind]int, len(record.AllKinds()))
	for rows.Next() {
		var (
			kind  string
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scan document count: %w", err)
		}
		counts[record.Kind(kind)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document counts: %w", err)
	}
	return counts, nil
}

// DeleteKind removes every document of kind and returns how many were deleted.
func (s *SQLiteStore) DeleteKind(ctx context.Context, kind record.Kind) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE kind = ?;`, string(kind))
	if err != nil {
		return 0, fmt.Errorf("delete %s documents: %w", kind, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read deleted row count: %w", err)
	}
	return deleted, nil
}
