package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	path       TEXT PRIMARY KEY,
	parent     TEXT NOT NULL,
	key        TEXT NOT NULL,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS documents_parent_key_idx ON documents (parent, key);`

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Postgres stores every node of the tree as one JSONB row keyed by its full path.
type Postgres struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgres(db *sql.DB, logger *slog.Logger) *Postgres {
	return &Postgres{db: db, logger: logger}
}

// EnsureSchema creates the documents table when it does not exist yet.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create documents schema: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, path string, dst any) error {
	if _, _, err := splitPath(path); err != nil {
		return err
	}
	raw, err := s.read(ctx, s.db, path, false)
	if err != nil {
		return err
	}
	if raw == nil {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", path, err)
	}
	return nil
}

func (s *Postgres) Set(ctx context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", path, err)
	}
	return s.write(ctx, s.db, path, raw)
}

func (s *Postgres) Update(ctx context.Context, path string, fields map[string]any) error {
	parent, key, err := splitPath(path)
	if err != nil {
		return err
	}
	patch, err := mergeFields(nil, fields)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO documents (path, parent, key, data, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (path) DO UPDATE
		SET data = CASE WHEN jsonb_typeof(documents.data) = 'object'
		                THEN documents.data || EXCLUDED.data
		                ELSE EXCLUDED.data END,
		    updated_at = now()`
	if _, err := s.db.ExecContext(ctx, query, path, parent, key, []byte(patch)); err != nil {
		return handleStoreError(path, err)
	}
	return nil
}

func (s *Postgres) Remove(ctx context.Context, path string) error {
	if _, _, err := splitPath(path); err != nil {
		return err
	}
	query := `DELETE FROM documents WHERE path = $1 OR left(path, length($2)) = $2`
	if _, err := s.db.ExecContext(ctx, query, path, path+"/"); err != nil {
		return handleStoreError(path, err)
	}
	return nil
}

func (s *Postgres) Children(ctx context.Context, path string) ([]Document, error) {
	if _, _, err := splitPath(path); err != nil {
		return nil, err
	}
	query := `SELECT key, path, data FROM documents WHERE parent = $1 ORDER BY key ASC`
	rows, err := s.db.QueryContext(ctx, query, path)
	if err != nil {
		return nil, handleStoreError(path, err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var d Document
		var data []byte
		if err := rows.Scan(&d.Key, &d.Path, &data); err != nil {
			return nil, fmt.Errorf("failed to scan document row under %s: %w", path, err)
		}
		d.Data = data
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents under %s: %w", path, err)
	}
	return docs, nil
}

// Transact runs fn inside a transaction holding an advisory lock on the path,
// so two writers of the same document (including its first creation) never interleave.
func (s *Postgres) Transact(ctx context.Context, path string, fn TxFunc) (txErr error) {
	if _, _, err := splitPath(path); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.ErrorContext(ctx, "rollback failed", slog.String("path", path), slog.Any("error", rbErr))
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction on %s: %w", path, cErr)
		}
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, path); err != nil {
		return fmt.Errorf("failed to lock %s: %w", path, err)
	}
	current, err := s.read(ctx, tx, path, true)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", path, err)
	}
	return s.write(ctx, tx, path, raw)
}

func (s *Postgres) read(ctx context.Context, exec SQLExecutor, path string, forUpdate bool) (json.RawMessage, error) {
	query := `SELECT data FROM documents WHERE path = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var data []byte
	err := exec.QueryRowContext(ctx, query, path).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, handleStoreError(path, err)
	}
	return data, nil
}

func (s *Postgres) write(ctx context.Context, exec SQLExecutor, path string, raw []byte) error {
	parent, key, err := splitPath(path)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO documents (path, parent, key, data, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	if _, err := exec.ExecContext(ctx, query, path, parent, key, raw); err != nil {
		return handleStoreError(path, err)
	}
	return nil
}

func handleStoreError(path string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "22P02": // invalid_text_representation
			return fmt.Errorf("document %s holds invalid JSON: %w", path, err)
		case "42P01": // undefined_table
			return fmt.Errorf("documents table is missing, run init-db: %w", err)
		}
	}
	return fmt.Errorf("document store operation on %s failed: %w", path, err)
}
