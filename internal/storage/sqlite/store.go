// Package sqlite implements core.Store on an embedded SQLite database.
// It backs local development, the import CLI without a server, and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/procspec/internal/core"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS processors (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product TEXT NOT NULL,
  status TEXT,
  release_date TEXT,
  code_name TEXT,
  cores INTEGER,
  threads INTEGER,
  lithography REAL,
  max_turbo_freq REAL,
  base_freq REAL,
  tdp INTEGER,
  cache REAL,
  cache_info TEXT,
  max_memory_size INTEGER,
  memory_types TEXT,
  max_memory_speed INTEGER,
  integrated_graphics TEXT
);
CREATE INDEX IF NOT EXISTS idx_processors_product ON processors(product);
`

// Store is a SQLite-backed core.Store. All access goes through a single
// connection, so writers never contend with each other.
type Store struct {
	conn       *sql.DB
	selectCols string
	insertSQL  string
}

var _ core.Store = (*Store)(nil)

// Open opens (creating if needed) the database file at path.
// ":memory:" opens a private in-memory database; "file:" URIs are passed
// to the driver untouched.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)

	pragmas := []string{`PRAGMA busy_timeout = 5000;`}
	if path != ":memory:" {
		pragmas = append(pragmas, `PRAGMA journal_mode = WAL;`)
	}
	for _, p := range pragmas {
		if _, err := conn.ExecContext(ctx, p); err != nil {
			_ = conn.Close()
			return nil, translate("open", err)
		}
	}

	cols := core.Columns()
	selectCols := "id, " + strings.Join(cols, ", ")
	return &Store{
		conn:       conn,
		selectCols: selectCols,
		insertSQL: fmt.Sprintf("INSERT INTO processors (%s) VALUES (%s)",
			strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")),
	}, nil
}

// EnsureSchema creates the processors table and its product index.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, schemaDDL); err != nil {
		return translate("ensure schema", err)
	}
	return nil
}

// Create validates and inserts one record, returning it with its new ID.
func (s *Store) Create(ctx context.Context, rec core.ProcessorRecord) (core.ProcessorRecord, error) {
	if err := rec.Validate(); err != nil {
		return core.ProcessorRecord{}, err
	}

	res, err := s.conn.ExecContext(ctx, s.insertSQL, args(rec)...)
	if err != nil {
		return core.ProcessorRecord{}, translate("create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.ProcessorRecord{}, translate("create", err)
	}
	rec.ID = id
	return rec, nil
}

// BulkCreate inserts recs through one prepared statement inside a single
// transaction. A failure on any row leaves the table untouched.
func (s *Store) BulkCreate(ctx context.Context, recs []core.ProcessorRecord) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	for i := range recs {
		if err := recs[i].Validate(); err != nil {
			return 0, err
		}
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, translate("begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, s.insertSQL)
	if err != nil {
		return 0, translate("prepare", err)
	}
	defer stmt.Close()

	var n int64
	for i := range recs {
		if _, err := stmt.ExecContext(ctx, args(recs[i])...); err != nil {
			return 0, translate("insert", err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, translate("commit", err)
	}
	return n, nil
}

// List returns up to limit records ordered by id, skipping offset.
func (s *Store) List(ctx context.Context, offset, limit int) ([]core.ProcessorRecord, error) {
	q := fmt.Sprintf("SELECT %s FROM processors ORDER BY id LIMIT ? OFFSET ?", s.selectCols)
	rows, err := s.conn.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, translate("list", err)
	}
	defer rows.Close()

	recs := make([]core.ProcessorRecord, 0, limit)
	for rows.Next() {
		var rec core.ProcessorRecord
		if err := rows.Scan(rec.ScanTargets()...); err != nil {
			return nil, translate("scan", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list", err)
	}
	return recs, nil
}

// GetByID returns the record with the given id or core.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (core.ProcessorRecord, error) {
	q := fmt.Sprintf("SELECT %s FROM processors WHERE id = ?", s.selectCols)
	return s.getOne(ctx, "get by id", q, id)
}

// GetByName returns the earliest record whose product matches exactly,
// or core.ErrNotFound.
func (s *Store) GetByName(ctx context.Context, product string) (core.ProcessorRecord, error) {
	q := fmt.Sprintf("SELECT %s FROM processors WHERE product = ? ORDER BY id LIMIT 1", s.selectCols)
	return s.getOne(ctx, "get by name", q, product)
}

func (s *Store) getOne(ctx context.Context, op, q string, arg any) (core.ProcessorRecord, error) {
	var rec core.ProcessorRecord
	if err := s.conn.QueryRowContext(ctx, q, arg).Scan(rec.ScanTargets()...); err != nil {
		return core.ProcessorRecord{}, translate(op, err)
	}
	return rec, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM processors").Scan(&n); err != nil {
		return 0, translate("count", err)
	}
	return n, nil
}

// Ping checks that the database file is still usable.
func (s *Store) Ping(ctx context.Context) error {
	return translate("ping", s.conn.PingContext(ctx))
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// args dereferences the nullable fields of rec into driver values.
func args(rec core.ProcessorRecord) []any {
	vals := rec.Values()
	out := make([]any, len(vals))
	for i, v := range vals {
		switch p := v.(type) {
		case *string:
			if p != nil {
				out[i] = *p
			}
		case *int32:
			if p != nil {
				out[i] = int64(*p)
			}
		case *float64:
			if p != nil {
				out[i] = *p
			}
		default:
			out[i] = v
		}
	}
	return out
}

// translate maps driver failures onto the core error taxonomy.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return &core.TransientError{Op: op, Err: err}
		case sqlite3.SQLITE_CONSTRAINT, sqlite3.SQLITE_TOOBIG, sqlite3.SQLITE_MISMATCH:
			return &core.ValidationError{Reason: sqErr.Error()}
		}
	}

	if wrapped := core.Transient(op, err); core.IsTransient(wrapped) {
		return wrapped
	}
	return fmt.Errorf("%s: %w", op, err)
}
