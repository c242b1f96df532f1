// Package postgres implements core.Store on a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/procspec/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const tableName = "processors"

const schemaDDL = `
CREATE TABLE IF NOT EXISTS processors (
    id                  SERIAL PRIMARY KEY,
    product             VARCHAR(255) NOT NULL,
    status              VARCHAR(255),
    release_date        VARCHAR(255),
    code_name           VARCHAR(255),
    cores               INTEGER,
    threads             INTEGER,
    lithography         DOUBLE PRECISION,
    max_turbo_freq      DOUBLE PRECISION,
    base_freq           DOUBLE PRECISION,
    tdp                 INTEGER,
    cache               DOUBLE PRECISION,
    cache_info          TEXT,
    max_memory_size     INTEGER,
    memory_types        VARCHAR(255),
    max_memory_speed    INTEGER,
    integrated_graphics VARCHAR(255)
);
CREATE INDEX IF NOT EXISTS idx_processors_product ON processors (product);
`

// Options tunes the connection pool. Zero values keep pgx defaults.
type Options struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Store is a PostgreSQL-backed core.Store.
type Store struct {
	pool       *pgxpool.Pool
	selectCols string
	insertSQL  string
}

var _ core.Store = (*Store)(nil)

// Open parses dsn, connects a pool and verifies it with a ping.
func Open(ctx context.Context, dsn string, opts Options) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, translate("connect", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, translate("ping", err)
	}

	return New(pool), nil
}

// New wraps an existing pool. The Store takes ownership of it.
func New(pool *pgxpool.Pool) *Store {
	cols := core.Columns()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	selectCols := "id, " + strings.Join(cols, ", ")

	return &Store{
		pool:       pool,
		selectCols: selectCols,
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			tableName, strings.Join(cols, ", "), strings.Join(placeholders, ", "), selectCols),
	}
}

// EnsureSchema creates the processors table and its product index if
// they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return translate("ensure schema", err)
	}
	return nil
}

// Create validates and inserts one record, returning it with its new ID.
func (s *Store) Create(ctx context.Context, rec core.ProcessorRecord) (core.ProcessorRecord, error) {
	if err := rec.Validate(); err != nil {
		return core.ProcessorRecord{}, err
	}

	var out core.ProcessorRecord
	if err := s.pool.QueryRow(ctx, s.insertSQL, rec.Values()...).Scan(out.ScanTargets()...); err != nil {
		return core.ProcessorRecord{}, translate("create", err)
	}
	return out, nil
}

// BulkCreate streams recs with COPY inside one transaction.
func (s *Store) BulkCreate(ctx context.Context, recs []core.ProcessorRecord) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	for i := range recs {
		if err := recs[i].Validate(); err != nil {
			return 0, err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, translate("begin transaction", err)
	}
	defer tx.Rollback(ctx) // No-op after commit

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{tableName},
		core.Columns(),
		pgx.CopyFromSlice(len(recs), func(i int) ([]any, error) {
			return recs[i].Values(), nil
		}),
	)
	if err != nil {
		return 0, translate("copy", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, translate("commit", err)
	}
	return n, nil
}

// List returns up to limit records ordered by id, skipping offset.
func (s *Store) List(ctx context.Context, offset, limit int) ([]core.ProcessorRecord, error) {
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY id LIMIT $1 OFFSET $2", s.selectCols, tableName)
	rows, err := s.pool.Query(ctx, q, limit, offset)
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
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", s.selectCols, tableName)
	return s.getOne(ctx, "get by id", q, id)
}

// GetByName returns the earliest record whose product matches exactly,
// or core.ErrNotFound.
func (s *Store) GetByName(ctx context.Context, product string) (core.ProcessorRecord, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE product = $1 ORDER BY id LIMIT 1", s.selectCols, tableName)
	return s.getOne(ctx, "get by name", q, product)
}

func (s *Store) getOne(ctx context.Context, op, q string, arg any) (core.ProcessorRecord, error) {
	var rec core.ProcessorRecord
	if err := s.pool.QueryRow(ctx, q, arg).Scan(rec.ScanTargets()...); err != nil {
		return core.ProcessorRecord{}, translate(op, err)
	}
	return rec, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+tableName).Scan(&n); err != nil {
		return 0, translate("count", err)
	}
	return n, nil
}

// Ping checks that the pool can reach the server.
func (s *Store) Ping(ctx context.Context) error {
	return translate("ping", s.pool.Ping(ctx))
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// translate maps pgx failures onto the core error taxonomy.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"), // connection exception
			pgErr.Code == "40001", // serialization_failure
			pgErr.Code == "40P01", // deadlock_detected
			pgErr.Code == "53300", // too_many_connections
			pgErr.Code == "57P01", // admin_shutdown
			pgErr.Code == "57014": // query_canceled
			return &core.TransientError{Op: op, Err: err}
		case strings.HasPrefix(pgErr.Code, "22"), strings.HasPrefix(pgErr.Code, "23"):
			return &core.ValidationError{Field: pgErr.ColumnName, Reason: pgErr.Message}
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var connErr *pgconn.ConnectError
	if pgconn.Timeout(err) || errors.As(err, &connErr) {
		return &core.TransientError{Op: op, Err: err}
	}

	if wrapped := core.Transient(op, err); core.IsTransient(wrapped) {
		return wrapped
	}
	return fmt.Errorf("%s: %w", op, err)
}
