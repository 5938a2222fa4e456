// Package sqlstore is a store.Store over a single postgres table.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/forestrie/go-mmrkv/store"
	"github.com/lib/pq"
)

const (
	DefaultTable       = "mmr_kv"
	DefaultMaxAttempts = 10
)

const (
	serializationFailure pq.ErrorCode = "40001"
	deadlockDetected     pq.ErrorCode = "40P01"
)

var (
	ErrInvalidTableName = errors.New("invalid table name")
	ErrSerialization    = errors.New("transaction could not be serialized")
)

var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type Options struct {
	Table string
	// MaxAttempts bounds how often Update runs a transaction that postgres
	// aborts as a serialization failure
	MaxAttempts int
}

type Option func(*Options)

func WithTable(name string) Option {
	return func(o *Options) { o.Table = name }
}

func WithMaxAttempts(n int) Option {
	return func(o *Options) { o.MaxAttempts = n }
}

type Store struct {
	db          *sql.DB
	q           queries
	maxAttempts int
}

var (
	_ store.Store      = (*Store)(nil)
	_ store.Transactor = (*Store)(nil)
)

// New uses an already open database. The table is created if it does not exist.
func New(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	o := Options{Table: DefaultTable, MaxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(&o)
	}
	if !tableNameRe.MatchString(o.Table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTableName, o.Table)
	}
	q := newQueries(o.Table)
	if _, err := db.ExecContext(ctx, q.create); err != nil {
		return nil, err
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 1
	}
	return &Store{db: db, q: q, maxAttempts: o.MaxAttempts}, nil
}

// Open opens a postgres connection from a lib/pq data source name.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	s, err := New(ctx, db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DropTable removes the table and everything in it
func (s *Store) DropTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.q.drop)
	return err
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	return s.conn(s.db).Get(ctx, key)
}

func (s *Store) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	return s.conn(s.db).GetMany(ctx, keys)
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.conn(s.db).Set(ctx, key, value)
}

// SetMany upserts all entries in one transaction
func (s *Store) SetMany(ctx context.Context, entries map[string]string) error {
	return s.Update(ctx, func(tx store.Store) error { return tx.SetMany(ctx, entries) })
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.conn(s.db).Delete(ctx, key)
}

func (s *Store) DeleteMany(ctx context.Context, keys []string) error {
	return s.conn(s.db).DeleteMany(ctx, keys)
}

// Update runs fn in a SERIALIZABLE transaction. Two appends that read the
// same counts cannot both commit, postgres aborts one of them. An aborted
// transaction is run again, fn included, up to MaxAttempts times, after which
// the error wraps ErrSerialization.
func (s *Store) Update(ctx context.Context, fn func(tx store.Store) error) error {
	for attempt := 1; ; attempt++ {
		err := s.update(ctx, fn)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
		if attempt >= s.maxAttempts {
			return fmt.Errorf("%w: after %d attempts: %w", ErrSerialization, attempt, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Millisecond):
		}
	}
}

func (s *Store) update(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	if err := fn(s.conn(tx)); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == serializationFailure || pqErr.Code == deadlockDetected
}

func (s *Store) conn(e execer) *conn {
	return &conn{e: e, q: s.q}
}

type queries struct {
	create, drop, get, getMany, upsert, del, delMany string
}

func newQueries(table string) queries {
	return queries{
		create:  fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT NOT NULL)`, table),
		drop:    fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table),
		get:     fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, table),
		getMany: fmt.Sprintf(`SELECT key, value FROM %s WHERE key = ANY($1)`, table),
		upsert:  fmt.Sprintf(`INSERT INTO %s (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, table),
		del:     fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, table),
		delMany: fmt.Sprintf(`DELETE FROM %s WHERE key = ANY($1)`, table),
	}
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type conn struct {
	e execer
	q queries
}

func (c *conn) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := c.e.QueryRowContext(ctx, c.q.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *conn) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return values, nil
	}
	rows, err := c.e.QueryContext(ctx, c.q.getMany, pq.Array(keys))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		values[k] = v
	}
	return values, rows.Err()
}

func (c *conn) Set(ctx context.Context, key, value string) error {
	_, err := c.e.ExecContext(ctx, c.q.upsert, key, value)
	return err
}

func (c *conn) SetMany(ctx context.Context, entries map[string]string) error {
	for k, v := range entries {
		if err := c.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (c *conn) Delete(ctx context.Context, key string) error {
	_, err := c.e.ExecContext(ctx, c.q.del, key)
	return err
}

func (c *conn) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.e.ExecContext(ctx, c.q.delMany, pq.Array(keys))
	return err
}
