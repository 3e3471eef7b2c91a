// Package persist wraps the server's embedded record store: a single
// sqlite file reached through database/sql, serialized by a process-wide
// mutex since the underlying store is not reentrant under concurrent
// writes.
package persist

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// DB wraps a single *sql.DB plus the mutex that serializes every
// statement against it, and a cache of prepared statements keyed by
// their source SQL so repos never re-prepare the same query.
type DB struct {
	mu   sync.Mutex
	conn *sql.DB
	stmt map[string]*sql.Stmt
}

// Open opens the sqlite file at path, creating it if it does not exist.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	conn.SetMaxOpenConns(1) // the store is not reentrant; one connection, serialized by mu
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	return &DB{conn: conn, stmt: make(map[string]*sql.Stmt)}, nil
}

func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, s := range db.stmt {
		s.Close()
	}
	return db.conn.Close()
}

// prepared returns a cached prepared statement for query, preparing and
// caching it on first use. Caller must hold db.mu.
func (db *DB) prepared(query string) (*sql.Stmt, error) {
	if s, ok := db.stmt[query]; ok {
		return s, nil
	}
	s, err := db.conn.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("prepare statement: %w", err)
	}
	db.stmt[query] = s
	return s, nil
}

// Exec runs a single non-transactional statement under the store mutex.
func (db *DB) Exec(query string, args ...any) (sql.Result, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	stmt, err := db.prepared(query)
	if err != nil {
		return nil, err
	}
	return stmt.Exec(args...)
}

// Query runs a row-iterating query under the store mutex. The returned
// rows must be closed (and are safe to read after Query returns — the
// mutex only guards statement preparation/binding, matching sqlite's
// single-connection serialization model).
func (db *DB) Query(query string, args ...any) (*sql.Rows, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	stmt, err := db.prepared(query)
	if err != nil {
		return nil, err
	}
	return stmt.Query(args...)
}

// QueryRow runs a single-row query under the store mutex. Unlike Exec and
// Query it does not use the prepared-statement cache, since *sql.Row
// defers error reporting to Scan and a failed Prepare would otherwise be
// silently swallowed.
func (db *DB) QueryRow(query string, args ...any) *sql.Row {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.QueryRow(query, args...)
}

// Tx is a transaction bound to the store mutex for its entire lifetime;
// the caller must call Commit or Rollback to release the lock.
type Tx struct {
	db *DB
	tx *sql.Tx
}

// Begin starts a transaction and holds the store mutex until Commit or
// Rollback is called, so no other statement can interleave with it.
func (db *DB) Begin() (*Tx, error) {
	db.mu.Lock()
	tx, err := db.conn.Begin()
	if err != nil {
		db.mu.Unlock()
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{db: db, tx: tx}, nil
}

func (t *Tx) Exec(query string, args ...any) (sql.Result, error) {
	return t.tx.Exec(query, args...)
}

func (t *Tx) QueryRow(query string, args ...any) *sql.Row {
	return t.tx.QueryRow(query, args...)
}

func (t *Tx) Query(query string, args ...any) (*sql.Rows, error) {
	return t.tx.Query(query, args...)
}

func (t *Tx) Commit() error {
	defer t.db.mu.Unlock()
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (t *Tx) Rollback() error {
	defer t.db.mu.Unlock()
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}
