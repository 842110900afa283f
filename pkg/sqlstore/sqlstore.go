// Package sqlstore is the SQL backend behind the sql() softcode function.
// It talks to a local SQLite file or a MySQL server.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// ErrNotConfigured is returned once the store has been closed.
var ErrNotConfigured = errors.New("SQL NOT CONFIGURED")

// Store manages a database connection for softcode SQL access. It
// satisfies eval.SQLBackend.
type Store struct {
	db         *sql.DB
	mu         sync.Mutex
	driver     string
	dsn        string
	queryLimit int
	timeout    time.Duration

	// Reconnect retries a failed query once on a fresh connection.
	Reconnect bool
}

// Open opens a SQLite3 database file, sets WAL mode and busy timeout.
func Open(path string, queryLimit, timeoutSec int) (*Store, error) {
	return OpenDriver(DriverSQLite, path, queryLimit, timeoutSec)
}

// OpenDriver opens a store on the named driver. For sqlite the dsn is a
// file path; for mysql it is a DSN such as "user:pass@tcp(host:3306)/mush".
// MySQL connections are made lazily, on the first query.
func OpenDriver(driver, dsn string, queryLimit, timeoutSec int) (*Store, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	if driver != DriverSQLite && driver != DriverMySQL {
		return nil, fmt.Errorf("sqlstore: unknown driver %q", driver)
	}
	if queryLimit <= 0 {
		queryLimit = 100
	}
	if timeoutSec <= 0 {
		timeoutSec = 5
	}
	s := &Store{
		driver:     driver,
		dsn:        dsn,
		queryLimit: queryLimit,
		timeout:    time.Duration(timeoutSec) * time.Second,
	}
	db, err := s.openDB()
	if err != nil {
		return nil, err
	}
	s.db = db
	return s, nil
}

func (s *Store) openDB() (*sql.DB, error) {
	if s.driver == DriverMySQL {
		return openMySQL(s.dsn, s.timeout)
	}
	return openSQLite(s.dsn, int(s.timeout.Milliseconds()))
}

func openSQLite(path string, busyMs int) (*sql.DB, error) {
	db, err := sql.Open(DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening %s: %w", path, err)
	}
	// Set WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: setting WAL mode: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d", busyMs)); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: setting busy timeout: %w", err)
	}
	return db, nil
}

func openMySQL(dsn string, timeout time.Duration) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: parsing MySQL DSN: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = timeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = timeout
	}
	db, err := sql.Open(DriverMySQL, cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening MySQL %s: %w", cfg.Addr, err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(4)
	return db, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string { return s.driver }

// Checkpoint forces a WAL checkpoint to flush all writes to the main
// database file. It does nothing for MySQL.
func (s *Store) Checkpoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrNotConfigured
	}
	if s.driver != DriverSQLite {
		return nil
	}
	_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

// Query executes a SQL statement and returns results as delimited text.
// SELECT queries return up to the query limit of rows joined by rowDelim,
// with fields separated by fieldDelim. Other statements return the number
// of affected rows.
func (s *Store) Query(query, rowDelim, fieldDelim string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return "", ErrNotConfigured
	}
	out, err := s.query(query, rowDelim, fieldDelim)
	if err != nil && s.Reconnect && !isStatementError(err) {
		log.Printf("sqlstore: query failed, reconnecting: %v", err)
		if rerr := s.reopen(); rerr != nil {
			return "", rerr
		}
		out, err = s.query(query, rowDelim, fieldDelim)
	}
	return out, err
}

func (s *Store) query(query, rowDelim, fieldDelim string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	trimmed := strings.TrimSpace(query)
	upper := strings.ToUpper(trimmed)

	// Non-SELECT statements (INSERT, UPDATE, DELETE, CREATE, DROP, ALTER, etc.)
	if !strings.HasPrefix(upper, "SELECT") {
		result, err := s.db.ExecContext(ctx, trimmed)
		if err != nil {
			return "", err
		}
		affected, _ := result.RowsAffected()
		return fmt.Sprintf("%d", affected), nil
	}

	rows, err := s.db.QueryContext(ctx, trimmed)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", err
	}
	numCols := len(cols)

	var resultRows []string
	for rows.Next() {
		if len(resultRows) >= s.queryLimit {
			break
		}
		values := make([]any, numCols)
		ptrs := make([]any, numCols)
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", err
		}
		fields := make([]string, numCols)
		for i, v := range values {
			switch v := v.(type) {
			case nil:
			case []byte:
				fields[i] = string(v)
			default:
				fields[i] = fmt.Sprintf("%v", v)
			}
		}
		resultRows = append(resultRows, strings.Join(fields, fieldDelim))
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return strings.Join(resultRows, rowDelim), nil
}

// isStatementError reports errors caused by the statement itself, which a
// new connection would not fix.
func isStatementError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	// Errors reported by the MySQL server are about the statement
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "syntax error") || strings.Contains(msg, "no such")
}

// Escape doubles single quotes in the input string for safe SQL interpolation.
func (s *Store) Escape(input string) string {
	return strings.ReplaceAll(input, "'", "''")
}

// reopen closes and reopens the connection. Caller holds s.mu.
func (s *Store) reopen() error {
	if s.db != nil {
		s.db.Close()
	}
	db, err := s.openDB()
	if err != nil {
		s.db = nil
		return err
	}
	s.db = db
	return nil
}
