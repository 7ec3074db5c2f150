package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite  = "sqlite"
	DriverSQLite3 = "sqlite3"
)

// DefaultBusyTimeout is how long a write waits for a lock.
const DefaultBusyTimeout = 5 * time.Second

// Config configures the store.
type Config struct {
	// Driver is DriverSQLite (default) or DriverSQLite3.
	Driver string

	// Path is the database file path. ":memory:" works for tests.
	Path string

	// BusyTimeout defaults to DefaultBusyTimeout.
	BusyTimeout time.Duration
}

// Record is one stored run.
type Record struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
	Passed    bool            `json:"passed"`
	Summary   string          `json:"summary"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Filter selects records for List.
type Filter struct {
	// Kind restricts results to one run kind. Empty matches all.
	Kind string

	// Since excludes runs started before it. Zero means no bound.
	Since time.Time

	// Limit caps the number of results. Zero or less means no limit.
	Limit int
}

// Store persists run records in SQLite.
type Store struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// Open opens (creating if needed) the database at cfg.Path and ensures the
// schema exists.
func Open(cfg Config) (*Store, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.Driver != DriverSQLite && cfg.Driver != DriverSQLite3 {
		return nil, fmt.Errorf("unsupported history driver %q (want %s or %s)", cfg.Driver, DriverSQLite, DriverSQLite3)
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("history path cannot be empty")
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = DefaultBusyTimeout
	}

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, newStorageError(cfg.Driver, "open", err)
	}

	// SQLite only supports a single writer; one connection also keeps
	// ":memory:" databases alive for the store's lifetime.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{
		db:     db,
		driver: cfg.Driver,
		logger: slog.Default().With("component", "history.store"),
	}

	if err := s.initialize(cfg); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Debug("history store opened", "driver", cfg.Driver, "path", cfg.Path)
	return s, nil
}

func (s *Store) initialize(cfg Config) error {
	if cfg.Path != ":memory:" {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return newStorageError(s.driver, "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", cfg.BusyTimeout.Milliseconds())); err != nil {
		return newStorageError(s.driver, "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(schema); err != nil {
		return newStorageError(s.driver, "create_schema", err)
	}

	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion, time.Now().UnixNano()); err != nil {
		return newStorageError(s.driver, "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return newStorageError(s.driver, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return newStorageError(s.driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Save inserts rec, replacing any record with the same id.
func (s *Store) Save(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("record id cannot be empty")
	}

	var payload any
	if len(rec.Payload) > 0 {
		payload = string(rec.Payload)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, kind, started_at, duration_ns, passed, summary, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Kind, rec.StartedAt.UnixNano(), int64(rec.Duration), boolToInt(rec.Passed), rec.Summary, payload,
	)
	if err != nil {
		return newStorageError(s.driver, "save", err)
	}
	return nil
}

// Get returns the record with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, started_at, duration_ns, passed, summary, payload
		FROM runs WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, newStorageError(s.driver, "get", err)
	}
	return rec, nil
}

// List returns matching records, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Record, error) {
	query := `SELECT id, kind, started_at, duration_ns, passed, summary, payload FROM runs`

	var (
		conditions []string
		args       []any
	)
	if f.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, f.Kind)
	}
	if !f.Since.IsZero() {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, f.Since.UnixNano())
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY started_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, newStorageError(s.driver, "list", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, newStorageError(s.driver, "scan", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, newStorageError(s.driver, "list", err)
	}
	return records, nil
}

// Prune deletes runs started before the cutoff and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, before.UnixNano())
	if err != nil {
		return 0, newStorageError(s.driver, "prune", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, newStorageError(s.driver, "prune", err)
	}

	if n > 0 {
		s.logger.Info("pruned run history", "deleted", n, "before", before)
	}
	return n, nil
}

// Ping checks that the database is usable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return newStorageError(s.driver, "ping", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec       Record
		startedAt int64
		duration  int64
		passed    int64
		payload   sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.Kind, &startedAt, &duration, &passed, &rec.Summary, &payload); err != nil {
		return Record{}, err
	}

	rec.StartedAt = time.Unix(0, startedAt)
	rec.Duration = time.Duration(duration)
	rec.Passed = passed != 0
	if payload.Valid && payload.String != "" {
		rec.Payload = json.RawMessage(payload.String)
	}
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
