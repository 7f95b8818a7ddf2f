package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// sessionRowID is the id of the single session row.
const sessionRowID = 1

// SQLiteStore keeps the session in a SQLite database using the pure Go
// modernc.org/sqlite driver.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// migration represents a single schema migration.
type migration struct {
	version int
	name    string
	up      func(ctx context.Context, tx *sql.Tx) error
}

// NewSQLiteStore opens the database at path and runs pending migrations.
func NewSQLiteStore(path string) (s *SQLiteStore, err error) {
	var db *sql.DB
	db, err = sql.Open("sqlite", path)
	if err != nil {
		err = errors.Wrapf(err, "failed to open database: %s", path)
		return s, err
	}

	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	s = &SQLiteStore{db: db, path: path}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()
		err = errors.Wrapf(err, "failed to connect to database: %s", path)
		return nil, err
	}

	_, err = db.ExecContext(ctx, "PRAGMA journal_mode=WAL")
	if err != nil {
		_ = db.Close()
		err = errors.Wrap(err, "failed to enable WAL mode")
		return nil, err
	}

	err = s.runMigrations(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, err
}

// Path returns the database path.
func (s *SQLiteStore) Path() (path string) {
	path = s.path
	return path
}

func (s *SQLiteStore) runMigrations(ctx context.Context) (err error) {
	_, err = s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		err = errors.Wrap(err, "failed to create schema_migrations table")
		return err
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		err = errors.Wrap(err, "failed to read schema version")
		return err
	}

	migrations := []migration{
		{version: 1, name: "session_state", up: migrateSessionState},
	}

	for _, m := range migrations {
		if version >= m.version {
			continue
		}

		slog.Debug("running migration", "version", m.version, "name", m.name, "path", s.path)

		err = s.applyMigration(ctx, m)
		if err != nil {
			err = errors.Wrapf(err, "migration %d (%s) failed", m.version, m.name)
			return err
		}
	}

	return err
}

func (s *SQLiteStore) applyMigration(ctx context.Context, m migration) (err error) {
	var tx *sql.Tx
	tx, err = s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = m.up(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	err = tx.Commit()
	return err
}

func migrateSessionState(ctx context.Context, tx *sql.Tx) (err error) {
	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS session_state (
			id INTEGER PRIMARY KEY CHECK (id = %d),
			data TEXT NOT NULL,
			saved_at TEXT NOT NULL
		)
	`, sessionRowID))
	if err != nil {
		err = errors.Wrap(err, "failed to create session_state table")
		return err
	}
	return err
}

// Load reads the session row.
func (s *SQLiteStore) Load(ctx context.Context) (state State, found bool, err error) {
	var data string
	err = s.db.QueryRowContext(ctx, "SELECT data FROM session_state WHERE id = ?", sessionRowID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
			return state, found, err
		}
		err = errors.Wrap(err, "failed to read session state")
		return state, found, err
	}

	state, err = decodeState([]byte(data))
	if err != nil {
		return state, found, err
	}

	found = true
	return state, found, err
}

// Save upserts the session row.
func (s *SQLiteStore) Save(ctx context.Context, state State) (err error) {
	var data []byte
	data, err = encodeState(state)
	if err != nil {
		return err
	}

	savedAt := state.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_state (id, data, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at
	`, sessionRowID, string(data), savedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		err = errors.Wrap(err, "failed to save session state")
		return err
	}

	return err
}

// Clear deletes the session row.
func (s *SQLiteStore) Clear(ctx context.Context) (err error) {
	_, err = s.db.ExecContext(ctx, "DELETE FROM session_state WHERE id = ?", sessionRowID)
	if err != nil {
		err = errors.Wrap(err, "failed to clear session state")
		return err
	}
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() (err error) {
	err = s.db.Close()
	if err != nil {
		err = errors.Wrap(err, "failed to close database")
		return err
	}
	return err
}
