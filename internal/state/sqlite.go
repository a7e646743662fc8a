package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// SQLiteStore keeps one row per plugin context.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and creates if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create state directory")
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open state database")
	}

	s := &SQLiteStore{db: db}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize state database")
	}

	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS plugin_context (
		plugin TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT plugin, value FROM plugin_context`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query plugin contexts")
	}
	defer rows.Close()

	snap := make(Snapshot)
	for rows.Next() {
		var plugin string
		var value []byte
		if err := rows.Scan(&plugin, &value); err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		snap[plugin] = json.RawMessage(value)
	}

	return snap, rows.Err()
}

// Save replaces the stored contexts with snap in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM plugin_context`); err != nil {
		return errors.Wrap(err, "failed to clear plugin contexts")
	}

	now := time.Now()
	for plugin, value := range snap {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO plugin_context (plugin, value, updated_at)
			VALUES (?, ?, ?)
		`, plugin, []byte(value), now)
		if err != nil {
			return errors.Wrapf(err, "failed to store context for %s", plugin)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit plugin contexts")
	}

	log.Debug().Int("plugins", len(snap)).Msg("Plugin contexts saved")
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
