package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/scamwatch/sentinel/internal/models"
)

// migrations are applied in order; PRAGMA user_version records how many ran.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS api_keys (
		id TEXT PRIMARY KEY,
		key_hash TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		requests_per_minute INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		last_used_at DATETIME
	);
	CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT PRIMARY KEY,
		api_key_id TEXT NOT NULL DEFAULT '',
		endpoint TEXT NOT NULL,
		method TEXT NOT NULL,
		request_size INTEGER NOT NULL,
		response_code INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		timestamp DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_logs(timestamp);`,

	// analysis outcome counts per request
	`ALTER TABLE audit_logs ADD COLUMN request_id TEXT NOT NULL DEFAULT '';
	ALTER TABLE audit_logs ADD COLUMN channel TEXT NOT NULL DEFAULT '';
	ALTER TABLE audit_logs ADD COLUMN items INTEGER NOT NULL DEFAULT 0;
	ALTER TABLE audit_logs ADD COLUMN flagged INTEGER NOT NULL DEFAULT 0;
	ALTER TABLE audit_logs ADD COLUMN failed INTEGER NOT NULL DEFAULT 0;
	CREATE INDEX IF NOT EXISTS idx_audit_channel ON audit_logs(channel, timestamp);`,
}

const (
	keyColumns   = `id, key_hash, name, requests_per_minute, created_at, last_used_at`
	auditColumns = `id, request_id, api_key_id, endpoint, method, request_size, response_code,
		duration_ms, channel, items, flagged, failed, timestamp`
)

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and brings
// its schema up to date.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer; WAL lets readers proceed
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := store.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// Migrate applies every migration newer than the recorded schema version.
func (s *SQLiteStore) Migrate() error {
	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for v := version; v < len(migrations); v++ {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", v+1, err)
		}
		// PRAGMA does not take bound parameters
		if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_keys (`+keyColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		key.ID, key.KeyHash, key.Name, key.RequestsPerMinute, key.CreatedAt, key.LastUsedAt)
	return err
}

// GetAPIKeyByHash returns nil, nil when no key has the hash.
func (s *SQLiteStore) GetAPIKeyByHash(ctx context.Context, hash string) (*models.APIKey, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+keyColumns+` FROM api_keys WHERE key_hash = ?`, hash)
	key, err := scanAPIKey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return key, err
}

func (s *SQLiteStore) UpdateAPIKeyLastUsed(ctx context.Context, id string, t time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = ? WHERE id = ?`, t, id)
	return err
}

func (s *SQLiteStore) DeleteAPIKey(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = ?`, id)
	return err
}

// ListAPIKeys returns keys newest first with the hash cleared.
func (s *SQLiteStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+keyColumns+` FROM api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		k.KeyHash = ""
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLiteStore) LogRequest(ctx context.Context, l *models.AuditLog) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_logs (`+auditColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.RequestID, l.APIKeyID, l.Endpoint, l.Method, l.RequestSize, l.ResponseCode,
		l.DurationMs, string(l.Channel), l.Items, l.Flagged, l.Failed, l.Timestamp)
	return err
}

func (s *SQLiteStore) GetAuditLogs(ctx context.Context, f AuditFilter) ([]*models.AuditLog, error) {
	var where []string
	var args []any
	if f.Channel != "" {
		where = append(where, "channel = ?")
		args = append(args, string(f.Channel))
	}
	if f.APIKeyID != "" {
		where = append(where, "api_key_id = ?")
		args = append(args, f.APIKeyID)
	}

	query := `SELECT ` + auditColumns + ` FROM audit_logs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	query += ` ORDER BY timestamp DESC LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		var channel string
		if err := rows.Scan(&l.ID, &l.RequestID, &l.APIKeyID, &l.Endpoint, &l.Method,
			&l.RequestSize, &l.ResponseCode, &l.DurationMs, &channel, &l.Items, &l.Flagged,
			&l.Failed, &l.Timestamp); err != nil {
			return nil, err
		}
		l.Channel = models.Channel(channel)
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAPIKey(row scanner) (*models.APIKey, error) {
	var k models.APIKey
	var lastUsed sql.NullTime
	if err := row.Scan(&k.ID, &k.KeyHash, &k.Name, &k.RequestsPerMinute, &k.CreatedAt, &lastUsed); err != nil {
		return nil, err
	}
	if lastUsed.Valid {
		t := lastUsed.Time
		k.LastUsedAt = &t
	}
	return &k, nil
}
