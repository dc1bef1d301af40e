package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tradedeck-console/internal/dispatch"
	"tradedeck-console/internal/models"
)

// SQLiteStore implements JournalStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the journal database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Dispatched control actions, append-only
	CREATE TABLE IF NOT EXISTS control_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts DATETIME NOT NULL,
		intent TEXT NOT NULL,
		strategy TEXT,
		outcome TEXT NOT NULL,
		message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_control_log_ts ON control_log(ts);

	-- Alert history, append-only
	CREATE TABLE IF NOT EXISTS alert_history (
		id TEXT PRIMARY KEY,
		severity TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_alert_history_created ON alert_history(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordAction journals one dispatched control action.
func (s *SQLiteStore) RecordAction(rec dispatch.ControlRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO control_log (ts, intent, strategy, outcome, message) VALUES (?, ?, ?, ?, ?)`,
		rec.Time, rec.Intent, rec.Strategy, rec.Outcome, rec.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to record control action: %w", err)
	}
	return nil
}

// RecentActions returns the newest journaled actions, newest first.
func (s *SQLiteStore) RecentActions(ctx context.Context, limit int) ([]dispatch.ControlRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, intent, COALESCE(strategy, ''), outcome, COALESCE(message, '')
		 FROM control_log ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query control log: %w", err)
	}
	defer rows.Close()

	var out []dispatch.ControlRecord
	for rows.Next() {
		var rec dispatch.ControlRecord
		if err := rows.Scan(&rec.Time, &rec.Intent, &rec.Strategy, &rec.Outcome, &rec.Message); err != nil {
			return nil, fmt.Errorf("failed to scan control record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RecordAlert journals one raised alert.
func (s *SQLiteStore) RecordAlert(alert models.Alert) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO alert_history (id, severity, title, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		alert.ID, string(alert.Severity), alert.Title, alert.Message, alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record alert: %w", err)
	}
	return nil
}

// RecentAlerts returns the newest journaled alerts, newest first.
func (s *SQLiteStore) RecentAlerts(ctx context.Context, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, severity, title, COALESCE(message, ''), created_at
		 FROM alert_history ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert history: %w", err)
	}
	defer rows.Close()

	var out []models.Alert
	for rows.Next() {
		var a models.Alert
		var sev string
		if err := rows.Scan(&a.ID, &sev, &a.Title, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Severity = models.AlertSeverity(sev)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Prune removes journal entries older than the cutoff.
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Time) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM control_log WHERE ts < ?`, olderThan); err != nil {
		return fmt.Errorf("failed to prune control log: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM alert_history WHERE created_at < ?`, olderThan); err != nil {
		return fmt.Errorf("failed to prune alert history: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
