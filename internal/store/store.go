// Package store provides the local journal: an append-only record of
// dispatched control actions and raised alerts, for the audit view.
package store

import (
	"context"
	"time"

	"tradedeck-console/internal/dispatch"
	"tradedeck-console/internal/models"
)

// JournalStore defines the local journal interface.
type JournalStore interface {
	// Control actions
	RecordAction(rec dispatch.ControlRecord) error
	RecentActions(ctx context.Context, limit int) ([]dispatch.ControlRecord, error)

	// Alerts
	RecordAlert(alert models.Alert) error
	RecentAlerts(ctx context.Context, limit int) ([]models.Alert, error)

	// Housekeeping
	Prune(ctx context.Context, olderThan time.Time) error
	Close() error
}
