package models

import "time"

// AlertSeverity classifies a console alert.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityWarning  AlertSeverity = "warning"
	SeverityInfo     AlertSeverity = "info"
	SeveritySuccess  AlertSeverity = "success"
)

// Alert is a transient operator notification. Identity is the creation
// timestamp; the id encodes it together with a monotonic counter so that a
// burst of alerts within one clock tick never collides.
type Alert struct {
	ID        string
	Severity  AlertSeverity
	Title     string
	Message   string
	CreatedAt time.Time
}
