// Package alerts implements the operator notification queue: append-only,
// capacity-bounded, self-expiring, independent of the poll cycle.
package alerts

import (
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tradedeck-console/internal/models"
)

// Journal receives a copy of every pushed alert for local history. Failures
// are logged and otherwise ignored; journaling never blocks the queue.
type Journal interface {
	RecordAlert(alert models.Alert) error
}

// Manager owns the alert queue. It is the only component that mutates it.
type Manager struct {
	mu       sync.Mutex
	alerts   []models.Alert
	timers   map[string]*time.Timer
	capacity int
	ttl      time.Duration
	seq      uint64

	journal Journal
	logger  zerolog.Logger
}

// NewManager creates an alert manager with the given capacity and per-alert
// time to live.
func NewManager(capacity int, ttl time.Duration, journal Journal, logger zerolog.Logger) *Manager {
	return &Manager{
		timers:   make(map[string]*time.Timer),
		capacity: capacity,
		ttl:      ttl,
		journal:  journal,
		logger:   logger,
	}
}

// Push appends a new alert at the head of the queue, evicting the oldest
// entries beyond capacity, and schedules its auto-expiry. Returns the
// assigned id. Eviction is an accepted loss, not an error.
func (m *Manager) Push(severity models.AlertSeverity, title, message string) string {
	m.mu.Lock()

	now := time.Now()
	m.seq++
	// Identity is the creation timestamp; the counter suffix keeps a burst
	// within one clock tick collision-free.
	id := strconv.FormatInt(now.UnixNano(), 10) + "-" + strconv.FormatUint(m.seq, 10)

	alert := models.Alert{
		ID:        id,
		Severity:  severity,
		Title:     title,
		Message:   message,
		CreatedAt: now,
	}

	m.alerts = append([]models.Alert{alert}, m.alerts...)
	for len(m.alerts) > m.capacity {
		evicted := m.alerts[len(m.alerts)-1]
		m.alerts = m.alerts[:len(m.alerts)-1]
		if t, ok := m.timers[evicted.ID]; ok {
			t.Stop()
			delete(m.timers, evicted.ID)
		}
	}

	m.timers[id] = time.AfterFunc(m.ttl, func() { m.expire(id) })
	m.mu.Unlock()

	if m.journal != nil {
		if err := m.journal.RecordAlert(alert); err != nil {
			m.logger.Warn().Err(err).Str("alert_id", id).Msg("Failed to journal alert")
		}
	}
	return id
}

// Dismiss removes an alert immediately. Safe to call for ids that already
// expired or were evicted; the scheduled expiry firing later is a no-op.
func (m *Manager) Dismiss(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timers[id]; ok {
		t.Stop()
	}
	m.remove(id)
}

// expire is the auto-removal path. Identical to Dismiss except it is only
// ever invoked by the alert's own timer.
func (m *Manager) expire(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(id)
}

// remove deletes the alert with the given id, if still present. Ids are
// never reused, so a late expiry cannot take out an unrelated entry.
func (m *Manager) remove(id string) {
	delete(m.timers, id)
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			return
		}
	}
}

// Active returns the current queue, newest first.
func (m *Manager) Active() []models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Alert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// Close cancels all pending expiry timers and clears the queue.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
	m.alerts = nil
}
