// Package models provides domain models for the operator console.
package models

import "time"

// StrategyStatus represents the backend-owned lifecycle state of a strategy.
type StrategyStatus string

const (
	StatusRunning StrategyStatus = "running"
	StatusPaused  StrategyStatus = "paused"
	StatusError   StrategyStatus = "error"
	StatusStopped StrategyStatus = "stopped"
)

// PositionSide represents the side of an open position.
type PositionSide string

const (
	SideBuy  PositionSide = "BUY"
	SideSell PositionSide = "SELL"
)

// FeedStatus represents the backend-reported health of the market data feed.
type FeedStatus string

const (
	FeedLive    FeedStatus = "live"
	FeedStale   FeedStatus = "stale"
	FeedDead    FeedStatus = "dead"
	FeedUnknown FeedStatus = "unknown"
)

// BreakerState represents a circuit breaker state reported by the backend.
type BreakerState string

const (
	BreakerClosed   BreakerState = "CLOSED"
	BreakerHalfOpen BreakerState = "HALF_OPEN"
	BreakerOpen     BreakerState = "OPEN"
)

// Direction represents aggregate directional exposure.
type Direction string

const (
	DirectionBull    Direction = "BULL"
	DirectionBear    Direction = "BEAR"
	DirectionNeutral Direction = "NEUTRAL"
)

// Session holds per-day session totals from the telemetry feed.
type Session struct {
	DayPnL     float64        `json:"day_pnl"`
	LossPct    float64        `json:"loss_pct"`
	IsKilled   bool           `json:"is_killed"`
	KillReason string         `json:"kill_reason,omitempty"`
	Counts     map[string]int `json:"counts,omitempty"`
}

// Latency holds order round-trip latency statistics.
type Latency struct {
	AvgMs      float64   `json:"avg_ms"`
	P50Ms      float64   `json:"p50_ms"`
	P95Ms      float64   `json:"p95_ms"`
	P99Ms      float64   `json:"p99_ms"`
	LastMs     float64   `json:"last_ms"`
	SampleN    int       `json:"sample_n"`
	History    []float64 `json:"history,omitempty"`
	SpikeCount int       `json:"spike_count"`
}

// Feed holds market data feed health. AgeSeconds is nil when the backend
// could not determine feed age at all.
type Feed struct {
	Status      FeedStatus `json:"status"`
	AgeSeconds  *float64   `json:"age_seconds"`
	WSConnected bool       `json:"ws_connected"`
}

// Margin holds broker margin utilisation.
type Margin struct {
	Used  float64 `json:"used"`
	Total float64 `json:"total"`
	Pct   float64 `json:"pct"`
}

// CircuitBreaker is one backend dependency's health gate.
type CircuitBreaker struct {
	Service string       `json:"service"`
	State   BreakerState `json:"state"`
}

// ExposureTotals summarises open exposure across all strategies.
type ExposureTotals struct {
	OpenPositions int     `json:"open_positions"`
	OpenLots      int     `json:"open_lots"`
	MarginAtRisk  float64 `json:"margin_at_risk"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	MaxTheoLoss   float64 `json:"max_theo_loss,omitempty"`
}

// Telemetry is the response of GET /telemetry: everything the top bar and
// risk ribbon need, computed server-side.
type Telemetry struct {
	TS              time.Time        `json:"ts"`
	Session         Session          `json:"session"`
	Latency         Latency          `json:"latency"`
	Feed            Feed             `json:"feed"`
	Delta           float64          `json:"delta"`
	Margin          Margin           `json:"margin"`
	Exposure        ExposureTotals   `json:"exposure"`
	CircuitBreakers []CircuitBreaker `json:"circuit_breakers,omitempty"`
}

// Strategy is the read-only projection of one strategy's state. The backend
// owns it; the console only refreshes it each poll round. Error fields are
// populated iff Status is StatusError.
type Strategy struct {
	Name          string         `json:"name"`
	Status        StrategyStatus `json:"status"`
	ControlIntent string         `json:"control_intent,omitempty"`
	PnL           float64        `json:"pnl"`
	Alloc         float64        `json:"alloc"`
	OpenQty       int            `json:"open_qty"`
	AvgEntry      *float64       `json:"avg_entry"`
	LTP           *float64       `json:"ltp"`
	WinRate       float64        `json:"win_rate"`
	Trades        int            `json:"trades"`
	Delta         float64        `json:"delta"`
	Drawdown      float64        `json:"drawdown"`
	MaxDD         float64        `json:"max_dd"`
	RiskPct       float64        `json:"risk_pct"`
	Direction     Direction      `json:"direction,omitempty"`
	Signal        string         `json:"signal,omitempty"`
	Symbol        string         `json:"symbol,omitempty"`
	Type          string         `json:"type,omitempty"`
	LastTrade     string         `json:"last_trade,omitempty"`

	// Error diagnostics, present only while Status == StatusError.
	ErrorMsg      string `json:"error_msg,omitempty"`
	ErrorTrace    string `json:"error_trace,omitempty"`
	ErrorCount    int    `json:"error_count,omitempty"`
	LastGoodTrade string `json:"last_good_trade,omitempty"`
	RestartCount  int    `json:"restart_count,omitempty"`
	AutoRestart   bool   `json:"auto_restart,omitempty"`

	// Equity is the per-strategy P&L time series, maintained client-side
	// across poll rounds (the backend only reports the latest value).
	Equity []float64 `json:"equity,omitempty"`
}

// Position is one open position in the exposure panel.
type Position struct {
	Symbol     string       `json:"symbol"`
	Side       PositionSide `json:"side"`
	NetQty     int          `json:"net_qty"`
	AvgPrice   float64      `json:"avg_price"`
	LTP        *float64     `json:"ltp"`
	Stop       *float64     `json:"stop,omitempty"`
	Target     *float64     `json:"target,omitempty"`
	Unrealized float64      `json:"unrealized"`
	Strategy   string       `json:"strategy,omitempty"`
}

// DeltaBreakdown is the per-direction strategy count behind the net delta.
type DeltaBreakdown struct {
	Total     float64   `json:"total"`
	Bull      int       `json:"bull"`
	Bear      int       `json:"bear"`
	Neutral   int       `json:"neutral"`
	Direction Direction `json:"direction"`
}

// Exposure is the response of GET /exposure.
type Exposure struct {
	TS        time.Time      `json:"ts"`
	Summary   ExposureTotals `json:"summary"`
	Delta     DeltaBreakdown `json:"delta"`
	Positions []Position     `json:"positions"`
}

// PoolStats holds database connection pool statistics.
type PoolStats struct {
	Size       int `json:"size"`
	CheckedOut int `json:"checked_out"`
	Overflow   int `json:"overflow"`
	UsagePct   int `json:"usage_pct"`
}

// ProcessStats holds backend process information.
type ProcessStats struct {
	UptimeSeconds int    `json:"uptime_seconds"`
	UptimeHuman   string `json:"uptime_human"`
	PID           int    `json:"pid"`
}

// CPUStats holds host CPU utilisation.
type CPUStats struct {
	UsagePct  float64 `json:"usage_pct"`
	CoreCount int     `json:"core_count"`
}

// MemoryStats holds host memory utilisation.
type MemoryStats struct {
	TotalMB     int     `json:"total_mb"`
	UsedMB      int     `json:"used_mb"`
	AvailableMB int     `json:"available_mb"`
	UsagePct    float64 `json:"usage_pct"`
}

// DatabaseStats holds backend database health.
type DatabaseStats struct {
	Pool          PoolStats `json:"pool"`
	ActiveQueries *int      `json:"active_queries"`
	Exhausted     bool      `json:"exhausted"`
}

// CacheStats holds backend cache (Redis) health.
type CacheStats struct {
	Available bool     `json:"available"`
	MemoryMB  float64  `json:"memory_mb,omitempty"`
	UsagePct  *float64 `json:"usage_pct,omitempty"`
}

// Infra is the response of GET /infra: live process and host metrics.
type Infra struct {
	TS          time.Time     `json:"ts"`
	Process     ProcessStats  `json:"process"`
	CPU         CPUStats      `json:"cpu"`
	Memory      MemoryStats   `json:"memory"`
	Database    DatabaseStats `json:"database"`
	Cache       CacheStats    `json:"redis"`
	ReconLast   string        `json:"recon_last,omitempty"`
	ReconStatus string        `json:"recon_status,omitempty"`
}

// OrderEvent is one entry of the order flow tape.
type OrderEvent struct {
	ID       int64   `json:"id"`
	Time     string  `json:"time"`
	Event    string  `json:"event"`
	Symbol   string  `json:"sym"`
	Strategy string  `json:"strat"`
	Side     string  `json:"side"`
	Qty      int     `json:"qty"`
	Price    float64 `json:"price"`
	Status   string  `json:"status"`
	Reason   string  `json:"reason,omitempty"`
}

// LogLine is one entry of the combined system log view.
type LogLine struct {
	ID     int    `json:"id"`
	Time   string `json:"time"`
	Level  string `json:"level"`
	Msg    string `json:"msg"`
	Module string `json:"module"`
}

// ControlLogEntry is one entry of the backend's control audit log.
type ControlLogEntry struct {
	Strategy     string `json:"strategy"`
	Action       string `json:"action"`
	Actor        string `json:"actor"`
	IP           string `json:"ip,omitempty"`
	FromStatus   string `json:"from_status,omitempty"`
	Acked        bool   `json:"acked"`
	AckLatencyMs *int   `json:"ack_latency_ms"`
	Time         string `json:"time"`
}

// Snapshot is one internally consistent view of the whole fleet, produced
// by a fully successful poll round and replaced atomically. A nil Snapshot
// means no round has succeeded yet.
type Snapshot struct {
	Telemetry  Telemetry
	Strategies []Strategy
	Exposure   Exposure
	Infra      Infra
	Orders     []OrderEvent
	Logs       []LogLine
	FetchedAt  time.Time
}

// StrategyByName returns the named strategy, or nil.
func (s *Snapshot) StrategyByName(name string) *Strategy {
	if s == nil {
		return nil
	}
	for i := range s.Strategies {
		if s.Strategies[i].Name == name {
			return &s.Strategies[i]
		}
	}
	return nil
}

// RunningCount returns the number of running strategies.
func (s *Snapshot) RunningCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for i := range s.Strategies {
		if s.Strategies[i].Status == StatusRunning {
			n++
		}
	}
	return n
}
