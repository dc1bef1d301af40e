package models

import (
	"encoding/json"
	"testing"
)

func TestStrategyByNameNilSafe(t *testing.T) {
	var snap *Snapshot
	if snap.StrategyByName("anything") != nil {
		t.Error("nil snapshot must yield nil strategy")
	}
	if snap.RunningCount() != 0 {
		t.Error("nil snapshot must count zero running")
	}
}

func TestRunningCount(t *testing.T) {
	snap := &Snapshot{Strategies: []Strategy{
		{Name: "a", Status: StatusRunning},
		{Name: "b", Status: StatusPaused},
		{Name: "c", Status: StatusRunning},
		{Name: "d", Status: StatusError},
	}}
	if got := snap.RunningCount(); got != 2 {
		t.Errorf("RunningCount = %d, want 2", got)
	}
	if s := snap.StrategyByName("c"); s == nil || s.Status != StatusRunning {
		t.Errorf("StrategyByName(c) = %+v", s)
	}
}

func TestTelemetryDecoding(t *testing.T) {
	payload := `{
		"session": {"day_pnl": -4250.5, "loss_pct": 42.5, "is_killed": true, "kill_reason": "manual"},
		"latency": {"broker_ms": 12.5, "feed_ms": 4.2},
		"feed": {"status": "stale", "age_seconds": 1.4},
		"margin": {"used": 350000, "total": 500000, "pct": 70},
		"circuit_breakers": [{"service": "broker", "state": "OPEN"}],
		"delta": -0.45
	}`

	var tele Telemetry
	if err := json.Unmarshal([]byte(payload), &tele); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !tele.Session.IsKilled || tele.Session.KillReason != "manual" {
		t.Errorf("session = %+v", tele.Session)
	}
	if tele.Feed.Status != FeedStale || tele.Feed.AgeSeconds == nil || *tele.Feed.AgeSeconds != 1.4 {
		t.Errorf("feed = %+v", tele.Feed)
	}
	if len(tele.CircuitBreakers) != 1 || tele.CircuitBreakers[0].State != BreakerOpen {
		t.Errorf("breakers = %+v", tele.CircuitBreakers)
	}
	if tele.Delta != -0.45 {
		t.Errorf("delta = %v", tele.Delta)
	}
}

func TestFeedAgeAbsentDecodesNil(t *testing.T) {
	var feed Feed
	if err := json.Unmarshal([]byte(`{"status": "live"}`), &feed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if feed.AgeSeconds != nil {
		t.Errorf("age = %v, want nil for absent field", *feed.AgeSeconds)
	}
}
