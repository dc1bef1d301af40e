package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Poll.Interval != 2*time.Second {
		t.Errorf("poll interval = %s, want 2s", cfg.Poll.Interval)
	}
	if cfg.Alerts.Capacity != 6 || cfg.Alerts.TTL != 9*time.Second {
		t.Errorf("alerts = %+v, want capacity 6 ttl 9s", cfg.Alerts)
	}
	if cfg.Risk.MarginDangerPct != 85 || cfg.Risk.LossDangerPct != 80 {
		t.Errorf("risk danger thresholds = %+v", cfg.Risk)
	}
	if cfg.Risk.LotSize != 50 || cfg.Risk.PerLotMargin != 25000 {
		t.Errorf("risk lot constants = %+v", cfg.Risk)
	}
	if cfg.Risk.AutoRestartLimit != 5 {
		t.Errorf("auto restart limit = %d, want 5", cfg.Risk.AutoRestartLimit)
	}
}

func TestLoadFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api:\n  base_url: https://fleet.example.com\npoll:\n  interval: 5s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "https://fleet.example.com" {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.Poll.Interval != 5*time.Second {
		t.Errorf("interval = %s, want 5s", cfg.Poll.Interval)
	}
	// Untouched keys keep their defaults.
	if cfg.Alerts.Capacity != 6 {
		t.Errorf("capacity = %d, want default 6", cfg.Alerts.Capacity)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API:    APIConfig{BaseURL: "http://localhost:8000"},
			Poll:   PollConfig{Interval: 2 * time.Second},
			Alerts: AlertConfig{Capacity: 6, TTL: 9 * time.Second},
			Risk: RiskConfig{
				MarginWarnPct: 70, MarginDangerPct: 85,
				LossWarnPct: 55, LossDangerPct: 80,
				LotSize: 50,
			},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	broken := []func(*Config){
		func(c *Config) { c.API.BaseURL = "" },
		func(c *Config) { c.Poll.Interval = 0 },
		func(c *Config) { c.Alerts.Capacity = 0 },
		func(c *Config) { c.Alerts.TTL = -time.Second },
		func(c *Config) { c.Risk.LotSize = 0 },
		func(c *Config) { c.Risk.MarginWarnPct = 90 },
		func(c *Config) { c.Risk.LossWarnPct = 85 },
	}
	for i, mutate := range broken {
		c := valid()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: invalid config accepted", i)
		}
	}
}
