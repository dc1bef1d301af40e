package derive

import (
	"tradedeck-console/internal/config"
	"tradedeck-console/internal/models"
)

// StrategyView is one strategy's render-ready row.
type StrategyView struct {
	models.Strategy

	RiskBarPct    float64
	AutoRestartOK bool
	PendingIntent string
}

// RiskSummary is the render-ready view model built from one snapshot.
type RiskSummary struct {
	Level        RiskLevel
	MarginBarPct float64
	LossBarPct   float64
	FeedStatus   models.FeedStatus
	FeedTint     FeedTint
	Direction    models.Direction
	Killed       bool
	KillReason   string
	DayPnL       float64

	OpenPositions int
	OpenLots      int
	MarginAtRisk  Estimate
	MaxTheoLoss   Estimate

	TrippedBreakers []models.CircuitBreaker
	Strategies      []StrategyView
}

// BuildRiskSummary assembles the view model for the risk ribbon and the
// strategy grid. pending maps strategy name to a locally recorded intent
// awaiting backend acknowledgement (may be nil).
func BuildRiskSummary(snap *models.Snapshot, pending map[string]string, cfg config.RiskConfig) *RiskSummary {
	if snap == nil {
		return nil
	}

	tele := snap.Telemetry
	status, tint := FeedHealth(tele.Feed)

	sum := &RiskSummary{
		Level:        Risk(tele.Margin.Pct, tele.Session.LossPct, cfg),
		MarginBarPct: ClampPct(tele.Margin.Used, tele.Margin.Total),
		LossBarPct:   ClampPct(tele.Session.LossPct, 100),
		FeedStatus:   status,
		FeedTint:     tint,
		Direction:    NetDirection(tele.Delta),
		Killed:       tele.Session.IsKilled,
		KillReason:   tele.Session.KillReason,
		DayPnL:       tele.Session.DayPnL,

		OpenPositions: snap.Exposure.Summary.OpenPositions,
		OpenLots:      snap.Exposure.Summary.OpenLots,
		MarginAtRisk:  MarginAtRisk(snap.Exposure.Positions, cfg),
		MaxTheoLoss:   MaxTheoreticalLoss(snap.Exposure.Positions, cfg),
	}

	for _, cb := range tele.CircuitBreakers {
		if cb.State != models.BreakerClosed {
			sum.TrippedBreakers = append(sum.TrippedBreakers, cb)
		}
	}

	sum.Strategies = make([]StrategyView, 0, len(snap.Strategies))
	for i := range snap.Strategies {
		s := snap.Strategies[i]
		view := StrategyView{
			Strategy:      s,
			RiskBarPct:    ClampPct(s.RiskPct, 100),
			AutoRestartOK: AutoRestartEligible(s.RestartCount, cfg),
			PendingIntent: s.ControlIntent,
		}
		if view.PendingIntent == "" && pending != nil {
			view.PendingIntent = pending[s.Name]
		}
		sum.Strategies = append(sum.Strategies, view)
	}
	return sum
}
