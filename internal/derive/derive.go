// Package derive computes render-ready risk and health indicators from a
// raw snapshot. Everything here is a pure function of its inputs; figures
// the backend does not confirm (max theoretical loss, margin at risk) are
// marked estimated and must be surfaced as such.
package derive

import (
	"math"

	"tradedeck-console/internal/config"
	"tradedeck-console/internal/models"
)

// RiskLevel classifies overall session risk.
type RiskLevel string

const (
	RiskOK     RiskLevel = "ok"
	RiskWarn   RiskLevel = "warn"
	RiskDanger RiskLevel = "danger"
)

// FeedTint is the age-based coloring applied on top of the backend's
// tri-state feed status.
type FeedTint string

const (
	TintLive  FeedTint = "live"
	TintStale FeedTint = "stale"
	TintDead  FeedTint = "dead"
)

// Feed age tint thresholds in seconds.
const (
	feedStaleAge = 0.8
	feedDeadAge  = 2.0
)

// Risk computes the session risk level from margin utilisation and
// daily-loss percentage.
func Risk(marginPct, dailyLossPct float64, cfg config.RiskConfig) RiskLevel {
	switch {
	case marginPct >= cfg.MarginDangerPct || dailyLossPct >= cfg.LossDangerPct:
		return RiskDanger
	case marginPct >= cfg.MarginWarnPct || dailyLossPct >= cfg.LossWarnPct:
		return RiskWarn
	default:
		return RiskOK
	}
}

// FeedHealth returns the backend's tri-state status together with the
// age-based tint. An unknown age tints by status alone.
func FeedHealth(feed models.Feed) (models.FeedStatus, FeedTint) {
	status := feed.Status
	if status == "" {
		status = models.FeedUnknown
	}

	if feed.AgeSeconds == nil {
		switch status {
		case models.FeedLive:
			return status, TintLive
		case models.FeedStale:
			return status, TintStale
		default:
			return status, TintDead
		}
	}

	age := *feed.AgeSeconds
	switch {
	case age > feedDeadAge:
		return status, TintDead
	case age > feedStaleAge:
		return status, TintStale
	default:
		return status, TintLive
	}
}

// NetDirection maps net option delta to a directional signal.
func NetDirection(netDelta float64) models.Direction {
	switch {
	case netDelta > 0:
		return models.DirectionBull
	case netDelta < 0:
		return models.DirectionBear
	default:
		return models.DirectionNeutral
	}
}

// ClampPct converts a used/total ratio into a bar percentage saturated to
// [0,100]. A ratio beyond 100% renders as a full bar, never an overflow.
func ClampPct(used, total float64) float64 {
	if total <= 0 {
		return 0
	}
	pct := used / total * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Lots normalizes a signed quantity into whole lots. Always non-negative.
func Lots(qty, lotSize int) int {
	if lotSize <= 0 {
		return 0
	}
	if qty < 0 {
		qty = -qty
	}
	return qty / lotSize
}

// AutoRestartEligible reports whether the backend will still auto-restart a
// crashed strategy. A manual resume is never blocked by this cap.
func AutoRestartEligible(restartCount int, cfg config.RiskConfig) bool {
	return restartCount < cfg.AutoRestartLimit
}

// Estimate is a derived figure with no backend confirmation. Estimated is
// always true; it exists so every surface rendering the value has an
// explicit marker to key the "est." label off.
type Estimate struct {
	Value     float64
	Estimated bool
}

// MarginAtRisk estimates margin locked by open positions from a fixed
// per-lot margin constant.
func MarginAtRisk(positions []models.Position, cfg config.RiskConfig) Estimate {
	lots := 0
	for i := range positions {
		lots += Lots(positions[i].NetQty, cfg.LotSize)
	}
	return Estimate{Value: float64(lots) * cfg.PerLotMargin, Estimated: true}
}

// MaxTheoreticalLoss estimates the worst-case loss across open positions.
// With a stop in place the loss is bounded by the stop distance; without
// one it assumes a fixed adverse move against the full notional.
func MaxTheoreticalLoss(positions []models.Position, cfg config.RiskConfig) Estimate {
	total := 0.0
	for i := range positions {
		p := &positions[i]
		qty := math.Abs(float64(p.NetQty))
		if qty == 0 {
			continue
		}

		ref := p.AvgPrice
		if p.LTP != nil && *p.LTP > 0 {
			ref = *p.LTP
		}
		if ref <= 0 {
			continue
		}

		if p.Stop != nil && *p.Stop > 0 {
			total += qty * math.Abs(ref-*p.Stop)
			continue
		}
		total += qty * ref * cfg.AdverseMovePct / 100
	}
	return Estimate{Value: total, Estimated: true}
}
