// Package poller maintains a fresh fleet snapshot under periodic refresh,
// degrading gracefully under partial backend outages. A round either
// replaces the whole snapshot or leaves the previous one untouched; the
// console never shows a view where one panel is fresh and another is three
// cycles stale without indication.
package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"tradedeck-console/internal/logging"
	"tradedeck-console/internal/models"
)

// Fetcher is the subset of the API client the poller queries each round.
type Fetcher interface {
	Telemetry(ctx context.Context) (*models.Telemetry, error)
	Strategies(ctx context.Context) ([]models.Strategy, error)
	Exposure(ctx context.Context) (*models.Exposure, error)
	Infra(ctx context.Context) (*models.Infra, error)
	Orders(ctx context.Context) ([]models.OrderEvent, error)
	Logs(ctx context.Context) ([]models.LogLine, error)
}

// Poller is the poll orchestrator. It is the only writer of the snapshot.
type Poller struct {
	fetcher       Fetcher
	interval      time.Duration
	equityHistory int
	logger        zerolog.Logger

	mu   sync.RWMutex
	snap *models.Snapshot

	inFlight atomic.Bool
}

// NewPoller creates a poll orchestrator. equityHistory bounds the
// client-maintained per-strategy P&L series.
func NewPoller(f Fetcher, interval time.Duration, equityHistory int, logger zerolog.Logger) *Poller {
	return &Poller{
		fetcher:       f,
		interval:      interval,
		equityHistory: equityHistory,
		logger:        logging.WithComponent(logger, "poller"),
	}
}

// Snapshot returns the latest published snapshot, or nil before the first
// successful round.
func (p *Poller) Snapshot() *models.Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

// Run polls until ctx is cancelled. The first round fires immediately. A
// tick arriving while a round is still in flight is skipped, never queued,
// so concurrent rounds are bounded at one. A round completing after
// cancellation discards its result.
func (p *Poller) Run(ctx context.Context) {
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// RunOnce performs a single round synchronously. Used by one-shot commands.
func (p *Poller) RunOnce(ctx context.Context) error {
	if !p.inFlight.CompareAndSwap(false, true) {
		return errors.New("poll round already in flight")
	}
	defer p.inFlight.Store(false)
	return p.round(ctx)
}

func (p *Poller) tick(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Debug().Msg("Prior round still in flight, skipping tick")
		return
	}
	go func() {
		defer p.inFlight.Store(false)
		_ = p.round(ctx)
	}()
}

// round issues all telemetry queries concurrently and publishes a new
// snapshot only if every one of them succeeded.
func (p *Poller) round(ctx context.Context) error {
	start := time.Now()

	var (
		wg   sync.WaitGroup
		errs [6]error

		tele   *models.Telemetry
		strats []models.Strategy
		expo   *models.Exposure
		infra  *models.Infra
		orders []models.OrderEvent
		logs   []models.LogLine
	)

	wg.Add(6)
	go func() { defer wg.Done(); tele, errs[0] = p.fetcher.Telemetry(ctx) }()
	go func() { defer wg.Done(); strats, errs[1] = p.fetcher.Strategies(ctx) }()
	go func() { defer wg.Done(); expo, errs[2] = p.fetcher.Exposure(ctx) }()
	go func() { defer wg.Done(); infra, errs[3] = p.fetcher.Infra(ctx) }()
	go func() { defer wg.Done(); orders, errs[4] = p.fetcher.Orders(ctx) }()
	go func() { defer wg.Done(); logs, errs[5] = p.fetcher.Logs(ctx) }()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			logging.LogPollRound(p.logger, false, time.Since(start), err)
			return err
		}
	}

	snap := &models.Snapshot{
		Telemetry:  *tele,
		Strategies: strats,
		Exposure:   *expo,
		Infra:      *infra,
		Orders:     orders,
		Logs:       logs,
		FetchedAt:  time.Now(),
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Teardown may have happened while the round was in flight; the result
	// is discarded and no state mutated.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	p.carryEquity(snap)
	p.snap = snap
	logging.LogPollRound(p.logger, true, time.Since(start), nil)
	return nil
}

// carryEquity extends each strategy's client-maintained P&L series with the
// newly reported value, bounded to equityHistory points. Called with p.mu
// held, prior to publishing.
func (p *Poller) carryEquity(next *models.Snapshot) {
	for i := range next.Strategies {
		s := &next.Strategies[i]
		if prev := p.snap.StrategyByName(s.Name); prev != nil && len(s.Equity) == 0 {
			s.Equity = append(s.Equity, prev.Equity...)
		}
		s.Equity = append(s.Equity, s.PnL)
		if p.equityHistory > 0 && len(s.Equity) > p.equityHistory {
			s.Equity = s.Equity[len(s.Equity)-p.equityHistory:]
		}
	}
}
