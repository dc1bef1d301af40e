// Package dispatch is the only path through which operator intent reaches
// the backend. It validates status transitions, gates destructive intents
// behind explicit confirmation, and reconciles server acknowledgement into
// operator alerts. It never mutates the local strategy projection; the next
// poll round is the sole source of truth for resulting status.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tradedeck-console/internal/api"
	"tradedeck-console/internal/config"
	"tradedeck-console/internal/derive"
	"tradedeck-console/internal/logging"
	"tradedeck-console/internal/models"
)

// Transport is the subset of the API client the dispatcher calls.
type Transport interface {
	PauseStrategy(ctx context.Context, name string) (*api.ActionResult, error)
	ResumeStrategy(ctx context.Context, name string) (*api.ActionResult, error)
	StopStrategy(ctx context.Context, name string) (*api.ActionResult, error)
	StartStrategy(ctx context.Context, name string) (*api.ActionResult, error)
	PauseAll(ctx context.Context) (*api.ActionResult, error)
	Kill(ctx context.Context) (*api.ActionResult, error)
	Unkill(ctx context.Context) (*api.ActionResult, error)
}

// Notifier receives dispatch outcomes as operator alerts.
type Notifier interface {
	Push(severity models.AlertSeverity, title, message string) string
}

// SnapshotSource provides the latest published snapshot (may be nil).
type SnapshotSource interface {
	Snapshot() *models.Snapshot
}

// Journal records dispatched control actions locally. Optional.
type Journal interface {
	RecordAction(rec ControlRecord) error
}

// ControlRecord is one journaled control action.
type ControlRecord struct {
	Time     time.Time
	Intent   string
	Strategy string
	Outcome  string
	Message  string
}

// Journal outcome values.
const (
	OutcomeSuccess  = "success"
	OutcomePending  = "pending"
	OutcomeFailed   = "failed"
	OutcomeRefused  = "refused"
	OutcomeCanceled = "canceled"
)

// GuardError is a client-side refusal. It never reaches the transport.
type GuardError struct {
	Reason string
}

func (e *GuardError) Error() string { return e.Reason }

// Confirmation is a pending destructive intent carrying a snapshot of the
// target strategy for the operator to review. Only Confirm proceeds to the
// transport; Cancel discards it with no side effect.
type Confirmation struct {
	Intent   Intent
	Strategy string
	PnL      float64
	OpenQty  int
	WinRate  float64
}

// KillConfirmation summarises what the global kill switch will affect.
// Warning spells out that open positions are not squared off and the halted
// state survives backend restarts.
type KillConfirmation struct {
	RunningStrategies int
	OpenPositions     int
	DayPnL            float64
	MarginAtRisk      derive.Estimate
	Warning           string
}

const killWarning = "Kill switch blocks all new orders and strategy activity. " +
	"Open positions are NOT squared off automatically and the halted state " +
	"persists across restarts until explicitly lifted."

// Dispatcher mediates operator commands.
type Dispatcher struct {
	transport Transport
	notifier  Notifier
	source    SnapshotSource
	journal   Journal
	riskCfg   config.RiskConfig
	logger    zerolog.Logger

	mu      sync.Mutex
	pending map[string]string // strategy -> intent awaiting backend ack
}

// NewDispatcher creates a command dispatcher. journal may be nil.
func NewDispatcher(t Transport, n Notifier, s SnapshotSource, j Journal, riskCfg config.RiskConfig, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		transport: t,
		notifier:  n,
		source:    s,
		journal:   j,
		riskCfg:   riskCfg,
		logger:    logger,
		pending:   make(map[string]string),
	}
}

// Pending returns the locally recorded intents awaiting acknowledgement,
// keyed by strategy name.
func (d *Dispatcher) Pending() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]string, len(d.pending))
	for k, v := range d.pending {
		out[k] = v
	}
	return out
}

// Request handles a per-strategy operator intent. Destructive intents
// (pause, stop) return a Confirmation and make no transport call; resume
// and start dispatch immediately and return nil.
func (d *Dispatcher) Request(ctx context.Context, intent Intent, name string) (*Confirmation, error) {
	strat := d.source.Snapshot().StrategyByName(name)
	if strat == nil {
		return nil, &GuardError{Reason: fmt.Sprintf("unknown strategy %q", name)}
	}
	if !CanApply(intent, strat.Status) {
		return nil, &GuardError{
			Reason: fmt.Sprintf("cannot %s strategy %q while %s", intent, name, strat.Status),
		}
	}

	if RequiresConfirmation(intent) {
		return &Confirmation{
			Intent:   intent,
			Strategy: name,
			PnL:      strat.PnL,
			OpenQty:  strat.OpenQty,
			WinRate:  strat.WinRate,
		}, nil
	}

	return nil, d.execute(ctx, intent, name)
}

// Confirm proceeds with a previously requested destructive intent.
func (d *Dispatcher) Confirm(ctx context.Context, c *Confirmation) error {
	if c == nil {
		return &GuardError{Reason: "nothing to confirm"}
	}
	return d.execute(ctx, c.Intent, c.Strategy)
}

// Cancel discards a confirmation request. No transport call, no alert.
func (d *Dispatcher) Cancel(c *Confirmation) {
	if c == nil {
		return
	}
	d.record(string(c.Intent), c.Strategy, OutcomeCanceled, "confirmation canceled by operator")
}

// PrepareKill builds the kill switch confirmation summary from the latest
// snapshot. Margin at risk is a client-side estimate.
func (d *Dispatcher) PrepareKill() *KillConfirmation {
	snap := d.source.Snapshot()
	kc := &KillConfirmation{Warning: killWarning}
	if snap != nil {
		kc.RunningStrategies = snap.RunningCount()
		kc.OpenPositions = snap.Exposure.Summary.OpenPositions
		kc.DayPnL = snap.Telemetry.Session.DayPnL
		kc.MarginAtRisk = derive.MarginAtRisk(snap.Exposure.Positions, d.riskCfg)
	}
	return kc
}

// ConfirmKill engages the global kill switch after explicit confirmation.
func (d *Dispatcher) ConfirmKill(ctx context.Context, c *KillConfirmation) error {
	if c == nil {
		return &GuardError{Reason: "kill requires an explicit confirmation"}
	}
	res, err := d.transport.Kill(ctx)
	return d.finish(IntentKill, "", res, err, "Kill switch engaged")
}

// Unkill lifts the global kill switch. Dispatches immediately.
func (d *Dispatcher) Unkill(ctx context.Context) error {
	res, err := d.transport.Unkill(ctx)
	return d.finish("unkill", "", res, err, "Kill switch lifted")
}

// PauseAll pauses every running strategy. Bulk but non-destructive to
// positions, so no confirmation gate.
func (d *Dispatcher) PauseAll(ctx context.Context) error {
	res, err := d.transport.PauseAll(ctx)
	return d.finish("pause-all", "", res, err, "Pause-all dispatched")
}

// ResumeAll is a deliberate guardrail, not a bulk primitive. With the kill
// switch active it refuses outright; otherwise it instructs the operator to
// resume strategies explicitly. Zero transport calls either way.
func (d *Dispatcher) ResumeAll(ctx context.Context) error {
	snap := d.source.Snapshot()
	if snap != nil && snap.Telemetry.Session.IsKilled {
		d.notifier.Push(models.SeverityCritical, "Resume-all refused",
			"Global kill switch is active. Lift it explicitly before resuming any strategy.")
		d.record("resume-all", "", OutcomeRefused, "kill switch active")
		return &GuardError{Reason: "kill switch active"}
	}
	d.notifier.Push(models.SeverityInfo, "Resume-all is not atomic",
		"Bulk resume is not a single primitive. Resume strategies individually "+
			"or use the bulk endpoint explicitly per strategy.")
	d.record("resume-all", "", OutcomeRefused, "bulk resume requires explicit per-strategy action")
	return nil
}

// execute performs the transport call for a per-strategy intent and
// classifies the outcome. The pending annotation lives only between request
// and acknowledgement.
func (d *Dispatcher) execute(ctx context.Context, intent Intent, name string) error {
	d.mu.Lock()
	d.pending[name] = string(intent)
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		delete(d.pending, name)
		d.mu.Unlock()
	}()

	var res *api.ActionResult
	var err error
	switch intent {
	case IntentPause:
		res, err = d.transport.PauseStrategy(ctx, name)
	case IntentResume:
		res, err = d.transport.ResumeStrategy(ctx, name)
	case IntentStop:
		res, err = d.transport.StopStrategy(ctx, name)
	case IntentStart:
		res, err = d.transport.StartStrategy(ctx, name)
	default:
		return &GuardError{Reason: fmt.Sprintf("unsupported intent %q", intent)}
	}

	title := fmt.Sprintf("%s %s", capitalize(string(intent)), name)
	return d.finish(intent, name, res, err, title)
}

// finish routes a transport outcome into the alert queue and the journal.
// A 2xx payload with success=false means accepted but not yet confirmed by
// the executor; that is a warning, not a success.
func (d *Dispatcher) finish(intent Intent, name string, res *api.ActionResult, err error, title string) error {
	if err != nil {
		d.notifier.Push(models.SeverityCritical, title+" failed", err.Error())
		d.record(string(intent), name, OutcomeFailed, err.Error())
		logging.LogDispatch(d.logger, string(intent), name, OutcomeFailed, err)
		return err
	}

	msg := res.Message
	if !res.Success {
		if msg == "" {
			msg = "Accepted; awaiting executor confirmation."
		}
		d.notifier.Push(models.SeverityWarning, title+" pending", msg)
		d.record(string(intent), name, OutcomePending, msg)
		return nil
	}

	if msg == "" {
		msg = "Confirmed by backend."
	}
	d.notifier.Push(models.SeveritySuccess, title, msg)
	d.record(string(intent), name, OutcomeSuccess, msg)
	logging.LogDispatch(d.logger, string(intent), name, OutcomeSuccess, nil)
	return nil
}

func (d *Dispatcher) record(intent, strategy, outcome, message string) {
	if d.journal == nil {
		return
	}
	rec := ControlRecord{
		Time:     time.Now(),
		Intent:   intent,
		Strategy: strategy,
		Outcome:  outcome,
		Message:  message,
	}
	if err := d.journal.RecordAction(rec); err != nil {
		d.logger.Warn().Err(err).Str("intent", intent).Msg("Failed to journal control action")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
