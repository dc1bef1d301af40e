package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"tradedeck-console/internal/api"
	"tradedeck-console/internal/config"
	"tradedeck-console/internal/models"
)

type fakeTransport struct {
	calls   []string
	result  *api.ActionResult
	err     error
	lastArg string
}

func (f *fakeTransport) call(name, arg string) (*api.ActionResult, error) {
	f.calls = append(f.calls, name)
	f.lastArg = arg
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &api.ActionResult{Success: true}, nil
}

func (f *fakeTransport) PauseStrategy(_ context.Context, name string) (*api.ActionResult, error) {
	return f.call("pause", name)
}
func (f *fakeTransport) ResumeStrategy(_ context.Context, name string) (*api.ActionResult, error) {
	return f.call("resume", name)
}
func (f *fakeTransport) StopStrategy(_ context.Context, name string) (*api.ActionResult, error) {
	return f.call("stop", name)
}
func (f *fakeTransport) StartStrategy(_ context.Context, name string) (*api.ActionResult, error) {
	return f.call("start", name)
}
func (f *fakeTransport) PauseAll(_ context.Context) (*api.ActionResult, error) {
	return f.call("pause-all", "")
}
func (f *fakeTransport) Kill(_ context.Context) (*api.ActionResult, error) {
	return f.call("kill", "")
}
func (f *fakeTransport) Unkill(_ context.Context) (*api.ActionResult, error) {
	return f.call("unkill", "")
}

type fakeNotifier struct {
	alerts []models.Alert
}

func (f *fakeNotifier) Push(severity models.AlertSeverity, title, message string) string {
	f.alerts = append(f.alerts, models.Alert{Severity: severity, Title: title, Message: message})
	return "id"
}

type fakeSource struct {
	snap *models.Snapshot
}

func (f *fakeSource) Snapshot() *models.Snapshot { return f.snap }

type fakeJournal struct {
	records []ControlRecord
}

func (f *fakeJournal) RecordAction(rec ControlRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Strategies: []models.Strategy{
			{Name: "gamma_scalper", Status: models.StatusRunning, PnL: 4200, OpenQty: 150, WinRate: 61.5},
			{Name: "theta_harvester", Status: models.StatusPaused},
			{Name: "failed_auction", Status: models.StatusError},
		},
	}
}

func newTestDispatcher(tr *fakeTransport, src *fakeSource) (*Dispatcher, *fakeNotifier, *fakeJournal) {
	n := &fakeNotifier{}
	j := &fakeJournal{}
	d := NewDispatcher(tr, n, src, j, config.RiskConfig{LotSize: 50, PerLotMargin: 25000, AdverseMovePct: 10}, zerolog.Nop())
	return d, n, j
}

func TestRequestUnknownStrategyRefused(t *testing.T) {
	tr := &fakeTransport{}
	d, _, _ := newTestDispatcher(tr, &fakeSource{snap: testSnapshot()})

	_, err := d.Request(context.Background(), IntentPause, "ghost")
	var guard *GuardError
	if !errors.As(err, &guard) {
		t.Fatalf("err = %v, want GuardError", err)
	}
	if len(tr.calls) != 0 {
		t.Errorf("transport calls = %v, want none", tr.calls)
	}
}

func TestRequestInvalidTransitionRefused(t *testing.T) {
	tr := &fakeTransport{}
	d, _, _ := newTestDispatcher(tr, &fakeSource{snap: testSnapshot()})

	_, err := d.Request(context.Background(), IntentPause, "theta_harvester")
	var guard *GuardError
	if !errors.As(err, &guard) {
		t.Fatalf("pausing a paused strategy: err = %v, want GuardError", err)
	}
	if len(tr.calls) != 0 {
		t.Errorf("transport calls = %v, want none", tr.calls)
	}
}

func TestDestructiveIntentGatedBehindConfirmation(t *testing.T) {
	tr := &fakeTransport{}
	d, _, _ := newTestDispatcher(tr, &fakeSource{snap: testSnapshot()})

	c, err := d.Request(context.Background(), IntentStop, "gamma_scalper")
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if c == nil {
		t.Fatal("stop must return a confirmation")
	}
	if len(tr.calls) != 0 {
		t.Fatalf("transport called before confirmation: %v", tr.calls)
	}
	if c.PnL != 4200 || c.OpenQty != 150 || c.WinRate != 61.5 {
		t.Errorf("confirmation snapshot = %+v, want strategy figures", c)
	}

	if err := d.Confirm(context.Background(), c); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if len(tr.calls) != 1 || tr.calls[0] != "stop" {
		t.Errorf("transport calls = %v, want exactly one stop", tr.calls)
	}
	if tr.lastArg != "gamma_scalper" {
		t.Errorf("stop target = %q, want gamma_scalper", tr.lastArg)
	}
}

func TestCancelHasNoSideEffects(t *testing.T) {
	tr := &fakeTransport{}
	d, n, j := newTestDispatcher(tr, &fakeSource{snap: testSnapshot()})

	c, err := d.Request(context.Background(), IntentPause, "gamma_scalper")
	if err != nil || c == nil {
		t.Fatalf("Request: c=%v err=%v", c, err)
	}
	d.Cancel(c)

	if len(tr.calls) != 0 {
		t.Errorf("transport calls after cancel = %v, want none", tr.calls)
	}
	if len(n.alerts) != 0 {
		t.Errorf("alerts after cancel = %v, want none", n.alerts)
	}
	if len(j.records) != 1 || j.records[0].Outcome != OutcomeCanceled {
		t.Errorf("journal = %+v, want single canceled record", j.records)
	}
}

func TestNonDestructiveIntentDispatchesImmediately(t *testing.T) {
	tr := &fakeTransport{}
	d, n, _ := newTestDispatcher(tr, &fakeSource{snap: testSnapshot()})

	c, err := d.Request(context.Background(), IntentResume, "theta_harvester")
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if c != nil {
		t.Fatal("resume must not require confirmation")
	}
	if len(tr.calls) != 1 || tr.calls[0] != "resume" {
		t.Fatalf("transport calls = %v, want exactly one resume", tr.calls)
	}
	if len(n.alerts) != 1 || n.alerts[0].Severity != models.SeveritySuccess {
		t.Errorf("alerts = %+v, want one success alert", n.alerts)
	}
}

func TestResumeFromErrorAllowed(t *testing.T) {
	tr := &fakeTransport{}
	d, _, _ := newTestDispatcher(tr, &fakeSource{snap: testSnapshot()})

	if _, err := d.Request(context.Background(), IntentResume, "failed_auction"); err != nil {
		t.Fatalf("resume from error: %v", err)
	}
	if len(tr.calls) != 1 {
		t.Errorf("transport calls = %v, want one", tr.calls)
	}
}

func TestServerNotConfirmedIsWarningNotSuccess(t *testing.T) {
	tr := &fakeTransport{result: &api.ActionResult{Success: false, Message: "executor busy"}}
	d, n, j := newTestDispatcher(tr, &fakeSource{snap: testSnapshot()})

	if _, err := d.Request(context.Background(), IntentResume, "theta_harvester"); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if len(n.alerts) != 1 || n.alerts[0].Severity != models.SeverityWarning {
		t.Fatalf("alerts = %+v, want one warning", n.alerts)
	}
	if j.records[len(j.records)-1].Outcome != OutcomePending {
		t.Errorf("journal outcome = %v, want pending", j.records[len(j.records)-1].Outcome)
	}
}

func TestTransportFailureIsCriticalAlert(t *testing.T) {
	tr := &fakeTransport{err: errors.New("connection refused")}
	d, n, _ := newTestDispatcher(tr, &fakeSource{snap: testSnapshot()})

	_, err := d.Request(context.Background(), IntentResume, "theta_harvester")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if len(n.alerts) != 1 || n.alerts[0].Severity != models.SeverityCritical {
		t.Errorf("alerts = %+v, want one critical", n.alerts)
	}
}

func TestPendingClearsAfterAcknowledgement(t *testing.T) {
	tr := &fakeTransport{}
	d, _, _ := newTestDispatcher(tr, &fakeSource{snap: testSnapshot()})

	if _, err := d.Request(context.Background(), IntentResume, "theta_harvester"); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if len(d.Pending()) != 0 {
		t.Errorf("pending after ack = %v, want empty", d.Pending())
	}
}

func TestResumeAllRefusedWhileKilled(t *testing.T) {
	tr := &fakeTransport{}
	snap := testSnapshot()
	snap.Telemetry.Session.IsKilled = true
	d, n, _ := newTestDispatcher(tr, &fakeSource{snap: snap})

	err := d.ResumeAll(context.Background())
	var guard *GuardError
	if !errors.As(err, &guard) {
		t.Fatalf("err = %v, want GuardError", err)
	}
	if len(tr.calls) != 0 {
		t.Errorf("transport calls = %v, want none", tr.calls)
	}
	if len(n.alerts) != 1 || n.alerts[0].Severity != models.SeverityCritical {
		t.Errorf("alerts = %+v, want one critical", n.alerts)
	}
}

func TestResumeAllInfoWhenNotKilled(t *testing.T) {
	tr := &fakeTransport{}
	d, n, _ := newTestDispatcher(tr, &fakeSource{snap: testSnapshot()})

	if err := d.ResumeAll(context.Background()); err != nil {
		t.Fatalf("ResumeAll: %v", err)
	}
	if len(tr.calls) != 0 {
		t.Errorf("transport calls = %v, want none", tr.calls)
	}
	if len(n.alerts) != 1 || n.alerts[0].Severity != models.SeverityInfo {
		t.Errorf("alerts = %+v, want one info", n.alerts)
	}
}

func TestKillRequiresConfirmationObject(t *testing.T) {
	tr := &fakeTransport{}
	d, _, _ := newTestDispatcher(tr, &fakeSource{snap: testSnapshot()})

	err := d.ConfirmKill(context.Background(), nil)
	var guard *GuardError
	if !errors.As(err, &guard) {
		t.Fatalf("err = %v, want GuardError", err)
	}
	if len(tr.calls) != 0 {
		t.Errorf("transport calls = %v, want none", tr.calls)
	}
}

func TestPrepareKillSummarisesSnapshot(t *testing.T) {
	snap := testSnapshot()
	snap.Telemetry.Session.DayPnL = -12500
	snap.Exposure.Summary.OpenPositions = 3
	snap.Exposure.Positions = []models.Position{{NetQty: 100}}
	d, _, _ := newTestDispatcher(&fakeTransport{}, &fakeSource{snap: snap})

	kc := d.PrepareKill()
	if kc.RunningStrategies != 1 {
		t.Errorf("running = %d, want 1", kc.RunningStrategies)
	}
	if kc.OpenPositions != 3 || kc.DayPnL != -12500 {
		t.Errorf("summary = %+v", kc)
	}
	if !kc.MarginAtRisk.Estimated || kc.MarginAtRisk.Value != 2*25000 {
		t.Errorf("margin at risk = %+v, want estimated 50000", kc.MarginAtRisk)
	}
	if kc.Warning == "" {
		t.Error("kill confirmation must carry the warning text")
	}

	if err := d.ConfirmKill(context.Background(), kc); err != nil {
		t.Fatalf("ConfirmKill: %v", err)
	}
}

func TestStrategyProjectionNeverMutated(t *testing.T) {
	tr := &fakeTransport{}
	snap := testSnapshot()
	d, _, _ := newTestDispatcher(tr, &fakeSource{snap: snap})

	if _, err := d.Request(context.Background(), IntentResume, "theta_harvester"); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if got := snap.StrategyByName("theta_harvester").Status; got != models.StatusPaused {
		t.Errorf("local status = %v, want paused until next poll", got)
	}
}
