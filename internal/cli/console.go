package cli

import (
	"bufio"
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tradedeck-console/internal/alerts"
	"tradedeck-console/internal/console"
	"tradedeck-console/internal/derive"
	"tradedeck-console/internal/dispatch"
	"tradedeck-console/internal/models"
	"tradedeck-console/internal/poller"
	"tradedeck-console/pkg/format"
)

func newConsoleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive live console",
		Long: `Continuously refreshed fleet console.

Commands:
  strategies|exposure|orders|infra|logs   switch panel
  select NAME        select a strategy (detail row)
  pause NAME         pause (asks for confirmation)
  resume NAME        resume immediately
  stop NAME          stop permanently (asks for confirmation)
  start NAME         start a stopped strategy
  pause-all          pause every running strategy
  resume-all         bulk resume guardrail
  kill               emergency kill switch (typed confirmation)
  unkill             lift the kill switch
  dismiss ID         dismiss an alert
  y / n              answer an open confirmation
  quit               leave the console`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(app); err != nil {
				return err
			}
			return runConsole(cmd, app)
		},
	}
}

// session bundles everything the interactive loop owns.
type session struct {
	app    *App
	output *Output

	poller   *poller.Poller
	alerts   *alerts.Manager
	dispatch *dispatch.Dispatcher
	view     *console.State

	pendingConfirm *dispatch.Confirmation
	pendingKill    *dispatch.KillConfirmation
}

func runConsole(cmd *cobra.Command, app *App) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	output := NewOutput(cmd)

	var journal alerts.Journal
	if app.Store != nil {
		journal = app.Store
	}
	alertMgr := alerts.NewManager(app.Config.Alerts.Capacity, app.Config.Alerts.TTL, journal, app.Logger)
	defer alertMgr.Close()

	p := poller.NewPoller(app.Client, app.Config.Poll.Interval, app.Config.Poll.EquityHistory, app.Logger)
	d := dispatch.NewDispatcher(app.Client, alertMgr, p, journalOrNil(app), app.Config.Risk, app.Logger)

	s := &session{
		app:      app,
		output:   output,
		poller:   p,
		alerts:   alertMgr,
		dispatch: d,
		view:     console.NewState(),
	}

	go p.Run(ctx)

	// Operator input feeds the loop; closing stdin or "quit" ends it.
	input := make(chan string)
	go func() {
		defer close(input)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case input <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(app.Config.Poll.Interval)
	defer ticker.Stop()

	s.render()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.render()
		case line, ok := <-input:
			if !ok {
				return nil
			}
			if quit := s.handle(ctx, line); quit {
				return nil
			}
			s.render()
		}
	}
}

// handle processes one operator input line. Returns true to quit.
func (s *session) handle(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	// An open confirmation swallows everything except its answer.
	if s.view.Modal() == console.ModalConfirm || s.view.Modal() == console.ModalKillConfirm {
		s.answerConfirmation(ctx, line)
		return false
	}

	switch verb {
	case "quit", "q", "exit":
		return true
	case "strategies", "exposure", "orders", "infra", "logs":
		s.view.SetPanel(console.Panel(verb))
	case "select":
		s.view.Select(arg)
	case "pause", "stop":
		s.requestConfirmed(ctx, dispatch.Intent(verb), arg)
	case "resume", "start":
		if _, err := s.dispatch.Request(ctx, dispatch.Intent(verb), arg); err != nil {
			s.alerts.Push(models.SeverityWarning, "Refused", err.Error())
		}
	case "pause-all":
		_ = s.dispatch.PauseAll(ctx)
	case "resume-all":
		_ = s.dispatch.ResumeAll(ctx)
	case "kill":
		s.pendingKill = s.dispatch.PrepareKill()
		s.view.OpenModal(console.ModalKillConfirm)
	case "unkill":
		_ = s.dispatch.Unkill(ctx)
	case "dismiss":
		s.alerts.Dismiss(arg)
	default:
		s.alerts.Push(models.SeverityInfo, "Unknown command", line)
	}
	return false
}

func (s *session) requestConfirmed(ctx context.Context, intent dispatch.Intent, name string) {
	c, err := s.dispatch.Request(ctx, intent, name)
	if err != nil {
		s.alerts.Push(models.SeverityWarning, "Refused", err.Error())
		return
	}
	s.pendingConfirm = c
	s.view.OpenModal(console.ModalConfirm)
}

// answerConfirmation resolves an open confirmation modal. Only an explicit
// affirmative dispatches; everything else cancels.
func (s *session) answerConfirmation(ctx context.Context, line string) {
	answer := strings.TrimSpace(line)
	affirmative := answer == "y" || answer == "yes"
	if s.view.Modal() == console.ModalKillConfirm {
		// The kill switch demands the literal word.
		affirmative = answer == "KILL"
	}

	switch s.view.Modal() {
	case console.ModalConfirm:
		if affirmative {
			_ = s.dispatch.Confirm(ctx, s.pendingConfirm)
		} else {
			s.dispatch.Cancel(s.pendingConfirm)
		}
		s.pendingConfirm = nil
	case console.ModalKillConfirm:
		if affirmative {
			_ = s.dispatch.ConfirmKill(ctx, s.pendingKill)
		}
		s.pendingKill = nil
	}
	s.view.CloseModal()
}

// render draws the ribbon, the active panel, open confirmations and the
// alert stack.
func (s *session) render() {
	o := s.output
	snap := s.poller.Snapshot()
	sum := derive.BuildRiskSummary(snap, s.dispatch.Pending(), s.app.Config.Risk)

	o.Println()
	if sum == nil {
		o.Dim("waiting for first snapshot…")
	} else {
		renderRiskRibbon(o, sum)
		s.renderPanel(snap, sum)
	}

	switch s.view.Modal() {
	case console.ModalConfirm:
		if c := s.pendingConfirm; c != nil {
			o.Warning("Confirm %s of %q — P&L %s, open qty %s, win rate %s. [y/N]",
				c.Intent, c.Strategy, format.PnL(c.PnL), format.Qty(c.OpenQty), format.Pct(c.WinRate))
		}
	case console.ModalKillConfirm:
		if kc := s.pendingKill; kc != nil {
			o.Error("KILL: %d running, %d open positions, day P&L %s, margin at risk %s",
				kc.RunningStrategies, kc.OpenPositions, format.PnL(kc.DayPnL),
				format.Estimated(format.Currency(kc.MarginAtRisk.Value)))
			o.Warning("%s", kc.Warning)
			o.Printf("Type KILL to confirm: ")
		}
	}

	for _, a := range s.alerts.Active() {
		o.colored(o.SeverityColor(a.Severity), "[%s] %s — %s (dismiss %s)",
			strings.ToUpper(string(a.Severity)), a.Title, a.Message, a.ID)
	}
}

func (s *session) renderPanel(snap *models.Snapshot, sum *derive.RiskSummary) {
	switch s.view.Panel() {
	case console.PanelExposure:
		o := s.output
		expo := snap.Exposure
		o.Bold("Exposure — %d positions, %d lots", expo.Summary.OpenPositions, expo.Summary.OpenLots)
		for i := range expo.Positions {
			p := &expo.Positions[i]
			o.Printf("  %-12s %-4s %6s  unrealized %s\n", p.Symbol, p.Side,
				format.Qty(p.NetQty), format.PnL(p.Unrealized))
		}
	case console.PanelOrders:
		for i := range snap.Orders {
			ev := &snap.Orders[i]
			s.output.Printf("  %s %-10s %-12s %-4s %6s @ %.2f\n",
				ev.Time, ev.Event, ev.Symbol, ev.Side, format.Qty(ev.Qty), ev.Price)
		}
	case console.PanelInfra:
		renderInfra(s.output, &snap.Infra)
	case console.PanelLogs:
		for i := range snap.Logs {
			line := &snap.Logs[i]
			s.output.Printf("  %s %-8s %s\n", line.Time, line.Level, line.Msg)
		}
	default:
		renderStrategies(s.output, sum.Strategies)
		if sel := s.view.Selected(); sel != "" {
			if strat := snap.StrategyByName(sel); strat != nil && strat.Status == models.StatusError {
				s.output.Error("%s error: %s", strat.Name, strat.ErrorMsg)
				s.output.Dim("%s", strat.ErrorTrace)
				s.output.Dim("restarts %d, last good trade %s", strat.RestartCount, strat.LastGoodTrade)
			}
		}
	}
}
