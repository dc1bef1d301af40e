package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tradedeck-console/internal/derive"
	"tradedeck-console/internal/models"
	"tradedeck-console/internal/poller"
	"tradedeck-console/pkg/format"
)

// addViewCommands adds the one-shot read-only views.
func addViewCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newStatusCmd(app))
	rootCmd.AddCommand(newStrategiesCmd(app))
	rootCmd.AddCommand(newExposureCmd(app))
	rootCmd.AddCommand(newInfraCmd(app))
	rootCmd.AddCommand(newOrdersCmd(app))
	rootCmd.AddCommand(newLogsCmd(app))
}

// fetchSnapshot performs one full poll round for one-shot commands.
func fetchSnapshot(ctx context.Context, app *App) (*models.Snapshot, error) {
	if err := requireToken(app); err != nil {
		return nil, err
	}
	p := poller.NewPoller(app.Client, app.Config.Poll.Interval, app.Config.Poll.EquityHistory, app.Logger)
	if err := p.RunOnce(ctx); err != nil {
		return nil, fmt.Errorf("fetch round failed: %w", err)
	}
	return p.Snapshot(), nil
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "One-shot fleet risk summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			snap, err := fetchSnapshot(ctx, app)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			sum := derive.BuildRiskSummary(snap, nil, app.Config.Risk)
			if output.IsJSON() {
				return output.JSON(sum)
			}

			renderRiskRibbon(output, sum)
			return nil
		},
	}
}

// renderRiskRibbon prints the session-level risk line shared by status and
// the interactive console.
func renderRiskRibbon(o *Output, sum *derive.RiskSummary) {
	if sum == nil {
		o.Dim("no snapshot yet")
		return
	}

	if sum.Killed {
		reason := sum.KillReason
		if reason == "" {
			reason = "no reason recorded"
		}
		o.Error("KILL SWITCH ACTIVE — %s", reason)
	}

	levelColor := ColorGreen
	switch sum.Level {
	case derive.RiskWarn:
		levelColor = ColorYellow
	case derive.RiskDanger:
		levelColor = ColorRed
	}

	feedColor := ColorGreen
	switch sum.FeedTint {
	case derive.TintStale:
		feedColor = ColorYellow
	case derive.TintDead:
		feedColor = ColorRed
	}

	o.Printf("Risk %s  P&L %s  Margin %s  Feed %s  Delta %s\n",
		o.ColoredString(levelColor, strings.ToUpper(string(sum.Level))),
		o.ColoredString(o.PnLColor(sum.DayPnL), format.PnL(sum.DayPnL)),
		bar(sum.MarginBarPct),
		o.ColoredString(feedColor, string(sum.FeedStatus)),
		string(sum.Direction),
	)
	o.Printf("Open: %d positions / %d lots   Margin at risk %s   Max theo loss %s\n",
		sum.OpenPositions, sum.OpenLots,
		format.Estimated(format.Currency(sum.MarginAtRisk.Value)),
		format.Estimated(format.Currency(sum.MaxTheoLoss.Value)),
	)
	for _, cb := range sum.TrippedBreakers {
		o.Warning("circuit breaker %s: %s", cb.Service, cb.State)
	}
}

// bar renders a 10-cell percentage meter. Input is already clamped.
func bar(pct float64) string {
	filled := int(pct / 10)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", 10-filled) + fmt.Sprintf("] %3.0f%%", pct)
}

func newStrategiesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List strategy states",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			snap, err := fetchSnapshot(ctx, app)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			sum := derive.BuildRiskSummary(snap, nil, app.Config.Risk)
			if output.IsJSON() {
				return output.JSON(sum.Strategies)
			}

			renderStrategies(output, sum.Strategies)
			return nil
		},
	}
}

func renderStrategies(o *Output, views []derive.StrategyView) {
	table := NewTable(o, "Strategy", "Status", "P&L", "Qty", "Win%", "Trades", "Risk", "Note")
	for i := range views {
		v := &views[i]
		note := v.PendingIntent
		if note != "" {
			note = "pending " + note
		}
		if v.Status == models.StatusError {
			note = v.ErrorMsg
			if !v.AutoRestartOK {
				note += " (auto-restart exhausted)"
			} else {
				note += fmt.Sprintf(" (restart %d)", v.RestartCount)
			}
		}
		table.AddRow(
			v.Name,
			o.ColoredString(statusColor(v.Status), string(v.Status)),
			o.ColoredString(o.PnLColor(v.PnL), format.PnL(v.PnL)),
			format.Qty(v.OpenQty),
			format.Pct(v.WinRate),
			fmt.Sprintf("%d", v.Trades),
			format.Pct(v.RiskBarPct),
			note,
		)
	}
	table.Render()
}

func statusColor(s models.StrategyStatus) string {
	switch s {
	case models.StatusRunning:
		return ColorGreen
	case models.StatusPaused:
		return ColorYellow
	case models.StatusError:
		return ColorRed
	default:
		return ColorDim
	}
}

func newExposureCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "exposure",
		Short: "Show open positions and aggregate exposure",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			snap, err := fetchSnapshot(ctx, app)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(snap.Exposure)
			}

			expo := snap.Exposure
			output.Bold("Exposure — %d positions, %d lots, unrealized %s",
				expo.Summary.OpenPositions, expo.Summary.OpenLots,
				format.PnL(expo.Summary.UnrealizedPnL))
			mar := derive.MarginAtRisk(expo.Positions, app.Config.Risk)
			mtl := derive.MaxTheoreticalLoss(expo.Positions, app.Config.Risk)
			output.Dim("Margin at risk %s   Max theoretical loss %s",
				format.Estimated(format.Currency(mar.Value)),
				format.Estimated(format.Currency(mtl.Value)))

			table := NewTable(output, "Symbol", "Side", "Qty", "Avg", "LTP", "Unrealized", "Strategy")
			for i := range expo.Positions {
				p := &expo.Positions[i]
				ltp := "—"
				if p.LTP != nil {
					ltp = fmt.Sprintf("%.2f", *p.LTP)
				}
				table.AddRow(
					p.Symbol,
					string(p.Side),
					format.Qty(p.NetQty),
					fmt.Sprintf("%.2f", p.AvgPrice),
					ltp,
					output.ColoredString(output.PnLColor(p.Unrealized), format.PnL(p.Unrealized)),
					p.Strategy,
				)
			}
			table.Render()
			return nil
		},
	}
}

func newInfraCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "infra",
		Short: "Show backend infrastructure metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			snap, err := fetchSnapshot(ctx, app)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(snap.Infra)
			}

			renderInfra(output, &snap.Infra)
			return nil
		},
	}
}

func renderInfra(o *Output, infra *models.Infra) {
	o.Bold("Process  uptime %s  pid %d", infra.Process.UptimeHuman, infra.Process.PID)
	o.Printf("CPU  %s (%d cores)\n", bar(derive.ClampPct(infra.CPU.UsagePct, 100)), infra.CPU.CoreCount)
	o.Printf("Mem  %s (%d/%d MB)\n",
		bar(derive.ClampPct(float64(infra.Memory.UsedMB), float64(infra.Memory.TotalMB))),
		infra.Memory.UsedMB, infra.Memory.TotalMB)
	o.Printf("DB pool  %s", bar(derive.ClampPct(float64(infra.Database.Pool.CheckedOut), float64(infra.Database.Pool.Size))))
	if infra.Database.Exhausted {
		o.Printf("  %s", o.ColoredString(ColorRed, "EXHAUSTED"))
	}
	o.Println()
	if infra.Cache.Available {
		o.Printf("Cache  %.1f MB\n", infra.Cache.MemoryMB)
	} else {
		o.Warning("Cache unavailable")
	}
	if infra.ReconStatus != "" {
		o.Dim("Reconciliation %s (%s)", infra.ReconStatus, infra.ReconLast)
	}
}

func newOrdersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "Show recent order flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			snap, err := fetchSnapshot(ctx, app)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(snap.Orders)
			}

			table := NewTable(output, "Time", "Event", "Symbol", "Side", "Qty", "Price", "Strategy")
			for i := range snap.Orders {
				ev := &snap.Orders[i]
				table.AddRow(ev.Time, ev.Event, ev.Symbol, ev.Side,
					format.Qty(ev.Qty), fmt.Sprintf("%.2f", ev.Price), ev.Strategy)
			}
			table.Render()
			return nil
		},
	}
}

func newLogsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Show recent backend log lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			snap, err := fetchSnapshot(ctx, app)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(snap.Logs)
			}

			for i := range snap.Logs {
				line := &snap.Logs[i]
				output.Printf("%s  %-8s %-12s %s\n", line.Time, line.Level, line.Module, line.Msg)
			}
			return nil
		},
	}
}
