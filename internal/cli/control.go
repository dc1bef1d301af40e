package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tradedeck-console/internal/dispatch"
	"tradedeck-console/internal/models"
	"tradedeck-console/pkg/format"
)

// addControlCommands adds the command-dispatch surface.
func addControlCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newStrategyCmd(app))
	rootCmd.AddCommand(newPauseAllCmd(app))
	rootCmd.AddCommand(newResumeAllCmd(app))
	rootCmd.AddCommand(newKillCmd(app))
	rootCmd.AddCommand(newUnkillCmd(app))
}

// staticSource adapts a one-shot snapshot to the dispatcher's source.
type staticSource struct {
	snap *models.Snapshot
}

func (s staticSource) Snapshot() *models.Snapshot { return s.snap }

// newControlSession fetches a fresh snapshot and wires a dispatcher whose
// alerts drain straight to the terminal.
func newControlSession(ctx context.Context, cmd *cobra.Command, app *App) (*dispatch.Dispatcher, *models.Snapshot, *Output, error) {
	output := NewOutput(cmd)

	snap, err := fetchSnapshot(ctx, app)
	if err != nil {
		output.Error("%v", err)
		return nil, nil, output, err
	}

	notifier := &terminalNotifier{output: output}
	d := dispatch.NewDispatcher(app.Client, notifier, staticSource{snap: snap}, journalOrNil(app), app.Config.Risk, app.Logger)
	return d, snap, output, nil
}

func journalOrNil(app *App) dispatch.Journal {
	if app.Store == nil {
		return nil
	}
	return app.Store
}

// terminalNotifier prints dispatch outcome alerts directly; one-shot
// commands have no live alert stack to render.
type terminalNotifier struct {
	output *Output
}

func (n *terminalNotifier) Push(severity models.AlertSeverity, title, message string) string {
	n.output.colored(n.output.SeverityColor(severity), "%s — %s", title, message)
	return ""
}

func newStrategyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategy",
		Short: "Control a single strategy",
	}
	for _, intent := range []dispatch.Intent{
		dispatch.IntentPause,
		dispatch.IntentResume,
		dispatch.IntentStop,
		dispatch.IntentStart,
	} {
		cmd.AddCommand(newStrategyActionCmd(app, intent))
	}
	return cmd
}

func newStrategyActionCmd(app *App, intent dispatch.Intent) *cobra.Command {
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s NAME", intent),
		Short: fmt.Sprintf("Request a %s of the named strategy", intent),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			d, _, output, err := newControlSession(ctx, cmd, app)
			if err != nil {
				return err
			}

			confirmation, err := d.Request(ctx, intent, args[0])
			if err != nil {
				output.Error("%v", err)
				return err
			}
			if confirmation == nil {
				// Non-destructive intent, already dispatched.
				return nil
			}

			yes, _ := cmd.Flags().GetBool("yes")
			if !yes && !promptConfirm(cmd, output, confirmation) {
				d.Cancel(confirmation)
				output.Dim("Canceled, no action taken.")
				return nil
			}
			return d.Confirm(ctx, confirmation)
		},
	}
	if dispatch.RequiresConfirmation(intent) {
		cmd.Flags().Bool("yes", false, "Confirm the action without prompting")
	}
	return cmd
}

// promptConfirm shows the target's current numbers and asks for an explicit
// yes. Anything but y/yes cancels.
func promptConfirm(cmd *cobra.Command, output *Output, c *dispatch.Confirmation) bool {
	output.Warning("About to %s strategy %q:", c.Intent, c.Strategy)
	output.Printf("  P&L %s   open qty %s   win rate %s\n",
		format.PnL(c.PnL), format.Qty(c.OpenQty), format.Pct(c.WinRate))
	output.Printf("Proceed? [y/N] ")

	reader := bufio.NewReader(cmd.InOrStdin())
	line, _ := reader.ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func newPauseAllCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pause-all",
		Short: "Pause all running strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			d, _, _, err := newControlSession(ctx, cmd, app)
			if err != nil {
				return err
			}
			return d.PauseAll(ctx)
		},
	}
}

func newResumeAllCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resume-all",
		Short: "Bulk resume guardrail (never a single primitive)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			d, _, _, err := newControlSession(ctx, cmd, app)
			if err != nil {
				return err
			}
			// Deliberately refuses or instructs; the guard output is the alert.
			_ = d.ResumeAll(ctx)
			return nil
		},
	}
}

func newKillCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kill",
		Short: "Engage the global kill switch",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			d, _, output, err := newControlSession(ctx, cmd, app)
			if err != nil {
				return err
			}

			kc := d.PrepareKill()
			output.Error("EMERGENCY KILL SWITCH")
			output.Printf("  Running strategies: %d\n", kc.RunningStrategies)
			output.Printf("  Open positions:     %d\n", kc.OpenPositions)
			output.Printf("  Day P&L:            %s\n", format.PnL(kc.DayPnL))
			output.Printf("  Margin at risk:     %s\n", format.Estimated(format.Currency(kc.MarginAtRisk.Value)))
			output.Warning("%s", kc.Warning)

			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				output.Printf("Type KILL to confirm: ")
				reader := bufio.NewReader(cmd.InOrStdin())
				line, _ := reader.ReadString('\n')
				if strings.TrimSpace(line) != "KILL" {
					output.Dim("Canceled, kill switch untouched.")
					return nil
				}
			}
			return d.ConfirmKill(ctx, kc)
		},
	}
	cmd.Flags().Bool("yes", false, "Confirm the kill without prompting")
	return cmd
}

func newUnkillCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unkill",
		Short: "Lift the global kill switch",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			d, _, _, err := newControlSession(ctx, cmd, app)
			if err != nil {
				return err
			}
			return d.Unkill(ctx)
		},
	}
}
