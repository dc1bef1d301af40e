package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"tradedeck-console/pkg/format"
)

func newAuditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent control actions (backend log + local journal)",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			limit, _ := cmd.Flags().GetInt("limit")

			// Backend control log first; a transport failure here is not
			// fatal, the local journal still renders.
			if err := requireToken(app); err == nil {
				entries, err := app.Client.ControlLog(ctx, limit)
				if err != nil {
					output.Warning("backend control log unavailable: %v", err)
				} else if output.IsJSON() {
					if err := output.JSON(entries); err != nil {
						return err
					}
				} else {
					output.Bold("Backend control log")
					table := NewTable(output, "Time", "Strategy", "Action", "Actor", "Acked")
					for _, e := range entries {
						acked := "no"
						if e.Acked {
							acked = "yes"
						}
						table.AddRow(e.Time, e.Strategy, e.Action, e.Actor, acked)
					}
					table.Render()
				}
			}

			if app.Store == nil {
				return nil
			}
			records, err := app.Store.RecentActions(ctx, limit)
			if err != nil {
				output.Warning("local journal unavailable: %v", err)
				return nil
			}
			if output.IsJSON() {
				return output.JSON(records)
			}

			output.Println()
			output.Bold("Local journal")
			table := NewTable(output, "Age", "Intent", "Strategy", "Outcome", "Message")
			for _, r := range records {
				table.AddRow(format.Age(r.Time), r.Intent, r.Strategy, r.Outcome, r.Message)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().Int("limit", 50, "Maximum entries to show")
	return cmd
}
