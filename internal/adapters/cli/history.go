package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/spacestation-go/internal/application/docking"
	"github.com/andrescamacho/spacestation-go/internal/application/mediator"
)

// newHistoryCommand lists recent runs
func newHistoryCommand(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent station runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := sendStoreQuery(root, &docking.ListRunsQuery{Limit: limit})
			if err != nil {
				return err
			}
			runs := resp.(*docking.ListRunsResponse).Runs

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs found")
				return nil
			}

			fmt.Fprintf(out, "%-36s %-20s %-10s %-6s %-9s %-7s %s\n",
				"RUN ID", "STATION", "STATUS", "SHIPS", "SERVICED", "FAILED", "DURATION")
			for _, s := range runs {
				fmt.Fprintf(out, "%-36s %-20s %-10s %-6d %-9d %-7d %s\n",
					truncate(s.RunID, 36), truncate(s.Station, 20), s.Status,
					s.Total, s.Serviced, s.Failed, s.Duration.Round(time.Millisecond))
			}
			fmt.Fprintf(out, "\nTotal: %d runs\n", len(runs))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")

	return cmd
}

// newEventsCommand prints the event stream of one run
func newEventsCommand(root *rootOptions) *cobra.Command {
	var (
		shipID int
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "events <run-id>",
		Short: "Show the event stream and outcomes of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := sendStoreQuery(root, &docking.GetRunEventsQuery{RunID: args[0], ShipID: shipID, Limit: limit})
			if err != nil {
				return err
			}
			result := resp.(*docking.GetRunEventsResponse)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s (%s) %s\n\n", result.Run.RunID, result.Run.Station, result.Run.Status)
			for _, e := range result.Events {
				fmt.Fprintf(out, "%s %-7s %-16s %s\n",
					e.Timestamp.Format("2006-01-02 15:04:05"), e.Level(), e.Kind, e.Message)
			}

			if len(result.Outcomes) > 0 {
				fmt.Fprintln(out)
				for _, o := range result.Outcomes {
					fmt.Fprintf(out, "ship %d (%s): %s %s\n", o.ShipID, o.ShipName, o.Status, o.ErrorTag)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&shipID, "ship", 0, "Only show events of this federation id")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of events (0 = all)")

	return cmd
}

// sendQuery sends a request that needs no database
func sendQuery(root *rootOptions, request mediator.Request) (mediator.Response, error) {
	return send(root, request, false)
}

// sendStoreQuery sends a request that reads the run history
func sendStoreQuery(root *rootOptions, request mediator.Request) (mediator.Response, error) {
	return send(root, request, true)
}

func send(root *rootOptions, request mediator.Request, store bool) (mediator.Response, error) {
	cfg, err := loadConfig(root, nil)
	if err != nil {
		return nil, err
	}
	a, err := newApp(cfg, root.verbose, appOptions{store: store})
	if err != nil {
		return nil, err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return a.mediator.Send(ctx, request)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
