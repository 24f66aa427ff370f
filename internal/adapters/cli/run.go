package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andrescamacho/spacestation-go/internal/adapters/roster"
	"github.com/andrescamacho/spacestation-go/internal/application/docking"
	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
	"github.com/andrescamacho/spacestation-go/internal/infrastructure/config"
	"github.com/andrescamacho/spacestation-go/internal/infrastructure/pidfile"
)

// newRunCommand runs the station over the configured rosters
func newRunCommand(root *rootOptions) *cobra.Command {
	var (
		mode      string
		failFast  bool
		cycle     time.Duration
		name      string
		shipsPath string
		baysPath  string
		orderPath string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Dock, service and release every ship in the roster",
		Long: `Run the dispatch loop: ships are taken off the queue in order, each is
assigned a compatible bay, serviced stage by stage and undocked.

In batch mode the run ends once the roster is drained. In continuous mode
extra ships are read from stdin, one JSON record per line, and the run
ends at EOF once every queued ship is done. Ctrl-C cancels the run; ships
in service are interrupted and their bays released.

Examples:
  spacestation run
  spacestation run --ships fleet.yaml --bays bays.yaml --order order.json
  spacestation run --cycle 100ms --fail-fast=false
  tail -f arrivals.jsonl | spacestation run --mode continuous`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			cfg, err := loadConfig(root, func(cfg *config.Config) {
				if flags.Changed("mode") {
					cfg.Station.Mode = mode
				}
				if flags.Changed("fail-fast") {
					cfg.Station.FailFast = &failFast
				}
				if flags.Changed("cycle") {
					cfg.Station.CycleDuration = cycle
				}
				if flags.Changed("name") {
					cfg.Station.Name = name
				}
				if flags.Changed("ships") {
					cfg.Roster.ShipsPath = shipsPath
				}
				if flags.Changed("bays") {
					cfg.Roster.BaysPath = baysPath
				}
				if flags.Changed("order") {
					cfg.Roster.OrderPath = orderPath
				}
			})
			if err != nil {
				return err
			}

			if cfg.Station.PIDFile != "" {
				lock := pidfile.New(cfg.Station.PIDFile, cfg.Station.Name)
				if err := lock.Acquire(); err != nil {
					return err
				}
				defer lock.Release()
			}

			a, err := newApp(cfg, root.verbose, appOptions{store: true})
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			command := &docking.RunStationCommand{
				StationName: cfg.Station.Name,
				Scheduler:   a.schedulerConfig(),
			}
			if command.Scheduler.Mode == station.RunModeContinuous {
				command.Arrivals = streamStdin(ctx, cmd.InOrStdin(), a.logger)
			}

			resp, err := a.mediator.Send(ctx, command)
			if err != nil {
				return fmt.Errorf("run failed: %w", err)
			}
			result := resp.(*docking.RunStationResponse)

			printSummary(cmd.OutOrStdout(), result)
			if result.Summary.Status == shared.LifecycleStatusFailed {
				return fmt.Errorf("run %s failed: %v", result.Summary.RunID, result.Run.LastError())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Run mode: batch or continuous")
	cmd.Flags().BoolVar(&failFast, "fail-fast", true, "Reject ships no bay can ever host instead of waiting")
	cmd.Flags().DurationVar(&cycle, "cycle", 0, "Length of one service cycle (e.g. 1s, 50ms)")
	cmd.Flags().StringVar(&name, "name", "", "Station name")
	cmd.Flags().StringVar(&shipsPath, "ships", "", "Ship roster file (JSON or YAML)")
	cmd.Flags().StringVar(&baysPath, "bays", "", "Bay roster file (JSON or YAML)")
	cmd.Flags().StringVar(&orderPath, "order", "", "Optional queue order file")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Cancel the run after this long (0 = no limit)")

	return cmd
}

// streamStdin feeds JSON-line arrivals into the run
func streamStdin(ctx context.Context, in io.Reader, logger *zap.Logger) <-chan station.Ship {
	arrivals := make(chan station.Ship)
	go func() {
		err := roster.StreamArrivals(ctx, in, arrivals, func(err error) {
			logger.Warn("arrival skipped", zap.Error(err))
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("arrival stream", zap.Error(err))
		}
	}()
	return arrivals
}

func printSummary(out io.Writer, result *docking.RunStationResponse) {
	s := result.Summary

	if len(result.Problems) > 0 {
		fmt.Fprintf(out, "Roster problems:\n")
		for _, p := range result.Problems {
			fmt.Fprintf(out, "  %s\n", p)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "%-5s %-8s %-24s %-5s %-10s %s\n", "SEQ", "SHIP ID", "NAME", "BAY", "STATUS", "REASON")
	fmt.Fprintln(out, "────────────────────────────────────────────────────────────────────────")
	for _, o := range result.Run.Outcomes() {
		bay := "-"
		if o.DockID != 0 {
			bay = fmt.Sprintf("%d", o.DockID)
		}
		fmt.Fprintf(out, "%-5d %-8d %-24s %-5s %-10s %s\n",
			o.Sequence, o.ShipID, truncate(o.ShipName, 24), bay, o.Status, o.Reason)
	}

	fmt.Fprintf(out, "\nRun %s %s in %s: %d ships, %d serviced, %d failed, %d cancelled\n",
		s.RunID, s.Status, s.Duration.Round(time.Millisecond), s.Total, s.Serviced, s.Failed, s.Cancelled)
}
