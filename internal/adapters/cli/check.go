package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/spacestation-go/internal/application/docking"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

// newCheckCommand validates the rosters without running the station
func newCheckCommand(root *rootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the rosters and list ships no bay can host",
		Long: `Load the bay and ship rosters and the order file, and report every ship
with an unrecognized race or class and every ship that no bay in the
catalog could ever host.

Example:
  spacestation check --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := sendQuery(root, &docking.CheckRosterQuery{})
			if err != nil {
				return err
			}
			result := resp.(*docking.CheckRosterResponse)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d bays, %d ships\n", len(result.Bays), result.Ships)
			if len(result.Problems) == 0 {
				fmt.Fprintln(out, "Every ship can be serviced.")
				return nil
			}

			fmt.Fprintf(out, "%-8s %-20s %-20s %s\n", "SHIP ID", "NAME", "PROBLEM", "REASON")
			for _, p := range result.Problems {
				fmt.Fprintf(out, "%-8d %-20s %-20s %s\n", p.ShipID, truncate(p.ShipName, 20), p.Tag, p.Reason)
			}
			if strict {
				return fmt.Errorf("%d roster problems", len(result.Problems))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any problem is found")

	return cmd
}

// newBaysCommand lists the bay catalog
func newBaysCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bays",
		Short: "List the docking bays in the roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := sendQuery(root, &docking.CheckRosterQuery{})
			if err != nil {
				return err
			}
			printBays(cmd.OutOrStdout(), resp.(*docking.CheckRosterResponse).Bays)
			return nil
		},
	}
}

func printBays(out io.Writer, bays []station.Bay) {
	fmt.Fprintf(out, "%-4s %-8s %-5s %-26s %s\n", "BAY", "ENV", "DUAL", "CLASSES", "RACES")
	for _, b := range bays {
		races := ""
		if b.SupportsHuman {
			races += "H"
		}
		if b.SupportsMega {
			races += "M"
		}
		if b.SupportsAqua {
			races += "A"
		}
		classes := fmt.Sprintf("%s-%s", b.ClassMin, b.ClassMax)
		fmt.Fprintf(out, "%-4d %-8s %-5t %-26s %s\n", b.DockID, b.CurrentEnvironment, b.DualEnvironment, classes, races)
	}
}
