package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootOptions holds the global flags shared by every subcommand
type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "spacestation",
		Short: "Space station docking bay scheduler",
		Long: `spacestation assigns visiting ships to compatible docking bays, runs
each ship through its service stages and releases the bay afterwards.

Configuration is loaded from multiple sources with priority:
1. Environment variables (SS_* prefix)
2. Config file (config.yaml)
3. Default values

Examples:
  spacestation run --ships ships.json --bays bays.yaml
  spacestation run --mode continuous < arrivals.jsonl
  spacestation check
  spacestation history --limit 5
  spacestation events <run-id> --ship 74205`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to config file (default: ./config.yaml, ./configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(newRunCommand(opts))
	rootCmd.AddCommand(newCheckCommand(opts))
	rootCmd.AddCommand(newBaysCommand(opts))
	rootCmd.AddCommand(newHistoryCommand(opts))
	rootCmd.AddCommand(newEventsCommand(opts))
	rootCmd.AddCommand(newConfigCommand(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
