package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConfigCommand groups configuration helpers
func newConfigCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
	}
	cmd.AddCommand(newConfigShowCommand(root))
	return cmd
}

// newConfigShowCommand prints the effective configuration as YAML
func newConfigShowCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Display the configuration after merging defaults, the config file and
SS_* environment variables. The database password is masked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root, nil)
			if err != nil {
				return err
			}
			if cfg.Database.Password != "" {
				cfg.Database.Password = "********"
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
