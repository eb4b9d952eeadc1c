package commands

import (
	"github.com/spf13/cobra"

	"github.com/provisionr/provisionr-console/cmd/provisionr/handlers"
)

// Console returns the command that starts the interactive operator console.
func Console() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Open the interactive operator console",
		Long: `Open the interactive operator console.

The console shows the provisioning configuration and the kickstart templates
side by side. Press tab to switch sections and q to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Console(cmd.Context(), globals(cmd), metricsAddr)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")

	return cmd
}
