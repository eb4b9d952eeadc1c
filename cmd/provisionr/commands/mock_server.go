package commands

import (
	"github.com/spf13/cobra"

	"github.com/provisionr/provisionr-console/cmd/provisionr/handlers"
)

// MockServer returns the command that runs the in-memory backend.
func MockServer() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run an in-memory backend for local testing",
		Long: `Run an in-memory provisionR backend.

The mock serves the same API as the real service. Templates are rendered by
plain {{ key }} substitution and no passwords are generated. State is lost
when the server stops.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.MockServer(cmd.Context(), globals(cmd), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "Listen address")

	return cmd
}
