package commands

import (
	"github.com/spf13/cobra"

	"github.com/provisionr/provisionr-console/cmd/provisionr/handlers"
)

// Machines returns the command group for provisioned machines.
func Machines() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "machines",
		Short: "Work with provisioned machines",
	}

	cmd.AddCommand(machinesExport())

	return cmd
}

func machinesExport() *cobra.Command {
	var (
		output  string
		archive bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export machine passwords as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.MachinesExport(cmd.Context(), globals(cmd), output, archive)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the CSV to a file")
	cmd.Flags().BoolVar(&archive, "archive", false, "Copy the export to the archive bucket")

	return cmd
}
