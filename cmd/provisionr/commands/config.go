package commands

import (
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/provisionr/provisionr-console/cmd/provisionr/handlers"
)

// Config returns the command group for the provisioning configuration.
func Config() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and change the provisioning configuration",
	}

	cmd.AddCommand(configGet())
	cmd.AddCommand(configSet())
	cmd.AddCommand(configEdit())

	return cmd
}

func configGet() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the stored configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ConfigGet(cmd.Context(), globals(cmd), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

// configSet changes selected fields of the configuration.
//
// Optional flags:
//
//	--target-os: Rocky9 or Ubuntu25.04
//	--generate-passwords: Generate per-machine passwords at render time
//	--values: Custom values as a JSON object
//	--values-file: Read custom values from a file ("-" for stdin)
func configSet() *cobra.Command {
	var (
		opts              handlers.ConfigSetOptions
		generatePasswords bool
		values            string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the stored configuration",
		Long: `Change selected fields of the provisioning configuration.

Fields that are not given keep their stored value. Custom values must be a
JSON object; an empty value stores {}.

Examples:
  # Switch to Ubuntu
  provisionr config set --target-os Ubuntu25.04

  # Replace the custom values
  provisionr config set --values '{"ntp_server": "pool.ntp.org"}'

  # Read custom values from a file
  provisionr config set --values-file values.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("generate-passwords") {
				opts.GeneratePasswords = lo.ToPtr(generatePasswords)
			}
			if cmd.Flags().Changed("values") {
				opts.Values = lo.ToPtr(values)
			}
			return handlers.ConfigSet(cmd.Context(), globals(cmd), opts)
		},
	}

	cmd.Flags().StringVar(&opts.TargetOS, "target-os", "", "Target OS (Rocky9, Ubuntu25.04)")
	cmd.Flags().BoolVar(&generatePasswords, "generate-passwords", true, "Generate per-machine passwords")
	cmd.Flags().StringVar(&values, "values", "", "Custom values as a JSON object")
	cmd.Flags().StringVar(&opts.ValuesFile, "values-file", "", "Read custom values from a file (- for stdin)")
	cmd.MarkFlagsMutuallyExclusive("values", "values-file")

	return cmd
}

func configEdit() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the configuration in an interactive form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ConfigEdit(cmd.Context(), globals(cmd))
		},
	}
}
