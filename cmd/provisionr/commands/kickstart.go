package commands

import (
	"github.com/spf13/cobra"

	"github.com/provisionr/provisionr-console/cmd/provisionr/handlers"
)

// Kickstart returns the command group for rendering kickstarts.
func Kickstart() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kickstart",
		Aliases: []string{"ks"},
		Short:   "Render kickstarts for machines",
	}

	cmd.AddCommand(kickstartRender())

	return cmd
}

func kickstartRender() *cobra.Command {
	var opts handlers.KickstartRenderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a kickstart for one machine",
		Long: `Render a kickstart template for one machine.

Machine identifiers not given as flags come from the profile's machine
section. Extra --param values are passed to the template as variables.

Examples:
  # Render the default template for the profile machine
  provisionr kickstart render

  # Render a named template for a specific machine
  provisionr kickstart render --template edge --mac 52:54:00:12:34:56 \
    --uuid 4c4c4544-0042 --serial SN123 --param hostname=node1

  # Keep a copy in the archive bucket
  provisionr kickstart render --archive -o node1.ks`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.KickstartRender(cmd.Context(), globals(cmd), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.TemplateName, "template", "t", "", "Template name (default: the backend default)")
	cmd.Flags().StringVar(&opts.MAC, "mac", "", "Machine MAC address")
	cmd.Flags().StringVar(&opts.UUID, "uuid", "", "Machine UUID")
	cmd.Flags().StringVar(&opts.Serial, "serial", "", "Machine serial number")
	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "Extra template variable as key=value (repeatable)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write the kickstart to a file")
	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "Copy the kickstart to the archive bucket")

	return cmd
}
