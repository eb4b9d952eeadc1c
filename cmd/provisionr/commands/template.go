package commands

import (
	"github.com/spf13/cobra"

	"github.com/provisionr/provisionr-console/cmd/provisionr/handlers"
)

// Template returns the command group for kickstart templates.
func Template() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"templates"},
		Short:   "View and upload kickstart templates",
	}

	cmd.AddCommand(templateGet())
	cmd.AddCommand(templateUpload())

	return cmd
}

func templateGet() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get [name]",
		Short: "Print a template (default: the default template)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			return handlers.TemplateGet(cmd.Context(), globals(cmd), name, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the template to a file")

	return cmd
}

// templateUpload uploads a template file.
//
// Flags:
//
//	--name, -n: Name the template is stored under
//	--file, -f: Template file (.j2, .jinja2 or .ks)
//	--default: Also install the template as the default
//	--yes, -y: Do not ask before replacing the default
func templateUpload() *cobra.Command {
	var opts handlers.TemplateUploadOptions

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a template file",
		Long: `Upload a Jinja2 kickstart template.

When a terminal is attached, missing flags are asked for in a form.

Examples:
  # Upload a template
  provisionr template upload --name edge --file edge.ks.j2

  # Upload and make it the default without asking
  provisionr template upload -n edge -f edge.ks.j2 --default --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.TemplateUpload(cmd.Context(), globals(cmd), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Template name")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Template file")
	cmd.Flags().BoolVar(&opts.UseAsDefault, "default", false, "Use as the default template")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}
