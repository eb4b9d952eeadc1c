// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/provisionr/provisionr-console/cmd/provisionr/handlers"
	"github.com/provisionr/provisionr-console/internal/settings"
)

// Root returns the root command for the provisionr CLI.
//
// The root command carries the connection and logging flags shared by every
// subcommand. Flags override the profile file and PROVISIONR_* environment.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "provisionr",
		Short:         "Operate a provisionR kickstart provisioning service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaults := settings.Default()
	flags := cmd.PersistentFlags()
	flags.String("profile", "", "Path to a YAML or TOML profile (default: "+settings.DefaultProfilePath()+")")
	flags.String("base-url", defaults.BaseURL, "Backend base URL")
	flags.String("token", "", "Bearer token for backends behind an authenticating proxy")
	flags.Duration("timeout", defaults.Timeout, "Request timeout")
	flags.String("log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	flags.String("log-format", defaults.LogFormat, "Log format (console, json)")

	// Operator commands
	cmd.AddCommand(Config())
	cmd.AddCommand(Template())
	cmd.AddCommand(Kickstart())
	cmd.AddCommand(Machines())
	cmd.AddCommand(Console())
	cmd.AddCommand(Health())

	// Utility commands
	cmd.AddCommand(MockServer())
	cmd.AddCommand(Version())

	return cmd
}

// globals reads the root flags. Flags left at their default are reported as
// unset so the profile and environment still apply.
func globals(cmd *cobra.Command) handlers.Globals {
	flags := cmd.Flags()
	g := handlers.Globals{}
	g.Profile, _ = flags.GetString("profile")

	if flags.Changed("base-url") {
		v, _ := flags.GetString("base-url")
		g.BaseURL = lo.ToPtr(v)
	}
	if flags.Changed("token") {
		v, _ := flags.GetString("token")
		g.Token = lo.ToPtr(v)
	}
	if flags.Changed("timeout") {
		v, _ := flags.GetDuration("timeout")
		g.Timeout = lo.ToPtr(v)
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		g.LogLevel = lo.ToPtr(v)
	}
	if flags.Changed("log-format") {
		v, _ := flags.GetString("log-format")
		g.LogFormat = lo.ToPtr(v)
	}
	return g
}
