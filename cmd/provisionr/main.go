// Package main is the entry point for the provisionr CLI.
//
// provisionr is the operator tool for a provisionR kickstart service. It
// reads and writes the provisioning configuration, manages Jinja2 kickstart
// templates, renders kickstarts for machines and exports generated machine
// passwords. The console command opens an interactive terminal UI.
//
// Commands: config, template, kickstart, machines, console, health,
// mock-server, version.
//
// For detailed usage information, run:
//
//	provisionr --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/provisionr/provisionr-console/cmd/provisionr/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
