package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/provisionr/provisionr-console/internal/console"
	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

// API is the backend surface the console needs.
type API interface {
	console.ConfigAPI
	console.TemplateAPI
}

// ErrNoTerminal is returned by RunConsole when stdout is not a terminal.
var ErrNoTerminal = errors.New("the console needs an interactive terminal")

// RunConsole starts the operator console and blocks until the operator quits.
func RunConsole(ctx context.Context, api API, machine provisioning.RenderRequest, opts ...console.Option) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return ErrNoTerminal
	}

	var p *tea.Program
	resetHook := console.OnUploadReset(func() {
		if p != nil {
			p.Send(UploadResetMsg{})
		}
	})

	config := console.NewConfigClient(api, opts...)
	templates := console.NewTemplateClient(api, append(opts[:len(opts):len(opts)], resetHook)...)
	m := NewModel(ctx, config, templates, api.BaseURL(), machine)

	p = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	fm := finalModel.(Model)
	if fm.Err != nil {
		return fm.Err
	}
	return nil
}
