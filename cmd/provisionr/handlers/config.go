package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/provisionr/provisionr-console/internal/console"
	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

// ConfigSetOptions holds the fields given to "config set". Nil or empty
// fields keep the stored value.
type ConfigSetOptions struct {
	TargetOS          string
	GeneratePasswords *bool
	Values            *string
	ValuesFile        string
}

// ConfigGet prints the stored provisioning configuration.
func ConfigGet(ctx context.Context, g Globals, jsonOutput bool) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	client := console.NewConfigClient(s.backend, s.consoleOptions()...)
	snap := client.GetConfig(ctx)
	if err := failure(snap); err != nil {
		return err
	}
	return printConfig(snap.Result, jsonOutput)
}

// ConfigSet changes the given fields and writes the configuration back.
// Fields that are not given keep their stored value.
func ConfigSet(ctx context.Context, g Globals, opts ConfigSetOptions) error {
	if opts.Values != nil && opts.ValuesFile != "" {
		return errors.New("--values and --values-file are mutually exclusive")
	}

	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	client := console.NewConfigClient(s.backend, s.consoleOptions()...)
	if err := failure(client.GetConfig(ctx)); err != nil {
		return err
	}

	form := client.Form()
	if opts.TargetOS != "" {
		t, err := provisioning.ParseTargetOS(opts.TargetOS)
		if err != nil {
			return err
		}
		form.TargetOS = t
	}
	if opts.GeneratePasswords != nil {
		form.GeneratePasswords = *opts.GeneratePasswords
	}
	if opts.Values != nil {
		form.ValuesText = *opts.Values
	}
	if opts.ValuesFile != "" {
		text, err := readValuesFile(opts.ValuesFile)
		if err != nil {
			return err
		}
		form.ValuesText = text
	}
	client.SetForm(form)

	return submitConfig(ctx, client)
}

// ConfigEdit opens an interactive form seeded with the stored configuration.
func ConfigEdit(ctx context.Context, g Globals) error {
	if !isInteractive() {
		return errors.New("config edit needs an interactive terminal; use config set instead")
	}

	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	client := console.NewConfigClient(s.backend, s.consoleOptions()...)
	if err := failure(client.GetConfig(ctx)); err != nil {
		return err
	}

	form := client.Form()
	if err := editConfigForm(ctx, &form); err != nil {
		return err
	}
	client.SetForm(form)

	return submitConfig(ctx, client)
}

func submitConfig(ctx context.Context, client *console.ConfigClient) error {
	snap := client.SubmitForm(ctx)
	if err := failure(snap); err != nil {
		return err
	}
	fmt.Fprintln(stderr, snap.Result.Message)
	return printConfig(snap.Result.Config, false)
}

func readValuesFile(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read values: %w", err)
	}
	return string(data), nil
}

func printConfig(c *provisioning.Config, jsonOutput bool) error {
	if c == nil {
		return nil
	}
	if jsonOutput {
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	}

	fmt.Fprintf(stdout, "Target OS:          %s\n", c.TargetOS.Label())
	fmt.Fprintf(stdout, "Generate passwords: %s\n", yesNo(c.GeneratePasswords))
	fmt.Fprintln(stdout, "Custom values:")
	fmt.Fprintln(stdout, c.Values.Pretty())
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
