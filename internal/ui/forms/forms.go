// Package forms holds the interactive huh forms used by the provisionr CLI.
package forms

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/provisionr/provisionr-console/internal/console"
	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

// TargetOSOptions lists the target systems for a select field.
func TargetOSOptions() []huh.Option[provisioning.TargetOS] {
	opts := make([]huh.Option[provisioning.TargetOS], len(provisioning.TargetOSValues))
	for i, t := range provisioning.TargetOSValues {
		opts[i] = huh.NewOption(t.Label(), t)
	}
	return opts
}

// EditConfig prompts for every configuration field, starting from form.
// The values text is not checked here; UpdateConfig reports invalid JSON.
func EditConfig(ctx context.Context, form *console.ConfigForm) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[provisioning.TargetOS]().
				Title("Target OS").
				Options(TargetOSOptions()...).
				Value(&form.TargetOS),
			huh.NewConfirm().
				Title("Generate passwords").
				Description("Generate and store per-machine root, user and LUKS passwords").
				Value(&form.GeneratePasswords),
			huh.NewText().
				Title("Custom values (JSON)").
				Description("Available to templates at render time. Leave empty for {}").
				Lines(10).
				Value(&form.ValuesText),
		).Title("Configuration"),
	).RunWithContext(ctx)
}

// Upload prompts for a template name, a file and the default flag, then
// reads the file into form.
func Upload(ctx context.Context, form *console.UploadForm) error {
	var path string
	if form.File != nil {
		path = form.File.Name
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Template file").
				Description("Path to a "+strings.Join(console.TemplateExtensions, ", ")+" file").
				Value(&path).
				Validate(validateTemplatePath),
			huh.NewInput().
				Title("Template name").
				Placeholder("my-template").
				Value(&form.TemplateName).
				Validate(validateTemplateName),
			huh.NewConfirm().
				Title("Use as default template").
				Value(&form.UseAsDefault),
		).Title("Upload Template"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	file, err := console.OpenFile(path)
	if err != nil {
		return err
	}
	form.File = file
	return nil
}

// Confirm asks a yes/no question.
func Confirm(ctx context.Context, title string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Value(&ok),
		),
	).RunWithContext(ctx)
	return ok, err
}

func validateTemplatePath(path string) error {
	if path == "" {
		return errors.New("select a template file")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read %s", path)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func validateTemplateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("template name is required")
	}
	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		return errors.New("template name cannot contain '/' or '..'")
	}
	return nil
}
