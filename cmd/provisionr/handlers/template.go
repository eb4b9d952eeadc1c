package handlers

import (
	"context"
	"fmt"

	"github.com/provisionr/provisionr-console/internal/console"
	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

// TemplateUploadOptions holds the flags of "template upload".
type TemplateUploadOptions struct {
	Name         string
	File         string
	UseAsDefault bool
	Yes          bool
}

// TemplateGet prints a stored template, or writes it to output.
func TemplateGet(ctx context.Context, g Globals, name, output string) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	if name == "" {
		name = provisioning.DefaultTemplateName
	}

	client := console.NewTemplateClient(s.backend, s.consoleOptions()...)
	snap := client.GetTemplate(ctx, name)
	if err := failure(snap); err != nil {
		return err
	}
	return writeOutput(output, []byte(snap.Result))
}

// TemplateUpload uploads a template file. Missing fields are prompted for
// when a terminal is attached.
func TemplateUpload(ctx context.Context, g Globals, opts TemplateUploadOptions) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	client := console.NewTemplateClient(s.backend, s.consoleOptions()...)

	form := console.UploadForm{TemplateName: opts.Name, UseAsDefault: opts.UseAsDefault}
	if opts.File != "" {
		file, err := console.OpenFile(opts.File)
		if err != nil {
			return err
		}
		form.File = file
	}

	interactive := isInteractive()
	if interactive && (form.TemplateName == "" || form.File == nil) {
		if err := uploadForm(ctx, &form); err != nil {
			return err
		}
	}

	if form.File != nil && !console.HasTemplateExtension(form.File.Name) {
		fmt.Fprintf(stderr, "Warning: %s does not look like a template file\n", form.File.Name)
	}

	if form.UseAsDefault && interactive && !opts.Yes {
		ok, err := confirm(ctx, fmt.Sprintf("Replace the default template with %q?", form.TemplateName))
		if err != nil {
			return err
		}
		if !ok {
			return ErrCancelled
		}
	}

	client.SetUploadForm(form)
	snap := client.SubmitUpload(ctx)
	if err := failure(snap); err != nil {
		return err
	}
	fmt.Fprintln(stdout, snap.Result)
	return nil
}
