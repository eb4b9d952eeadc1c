package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provisionr/provisionr-console/internal/console"
	"github.com/provisionr/provisionr-console/internal/mockbackend"
)

func writeTemplate(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestTemplateGet(t *testing.T) {
	env := setupTest(t)

	require.NoError(t, TemplateGet(context.Background(), env.globals, "", ""))
	assert.Equal(t, mockbackend.DefaultTemplate, env.stdout.String())
}

func TestTemplateGet_ToFile(t *testing.T) {
	env := setupTest(t)
	env.server.SetTemplate("edge", "lang de_DE")
	out := filepath.Join(t.TempDir(), "edge.ks.j2")

	require.NoError(t, TemplateGet(context.Background(), env.globals, "edge", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "lang de_DE", string(data))
	assert.Empty(t, env.stdout.String())
	assert.Contains(t, env.stderr.String(), "Wrote "+out)
}

func TestTemplateGet_NotFound(t *testing.T) {
	env := setupTest(t)

	err := TemplateGet(context.Background(), env.globals, "missing", "")
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch template 'missing' (HTTP status 404)", err.Error())
}

func TestTemplateUpload(t *testing.T) {
	env := setupTest(t)
	path := writeTemplate(t, "edge.ks.j2", "lang de_DE")

	require.NoError(t, TemplateUpload(context.Background(), env.globals, TemplateUploadOptions{
		Name: "edge",
		File: path,
	}))

	content, ok := env.server.Template("edge")
	require.True(t, ok)
	assert.Equal(t, "lang de_DE", content)
	assert.Contains(t, env.stdout.String(), "Template uploaded successfully")
	assert.NotContains(t, env.stderr.String(), "does not look like a template file")
}

func TestTemplateUpload_AsDefault(t *testing.T) {
	env := setupTest(t)
	path := writeTemplate(t, "edge.ks.j2", "lang de_DE")

	require.NoError(t, TemplateUpload(context.Background(), env.globals, TemplateUploadOptions{
		Name:         "edge",
		File:         path,
		UseAsDefault: true,
	}))

	content, ok := env.server.Template("default")
	require.True(t, ok)
	assert.Equal(t, "lang de_DE", content)
}

func TestTemplateUpload_MissingFieldsNonInteractive(t *testing.T) {
	env := setupTest(t)

	err := TemplateUpload(context.Background(), env.globals, TemplateUploadOptions{Name: "edge"})
	require.Error(t, err)
	assert.Equal(t, console.MsgUploadFieldMissing, err.Error())
	assert.Zero(t, env.server.Requests())
}

func TestTemplateUpload_UnusualExtensionWarns(t *testing.T) {
	env := setupTest(t)
	path := writeTemplate(t, "edge.txt", "lang de_DE")

	require.NoError(t, TemplateUpload(context.Background(), env.globals, TemplateUploadOptions{
		Name: "edge",
		File: path,
	}))
	assert.Contains(t, env.stderr.String(), "edge.txt does not look like a template file")
}

func TestTemplateUpload_Interactive(t *testing.T) {
	t.Run("prompts for missing fields", func(t *testing.T) {
		env := setupTest(t)
		path := writeTemplate(t, "edge.ks", "lang de_DE")
		isInteractive = func() bool { return true }
		uploadForm = func(_ context.Context, form *console.UploadForm) error {
			file, err := console.OpenFile(path)
			if err != nil {
				return err
			}
			form.TemplateName = "edge"
			form.File = file
			return nil
		}

		require.NoError(t, TemplateUpload(context.Background(), env.globals, TemplateUploadOptions{}))

		_, ok := env.server.Template("edge")
		assert.True(t, ok)
	})

	t.Run("declined default replacement", func(t *testing.T) {
		env := setupTest(t)
		path := writeTemplate(t, "edge.ks", "lang de_DE")
		isInteractive = func() bool { return true }
		confirm = func(_ context.Context, title string) (bool, error) {
			assert.Contains(t, title, `"edge"`)
			return false, nil
		}

		err := TemplateUpload(context.Background(), env.globals, TemplateUploadOptions{
			Name:         "edge",
			File:         path,
			UseAsDefault: true,
		})
		assert.ErrorIs(t, err, ErrCancelled)
		assert.Zero(t, env.server.Requests())
	})

	t.Run("--yes skips the confirmation", func(t *testing.T) {
		env := setupTest(t)
		path := writeTemplate(t, "edge.ks", "lang de_DE")
		isInteractive = func() bool { return true }

		require.NoError(t, TemplateUpload(context.Background(), env.globals, TemplateUploadOptions{
			Name:         "edge",
			File:         path,
			UseAsDefault: true,
			Yes:          true,
		}))
	})

	t.Run("form aborted", func(t *testing.T) {
		env := setupTest(t)
		isInteractive = func() bool { return true }
		aborted := errors.New("user aborted")
		uploadForm = func(context.Context, *console.UploadForm) error { return aborted }

		err := TemplateUpload(context.Background(), env.globals, TemplateUploadOptions{})
		assert.ErrorIs(t, err, aborted)
	})
}
