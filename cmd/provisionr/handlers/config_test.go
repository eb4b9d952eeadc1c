package handlers

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provisionr/provisionr-console/internal/console"
	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

func TestConfigGet(t *testing.T) {
	env := setupTest(t)

	require.NoError(t, ConfigGet(context.Background(), env.globals, false))

	out := env.stdout.String()
	assert.Contains(t, out, "Target OS:          Rocky 9")
	assert.Contains(t, out, "Generate passwords: yes")
	assert.Contains(t, out, "{}")
}

func TestConfigGet_JSON(t *testing.T) {
	env := setupTest(t)

	require.NoError(t, ConfigGet(context.Background(), env.globals, true))

	var got map[string]any
	require.NoError(t, json.Unmarshal(env.stdout.Bytes(), &got))
	assert.Equal(t, "Rocky9", got["target_os"])
	assert.Equal(t, true, got["generate_passwords"])
	assert.Equal(t, map[string]any{}, got["values"])
}

func TestConfigGet_BackendDown(t *testing.T) {
	env := setupTest(t)
	url := "http://127.0.0.1:1"
	env.globals.BaseURL = &url

	err := ConfigGet(context.Background(), env.globals, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to connect to backend. Make sure the server is running on http://127.0.0.1:1")
}

func TestConfigGet_InvalidSettings(t *testing.T) {
	env := setupTest(t)
	url := "not a url"
	env.globals.BaseURL = &url

	err := ConfigGet(context.Background(), env.globals, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BaseURL")
	assert.Zero(t, env.server.Requests())
}

func TestConfigSet_KeepsUnsetFields(t *testing.T) {
	env := setupTest(t)

	err := ConfigSet(context.Background(), env.globals, ConfigSetOptions{
		TargetOS: "Ubuntu25.04",
		Values:   lo.ToPtr(`{"hostname":"node1"}`),
	})
	require.NoError(t, err)

	stored := env.server.Config()
	assert.Equal(t, provisioning.TargetOSUbuntu2504, stored.TargetOS)
	assert.True(t, stored.GeneratePasswords)
	hostname, ok := stored.Values.Get("hostname")
	require.True(t, ok)
	assert.Equal(t, `"node1"`, hostname.String())

	assert.Contains(t, env.stderr.String(), console.MsgConfigUpdated)
	assert.Contains(t, env.stdout.String(), "Ubuntu 25.04")
}

func TestConfigSet_GeneratePasswords(t *testing.T) {
	env := setupTest(t)

	require.NoError(t, ConfigSet(context.Background(), env.globals, ConfigSetOptions{
		GeneratePasswords: lo.ToPtr(false),
	}))

	stored := env.server.Config()
	assert.False(t, stored.GeneratePasswords)
	assert.Equal(t, provisioning.TargetOSRocky9, stored.TargetOS)
}

func TestConfigSet_ValuesFile(t *testing.T) {
	env := setupTest(t)
	path := filepath.Join(t.TempDir(), "values.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ntp":"pool.ntp.org"}`), 0o600))

	require.NoError(t, ConfigSet(context.Background(), env.globals, ConfigSetOptions{ValuesFile: path}))

	ntp, ok := env.server.Config().Values.Get("ntp")
	require.True(t, ok)
	assert.Equal(t, `"pool.ntp.org"`, ntp.String())
}

func TestConfigSet_InvalidJSON(t *testing.T) {
	env := setupTest(t)

	err := ConfigSet(context.Background(), env.globals, ConfigSetOptions{Values: lo.ToPtr("{bad")})
	require.Error(t, err)
	assert.Equal(t, console.MsgInvalidJSON, err.Error())
	assert.Equal(t, int64(1), env.server.Requests(), "only the initial read reached the backend")
}

func TestConfigSet_UnknownTargetOS(t *testing.T) {
	env := setupTest(t)

	err := ConfigSet(context.Background(), env.globals, ConfigSetOptions{TargetOS: "Debian"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target OS")
}

func TestConfigSet_ConflictingValues(t *testing.T) {
	env := setupTest(t)

	err := ConfigSet(context.Background(), env.globals, ConfigSetOptions{
		Values:     lo.ToPtr("{}"),
		ValuesFile: "values.json",
	})
	require.Error(t, err)
	assert.Zero(t, env.server.Requests())
}

func TestConfigEdit(t *testing.T) {
	t.Run("requires a terminal", func(t *testing.T) {
		env := setupTest(t)

		err := ConfigEdit(context.Background(), env.globals)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "interactive terminal")
	})

	t.Run("submits the edited form", func(t *testing.T) {
		env := setupTest(t)
		isInteractive = func() bool { return true }
		editConfigForm = func(_ context.Context, form *console.ConfigForm) error {
			assert.Equal(t, provisioning.TargetOSRocky9, form.TargetOS, "form is seeded from the backend")
			form.TargetOS = provisioning.TargetOSUbuntu2504
			form.ValuesText = `{"role":"worker"}`
			return nil
		}

		require.NoError(t, ConfigEdit(context.Background(), env.globals))

		stored := env.server.Config()
		assert.Equal(t, provisioning.TargetOSUbuntu2504, stored.TargetOS)
		role, ok := stored.Values.Get("role")
		require.True(t, ok)
		assert.Equal(t, `"worker"`, role.String())
	})
}
