package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/provisionr/provisionr-console/internal/console"
	"github.com/provisionr/provisionr-console/internal/mockbackend"
	"github.com/provisionr/provisionr-console/internal/settings"
)

type fakeArchiver struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
	types   map[string]string
	err     error
}

func (a *fakeArchiver) Store(_ context.Context, name, contentType string, data []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[name] = append([]byte(nil), data...)
	a.types[name] = contentType
	return fmt.Sprintf("s3://%s/%s", a.bucket, name), nil
}

type testEnv struct {
	server   *mockbackend.Server
	globals  Globals
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	settings *settings.Settings
	archiver *fakeArchiver
}

func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origStdout := stdout
	origStderr := stderr
	origLoadSettings := loadSettings
	origNewBackend := newBackend
	origNewArchiver := newArchiver
	origIsInteractive := isInteractive
	origEditConfigForm := editConfigForm
	origUploadForm := uploadForm
	origConfirm := confirm
	origRunConsole := runConsole
	origNow := now

	t.Cleanup(func() {
		stdout = origStdout
		stderr = origStderr
		loadSettings = origLoadSettings
		newBackend = origNewBackend
		newArchiver = origNewArchiver
		isInteractive = origIsInteractive
		editConfigForm = origEditConfigForm
		uploadForm = origUploadForm
		confirm = origConfirm
		runConsole = origRunConsole
		now = origNow
	})
}

// setupTest starts a mock backend and points the handlers at it. Output is
// captured and the session is never interactive.
func setupTest(t *testing.T) *testEnv {
	t.Helper()
	saveAndRestoreFactories(t)

	srv := mockbackend.New()
	baseURL, err := srv.Start("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown() })

	s := settings.Default()
	env := &testEnv{
		server:   srv,
		globals:  Globals{BaseURL: &baseURL},
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		settings: &s,
		archiver: &fakeArchiver{
			objects: map[string][]byte{},
			types:   map[string]string{},
		},
	}

	stdout = env.stdout
	stderr = env.stderr
	loadSettings = func(string) (settings.Settings, error) { return *env.settings, nil }
	newArchiver = func(_ context.Context, a settings.Archive) (Archiver, error) {
		env.archiver.bucket = a.Bucket
		return env.archiver, nil
	}
	isInteractive = func() bool { return false }
	editConfigForm = func(context.Context, *console.ConfigForm) error {
		return errors.New("unexpected form")
	}
	uploadForm = func(context.Context, *console.UploadForm) error {
		return errors.New("unexpected form")
	}
	confirm = func(context.Context, string) (bool, error) {
		return false, errors.New("unexpected confirmation")
	}

	return env
}
