// Package handlers implements the business logic for CLI commands.
//
// Handlers load operator settings, build the backend client and drive the
// console clients. Factories are package variables so tests can replace the
// pieces that need a terminal or object storage.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/provisionr/provisionr-console/internal/console"
	"github.com/provisionr/provisionr-console/internal/logging"
	"github.com/provisionr/provisionr-console/internal/opstate"
	"github.com/provisionr/provisionr-console/internal/platform/s3"
	"github.com/provisionr/provisionr-console/internal/provisionr"
	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
	"github.com/provisionr/provisionr-console/internal/settings"
	"github.com/provisionr/provisionr-console/internal/ui/forms"
	"github.com/provisionr/provisionr-console/internal/ui/tui"
)

// Globals carries the root command's flags. Nil fields were not given on the
// command line and keep the value from the profile or environment.
type Globals struct {
	Profile   string
	BaseURL   *string
	Token     *string
	Timeout   *time.Duration
	LogLevel  *string
	LogFormat *string
}

// Backend is the provisioning API the commands talk to.
type Backend interface {
	tui.API
	Health(ctx context.Context) (*provisioning.HealthStatus, error)
	ExportMachinePasswords(ctx context.Context) ([]byte, error)
}

// Archiver copies documents to object storage.
type Archiver interface {
	Store(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Factory functions for dependency injection (enables testing).
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	loadSettings = func(profile string) (settings.Settings, error) {
		return settings.Load(settings.WithProfile(profile))
	}

	newBackend = func(s settings.Settings) Backend {
		return provisionr.New(s.BaseURL,
			provisionr.WithTimeout(s.Timeout),
			provisionr.WithAccessToken(s.APIToken),
		)
	}

	newArchiver = func(ctx context.Context, a settings.Archive) (Archiver, error) {
		client, err := s3.NewClient(ctx, s3.Options{
			Endpoint:     a.Endpoint,
			Region:       a.Region,
			UsePathStyle: a.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s3.NewArchiver(client, a.Bucket, a.Prefix), nil
	}

	isInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	editConfigForm = forms.EditConfig
	uploadForm     = forms.Upload
	confirm        = forms.Confirm
	runConsole     = tui.RunConsole
)

// ErrCancelled is returned when the operator declines a confirmation.
var ErrCancelled = errors.New("cancelled")

type session struct {
	settings settings.Settings
	logger   *zap.Logger
	backend  Backend
}

func newSession(g Globals) (*session, error) {
	s, err := loadSettings(g.Profile)
	if err != nil {
		return nil, err
	}
	applyOverrides(&s, g)
	if err := s.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(stderr, s.LogLevel, s.LogFormat)
	if err != nil {
		return nil, err
	}
	logger.Debug("settings loaded",
		zap.String("base_url", s.BaseURL),
		zap.Duration("timeout", s.Timeout),
		zap.Bool("archive", s.Archive.Enabled()),
	)

	return &session{settings: s, logger: logger, backend: newBackend(s)}, nil
}

func applyOverrides(s *settings.Settings, g Globals) {
	if g.BaseURL != nil {
		s.BaseURL = *g.BaseURL
	}
	if g.Token != nil {
		s.APIToken = *g.Token
	}
	if g.Timeout != nil {
		s.Timeout = *g.Timeout
	}
	if g.LogLevel != nil {
		s.LogLevel = *g.LogLevel
	}
	if g.LogFormat != nil {
		s.LogFormat = *g.LogFormat
	}
}

func (s *session) close() {
	_ = s.logger.Sync()
}

func (s *session) consoleOptions(extra ...console.Option) []console.Option {
	return append([]console.Option{console.WithLogger(s.logger)}, extra...)
}

// archive stores data under name in the configured bucket.
func (s *session) archive(ctx context.Context, name, contentType string, data []byte) error {
	if !s.settings.Archive.Enabled() {
		return fmt.Errorf("no archive bucket configured (set archive.bucket in the profile or %sARCHIVE_BUCKET)", settings.EnvPrefix)
	}
	a, err := newArchiver(ctx, s.settings.Archive)
	if err != nil {
		return fmt.Errorf("failed to create archive client: %w", err)
	}
	uri, err := a.Store(ctx, name, contentType, data)
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", name, err)
	}
	s.logger.Info("document archived", zap.String("uri", uri))
	fmt.Fprintf(stderr, "Archived to %s\n", uri)
	return nil
}

// failure turns a failed operation into an error carrying its message.
func failure[T any](snap opstate.Snapshot[T]) error {
	if snap.Failed() {
		return errors.New(snap.Message)
	}
	return nil
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(stderr, "Wrote %s\n", path)
	return nil
}
