// Package settings loads operator settings for the provisionr CLI.
//
// Sources are applied in order: built-in defaults, a profile file (YAML or
// TOML, picked by extension), then PROVISIONR_* environment variables.
// Command line flags are applied last by the CLI itself.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PROVISIONR_"

type Settings struct {
	BaseURL   string        `yaml:"base_url" toml:"base_url" env:"BASE_URL" validate:"required,url"`
	APIToken  string        `yaml:"api_token" toml:"api_token" env:"API_TOKEN"`
	Timeout   time.Duration `yaml:"timeout" toml:"timeout" env:"TIMEOUT" validate:"gt=0"`
	LogLevel  string        `yaml:"log_level" toml:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string        `yaml:"log_format" toml:"log_format" env:"LOG_FORMAT" validate:"oneof=console json"`

	// Machine pre-fills render requests.
	Machine Machine `yaml:"machine" toml:"machine" envPrefix:"MACHINE_"`

	// Archive is where rendered kickstarts and exports are copied when
	// requested.
	Archive Archive `yaml:"archive" toml:"archive" envPrefix:"ARCHIVE_"`
}

type Machine struct {
	MAC          string `yaml:"mac" toml:"mac" env:"MAC"`
	UUID         string `yaml:"uuid" toml:"uuid" env:"UUID"`
	Serial       string `yaml:"serial" toml:"serial" env:"SERIAL"`
	TemplateName string `yaml:"template_name" toml:"template_name" env:"TEMPLATE_NAME"`
}

// RenderRequest converts m into a request for the backend.
func (m Machine) RenderRequest() provisioning.RenderRequest {
	return provisioning.RenderRequest{
		MAC:          m.MAC,
		UUID:         m.UUID,
		Serial:       m.Serial,
		TemplateName: m.TemplateName,
	}
}

type Archive struct {
	Bucket       string `yaml:"bucket" toml:"bucket" env:"BUCKET"`
	Prefix       string `yaml:"prefix" toml:"prefix" env:"PREFIX"`
	Region       string `yaml:"region" toml:"region" env:"REGION"`
	Endpoint     string `yaml:"endpoint" toml:"endpoint" env:"ENDPOINT" validate:"omitempty,url"`
	UsePathStyle bool   `yaml:"use_path_style" toml:"use_path_style" env:"USE_PATH_STYLE"`
}

// Enabled reports whether a bucket is configured.
func (a Archive) Enabled() bool {
	return a.Bucket != ""
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	sample := provisioning.SampleMachine()
	return Settings{
		BaseURL:   "http://localhost:8000",
		Timeout:   30 * time.Second,
		LogLevel:  "info",
		LogFormat: "console",
		Machine: Machine{
			MAC:    sample.MAC,
			UUID:   sample.UUID,
			Serial: sample.Serial,
		},
		Archive: Archive{
			Prefix: "provisionr/",
		},
	}
}

// DefaultProfilePath is ~/.config/provisionr/profile.yaml, or empty when the
// user config directory is unknown.
func DefaultProfilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "provisionr", "profile.yaml")
}

type loadOptions struct {
	profile         string
	profileRequired bool
	environment     map[string]string
}

type LoadOption func(*loadOptions)

// WithProfile reads the given profile file, which must exist.
func WithProfile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.profile = path
			o.profileRequired = true
		}
	}
}

// WithEnvironment replaces the process environment, for tests.
func WithEnvironment(environment map[string]string) LoadOption {
	return func(o *loadOptions) {
		o.environment = environment
	}
}

// Load builds settings from defaults, the profile file and the environment.
// The result is not validated; call Validate once flags are applied.
func Load(opts ...LoadOption) (Settings, error) {
	o := loadOptions{profile: DefaultProfilePath()}
	for _, opt := range opts {
		opt(&o)
	}

	s := Default()

	if o.profile != "" {
		if err := readProfile(o.profile, &s); err != nil {
			if o.profileRequired || !errors.Is(err, fs.ErrNotExist) {
				return s, err
			}
		}
	}

	if err := env.ParseWithOptions(&s, env.Options{
		Prefix:      EnvPrefix,
		Environment: o.environment,
	}); err != nil {
		return s, fmt.Errorf("failed to parse environment: %w", err)
	}

	return s, nil
}

func readProfile(path string, s *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), s); err != nil {
			return fmt.Errorf("failed to parse TOML profile %s: %w", path, err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, s); err != nil {
			return fmt.Errorf("failed to parse YAML profile %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported profile format %q (expected .yaml, .yml or .toml)", filepath.Ext(path))
	}
	return nil
}

var validate = validator.New()

// Validate checks s and reports every invalid field.
func (s Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q check", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
}
