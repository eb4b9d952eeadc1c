package console

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/provisionr/provisionr-console/internal/jsonvalue"
	"github.com/provisionr/provisionr-console/internal/opstate"
	"github.com/provisionr/provisionr-console/internal/provisionr"
	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

// ConfigAPI is the part of the backend ConfigClient talks to.
type ConfigAPI interface {
	BaseURL() string
	GetConfig(ctx context.Context) (*provisioning.Config, error)
	UpdateConfig(ctx context.Context, config *provisioning.Config) (*provisioning.Config, error)
}

// ConfigForm mirrors the editable configuration fields. ValuesText is the raw
// JSON the operator edits.
type ConfigForm struct {
	TargetOS          provisioning.TargetOS
	GeneratePasswords bool
	ValuesText        string
}

// DefaultConfigForm is the form shown before anything was fetched.
func DefaultConfigForm() ConfigForm {
	return formFromConfig(provisioning.DefaultConfig())
}

func formFromConfig(c provisioning.Config) ConfigForm {
	return ConfigForm{
		TargetOS:          c.TargetOS,
		GeneratePasswords: c.GeneratePasswords,
		ValuesText:        c.Values.Pretty(),
	}
}

// UpdateOutcome is the result of a successful update.
type UpdateOutcome struct {
	Config  *provisioning.Config
	Message string
}

// ConfigClient reads and writes the service-wide provisioning configuration.
type ConfigClient struct {
	base
	api ConfigAPI

	Fetch  *opstate.Slot[*provisioning.Config]
	Update *opstate.Slot[UpdateOutcome]

	mu      sync.Mutex
	form    ConfigForm
	current *provisioning.Config
}

func NewConfigClient(api ConfigAPI, opts ...Option) *ConfigClient {
	b := newBase(buildOptions(opts))
	return &ConfigClient{
		base:   b,
		api:    api,
		Fetch:  opstate.NewSlot[*provisioning.Config](OpGetConfig, b.observer()),
		Update: opstate.NewSlot[UpdateOutcome](OpUpdateConfig, b.observer()),
		form:   DefaultConfigForm(),
	}
}

// GetConfig reads the configuration. On success it becomes the current
// configuration and the form is re-seeded from it.
func (c *ConfigClient) GetConfig(ctx context.Context) opstate.Snapshot[*provisioning.Config] {
	c.Fetch.Begin()

	started := time.Now()
	config, err := c.api.GetConfig(ctx)
	c.finish(OpGetConfig, started, err)
	if err != nil {
		c.Fetch.Fail(c.connectDiagnostic(err))
		return c.Fetch.Snapshot()
	}

	c.mu.Lock()
	c.current = config
	c.form = formFromConfig(*config)
	c.mu.Unlock()

	c.Fetch.Succeed(config)
	return c.Fetch.Snapshot()
}

// UpdateConfig replaces the configuration. Blank valuesText stands for an
// empty object; text that is not JSON fails without calling the backend.
func (c *ConfigClient) UpdateConfig(ctx context.Context, targetOS provisioning.TargetOS, generatePasswords bool, valuesText string) opstate.Snapshot[UpdateOutcome] {
	c.Update.Begin()

	values, err := parseValues(valuesText)
	if err != nil {
		c.logger.Debug("rejected custom values", zap.Error(err))
		c.Update.Fail(MsgInvalidJSON)
		return c.Update.Snapshot()
	}

	started := time.Now()
	stored, err := c.api.UpdateConfig(ctx, &provisioning.Config{
		TargetOS:          targetOS,
		GeneratePasswords: generatePasswords,
		Values:            values,
	})
	c.finish(OpUpdateConfig, started, err)
	if err != nil {
		c.Update.Fail(updateDiagnostic(err))
		return c.Update.Snapshot()
	}

	c.mu.Lock()
	c.current = stored
	c.mu.Unlock()

	c.Update.Succeed(UpdateOutcome{Config: stored, Message: MsgConfigUpdated})
	return c.Update.Snapshot()
}

// SubmitForm runs UpdateConfig with the current form fields.
func (c *ConfigClient) SubmitForm(ctx context.Context) opstate.Snapshot[UpdateOutcome] {
	form := c.Form()
	return c.UpdateConfig(ctx, form.TargetOS, form.GeneratePasswords, form.ValuesText)
}

func (c *ConfigClient) Form() ConfigForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *ConfigClient) SetForm(form ConfigForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = form
}

// Current returns the last configuration read from or written to the
// backend, or nil.
func (c *ConfigClient) Current() *provisioning.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// ClearCurrent closes the current configuration panel.
func (c *ConfigClient) ClearCurrent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

func (c *ConfigClient) connectDiagnostic(err error) string {
	return withStatus(fmt.Sprintf("Failed to connect to backend. Make sure the server is running on %s", c.api.BaseURL()), err)
}

func updateDiagnostic(err error) string {
	if code, ok := provisionr.StatusCode(err); ok {
		return fmt.Sprintf("HTTP error! status: %d", code)
	}
	return err.Error()
}

func parseValues(text string) (jsonvalue.Value, error) {
	if strings.TrimSpace(text) == "" {
		return jsonvalue.EmptyObject(), nil
	}
	return jsonvalue.ParseString(text)
}
