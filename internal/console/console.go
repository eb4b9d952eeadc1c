// Package console orchestrates the operator-facing provisionR operations.
//
// ConfigClient and TemplateClient each own one opstate.Slot per operation.
// An operation validates its input, calls the backend, and records the
// outcome in its slot. Errors never escape an operation: they become the
// slot's message.
package console

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/provisionr/provisionr-console/internal/opstate"
	"github.com/provisionr/provisionr-console/internal/provisionr"
)

// Operation names, used for slots, logs and metric labels.
const (
	OpGetConfig      = "get-config"
	OpUpdateConfig   = "update-config"
	OpGetTemplate    = "get-template"
	OpUploadTemplate = "upload-template"
	OpRenderTemplate = "render-template"
)

// Diagnostics reported by the operations.
const (
	MsgInvalidJSON        = "Invalid JSON in custom values"
	MsgConfigUpdated      = "Configuration updated successfully"
	MsgUploadFieldMissing = "Please select a file and provide a template name"
	MsgUploadFailed       = "Failed to upload template"
)

type options struct {
	logger        *zap.Logger
	enableMetrics bool
	onUploadReset func()
}

type Option func(*options)

// WithLogger sets the logger. Slot transitions are logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records operation outcomes in Registry.
func WithMetrics(enabled bool) Option {
	return func(o *options) {
		o.enableMetrics = enabled
	}
}

// OnUploadReset registers a hook that runs after a successful upload has
// cleared the upload form, so a surface can reset its file picker.
func OnUploadReset(fn func()) Option {
	return func(o *options) {
		o.onUploadReset = fn
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// base carries what both clients share.
type base struct {
	logger        *zap.Logger
	enableMetrics bool
}

func newBase(o options) base {
	return base{logger: o.logger, enableMetrics: o.enableMetrics}
}

func (b base) observer() opstate.Observer {
	return func(operation string, from, to opstate.Status) {
		b.logger.Debug("operation state changed",
			zap.String("operation", operation),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
		if b.enableMetrics {
			recordTransitionMetric(operation, to)
		}
	}
}

// finish logs and measures one backend call.
func (b base) finish(operation string, started time.Time, err error) {
	result := "success"
	if err != nil {
		result = "failure"
		b.logger.Warn("operation failed", zap.String("operation", operation), zap.Error(err))
	}
	if b.enableMetrics {
		recordOperationMetric(operation, result, time.Since(started).Seconds())
	}
}

// withStatus appends the HTTP status carried by err, when there is one.
func withStatus(msg string, err error) string {
	if code, ok := provisionr.StatusCode(err); ok {
		return fmt.Sprintf("%s (HTTP status %d)", msg, code)
	}
	return msg
}
