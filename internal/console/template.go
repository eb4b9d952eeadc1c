package console

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/provisionr/provisionr-console/internal/opstate"
	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

// TemplateAPI is the part of the backend TemplateClient talks to.
type TemplateAPI interface {
	GetTemplate(ctx context.Context, name string) (string, error)
	UploadTemplate(ctx context.Context, req *provisioning.UploadTemplateRequest) (*provisioning.UploadTemplateResponse, error)
	RenderKickstart(ctx context.Context, req *provisioning.RenderRequest) (string, error)
}

// TemplateExtensions are the file types offered by the upload picker. They
// are a hint only; any file can be uploaded.
var TemplateExtensions = []string{".j2", ".jinja2", ".ks"}

// HasTemplateExtension reports whether name ends in one of TemplateExtensions.
func HasTemplateExtension(name string) bool {
	return lo.Contains(TemplateExtensions, strings.ToLower(filepath.Ext(name)))
}

// FileSelection is a file picked for upload.
type FileSelection struct {
	Name    string
	Content []byte
}

// OpenFile reads path into a FileSelection named after its base name.
func OpenFile(path string) (*FileSelection, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template file: %w", err)
	}
	return &FileSelection{Name: filepath.Base(path), Content: content}, nil
}

// UploadForm holds the transient upload fields. File is nil when nothing is
// selected.
type UploadForm struct {
	TemplateName string
	File         *FileSelection
	UseAsDefault bool
}

// TemplateClient fetches, uploads and renders kickstart templates.
type TemplateClient struct {
	base
	api           TemplateAPI
	onUploadReset func()

	Fetch  *opstate.Slot[string]
	Upload *opstate.Slot[string]
	Render *opstate.Slot[string]

	mu     sync.Mutex
	upload UploadForm
}

func NewTemplateClient(api TemplateAPI, opts ...Option) *TemplateClient {
	o := buildOptions(opts)
	b := newBase(o)
	return &TemplateClient{
		base:          b,
		api:           api,
		onUploadReset: o.onUploadReset,
		Fetch:         opstate.NewSlot[string](OpGetTemplate, b.observer()),
		Upload:        opstate.NewSlot[string](OpUploadTemplate, b.observer()),
		Render:        opstate.NewSlot[string](OpRenderTemplate, b.observer()),
	}
}

// GetTemplate fetches the raw source of a template. The name is passed to
// the backend as given.
func (c *TemplateClient) GetTemplate(ctx context.Context, name string) opstate.Snapshot[string] {
	c.Fetch.Begin()

	started := time.Now()
	content, err := c.api.GetTemplate(ctx, name)
	c.finish(OpGetTemplate, started, err)
	if err != nil {
		c.Fetch.Fail(withStatus(fmt.Sprintf("Failed to fetch template '%s'", name), err))
		return c.Fetch.Snapshot()
	}

	c.Fetch.Succeed(content)
	return c.Fetch.Snapshot()
}

// UploadTemplate stores file under name. Both are required; when either is
// missing nothing is sent. On success the result is the backend's message
// and the upload form is reset.
func (c *TemplateClient) UploadTemplate(ctx context.Context, name string, file *FileSelection, useAsDefault bool) opstate.Snapshot[string] {
	c.Upload.Begin()

	if name == "" || file == nil {
		c.Upload.Fail(MsgUploadFieldMissing)
		return c.Upload.Snapshot()
	}

	started := time.Now()
	resp, err := c.api.UploadTemplate(ctx, &provisioning.UploadTemplateRequest{
		TemplateName: name,
		FileName:     file.Name,
		Content:      bytes.NewReader(file.Content),
		UseAsDefault: useAsDefault,
	})
	c.finish(OpUploadTemplate, started, err)
	if err != nil {
		c.Upload.Fail(withStatus(MsgUploadFailed, err))
		return c.Upload.Snapshot()
	}

	c.resetUploadForm()
	c.Upload.Succeed(resp.Message)
	return c.Upload.Snapshot()
}

// SubmitUpload runs UploadTemplate with the upload form fields.
func (c *TemplateClient) SubmitUpload(ctx context.Context) opstate.Snapshot[string] {
	form := c.UploadForm()
	return c.UploadTemplate(ctx, form.TemplateName, form.File, form.UseAsDefault)
}

// RenderTemplate renders a kickstart for one machine. An empty templateName
// renders the backend's default template.
func (c *TemplateClient) RenderTemplate(ctx context.Context, templateName, mac, uuid, serial string) opstate.Snapshot[string] {
	return c.RenderKickstart(ctx, provisioning.RenderRequest{
		MAC:          mac,
		UUID:         uuid,
		Serial:       serial,
		TemplateName: templateName,
	})
}

// RenderKickstart is RenderTemplate with extra query parameters.
func (c *TemplateClient) RenderKickstart(ctx context.Context, req provisioning.RenderRequest) opstate.Snapshot[string] {
	c.Render.Begin()

	started := time.Now()
	body, err := c.api.RenderKickstart(ctx, &req)
	c.finish(OpRenderTemplate, started, err)
	if err != nil {
		c.Render.Fail(withStatus(fmt.Sprintf("Failed to render template '%s'", req.EffectiveTemplateName()), err))
		return c.Render.Snapshot()
	}

	c.Render.Succeed(body)
	return c.Render.Snapshot()
}

func (c *TemplateClient) UploadForm() UploadForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upload
}

func (c *TemplateClient) SetUploadForm(form UploadForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.upload = form
}

func (c *TemplateClient) resetUploadForm() {
	c.mu.Lock()
	c.upload = UploadForm{}
	c.mu.Unlock()

	if c.onUploadReset != nil {
		c.onUploadReset()
	}
}
