package provisionr

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/logging"
	"github.com/samber/lo"

	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

const (
	pathHealth    = "/api/health"
	pathConfig    = "/api/v1/config"
	pathTemplates = "/api/v1/templates"
	pathTemplate  = "/api/v1/templates/{name}"
	pathKickstart = "/api/v1/ks"
	pathExport    = "/api/v1/machines/export"
)

const jsonContentType = "application/json"

// RequestIDHeader carries a fresh identifier on every request.
const RequestIDHeader = "X-Request-ID"

type Client struct {
	HTTPClient *resty.Client
	baseURL    string
}

// Option customises the underlying resty client.
type Option func(*resty.Client)

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) {
		c.SetTimeout(d)
	}
}

// WithAccessToken sends a bearer token, for backends behind an
// authenticating proxy.
func WithAccessToken(token string) Option {
	return func(c *resty.Client) {
		if token == "" {
			return
		}
		c.SetAuthScheme("Bearer").SetAuthToken(token)
	}
}

func New(baseURL string, opts ...Option) *Client {
	transport := logging.NewLoggingHTTPTransport(http.DefaultTransport)

	clientName, _ := os.Executable()

	httpClient := resty.NewWithClient(&http.Client{Transport: transport}).
		SetHeader("User-Agent", filepath.Base(clientName)).
		SetBaseURL(baseURL).
		SetRetryCount(0).
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			r.SetHeader(RequestIDHeader, uuid.NewString())
			return nil
		})

	for _, opt := range opts {
		opt(httpClient)
	}

	return &Client{HTTPClient: httpClient, baseURL: baseURL}
}

// BaseURL is the backend address requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Health(ctx context.Context) (*provisioning.HealthStatus, error) {
	resp, err := c.HTTPClient.R().
		SetHeader("Accept", jsonContentType).
		SetResult(provisioning.HealthStatus{}).
		ForceContentType(jsonContentType).
		SetError(&ErrorResponse{}).
		SetContext(ctx).
		Get(pathHealth)
	if err := checkJSONResponse(resp, err); err != nil {
		return nil, err
	}
	return resp.Result().(*provisioning.HealthStatus), nil
}

func (c *Client) GetConfig(ctx context.Context) (*provisioning.Config, error) {
	resp, err := c.HTTPClient.R().
		SetHeader("Accept", jsonContentType).
		SetResult(provisioning.Config{}).
		ForceContentType(jsonContentType).
		SetError(&ErrorResponse{}).
		SetContext(ctx).
		Get(pathConfig)
	if err := checkJSONResponse(resp, err); err != nil {
		return nil, err
	}
	return resp.Result().(*provisioning.Config), nil
}

// UpdateConfig replaces the whole configuration and returns what the backend
// stored.
func (c *Client) UpdateConfig(ctx context.Context, config *provisioning.Config) (*provisioning.Config, error) {
	resp, err := c.HTTPClient.R().
		SetHeader("Accept", jsonContentType).
		SetHeader("Content-Type", jsonContentType).
		SetResult(provisioning.Config{}).
		ForceContentType(jsonContentType).
		SetError(&ErrorResponse{}).
		SetContext(ctx).
		SetBody(config).
		Put(pathConfig)
	if err := checkJSONResponse(resp, err); err != nil {
		return nil, err
	}
	return resp.Result().(*provisioning.Config), nil
}

// GetTemplate returns the raw source of the named template.
func (c *Client) GetTemplate(ctx context.Context, name string) (string, error) {
	resp, err := c.HTTPClient.R().
		SetHeader("Accept", "text/plain").
		SetError(&ErrorResponse{}).
		SetContext(ctx).
		SetPathParam("name", name).
		Get(pathTemplate)
	if err := checkResponse(resp, err); err != nil {
		return "", err
	}
	return resp.String(), nil
}

func (c *Client) UploadTemplate(ctx context.Context, req *provisioning.UploadTemplateRequest) (*provisioning.UploadTemplateResponse, error) {
	resp, err := c.HTTPClient.R().
		SetHeader("Accept", jsonContentType).
		SetResult(provisioning.UploadTemplateResponse{}).
		ForceContentType(jsonContentType).
		SetError(&ErrorResponse{}).
		SetContext(ctx).
		SetFileReader("file", req.FileName, req.Content).
		SetFormData(map[string]string{
			"template_name":  req.TemplateName,
			"use_as_default": strconv.FormatBool(req.UseAsDefault),
		}).
		Post(pathTemplates)
	if err := checkJSONResponse(resp, err); err != nil {
		return nil, err
	}
	return resp.Result().(*provisioning.UploadTemplateResponse), nil
}

// RenderKickstart returns the rendered kickstart document verbatim.
func (c *Client) RenderKickstart(ctx context.Context, req *provisioning.RenderRequest) (string, error) {
	resp, err := c.HTTPClient.R().
		SetHeader("Accept", "text/plain").
		SetError(&ErrorResponse{}).
		SetContext(ctx).
		SetQueryParams(renderQuery(req)).
		Get(pathKickstart)
	if err := checkResponse(resp, err); err != nil {
		return "", err
	}
	return resp.String(), nil
}

// ExportMachinePasswords downloads the CSV of every machine the backend has
// generated passwords for.
func (c *Client) ExportMachinePasswords(ctx context.Context) ([]byte, error) {
	resp, err := c.HTTPClient.R().
		SetHeader("Accept", "text/csv").
		SetError(&ErrorResponse{}).
		SetContext(ctx).
		Get(pathExport)
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

var reservedRenderParams = []string{"mac", "uuid", "serial", "template_name"}

func renderQuery(req *provisioning.RenderRequest) map[string]string {
	params := lo.OmitByKeys(req.Extra, reservedRenderParams)
	if params == nil {
		params = map[string]string{}
	}
	params["mac"] = req.MAC
	params["uuid"] = req.UUID
	params["serial"] = req.Serial
	if req.TemplateName != "" {
		params["template_name"] = req.TemplateName
	}
	return params
}

// checkResponse turns a resty result into an error. An HTTP failure wins over
// a body decoding error so callers always see the status code.
func checkResponse(resp *resty.Response, err error) error {
	if resp != nil && resp.RawResponse != nil && !resp.IsSuccess() {
		return handleError(resp)
	}
	if err != nil {
		return fmt.Errorf("provisionR API request failed: %w", err)
	}
	return nil
}

// checkJSONResponse also rejects a successful response that carries no JSON
// document. Decoding is forced to JSON, so an HTML page fails to unmarshal,
// but an empty or null body would otherwise leave a zero value behind.
func checkJSONResponse(resp *resty.Response, err error) error {
	if err := checkResponse(resp, err); err != nil {
		return err
	}
	if body := bytes.TrimSpace(resp.Body()); len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return fmt.Errorf("provisionR API request failed: %s returned no JSON document", resp.Request.URL)
	}
	return nil
}

func handleError(resp *resty.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
	}
	if errResp, ok := resp.Error().(*ErrorResponse); ok {
		apiErr.Detail = errResp.Message()
	}
	return apiErr
}
