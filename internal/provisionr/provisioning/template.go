package provisioning

import "io"

// UploadTemplateRequest is sent as multipart form data to POST /templates.
type UploadTemplateRequest struct {
	TemplateName string
	FileName     string
	Content      io.Reader
	UseAsDefault bool
}

// UploadTemplateResponse is the confirmation returned by POST /templates.
type UploadTemplateResponse struct {
	Message      string `json:"message"`
	TemplateName string `json:"template_name,omitempty"`
	UseAsDefault bool   `json:"use_as_default"`
}
