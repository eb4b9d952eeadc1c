package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"

	"github.com/provisionr/provisionr-console/internal/provisionr"
)

type jsonValidator struct{}

// Description returns a plain text description of the validator's behavior, suitable for a practitioner to understand its impact.
func (v jsonValidator) Description(ctx context.Context) string {
	return "Value must be a valid JSON document."
}

// MarkdownDescription returns a markdown formatted description of the validator's behavior, suitable for a practitioner to understand its impact.
func (v jsonValidator) MarkdownDescription(ctx context.Context) string {
	return "Value must be a valid JSON document, e.g. the result of `jsonencode()`."
}

// ValidateString Validate runs the main validation logic of the validator, reading configuration data out of `req` and updating `resp` with diagnostics.
func (v jsonValidator) ValidateString(ctx context.Context, req validator.StringRequest, resp *validator.StringResponse) {
	// If the value is unknown or null, there is nothing to validate.
	if req.ConfigValue.IsUnknown() || req.ConfigValue.IsNull() {
		return
	}

	if !govalidator.IsJSON(req.ConfigValue.ValueString()) {
		resp.Diagnostics.AddAttributeError(
			req.Path,
			"Invalid JSON",
			"Value must be a valid JSON document. Use jsonencode() to build it from a Terraform object.",
		)
	}
}

type templateNameValidator struct{}

func (v templateNameValidator) Description(ctx context.Context) string {
	return "Template name must not be empty or contain '/' or '..'."
}

func (v templateNameValidator) MarkdownDescription(ctx context.Context) string {
	return "Template name must not be empty or contain `/` or `..`."
}

func (v templateNameValidator) ValidateString(ctx context.Context, req validator.StringRequest, resp *validator.StringResponse) {
	if req.ConfigValue.IsUnknown() || req.ConfigValue.IsNull() {
		return
	}

	name := req.ConfigValue.ValueString()
	if strings.TrimSpace(name) == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		resp.Diagnostics.AddAttributeError(
			req.Path,
			"Invalid template name",
			fmt.Sprintf("%q is not a valid template name: it must not be empty or contain '/' or '..'.", name),
		)
	}
}

// clientFromProviderData extracts the API client passed by the provider's
// Configure.
func clientFromProviderData(providerData any, diags *diag.Diagnostics) *provisionr.Client {
	client, ok := providerData.(*provisionr.Client)
	if !ok {
		diags.AddError(
			"Unexpected Configure Type",
			fmt.Sprintf("Expected *provisionr.Client, got: %T. Please report this issue to the provider developers.", providerData),
		)
		return nil
	}
	return client
}
