package provider

import (
	"context"
	"errors"
	"os"

	"github.com/asaskevich/govalidator"
	"github.com/matryer/resync"

	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/provider"
	"github.com/hashicorp/terraform-plugin-framework/provider/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/provisionr/provisionr-console/internal/provisionr"
)

const defaultBaseURL = "http://localhost:8000"

// Ensure provisionrProvider satisfies various provider interfaces.
var _ provider.Provider = &provisionrProvider{}

var configureOnce resync.Once

// provisionrProvider defines the provider implementation.
type provisionrProvider struct {
	// version is set to the provider version on release, "dev" when the
	// provider is built and ran locally, and "test" when running acceptance
	// testing.
	version string
}

// ProvisionrProviderModel describes the provider data model.
type ProvisionrProviderModel struct {
	BaseURL  types.String `tfsdk:"base_url"`
	APIToken types.String `tfsdk:"api_token"`
}

func (p *provisionrProvider) Metadata(ctx context.Context, req provider.MetadataRequest, resp *provider.MetadataResponse) {
	resp.TypeName = "provisionr"
	resp.Version = p.version
}

func (p *provisionrProvider) Schema(ctx context.Context, req provider.SchemaRequest, resp *provider.SchemaResponse) {
	resp.Schema = schema.Schema{
		Description: "The provisionR terraform provider manages the kickstart provisioning configuration and templates.",
		Attributes: map[string]schema.Attribute{
			"base_url": schema.StringAttribute{
				MarkdownDescription: "Base URL of the provisionR backend. Defaults to `PROVISIONR_BASE_URL` or `" + defaultBaseURL + "`.",
				Optional:            true,
			},
			"api_token": schema.StringAttribute{
				MarkdownDescription: "Bearer token for backends behind an authenticating proxy. Defaults to `PROVISIONR_API_TOKEN`.",
				Optional:            true,
				Sensitive:           true,
			},
		},
	}
}

// Function to read environment with a default value
func getEnv(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return value
}

func (p *provisionrProvider) Configure(ctx context.Context, req provider.ConfigureRequest, resp *provider.ConfigureResponse) {
	apiToken := os.Getenv("PROVISIONR_API_TOKEN")
	baseURL := getEnv("PROVISIONR_BASE_URL", defaultBaseURL)

	var data ProvisionrProviderModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)

	if resp.Diagnostics.HasError() {
		return
	}

	// Check configuration data, which should take precedence over
	// environment variable data, if found.
	if data.APIToken.ValueString() != "" {
		apiToken = data.APIToken.ValueString()
	}

	if data.BaseURL.ValueString() != "" {
		baseURL = data.BaseURL.ValueString()
	}

	if !govalidator.IsURL(baseURL) {
		resp.Diagnostics.AddError(
			"Invalid Endpoint Configuration",
			"While configuring the provider, the endpoint "+baseURL+" from "+
				"the PROVISIONR_BASE_URL environment variable or provider "+
				"configuration block base_url attribute is not a valid URL.",
		)
		return
	}

	client := provisionr.New(baseURL, provisionr.WithAccessToken(apiToken))

	configureOnce.Do(func() {
		status, err := client.Health(ctx)
		if err != nil {
			if errors.Is(err, provisionr.ErrorUnauthorized) {
				resp.Diagnostics.AddError(
					"Unable to connect to provisionR",
					"While configuring the provider, the API token was not valid.",
				)
				return
			}
			resp.Diagnostics.AddError(
				"Unable to connect to provisionR",
				"While configuring the provider, the API returns error: "+err.Error(),
			)
			return
		}
		if !status.Healthy() {
			resp.Diagnostics.AddError(
				"provisionR is not healthy",
				"While configuring the provider, the backend reported status "+status.Status+".",
			)
			return
		}
		tflog.Debug(ctx, "connected to provisionR", map[string]interface{}{
			"base_url": baseURL,
			"service":  status.Service,
		})
	})

	if resp.Diagnostics.HasError() {
		return
	}

	resp.DataSourceData = client
	resp.ResourceData = client
}

func (p *provisionrProvider) Resources(ctx context.Context) []func() resource.Resource {
	return []func() resource.Resource{
		NewConfigResource,
		NewTemplateResource,
	}
}

func (p *provisionrProvider) DataSources(ctx context.Context) []func() datasource.DataSource {
	return []func() datasource.DataSource{
		NewTemplateDataSource,
		NewKickstartDataSource,
	}
}

func New(version string) func() provider.Provider {
	return func() provider.Provider {
		return &provisionrProvider{
			version: version,
		}
	}
}
