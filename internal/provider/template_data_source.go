package provider

import (
	"context"

	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"

	"github.com/provisionr/provisionr-console/internal/provisionr"
	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

// Ensure provider defined types fully satisfy framework interfaces
var _ datasource.DataSource = &TemplateDataSource{}

func NewTemplateDataSource() datasource.DataSource {
	return &TemplateDataSource{}
}

// TemplateDataSource reads a stored kickstart template.
type TemplateDataSource struct {
	client *provisionr.Client
}

type TemplateDataSourceModel struct {
	ID      types.String `tfsdk:"id"`
	Name    types.String `tfsdk:"name"`
	Content types.String `tfsdk:"content"`
}

func (d *TemplateDataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_template"
}

func (d *TemplateDataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Reads the source of a kickstart template.",
		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				Computed: true,
			},
			"name": schema.StringAttribute{
				Optional:            true,
				MarkdownDescription: "Template name. Defaults to `default`.",
				Validators: []validator.String{
					templateNameValidator{},
				},
			},
			"content": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "Template source.",
			},
		},
	}
}

func (d *TemplateDataSource) Configure(ctx context.Context, req datasource.ConfigureRequest, resp *datasource.ConfigureResponse) {
	// Prevent panic if the provider has not been configured.
	if req.ProviderData == nil {
		return
	}

	d.client = clientFromProviderData(req.ProviderData, &resp.Diagnostics)
}

func (d *TemplateDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	var state TemplateDataSourceModel

	// Read Terraform configuration data into the model
	resp.Diagnostics.Append(req.Config.Get(ctx, &state)...)

	if resp.Diagnostics.HasError() {
		return
	}

	name := state.Name.ValueString()
	if name == "" {
		name = provisioning.DefaultTemplateName
	}

	content, err := d.client.GetTemplate(ctx, name)
	if err != nil {
		resp.Diagnostics.AddError("Unable to read provisionR template "+name, err.Error())
		return
	}

	state.ID = types.StringValue(name)
	state.Name = types.StringValue(name)
	state.Content = types.StringValue(content)

	resp.Diagnostics.Append(resp.State.Set(ctx, &state)...)
}
