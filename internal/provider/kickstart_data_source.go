package provider

import (
	"context"

	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/provisionr/provisionr-console/internal/provisionr"
	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

// Ensure provider defined types fully satisfy framework interfaces
var _ datasource.DataSource = &KickstartDataSource{}

func NewKickstartDataSource() datasource.DataSource {
	return &KickstartDataSource{}
}

// KickstartDataSource renders a kickstart for one machine.
type KickstartDataSource struct {
	client *provisionr.Client
}

type KickstartDataSourceModel struct {
	ID           types.String `tfsdk:"id"`
	TemplateName types.String `tfsdk:"template_name"`
	MAC          types.String `tfsdk:"mac"`
	UUID         types.String `tfsdk:"uuid"`
	Serial       types.String `tfsdk:"serial"`
	Params       types.Map    `tfsdk:"params"`
	Rendered     types.String `tfsdk:"rendered"`
}

func (d *KickstartDataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_kickstart"
}

func (d *KickstartDataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	machineID := []validator.String{stringvalidator.LengthAtLeast(1)}

	resp.Schema = schema.Schema{
		MarkdownDescription: "Renders a kickstart for one machine.\n\n" +
			"The backend records every rendered machine and, when `generate_passwords` is enabled, " +
			"generates its passwords on first render.",
		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "The machine MAC address.",
			},
			"template_name": schema.StringAttribute{
				Optional:            true,
				MarkdownDescription: "Template to render. The backend default template when omitted.",
				Validators: []validator.String{
					templateNameValidator{},
				},
			},
			"mac": schema.StringAttribute{
				Required:            true,
				MarkdownDescription: "Machine MAC address.",
				Validators:          machineID,
			},
			"uuid": schema.StringAttribute{
				Required:            true,
				MarkdownDescription: "Machine UUID.",
				Validators:          machineID,
			},
			"serial": schema.StringAttribute{
				Required:            true,
				MarkdownDescription: "Machine serial number.",
				Validators:          machineID,
			},
			"params": schema.MapAttribute{
				Optional:            true,
				ElementType:         types.StringType,
				MarkdownDescription: "Extra template variables. They cannot override `mac`, `uuid`, `serial` or `template_name`.",
			},
			"rendered": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "The rendered kickstart.",
			},
		},
	}
}

func (d *KickstartDataSource) Configure(ctx context.Context, req datasource.ConfigureRequest, resp *datasource.ConfigureResponse) {
	// Prevent panic if the provider has not been configured.
	if req.ProviderData == nil {
		return
	}

	d.client = clientFromProviderData(req.ProviderData, &resp.Diagnostics)
}

func (d *KickstartDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	var state KickstartDataSourceModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &state)...)
	if resp.Diagnostics.HasError() {
		return
	}

	renderReq := &provisioning.RenderRequest{
		MAC:          state.MAC.ValueString(),
		UUID:         state.UUID.ValueString(),
		Serial:       state.Serial.ValueString(),
		TemplateName: state.TemplateName.ValueString(),
	}
	if !state.Params.IsNull() && !state.Params.IsUnknown() {
		params := make(map[string]string)
		resp.Diagnostics.Append(state.Params.ElementsAs(ctx, &params, false)...)
		if resp.Diagnostics.HasError() {
			return
		}
		renderReq.Extra = params
	}

	rendered, err := d.client.RenderKickstart(ctx, renderReq)
	if err != nil {
		resp.Diagnostics.AddError("Unable to render kickstart from template "+renderReq.EffectiveTemplateName(), err.Error())
		return
	}

	tflog.Debug(ctx, "rendered kickstart", map[string]interface{}{
		"mac":      renderReq.MAC,
		"template": renderReq.EffectiveTemplateName(),
	})

	state.ID = state.MAC
	state.Rendered = types.StringValue(rendered)

	resp.Diagnostics.Append(resp.State.Set(ctx, &state)...)
}
