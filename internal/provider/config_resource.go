package provider

import (
	"context"

	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/boolplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/samber/lo"

	"github.com/provisionr/provisionr-console/internal/jsonvalue"
	"github.com/provisionr/provisionr-console/internal/provisionr"
	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

// configID is the ID of the single, service-wide configuration.
const configID = "config"

// Ensure provider defined types fully satisfy framework interfaces.
var _ resource.Resource = &ConfigResource{}
var _ resource.ResourceWithImportState = &ConfigResource{}
var _ resource.ResourceWithConfigure = &ConfigResource{}

func NewConfigResource() resource.Resource {
	return &ConfigResource{}
}

// ConfigResource manages the provisioning configuration.
type ConfigResource struct {
	client *provisionr.Client
}

// ConfigResourceModel describes the resource data model.
type ConfigResourceModel struct {
	ID                types.String `tfsdk:"id"`
	TargetOS          types.String `tfsdk:"target_os"`
	GeneratePasswords types.Bool   `tfsdk:"generate_passwords"`
	ValuesJSON        types.String `tfsdk:"values_json"`
}

func (r *ConfigResource) Metadata(ctx context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_config"
}

func (r *ConfigResource) Schema(ctx context.Context, req resource.SchemaRequest, resp *resource.SchemaResponse) {
	targetOS := lo.Map(provisioning.TargetOSValues, func(t provisioning.TargetOS, _ int) string { return string(t) })

	resp.Schema = schema.Schema{
		Description: "Manages the provisioning configuration of a provisionR backend. " +
			"The configuration is service-wide: declare at most one provisionr_config per backend.",
		MarkdownDescription: "Manages the provisioning configuration of a provisionR backend.\n\n" +
			"The configuration is service-wide: declare at most one `provisionr_config` per backend. " +
			"Destroying the resource only removes it from state; the backend keeps its last configuration.",
		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				Computed:            true,
				Description:         "Always \"config\".",
				MarkdownDescription: "Always `config`.",
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"target_os": schema.StringAttribute{
				Required:            true,
				Description:         "The operating system family kickstarts are rendered for (Rocky9 or Ubuntu25.04).",
				MarkdownDescription: "The operating system family kickstarts are rendered for (`Rocky9` or `Ubuntu25.04`).",
				Validators: []validator.String{
					stringvalidator.OneOf(targetOS...),
				},
			},
			"generate_passwords": schema.BoolAttribute{
				Optional:            true,
				Computed:            true,
				Description:         "Generate per-machine root, user and LUKS passwords at render time. Defaults to true.",
				MarkdownDescription: "Generate per-machine root, user and LUKS passwords at render time. Defaults to `true`.",
				PlanModifiers: []planmodifier.Bool{
					boolplanmodifier.UseStateForUnknown(),
				},
			},
			"values_json": schema.StringAttribute{
				Optional:            true,
				Computed:            true,
				Description:         "Custom values available to templates, as a JSON document. Defaults to {}.",
				MarkdownDescription: "Custom values available to templates, as a JSON document (use `jsonencode()`). Defaults to `{}`.",
				Validators: []validator.String{
					jsonValidator{},
				},
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
		},
	}
}

func (r *ConfigResource) Configure(ctx context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	if req.ProviderData == nil {
		return
	}

	r.client = clientFromProviderData(req.ProviderData, &resp.Diagnostics)
}

func (r *ConfigResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var data ConfigResourceModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if !r.write(ctx, &data, "Error creating configuration", resp.Diagnostics.AddError) {
		return
	}

	tflog.Trace(ctx, "created config resource", map[string]interface{}{
		"target_os": data.TargetOS.ValueString(),
	})

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *ConfigResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var data ConfigResourceModel

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	config, err := r.client.GetConfig(ctx)
	if err != nil {
		resp.Diagnostics.AddError("Error reading configuration", err.Error())
		return
	}

	data.ID = types.StringValue(configID)
	data.TargetOS = types.StringValue(string(config.TargetOS))
	data.GeneratePasswords = types.BoolValue(config.GeneratePasswords)
	data.ValuesJSON = valuesJSON(data.ValuesJSON, config.Values)

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *ConfigResource) Update(ctx context.Context, req resource.UpdateRequest, resp *resource.UpdateResponse) {
	var data ConfigResourceModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if !r.write(ctx, &data, "Error updating configuration", resp.Diagnostics.AddError) {
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *ConfigResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	tflog.Warn(ctx, "provisionR configuration cannot be deleted, removing from state only")
}

func (r *ConfigResource) ImportState(ctx context.Context, req resource.ImportStateRequest, resp *resource.ImportStateResponse) {
	resource.ImportStatePassthroughID(ctx, path.Root("id"), req, resp)
}

// write stores data on the backend and fills the computed attributes from
// the stored configuration.
func (r *ConfigResource) write(ctx context.Context, data *ConfigResourceModel, summary string, addError func(string, string)) bool {
	values := jsonvalue.EmptyObject()
	if !data.ValuesJSON.IsNull() && !data.ValuesJSON.IsUnknown() && data.ValuesJSON.ValueString() != "" {
		v, err := jsonvalue.ParseString(data.ValuesJSON.ValueString())
		if err != nil {
			addError(summary, "values_json is not valid JSON: "+err.Error())
			return false
		}
		values = v
	}

	generatePasswords := true
	if !data.GeneratePasswords.IsNull() && !data.GeneratePasswords.IsUnknown() {
		generatePasswords = data.GeneratePasswords.ValueBool()
	}

	stored, err := r.client.UpdateConfig(ctx, &provisioning.Config{
		TargetOS:          provisioning.TargetOS(data.TargetOS.ValueString()),
		GeneratePasswords: generatePasswords,
		Values:            values,
	})
	if err != nil {
		addError(summary, err.Error())
		return false
	}

	data.ID = types.StringValue(configID)
	data.GeneratePasswords = types.BoolValue(stored.GeneratePasswords)
	data.ValuesJSON = valuesJSON(data.ValuesJSON, stored.Values)
	return true
}

// valuesJSON keeps the configured text when it is the same JSON document as
// the stored values, so formatting differences do not show up as drift.
func valuesJSON(current types.String, stored jsonvalue.Value) types.String {
	if !current.IsNull() && !current.IsUnknown() {
		if v, err := jsonvalue.ParseString(current.ValueString()); err == nil && v.Equal(stored) {
			return current
		}
	}
	return types.StringValue(stored.String())
}
