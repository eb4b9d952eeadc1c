package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/terraform-plugin-framework-timeouts/resource/timeouts"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/boolplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"
	sdkresource "github.com/hashicorp/terraform-plugin-sdk/v2/helper/resource"

	"github.com/provisionr/provisionr-console/internal/provisionr"
	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

const defaultUploadTimeout = 2 * time.Minute

// Ensure provider defined types fully satisfy framework interfaces.
var _ resource.Resource = &TemplateResource{}
var _ resource.ResourceWithImportState = &TemplateResource{}
var _ resource.ResourceWithConfigure = &TemplateResource{}

func NewTemplateResource() resource.Resource {
	return &TemplateResource{}
}

// TemplateResource manages one kickstart template.
type TemplateResource struct {
	client *provisionr.Client
}

// TemplateResourceModel describes the resource data model.
type TemplateResourceModel struct {
	ID           types.String   `tfsdk:"id"`
	Name         types.String   `tfsdk:"name"`
	Content      types.String   `tfsdk:"content"`
	UseAsDefault types.Bool     `tfsdk:"use_as_default"`
	Timeouts     timeouts.Value `tfsdk:"timeouts"`
}

func (r *TemplateResource) Metadata(ctx context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_template"
}

func (r *TemplateResource) Schema(ctx context.Context, req resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		Description: "Uploads a Jinja2 kickstart template to provisionR.",
		MarkdownDescription: "Uploads a Jinja2 kickstart template to provisionR.\n\n" +
			"The backend has no delete operation: destroying the resource only removes it from state " +
			"and the template file stays on the backend.",
		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				Computed:            true,
				Description:         "Same as name.",
				MarkdownDescription: "Same as `name`.",
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"name": schema.StringAttribute{
				Required:            true,
				Description:         "Template name. Stored on the backend as <name>.ks.j2.",
				MarkdownDescription: "Template name. Stored on the backend as `<name>.ks.j2`.",
				Validators: []validator.String{
					templateNameValidator{},
				},
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"content": schema.StringAttribute{
				Required:            true,
				Description:         "Template source, usually read with file() or templatefile().",
				MarkdownDescription: "Template source, usually read with `file()`.",
			},
			"use_as_default": schema.BoolAttribute{
				Optional:            true,
				Computed:            true,
				Description:         "Also install the template as the default template. Defaults to false.",
				MarkdownDescription: "Also install the template as the default template. Defaults to `false`.",
				PlanModifiers: []planmodifier.Bool{
					boolplanmodifier.UseStateForUnknown(),
				},
			},
		},
		Blocks: map[string]schema.Block{
			"timeouts": timeouts.Block(ctx, timeouts.Opts{
				Create: true,
				Update: true,
			}),
		},
	}
}

func (r *TemplateResource) Configure(ctx context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	if req.ProviderData == nil {
		return
	}

	r.client = clientFromProviderData(req.ProviderData, &resp.Diagnostics)
}

func (r *TemplateResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var data TemplateResourceModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	createTimeout, diags := data.Timeouts.Create(ctx, defaultUploadTimeout)
	resp.Diagnostics.Append(diags...)
	if resp.Diagnostics.HasError() {
		return
	}

	if err := r.upload(ctx, &data, createTimeout); err != nil {
		resp.Diagnostics.AddError("Error uploading template", err.Error())
		return
	}

	tflog.Trace(ctx, "created template resource", map[string]interface{}{
		"name":           data.Name.ValueString(),
		"use_as_default": data.UseAsDefault.ValueBool(),
	})

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *TemplateResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var data TemplateResourceModel

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	content, err := r.client.GetTemplate(ctx, data.Name.ValueString())
	if err != nil {
		if errors.Is(err, provisionr.ErrorNotFound) {
			tflog.Warn(ctx, "provisionR template not found, removing from state", map[string]interface{}{
				"name": data.Name.ValueString(),
			})
			resp.State.RemoveResource(ctx)
			return
		}
		resp.Diagnostics.AddError("Error reading template", err.Error())
		return
	}

	data.ID = data.Name
	data.Content = types.StringValue(content)

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *TemplateResource) Update(ctx context.Context, req resource.UpdateRequest, resp *resource.UpdateResponse) {
	var data TemplateResourceModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	updateTimeout, diags := data.Timeouts.Update(ctx, defaultUploadTimeout)
	resp.Diagnostics.Append(diags...)
	if resp.Diagnostics.HasError() {
		return
	}

	if err := r.upload(ctx, &data, updateTimeout); err != nil {
		resp.Diagnostics.AddError("Error uploading template", err.Error())
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *TemplateResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var data TemplateResourceModel

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	tflog.Warn(ctx, "provisionR templates cannot be deleted, removing from state only", map[string]interface{}{
		"name": data.Name.ValueString(),
	})
}

func (r *TemplateResource) ImportState(ctx context.Context, req resource.ImportStateRequest, resp *resource.ImportStateResponse) {
	resource.ImportStatePassthroughID(ctx, path.Root("name"), req, resp)
	resource.ImportStatePassthroughID(ctx, path.Root("id"), req, resp)
}

// upload sends the template and waits until the backend serves the new
// content.
func (r *TemplateResource) upload(ctx context.Context, data *TemplateResourceModel, timeout time.Duration) error {
	name := data.Name.ValueString()
	content := data.Content.ValueString()
	useAsDefault := !data.UseAsDefault.IsNull() && !data.UseAsDefault.IsUnknown() && data.UseAsDefault.ValueBool()

	_, err := r.client.UploadTemplate(ctx, &provisioning.UploadTemplateRequest{
		TemplateName: name,
		FileName:     name + ".ks.j2",
		Content:      strings.NewReader(content),
		UseAsDefault: useAsDefault,
	})
	if err != nil {
		return err
	}

	err = sdkresource.RetryContext(ctx, timeout, func() *sdkresource.RetryError {
		stored, err := r.client.GetTemplate(ctx, name)
		if errors.Is(err, provisionr.ErrorNotFound) {
			return sdkresource.RetryableError(fmt.Errorf("template %q is not available yet", name))
		}
		if err != nil {
			return sdkresource.NonRetryableError(fmt.Errorf("error retrieving template: %w", err))
		}
		if stored != content {
			return sdkresource.RetryableError(fmt.Errorf("template %q does not serve the uploaded content yet", name))
		}
		return nil
	})
	if err != nil {
		return err
	}

	data.ID = data.Name
	data.UseAsDefault = types.BoolValue(useAsDefault)
	return nil
}
