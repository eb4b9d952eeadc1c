package provider

import (
	"regexp"
	"testing"

	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/resource"

	"github.com/provisionr/provisionr-console/internal/mockbackend"
)

func TestTemplateDataSource(t *testing.T) {
	srv := startBackend(t)
	srv.SetTemplate("edge", "lang de_DE\n")

	resource.Test(t, resource.TestCase{
		IsUnitTest:               true,
		ProtoV6ProviderFactories: testProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: `
				data "provisionr_template" "default" {}

				data "provisionr_template" "edge" {
					name = "edge"
				}`,
				Check: resource.ComposeAggregateTestCheckFunc(
					resource.TestCheckResourceAttr("data.provisionr_template.default", "name", "default"),
					resource.TestCheckResourceAttr("data.provisionr_template.default", "content", mockbackend.DefaultTemplate),
					resource.TestCheckResourceAttr("data.provisionr_template.edge", "id", "edge"),
					resource.TestCheckResourceAttr("data.provisionr_template.edge", "content", "lang de_DE\n"),
				),
			},
		},
	})
}

func TestTemplateDataSource_NotFound(t *testing.T) {
	startBackend(t)

	resource.Test(t, resource.TestCase{
		IsUnitTest:               true,
		ProtoV6ProviderFactories: testProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: `
				data "provisionr_template" "missing" {
					name = "missing"
				}`,
				ExpectError: regexp.MustCompile(`Unable to read provisionR template missing`),
			},
		},
	})
}

func TestKickstartDataSource(t *testing.T) {
	srv := startBackend(t)
	srv.SetTemplate("edge", "{{ mac }} {{ uuid }} {{ serial }} {{ hostname }} {{ target_os }}")

	resource.Test(t, resource.TestCase{
		IsUnitTest:               true,
		ProtoV6ProviderFactories: testProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: `
				data "provisionr_kickstart" "node" {
					template_name = "edge"
					mac           = "52:54:00:12:34:56"
					uuid          = "4c4c4544-0042"
					serial        = "SN123"
					params = {
						hostname = "node1"
						mac      = "ignored"
					}
				}`,
				Check: resource.ComposeAggregateTestCheckFunc(
					resource.TestCheckResourceAttr("data.provisionr_kickstart.node", "id", "52:54:00:12:34:56"),
					resource.TestCheckResourceAttr("data.provisionr_kickstart.node", "rendered",
						"52:54:00:12:34:56 4c4c4544-0042 SN123 node1 Rocky9"),
				),
			},
		},
	})
}

func TestKickstartDataSource_MissingTemplate(t *testing.T) {
	startBackend(t)

	resource.Test(t, resource.TestCase{
		IsUnitTest:               true,
		ProtoV6ProviderFactories: testProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: `
				data "provisionr_kickstart" "node" {
					template_name = "edge"
					mac           = "52:54:00:12:34:56"
					uuid          = "4c4c4544-0042"
					serial        = "SN123"
				}`,
				ExpectError: regexp.MustCompile(`Unable to render kickstart from template edge`),
			},
		},
	})
}
