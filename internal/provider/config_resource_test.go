package provider

import (
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"testing"

	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/resource"
	"github.com/stretchr/testify/require"
)

func putConfigResponse(t *testing.T, expectedBody string) func(w http.ResponseWriter, req *http.Request) {
	return func(w http.ResponseWriter, req *http.Request) {
		r := require.New(t)
		r.Equal(http.MethodPut, req.Method)
		r.Equal("/api/v1/config", req.URL.Path)

		body, err := io.ReadAll(req.Body)
		r.NoError(err)
		r.JSONEq(expectedBody, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}

func getConfigResponse(t *testing.T, config string) func(w http.ResponseWriter, req *http.Request) {
	return func(w http.ResponseWriter, req *http.Request) {
		r := require.New(t)
		r.Equal(http.MethodGet, req.Method)
		r.Equal("/api/v1/config", req.URL.Path)
		r.True(json.Valid([]byte(config)))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(config))
	}
}

func TestConfigResource_Create(t *testing.T) {
	configureOnce.Reset()

	const stored = `{"target_os":"Ubuntu25.04","generate_passwords":true,"values":{"hostname":"node1"}}`

	testURL, expectRequest, close := mockProvisionrAPI(t)
	defer close()
	t.Setenv("PROVISIONR_API_TOKEN", "")
	t.Setenv("PROVISIONR_BASE_URL", testURL)

	// Provider configure
	expectRequest(healthResponse(t, "healthy"))
	// Create: PUT /config with generate_passwords defaulted
	expectRequest(putConfigResponse(t, stored))
	// Read after create
	expectRequest(getConfigResponse(t, stored))
	// Destroy only removes the resource from state

	resource.Test(t, resource.TestCase{
		IsUnitTest:               true,
		ProtoV6ProviderFactories: testProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: `
				resource "provisionr_config" "test" {
					target_os   = "Ubuntu25.04"
					values_json = jsonencode({ hostname = "node1" })
				}`,
				Check: resource.ComposeAggregateTestCheckFunc(
					resource.TestCheckResourceAttr("provisionr_config.test", "id", "config"),
					resource.TestCheckResourceAttr("provisionr_config.test", "target_os", "Ubuntu25.04"),
					resource.TestCheckResourceAttr("provisionr_config.test", "generate_passwords", "true"),
					resource.TestCheckResourceAttr("provisionr_config.test", "values_json", `{"hostname":"node1"}`),
				),
			},
		},
	})
}

func TestConfigResource_DefaultValues(t *testing.T) {
	configureOnce.Reset()

	const stored = `{"target_os":"Rocky9","generate_passwords":false,"values":{}}`

	testURL, expectRequest, close := mockProvisionrAPI(t)
	defer close()
	t.Setenv("PROVISIONR_API_TOKEN", "")
	t.Setenv("PROVISIONR_BASE_URL", testURL)

	expectRequest(healthResponse(t, "healthy"))
	expectRequest(putConfigResponse(t, stored))
	expectRequest(getConfigResponse(t, stored))

	resource.Test(t, resource.TestCase{
		IsUnitTest:               true,
		ProtoV6ProviderFactories: testProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: `
				resource "provisionr_config" "test" {
					target_os          = "Rocky9"
					generate_passwords = false
				}`,
				Check: resource.ComposeAggregateTestCheckFunc(
					resource.TestCheckResourceAttr("provisionr_config.test", "generate_passwords", "false"),
					resource.TestCheckResourceAttr("provisionr_config.test", "values_json", "{}"),
				),
			},
		},
	})
}

func TestConfigResource_Update(t *testing.T) {
	configureOnce.Reset()

	const (
		created = `{"target_os":"Rocky9","generate_passwords":true,"values":{"ntp":"pool.ntp.org"}}`
		updated = `{"target_os":"Ubuntu25.04","generate_passwords":true,"values":{"ntp":"time.example.com","role":"worker"}}`
	)

	testURL, expectRequest, close := mockProvisionrAPI(t)
	defer close()
	t.Setenv("PROVISIONR_API_TOKEN", "")
	t.Setenv("PROVISIONR_BASE_URL", testURL)

	// Provider configure
	expectRequest(healthResponse(t, "healthy"))

	// --- Step 1: Create ---
	expectRequest(putConfigResponse(t, created))
	// Read after create
	expectRequest(getConfigResponse(t, created))

	// --- Step 2: Update target OS and values ---
	// Read before update (plan)
	expectRequest(getConfigResponse(t, created))
	// Update: PUT /config with the whole document
	expectRequest(putConfigResponse(t, updated))
	// Read after update
	expectRequest(getConfigResponse(t, updated))

	resource.Test(t, resource.TestCase{
		IsUnitTest:               true,
		ProtoV6ProviderFactories: testProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: `
				resource "provisionr_config" "test" {
					target_os   = "Rocky9"
					values_json = jsonencode({ ntp = "pool.ntp.org" })
				}`,
				Check: resource.ComposeAggregateTestCheckFunc(
					resource.TestCheckResourceAttr("provisionr_config.test", "target_os", "Rocky9"),
					resource.TestCheckResourceAttr("provisionr_config.test", "values_json", `{"ntp":"pool.ntp.org"}`),
				),
			},
			{
				Config: `
				resource "provisionr_config" "test" {
					target_os   = "Ubuntu25.04"
					values_json = jsonencode({ ntp = "time.example.com", role = "worker" })
				}`,
				Check: resource.ComposeAggregateTestCheckFunc(
					resource.TestCheckResourceAttr("provisionr_config.test", "target_os", "Ubuntu25.04"),
					resource.TestCheckResourceAttr("provisionr_config.test", "values_json", `{"ntp":"time.example.com","role":"worker"}`),
				),
			},
		},
	})
}

func TestConfigResource_InvalidTargetOS(t *testing.T) {
	configureOnce.Reset()
	t.Setenv("PROVISIONR_BASE_URL", "http://127.0.0.1:1")

	resource.Test(t, resource.TestCase{
		IsUnitTest:               true,
		ProtoV6ProviderFactories: testProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: `
				resource "provisionr_config" "test" {
					target_os = "Debian12"
				}`,
				ExpectError: regexp.MustCompile(`value must be one of`),
			},
		},
	})
}

func TestConfigResource_InvalidValuesJSON(t *testing.T) {
	configureOnce.Reset()
	t.Setenv("PROVISIONR_BASE_URL", "http://127.0.0.1:1")

	resource.Test(t, resource.TestCase{
		IsUnitTest:               true,
		ProtoV6ProviderFactories: testProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: `
				resource "provisionr_config" "test" {
					target_os   = "Rocky9"
					values_json = "{bad"
				}`,
				ExpectError: regexp.MustCompile(`Invalid JSON`),
			},
		},
	})
}

func TestProvider_UnhealthyBackend(t *testing.T) {
	configureOnce.Reset()

	testURL, expectRequest, close := mockProvisionrAPI(t)
	defer close()
	t.Setenv("PROVISIONR_API_TOKEN", "")
	t.Setenv("PROVISIONR_BASE_URL", testURL)

	expectRequest(healthResponse(t, "degraded"))

	resource.Test(t, resource.TestCase{
		IsUnitTest:               true,
		ProtoV6ProviderFactories: testProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: `
				resource "provisionr_config" "test" {
					target_os = "Rocky9"
				}`,
				ExpectError: regexp.MustCompile(`provisionR is not healthy`),
			},
		},
	})
}
