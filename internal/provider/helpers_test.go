package provider

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"net/http/httputil"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hashicorp/terraform-plugin-framework/providerserver"
	"github.com/hashicorp/terraform-plugin-go/tfprotov6"
	"github.com/stretchr/testify/require"

	"github.com/provisionr/provisionr-console/internal/mockbackend"
	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

var testProviderFactories = map[string]func() (tfprotov6.ProviderServer, error){
	"provisionr": providerserver.NewProtocol6WithError(New("test")()),
}

func mockProvisionrAPI(t *testing.T) (string, func(http.HandlerFunc), func()) {
	var (
		receivedCalls   int
		expectedCalls   []http.HandlerFunc
		addExpectedCall = func(h http.HandlerFunc) {
			expectedCalls = append(expectedCalls, h)
		}
		r = require.New(t)
	)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		reqDump, err := httputil.DumpRequest(req, true)
		if err != nil {
			log.Fatal(err)
		}
		if receivedCalls >= len(expectedCalls) {
			w.WriteHeader(http.StatusNotFound)
			r.Failf("unexpected call",
				"we have already received %d calls from expected %d.\nunexpected request: %s",
				receivedCalls,
				len(expectedCalls),
				string(reqDump),
			)
		}

		expectedCalls[receivedCalls](w, req)

		receivedCalls++
	}))

	return ts.URL, addExpectedCall, func() {
		ts.Close()
		r.Equal(
			len(expectedCalls),
			receivedCalls,
			"expected one more request",
		)
	}
}

func healthResponse(t *testing.T, status string) func(w http.ResponseWriter, req *http.Request) {
	return func(w http.ResponseWriter, req *http.Request) {
		r := require.New(t)
		r.Equal(http.MethodGet, req.Method)
		r.Equal("/api/health", req.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(provisioning.HealthStatus{Status: status, Service: "provisionR"})
	}
}

// startBackend runs an in-memory backend and points the provider at it.
func startBackend(t *testing.T) *mockbackend.Server {
	t.Helper()
	configureOnce.Reset()

	srv := mockbackend.New()
	baseURL, err := srv.Start("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown() })

	t.Setenv("PROVISIONR_BASE_URL", baseURL)
	t.Setenv("PROVISIONR_API_TOKEN", "")
	return srv
}

// randomTemplateName returns a template name that is unique per test run.
func randomTemplateName(t *testing.T) string {
	t.Helper()
	return "t" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
