package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient creates a Client backed by a test HTTP server.
// The handler receives real S3 XML-protocol requests.
func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := s3.New(s3.Options{
		Region:       "eu-central-1",
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		HTTPClient: &http.Client{
			Transport: &http.Transport{},
		},
	})

	return &Client{s3: client}
}

func xmlResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(context.Background(), Options{
		Endpoint:     "https://minio.lab:9000",
		Region:       "us-east-1",
		AccessKey:    "key",
		SecretKey:    "secret",
		UsePathStyle: true,
	})
	require.NoError(t, err)
	assert.NotNil(t, client.s3)
}

func TestArchiver_Store(t *testing.T) {
	var (
		mu      sync.Mutex
		path    string
		ctype   string
		payload []byte
	)
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		require.Equal(t, http.MethodPut, r.Method)
		path = r.URL.Path
		ctype = r.Header.Get("Content-Type")
		payload, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))

	uri, err := NewArchiver(client, "kickstarts", "provisionr/").
		Store(context.Background(), "renders/00-11-22-33-44-55.ks", "text/plain", []byte("lang en_US"))
	require.NoError(t, err)

	assert.Equal(t, "s3://kickstarts/provisionr/renders/00-11-22-33-44-55.ks", uri)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/kickstarts/provisionr/renders/00-11-22-33-44-55.ks", path)
	assert.Equal(t, "text/plain", ctype)
	assert.Equal(t, "lang en_US", string(payload))
}

func TestPutObject_Error(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, http.StatusForbidden, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
	}))

	err := client.PutObject(context.Background(), "kickstarts", "a.ks", "text/plain", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to put object a.ks in bucket kickstarts")
}

func TestBucketExists(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "exists", status: http.StatusOK, want: true},
		{name: "missing", status: http.StatusNotFound, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodHead, r.Method)
				w.WriteHeader(tt.status)
			}))

			got, err := client.BucketExists(context.Background(), "kickstarts")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsNotFoundError(t *testing.T) {
	assert.False(t, isNotFoundError(nil))
	assert.False(t, isNotFoundError(io.EOF))
}
