package handlers

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/provisionr/provisionr-console/internal/console"
	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
	"github.com/provisionr/provisionr-console/internal/ui/tui"
)

func TestConsole_PassesProfileMachine(t *testing.T) {
	env := setupTest(t)
	env.settings.Machine.TemplateName = "edge"

	var got provisioning.RenderRequest
	runConsole = func(_ context.Context, api tui.API, machine provisioning.RenderRequest, _ ...console.Option) error {
		assert.Equal(t, *env.globals.BaseURL, api.BaseURL())
		got = machine
		return nil
	}

	require.NoError(t, Console(context.Background(), env.globals, ""))
	assert.Equal(t, "edge", got.TemplateName)
	assert.Equal(t, "00:11:22:33:44:55", got.MAC)
}

func TestConsole_NoTerminal(t *testing.T) {
	env := setupTest(t)
	runConsole = func(context.Context, tui.API, provisioning.RenderRequest, ...console.Option) error {
		return tui.ErrNoTerminal
	}

	err := Console(context.Background(), env.globals, "")
	require.ErrorIs(t, err, tui.ErrNoTerminal)
	assert.Contains(t, err.Error(), "kickstart commands")
}

func TestServeMetrics(t *testing.T) {
	stop, err := serveMetrics("127.0.0.1:0", zap.NewNop())
	require.NoError(t, err)
	stop()

	_, err = serveMetrics("256.0.0.1:0", zap.NewNop())
	assert.Error(t, err)
}

func TestConsole_MetricsEndpoint(t *testing.T) {
	env := setupTest(t)
	addr := freeAddr(t)

	runConsole = func(ctx context.Context, api tui.API, _ provisioning.RenderRequest, opts ...console.Option) error {
		client := console.NewConfigClient(api, opts...)
		client.GetConfig(ctx)

		httpClient := &http.Client{Timeout: 5 * time.Second}
		resp, err := httpClient.Get("http://" + addr + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, strings.Contains(string(body), "provisionr_console_operations_total"), string(body))
		return nil
	}

	require.NoError(t, Console(context.Background(), env.globals, addr))
}

func TestMockServer(t *testing.T) {
	env := setupTest(t)
	out := &lockedBuffer{}
	stdout = out
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- MockServer(ctx, env.globals, "127.0.0.1:0") }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Mock backend listening on http://127.0.0.1:")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("mock server did not stop")
	}
	assert.Contains(t, out.String(), "Served 0 requests")
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}
