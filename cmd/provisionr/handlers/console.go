package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/provisionr/provisionr-console/internal/console"
	"github.com/provisionr/provisionr-console/internal/ui/tui"
)

// Console starts the interactive operator console. A non-empty metricsAddr
// serves the console's Prometheus metrics while it runs.
func Console(ctx context.Context, g Globals, metricsAddr string) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	if metricsAddr != "" {
		stop, err := serveMetrics(metricsAddr, s.logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	opts := s.consoleOptions(console.WithMetrics(metricsAddr != ""))
	err = runConsole(ctx, s.backend, s.settings.Machine.RenderRequest(), opts...)
	if errors.Is(err, tui.ErrNoTerminal) {
		return fmt.Errorf("%w; use the config, template and kickstart commands instead", err)
	}
	return err
}

// serveMetrics exposes console.Registry on /metrics and returns a function
// that stops the server.
func serveMetrics(addr string, logger *zap.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(console.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
