package handlers

import (
	"context"
	"fmt"

	"github.com/provisionr/provisionr-console/internal/mockbackend"
)

// MockServer runs an in-memory provisioning backend on addr until ctx is
// cancelled.
func MockServer(ctx context.Context, g Globals, addr string) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	srv := mockbackend.New(mockbackend.WithLogger(s.logger))
	baseURL, err := srv.Start(addr)
	if err != nil {
		return fmt.Errorf("failed to start mock backend: %w", err)
	}
	fmt.Fprintf(stdout, "Mock backend listening on %s (Ctrl+C to stop)\n", baseURL)

	<-ctx.Done()
	if err := srv.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop mock backend: %w", err)
	}
	fmt.Fprintf(stdout, "Served %d requests\n", srv.Requests())
	return nil
}
