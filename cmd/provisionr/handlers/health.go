package handlers

import (
	"context"
	"encoding/json"
	"fmt"
)

// Health checks that the backend is reachable and healthy.
func Health(ctx context.Context, g Globals, jsonOutput bool) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	status, err := s.backend.Health(ctx)
	if err != nil {
		return fmt.Errorf("backend at %s is unreachable: %w", s.backend.BaseURL(), err)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
	} else {
		fmt.Fprintf(stdout, "%s at %s: %s\n", status.Service, s.backend.BaseURL(), status.Status)
	}

	if !status.Healthy() {
		return fmt.Errorf("backend reports status %q", status.Status)
	}
	return nil
}
