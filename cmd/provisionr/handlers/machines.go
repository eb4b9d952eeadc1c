package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// now is replaced in tests.
var now = time.Now

// MachinesExport downloads the machine password export as CSV.
func MachinesExport(ctx context.Context, g Globals, output string, archive bool) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	data, err := s.backend.ExportMachinePasswords(ctx)
	if err != nil {
		return fmt.Errorf("failed to export machines: %w", err)
	}
	s.logger.Debug("machine export downloaded", zap.Int("bytes", len(data)))

	if err := writeOutput(output, data); err != nil {
		return err
	}
	if archive {
		name := fmt.Sprintf("exports/machines-%s.csv", now().UTC().Format("20060102T150405Z"))
		return s.archive(ctx, name, "text/csv", data)
	}
	return nil
}
