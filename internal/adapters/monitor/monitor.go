// Package monitor is the monitoring sink: per-run metrics appended as
// JSON lines to a local file
package monitor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	perr "courtside/internal/platform/errors"
	"courtside/internal/platform/logger"
	"courtside/internal/services/tracker/domain"
)

// Sink appends RunMetrics objects to a JSON-lines file
type Sink struct {
	path string
	log  logger.Logger
}

// New constructs a Sink writing to path, creating parent dirs if needed
func New(path string) (*Sink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "monitor mkdir %s", dir)
		}
	}
	return &Sink{path: path, log: *logger.Named("monitor")}, nil
}

// Record implements domain.MonitorPort
func (s *Sink) Record(_ context.Context, m domain.RunMetrics) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "monitor open %s", s.path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if err := enc.Encode(m); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "monitor encode metrics")
	}

	s.log.Info().
		Str("run_id", m.RunID).
		Int("posts_processed", m.PostsProcessed).
		Int("posts_skipped", m.PostsSkipped).
		Int("exported", m.Exported).
		Int64("duration_ms", m.DurationMS).
		Msg("run metrics recorded")
	return nil
}
