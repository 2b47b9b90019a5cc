package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pinexport"
)

// Ensure LoggingExporter implements pinexport.Exporter.
var _ pinexport.Exporter = (*LoggingExporter)(nil)

// LoggingExporter wraps an Exporter with logging.
type LoggingExporter struct {
	next   pinexport.Exporter
	logger *slog.Logger
}

// NewLoggingExporter creates a new LoggingExporter.
func NewLoggingExporter(next pinexport.Exporter, logger *slog.Logger) *LoggingExporter {
	return &LoggingExporter{next: next, logger: logger}
}

// Export delegates to the wrapped exporter and logs the result.
func (e *LoggingExporter) Export(ctx context.Context, records []pinexport.Record) (path string, err error) {
	defer func(begin time.Time) {
		e.logger.Info("export",
			"path", path,
			"rows", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Export(ctx, records)
}
