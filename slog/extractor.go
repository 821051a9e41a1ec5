package slog

import (
	"log/slog"
	"time"

	"github.com/sd2595101/querylist"
)

// Ensure LoggingExtractor implements querylist.Extractor.
var _ querylist.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor and logs record counts.
type LoggingExtractor struct {
	next   querylist.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next querylist.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor.
func (e *LoggingExtractor) Extract(html string) (records querylist.Collection, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"bytes", len(html),
			"records", len(records),
			"duration", time.Since(begin),
		}
		if err != nil {
			attrs = append(attrs, "code", querylist.ErrorCode(err), "err", err)
			e.logger.Warn("extract", attrs...)
			return
		}
		e.logger.Info("extract", attrs...)
	}(time.Now())
	return e.next.Extract(html)
}
