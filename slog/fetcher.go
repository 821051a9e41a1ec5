package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/sd2595101/querylist"
)

// Ensure LoggingFetcher implements querylist.Fetcher.
var _ querylist.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   querylist.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next querylist.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the source, response size and duration. Failures are logged
// at warn level with their error code.
func (f *LoggingFetcher) Fetch(ctx context.Context, source string) (html string, err error) {
	defer func(begin time.Time) {
		if err != nil {
			f.logger.Warn("fetch",
				"source", source,
				"duration", time.Since(begin),
				"code", querylist.ErrorCode(err),
				"err", err,
			)
			return
		}
		f.logger.Info("fetch",
			"source", source,
			"bytes", len(html),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return f.next.Fetch(ctx, source)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() (err error) {
	defer func() {
		f.logger.Debug("fetcher closed", "err", err)
	}()
	return f.next.Close()
}
