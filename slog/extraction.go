package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/sd2595101/querylist"
)

var _ querylist.ExtractionService = (*LoggingExtractionService)(nil)

// LoggingExtractionService wraps an ExtractionService with logging.
type LoggingExtractionService struct {
	next   querylist.ExtractionService
	logger *slog.Logger
}

// NewLoggingExtractionService creates a new LoggingExtractionService.
func NewLoggingExtractionService(next querylist.ExtractionService, logger *slog.Logger) *LoggingExtractionService {
	return &LoggingExtractionService{next: next, logger: logger}
}

func (s *LoggingExtractionService) CreateExtraction(ctx context.Context, e *querylist.Extraction) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("create extraction",
			"id", e.ID,
			"source", e.SourceURL,
			"records", len(e.Records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateExtraction(ctx, e)
}

func (s *LoggingExtractionService) FindExtractionByID(ctx context.Context, id string) (e *querylist.Extraction, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find extraction",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindExtractionByID(ctx, id)
}

func (s *LoggingExtractionService) FindExtractions(ctx context.Context, filter querylist.ExtractionFilter) (found []*querylist.Extraction, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find extractions",
			"count", len(found),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindExtractions(ctx, filter)
}

func (s *LoggingExtractionService) DeleteExtraction(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete extraction",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteExtraction(ctx, id)
}
