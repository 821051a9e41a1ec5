package mock

import (
	"context"

	"github.com/sd2595101/querylist"
)

var _ querylist.ExtractionService = (*ExtractionService)(nil)

// ExtractionService is a mock implementation of querylist.ExtractionService.
type ExtractionService struct {
	CreateExtractionFn   func(ctx context.Context, e *querylist.Extraction) error
	FindExtractionByIDFn func(ctx context.Context, id string) (*querylist.Extraction, error)
	FindExtractionsFn    func(ctx context.Context, filter querylist.ExtractionFilter) ([]*querylist.Extraction, error)
	DeleteExtractionFn   func(ctx context.Context, id string) error
}

func (s *ExtractionService) CreateExtraction(ctx context.Context, e *querylist.Extraction) error {
	return s.CreateExtractionFn(ctx, e)
}

func (s *ExtractionService) FindExtractionByID(ctx context.Context, id string) (*querylist.Extraction, error) {
	return s.FindExtractionByIDFn(ctx, id)
}

func (s *ExtractionService) FindExtractions(ctx context.Context, filter querylist.ExtractionFilter) ([]*querylist.Extraction, error) {
	return s.FindExtractionsFn(ctx, filter)
}

func (s *ExtractionService) DeleteExtraction(ctx context.Context, id string) error {
	return s.DeleteExtractionFn(ctx, id)
}
