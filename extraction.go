package querylist

import (
	"context"
	"time"
)

// Extraction is a stored result of running a rule set against one source.
type Extraction struct {
	ID          string     `json:"id"`
	SourceURL   string     `json:"sourceUrl"`
	RulesPath   string     `json:"rulesPath"`
	Range       string     `json:"range"`
	Records     Collection `json:"records"`
	ContentHash string     `json:"contentHash"`
	ExtractedAt time.Time  `json:"extractedAt"`
}

// Validate returns an error if the extraction contains invalid fields.
func (e *Extraction) Validate() error {
	if e.SourceURL == "" {
		return Errorf(EINVALID, "extraction source URL required")
	}
	return nil
}

// ExtractionService represents a service for managing stored extractions.
type ExtractionService interface {
	// CreateExtraction stores a new extraction and assigns its ID.
	CreateExtraction(ctx context.Context, e *Extraction) error

	// FindExtractionByID retrieves an extraction by ID.
	// Returns ENOTFOUND if the extraction does not exist.
	FindExtractionByID(ctx context.Context, id string) (*Extraction, error)

	// FindExtractions retrieves extractions matching the filter,
	// newest first.
	FindExtractions(ctx context.Context, filter ExtractionFilter) ([]*Extraction, error)

	// DeleteExtraction permanently removes an extraction.
	// Returns ENOTFOUND if the extraction does not exist.
	DeleteExtraction(ctx context.Context, id string) error
}

// ExtractionFilter represents a filter for FindExtractions.
type ExtractionFilter struct {
	ID        *string `json:"id"`
	SourceURL *string `json:"sourceUrl"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ExtractionWriter exports an extraction outside the database.
type ExtractionWriter interface {
	WriteExtraction(ctx context.Context, e *Extraction) error
}
