package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/sd2595101/querylist"
)

// Compile-time interface verification.
var _ querylist.ExtractionService = (*ExtractionService)(nil)

// ExtractionService implements querylist.ExtractionService using SQLite.
type ExtractionService struct {
	db *DB
}

// NewExtractionService creates a new ExtractionService.
func NewExtractionService(db *DB) *ExtractionService {
	return &ExtractionService{db: db}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content []byte) string {
	h := xxhash.Sum64(content)
	b := make([]byte, 8)
	b[0] = byte(h >> 56)
	b[1] = byte(h >> 48)
	b[2] = byte(h >> 40)
	b[3] = byte(h >> 32)
	b[4] = byte(h >> 24)
	b[5] = byte(h >> 16)
	b[6] = byte(h >> 8)
	b[7] = byte(h)
	return hex.EncodeToString(b)
}

// CreateExtraction stores a new extraction. The ID, timestamp and content
// hash of the encoded records are assigned here.
func (s *ExtractionService) CreateExtraction(ctx context.Context, e *querylist.Extraction) error {
	if err := e.Validate(); err != nil {
		return err
	}

	records := e.Records
	if records == nil {
		records = querylist.Collection{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	e.ID = uuid.New().String()
	e.ExtractedAt = time.Now().UTC()
	e.ContentHash = hashContent(data)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO extractions (id, source_url, rules_path, range_selector, records, record_count, content_hash, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.SourceURL, e.RulesPath, e.Range, string(data), len(records), e.ContentHash,
		e.ExtractedAt.Format(time.RFC3339))

	return err
}

// FindExtractionByID retrieves an extraction by ID.
func (s *ExtractionService) FindExtractionByID(ctx context.Context, id string) (*querylist.Extraction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_url, rules_path, range_selector, records, content_hash, extracted_at
		FROM extractions
		WHERE id = ?
	`, id)

	e, err := scanExtraction(row)
	if err == sql.ErrNoRows {
		return nil, querylist.Errorf(querylist.ENOTFOUND, "extraction not found")
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// FindExtractions retrieves extractions matching the filter, newest first.
func (s *ExtractionService) FindExtractions(ctx context.Context, filter querylist.ExtractionFilter) ([]*querylist.Extraction, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, source_url, rules_path, range_selector, records, content_hash, extracted_at FROM extractions WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.SourceURL != nil {
		query.WriteString(" AND source_url = ?")
		args = append(args, *filter.SourceURL)
	}

	// rowid breaks ties between extractions stored within the same second.
	query.WriteString(" ORDER BY extracted_at DESC, rowid DESC")

	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var extractions []*querylist.Extraction
	for rows.Next() {
		e, err := scanExtraction(rows)
		if err != nil {
			return nil, err
		}
		extractions = append(extractions, e)
	}

	return extractions, rows.Err()
}

// DeleteExtraction permanently removes an extraction.
func (s *ExtractionService) DeleteExtraction(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM extractions WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return querylist.Errorf(querylist.ENOTFOUND, "extraction not found")
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExtraction(row scanner) (*querylist.Extraction, error) {
	var e querylist.Extraction
	var records, extractedAt string

	if err := row.Scan(&e.ID, &e.SourceURL, &e.RulesPath, &e.Range, &records,
		&e.ContentHash, &extractedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(records), &e.Records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	var err error
	e.ExtractedAt, err = parseRFC3339(extractedAt, "extracted_at")
	if err != nil {
		return nil, err
	}

	return &e, nil
}
