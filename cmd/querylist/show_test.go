package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/sd2595101/querylist"
	main "github.com/sd2595101/querylist/cmd/querylist"
	"github.com/sd2595101/querylist/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints records as JSON in field order", func(t *testing.T) {
		t.Parallel()

		extractions := &mock.ExtractionService{
			FindExtractionByIDFn: func(_ context.Context, id string) (*querylist.Extraction, error) {
				return &querylist.Extraction{
					ID:        id,
					SourceURL: "https://example.com/news",
					Records: querylist.Collection{
						querylist.NewRecord(
							querylist.Field{Name: "title", Value: "<b>First</b>"},
							querylist.Field{Name: "link", Value: "/a"},
						),
					},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:         context.Background(),
			Stdout:      stdout,
			Stderr:      &bytes.Buffer{},
			Extractions: extractions,
		}

		err := (&main.ShowCmd{ID: "ext-123"}).Run(deps)

		require.NoError(t, err)
		output := stdout.String()
		assert.Contains(t, output, `"title": "<b>First</b>"`)
		assert.Less(t, bytes.Index(stdout.Bytes(), []byte("title")), bytes.Index(stdout.Bytes(), []byte("link")))
	})

	t.Run("prints empty array for extraction without records", func(t *testing.T) {
		t.Parallel()

		extractions := &mock.ExtractionService{
			FindExtractionByIDFn: func(_ context.Context, id string) (*querylist.Extraction, error) {
				return &querylist.Extraction{ID: id, SourceURL: "a.html"}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:         context.Background(),
			Stdout:      stdout,
			Stderr:      &bytes.Buffer{},
			Extractions: extractions,
		}

		err := (&main.ShowCmd{ID: "ext-123"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "[]\n", stdout.String())
	})

	t.Run("reports unknown ID", func(t *testing.T) {
		t.Parallel()

		extractions := &mock.ExtractionService{
			FindExtractionByIDFn: func(_ context.Context, id string) (*querylist.Extraction, error) {
				return nil, querylist.Errorf(querylist.ENOTFOUND, "extraction not found")
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:         context.Background(),
			Stdout:      &bytes.Buffer{},
			Stderr:      stderr,
			Extractions: extractions,
		}

		err := (&main.ShowCmd{ID: "missing"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, querylist.ENOTFOUND, querylist.ErrorCode(err))
		assert.Contains(t, stderr.String(), `extraction "missing" not found`)
	})
}
