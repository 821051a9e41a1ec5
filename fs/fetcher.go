package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/sd2595101/querylist"
)

var _ querylist.Fetcher = (*Fetcher)(nil)

// Fetcher reads HTML from local files so saved pages can be extracted the
// same way as remote ones.
type Fetcher struct{}

// NewFetcher creates a new Fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{}
}

// Fetch returns the contents of the file at path.
// Returns ENOTFOUND if the file does not exist.
func (f *Fetcher) Fetch(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", querylist.Errorf(querylist.ENOTFOUND, "file %q not found", path)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Close is a no-op.
func (f *Fetcher) Close() error {
	return nil
}
