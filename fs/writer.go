// Package fs writes extraction results to JSON files.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sd2595101/querylist"
)

// SourceToPath converts a source URL or file path to a relative JSON file
// path. The source's extension, if any, is replaced.
// Example: https://example.com/news/list.html → news/list.json
func SourceToPath(source string) (string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", err
	}

	p := u.Path
	if u.Scheme == "" {
		p = filepath.ToSlash(source)
	}
	dir := strings.HasSuffix(p, "/")
	// Rooting the path before cleaning keeps ".." from leaving the base
	// directory.
	p = strings.TrimPrefix(path.Clean("/"+p), "/")

	if p == "" {
		return "index.json", nil
	}
	if dir {
		return p + "/index.json", nil
	}
	return strings.TrimSuffix(p, path.Ext(p)) + ".json", nil
}

// Encode renders v as indented JSON without HTML escaping, so extracted
// fragments stay readable.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes v and writes it to path. The data is written to a
// temporary file in the same directory and renamed into place, so readers
// never see a partial file.
func WriteFile(path string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".querylist-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Ensure Writer implements querylist.ExtractionWriter at compile time.
var _ querylist.ExtractionWriter = (*Writer)(nil)

// Writer writes one JSON file per extraction under a base directory,
// mirroring the source's path.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteExtraction writes the extraction's records to disk.
func (w *Writer) WriteExtraction(ctx context.Context, e *querylist.Extraction) error {
	if err := e.Validate(); err != nil {
		return err
	}

	relPath, err := SourceToPath(e.SourceURL)
	if err != nil {
		return err
	}

	records := e.Records
	if records == nil {
		records = querylist.Collection{}
	}
	return WriteFile(filepath.Join(w.baseDir, relPath), records)
}
