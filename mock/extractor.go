package mock

import "github.com/sd2595101/querylist"

var _ querylist.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of querylist.Extractor.
type Extractor struct {
	ExtractFn func(html string) (querylist.Collection, error)
}

func (e *Extractor) Extract(html string) (querylist.Collection, error) {
	return e.ExtractFn(html)
}
