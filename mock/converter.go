package mock

import "github.com/sd2595101/querylist"

var _ querylist.Converter = (*Converter)(nil)

// Converter is a mock implementation of querylist.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
