package goquery

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/sd2595101/querylist"
	"golang.org/x/net/html"
)

// extractOne reads a single value from sel according to mode.
//
// Zero matches are not an error: text and html give "", texts gives an
// empty slice, exists gives false and attributes give nil.
func extractOne(mode querylist.ExtractionMode, tags string, sel *goquery.Selection) (any, error) {
	switch mode.Kind {
	case querylist.ModeText:
		inner, err := innerHTML(sel)
		if err != nil {
			return nil, err
		}
		return allowTags(inner, tags, firstNode(sel))

	case querylist.ModeTexts:
		values := make([]any, 0, sel.Length())
		for i := range sel.Nodes {
			inner, err := innerHTML(sel.Eq(i))
			if err != nil {
				return nil, err
			}
			v, err := allowTags(inner, tags, sel.Get(i))
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil

	case querylist.ModeHTML:
		inner, err := innerHTML(sel)
		if err != nil {
			return nil, err
		}
		return stripTags(inner, tags, firstNode(sel))

	case querylist.ModeExists:
		return sel.Length() > 0, nil

	case querylist.ModeAttr:
		// Attribute values are returned raw; tag specs do not apply.
		if v, ok := sel.Attr(mode.Attr); ok {
			return v, nil
		}
		return nil, nil
	}
	return nil, querylist.Errorf(querylist.EINVALID, "unknown extraction mode %q", mode.String())
}

// firstNode returns the element whose inner HTML innerHTML renders, or nil
// for an empty selection.
func firstNode(sel *goquery.Selection) *html.Node {
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}

// innerHTML renders the children of the first node in sel.
func innerHTML(sel *goquery.Selection) (string, error) {
	s, err := sel.Html()
	if err != nil {
		return "", querylist.Errorf(querylist.EINTERNAL, "failed to render HTML: %v", err)
	}
	return s, nil
}
