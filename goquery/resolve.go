package goquery

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/sd2595101/querylist"
)

// resolveRule evaluates a rule mode against the elements matched by its
// selector. The result is either a single value or, when fanning out, a
// []any holding one value per element in document order.
func resolveRule(mode querylist.RuleMode, tags string, sel *goquery.Selection) (any, error) {
	if !fanOut(mode, sel.Length()) {
		return resolveFlat(mode, tags, sel)
	}

	values := make([]any, 0, sel.Length())
	for i := range sel.Nodes {
		v, err := resolveFlat(mode, tags, sel.Eq(i))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// fanOut decides whether a rule produces one value per matched element:
//
//	mapping mode            more than one match
//	texts, exists           never (they handle multiplicity themselves)
//	other scalar modes      RepeatMarker present, or more than one match
//
// The match count counts as much as the marker does, so a plain "text"
// rule that happens to match twice yields a slice.
func fanOut(mode querylist.RuleMode, count int) bool {
	if mode.IsFields() {
		return count > 1
	}
	switch mode.Scalar().Kind {
	case querylist.ModeTexts, querylist.ModeExists:
		return false
	}
	return mode.Repeat() || count > 1
}

// resolveFlat evaluates mode once against sel as a whole.
func resolveFlat(mode querylist.RuleMode, tags string, sel *goquery.Selection) (any, error) {
	if !mode.IsFields() {
		return extractOne(mode.Scalar(), tags, sel)
	}

	rec := querylist.NewRecord()
	for _, f := range mode.Fields() {
		v, err := extractOne(f.Mode, tags, sel)
		if err != nil {
			return nil, err
		}
		rec.Set(f.Name, v)
	}
	return rec, nil
}
