package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sd2595101/querylist"
	"golang.org/x/net/html/charset"
)

// Ensure Query implements querylist.Extractor at compile time.
var _ querylist.Extractor = (*Query)(nil)

// Query applies a rule set to parsed documents.
//
// Without a range every rule is matched against the whole document and a
// single record is produced. With a range, the range selector splits the
// document into items and each rule is matched inside every item, producing
// one record per item.
//
// A Query is immutable once built and may be shared between goroutines.
// Documents may not.
type Query struct {
	rules    querylist.RuleSet
	matchers []goquery.Matcher

	rangeSelector string
	rangeMatcher  goquery.Matcher

	fieldFn querylist.FieldFunc

	charset    string
	removeHead bool
}

// Option configures a Query.
type Option func(*Query)

// WithRange sets the selector that delimits repeated items.
func WithRange(selector string) Option {
	return func(q *Query) {
		q.rangeSelector = selector
	}
}

// WithFieldFunc sets a callback applied to every field of every record,
// after the rule's own callback.
func WithFieldFunc(fn querylist.FieldFunc) Option {
	return func(q *Query) {
		q.fieldFn = fn
	}
}

// WithCharset sets the encoding Extract decodes input from. CharsetAuto
// sniffs it from the markup.
func WithCharset(label string) Option {
	return func(q *Query) {
		q.charset = label
	}
}

// WithRemoveHead makes Extract drop the document head before parsing.
func WithRemoveHead() Option {
	return func(q *Query) {
		q.removeHead = true
	}
}

// NewQuery validates rules and compiles their selectors.
// Returns EINVALID or EUNSUPPORTED for bad rules and ESELECTOR for
// malformed selectors.
func NewQuery(rules querylist.RuleSet, opts ...Option) (*Query, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	q := &Query{
		rules:    append(querylist.RuleSet(nil), rules...),
		matchers: make([]goquery.Matcher, len(rules)),
	}
	for _, opt := range opts {
		opt(q)
	}

	for i, rule := range q.rules {
		// An empty selector targets the context itself.
		if rule.Selector == "" {
			continue
		}
		m, err := compileSelector(rule.Selector)
		if err != nil {
			return nil, querylist.Errorf(querylist.ESELECTOR, "rule %q: %s", rule.Name, querylist.ErrorMessage(err))
		}
		q.matchers[i] = m
	}

	if q.charset != "" && q.charset != CharsetAuto {
		if enc, _ := charset.Lookup(q.charset); enc == nil {
			return nil, querylist.Errorf(querylist.EINVALID, "unsupported charset %q", q.charset)
		}
	}

	if q.rangeSelector != "" {
		m, err := compileSelector(q.rangeSelector)
		if err != nil {
			return nil, querylist.Errorf(querylist.ESELECTOR, "range: %s", querylist.ErrorMessage(err))
		}
		q.rangeMatcher = m
	}

	return q, nil
}

// Rules returns a copy of the configured rules.
func (q *Query) Rules() querylist.RuleSet {
	return append(querylist.RuleSet(nil), q.rules...)
}

// Range returns the configured range selector.
func (q *Query) Range() string {
	return q.rangeSelector
}

// Run extracts records from doc.
func (q *Query) Run(doc *goquery.Document) (querylist.Collection, error) {
	return q.run(doc, q.fieldFn)
}

// RunWithFieldFunc is like Run but also applies fn to every field value,
// after the rule callbacks and any WithFieldFunc callback.
func (q *Query) RunWithFieldFunc(doc *goquery.Document, fn querylist.FieldFunc) (querylist.Collection, error) {
	return q.run(doc, chainFieldFuncs(q.fieldFn, fn))
}

// Extract parses html and runs the query against it.
func (q *Query) Extract(html string) (querylist.Collection, error) {
	if q.removeHead {
		html = RemoveHead(html)
	}
	doc, err := NewDocument(strings.NewReader(html), q.charset)
	if err != nil {
		return nil, err
	}
	return q.Run(doc)
}

// Find returns the elements of doc matching selector. Unlike
// goquery.Document.Find, a malformed selector returns ESELECTOR instead of
// an empty selection.
func Find(doc *goquery.Document, selector string) (*goquery.Selection, error) {
	m, err := compileSelector(selector)
	if err != nil {
		return nil, err
	}
	return doc.FindMatcher(m), nil
}

func (q *Query) run(doc *goquery.Document, fn querylist.FieldFunc) (querylist.Collection, error) {
	if q.rangeMatcher == nil {
		rec, err := q.buildRecord(doc.Selection, fn)
		if err != nil {
			return nil, err
		}
		return querylist.Collection{rec}, nil
	}

	items := doc.FindMatcher(q.rangeMatcher)
	records := make(querylist.Collection, 0, items.Length())
	for i := range items.Nodes {
		rec, err := q.buildRecord(items.Eq(i), fn)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// buildRecord evaluates every rule, in order, within ctx.
func (q *Query) buildRecord(ctx *goquery.Selection, fn querylist.FieldFunc) (*querylist.Record, error) {
	rec := querylist.NewRecord()
	for i := range q.rules {
		rule := &q.rules[i]

		matched := ctx
		if m := q.matchers[i]; m != nil {
			matched = ctx.FindMatcher(m)
		}

		v, err := resolveRule(rule.Mode, rule.Tags, matched)
		if err != nil {
			return nil, querylist.Errorf(querylist.ErrorCode(err), "rule %q: %s", rule.Name, querylist.ErrorMessage(err))
		}

		// Callback errors are returned unchanged.
		if v, err = rule.Apply(v); err != nil {
			return nil, err
		}
		if fn != nil {
			if v, err = fn(v, rule.Name); err != nil {
				return nil, err
			}
		}

		rec.Set(rule.Name, v)
	}
	return rec, nil
}

func chainFieldFuncs(first, second querylist.FieldFunc) querylist.FieldFunc {
	if first == nil {
		return second
	}
	if second == nil {
		return first
	}
	return func(value any, field string) (any, error) {
		v, err := first(value, field)
		if err != nil {
			return nil, err
		}
		return second(v, field)
	}
}
