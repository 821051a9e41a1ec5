package goquery_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/sd2595101/querylist"
	"github.com/sd2595101/querylist/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule(name, selector, mode string) querylist.Rule {
	return querylist.Rule{Name: name, Selector: selector, Mode: querylist.MustParseRuleMode(mode)}
}

func extract(t *testing.T, html string, rules querylist.RuleSet, opts ...goquery.Option) querylist.Collection {
	t.Helper()

	q, err := goquery.NewQuery(rules, opts...)
	require.NoError(t, err)

	records, err := q.Extract(html)
	require.NoError(t, err)
	return records
}

func field(t *testing.T, rec *querylist.Record, name string) any {
	t.Helper()

	v, ok := rec.Get(name)
	require.True(t, ok, "field %q missing", name)
	return v
}

func TestQuery_RangeMode(t *testing.T) {
	t.Parallel()

	t.Run("produces one record per range item", func(t *testing.T) {
		t.Parallel()

		records := extract(t, `<ul><li>a</li><li>b</li></ul>`,
			querylist.RuleSet{rule("text", "", "text")},
			goquery.WithRange("li"),
		)

		require.Len(t, records, 2)
		assert.Equal(t, querylist.NewRecord(querylist.Field{Name: "text", Value: "a"}), records[0])
		assert.Equal(t, querylist.NewRecord(querylist.Field{Name: "text", Value: "b"}), records[1])
	})

	t.Run("matches rules within each item", func(t *testing.T) {
		t.Parallel()

		html := `<ul>
	<li><a href="/a">A</a></li>
	<li><a href="/b">B</a><a href="/c">C</a></li>
	<li><span>no link</span></li>
</ul>
<a href="/outside">Outside</a>`

		records := extract(t, html,
			querylist.RuleSet{rule("link", "a", "href"), rule("title", "a", "text")},
			goquery.WithRange("li"),
		)

		require.Len(t, records, 3)
		assert.Equal(t, "/a", field(t, records[0], "link"))
		assert.Equal(t, "A", field(t, records[0], "title"))
		assert.Equal(t, []any{"/b", "/c"}, field(t, records[1], "link"))
		assert.Equal(t, []any{"B", "C"}, field(t, records[1], "title"))
		assert.Nil(t, field(t, records[2], "link"))
		assert.Equal(t, "", field(t, records[2], "title"))
	})

	t.Run("keys every record by the full rule set in order", func(t *testing.T) {
		t.Parallel()

		rules := querylist.RuleSet{
			rule("z", "b", "text"),
			rule("a", "i", "exists"),
			rule("m", "u", "class"),
		}

		records := extract(t, `<div><b>1</b></div><div><i>2</i></div><div></div>`, rules, goquery.WithRange("div"))

		require.Len(t, records, 3)
		for _, rec := range records {
			assert.Equal(t, []string{"z", "a", "m"}, rec.Names())
		}
	})

	t.Run("returns empty collection when range matches nothing", func(t *testing.T) {
		t.Parallel()

		records := extract(t, `<p>x</p>`, querylist.RuleSet{rule("text", "", "text")}, goquery.WithRange("li"))

		require.NotNil(t, records)
		assert.Empty(t, records)
	})
}

func TestQuery_FlatMode(t *testing.T) {
	t.Parallel()

	t.Run("extracts attribute into a single record", func(t *testing.T) {
		t.Parallel()

		records := extract(t, `<div class="x">hi</div>`, querylist.RuleSet{rule("v", "div", "class")})

		require.Len(t, records, 1)
		assert.Equal(t, querylist.NewRecord(querylist.Field{Name: "v", Value: "x"}), records[0])
	})

	t.Run("returns one record even when nothing matches", func(t *testing.T) {
		t.Parallel()

		rules := querylist.RuleSet{
			rule("text", "h1", "text"),
			rule("texts", "h2", "texts"),
			rule("html", "h3", "html"),
			rule("exists", "h4", "exists"),
			rule("attr", "h5", "id"),
			rule("repeat", "h6", "text/r"),
		}

		records := extract(t, `<p>nothing here</p>`, rules)

		require.Len(t, records, 1)
		rec := records[0]
		assert.Equal(t, rules.Names(), rec.Names())
		assert.Equal(t, "", field(t, rec, "text"))
		assert.Equal(t, []any{}, field(t, rec, "texts"))
		assert.Equal(t, "", field(t, rec, "html"))
		assert.Equal(t, false, field(t, rec, "exists"))
		assert.Nil(t, field(t, rec, "attr"))
		assert.Equal(t, []any{}, field(t, rec, "repeat"))
	})

	t.Run("empty selector targets the whole document", func(t *testing.T) {
		t.Parallel()

		records := extract(t, `<p>a</p><p>b</p>`, querylist.RuleSet{rule("all", "", "text")})

		require.Len(t, records, 1)
		assert.Equal(t, "ab", field(t, records[0], "all"))
	})
}

func TestQuery_Modes(t *testing.T) {
	t.Parallel()

	t.Run("exists reports whether anything matched", func(t *testing.T) {
		t.Parallel()

		html := `<div>hi</div><div>there</div>`
		records := extract(t, html, querylist.RuleSet{
			rule("none", "span", "exists"),
			rule("one", "div:first-child", "exists"),
			rule("many", "div", "exists"),
		})

		assert.Equal(t, false, field(t, records[0], "none"))
		assert.Equal(t, true, field(t, records[0], "one"))
		assert.Equal(t, true, field(t, records[0], "many"))
	})

	t.Run("repeat marker yields a slice for a single match", func(t *testing.T) {
		t.Parallel()

		records := extract(t, `<div><a href="/1">one</a></div>`, querylist.RuleSet{
			rule("links", "a", "href/r"),
			rule("titles", "a", "text/r"),
		})

		assert.Equal(t, []any{"/1"}, field(t, records[0], "links"))
		assert.Equal(t, []any{"one"}, field(t, records[0], "titles"))
	})

	t.Run("text fans out when several elements match", func(t *testing.T) {
		t.Parallel()

		records := extract(t, `<p>a</p><p>b</p>`, querylist.RuleSet{rule("p", "p", "text")})

		assert.Equal(t, []any{"a", "b"}, field(t, records[0], "p"))
	})

	t.Run("texts always returns a slice", func(t *testing.T) {
		t.Parallel()

		records := extract(t, `<p>a <b>b</b></p><div><p>c</p></div>`, querylist.RuleSet{
			rule("one", "div p", "texts"),
			rule("many", "p", "texts"),
		})

		assert.Equal(t, []any{"c"}, field(t, records[0], "one"))
		assert.Equal(t, []any{"a b", "c"}, field(t, records[0], "many"))
	})

	t.Run("text applies the tag spec", func(t *testing.T) {
		t.Parallel()

		records := extract(t, `<p>Hello <b>World</b><script>x()</script></p>`, querylist.RuleSet{
			{Name: "plain", Selector: "p", Mode: querylist.MustParseRuleMode("text")},
			{Name: "bold", Selector: "p", Mode: querylist.MustParseRuleMode("text"), Tags: "b -script"},
		})

		assert.Equal(t, "Hello Worldx()", field(t, records[0], "plain"))
		assert.Equal(t, "Hello <b>World</b>", field(t, records[0], "bold"))
	})

	t.Run("html unwraps named tags and drops denied ones", func(t *testing.T) {
		t.Parallel()

		html := `<div id="c"><p>Hi <b>there</b></p><script>x()</script></div>`
		records := extract(t, html, querylist.RuleSet{
			{Name: "raw", Selector: "#c", Mode: querylist.MustParseRuleMode("html")},
			{Name: "clean", Selector: "#c", Mode: querylist.MustParseRuleMode("html"), Tags: "b -script"},
		})

		assert.Equal(t, "<p>Hi <b>there</b></p><script>x()</script>", field(t, records[0], "raw"))
		assert.Equal(t, "<p>Hi there</p>", field(t, records[0], "clean"))
	})

	t.Run("attribute values ignore the tag spec", func(t *testing.T) {
		t.Parallel()

		records := extract(t, `<img alt="<b>bold</b>">`, querylist.RuleSet{
			{Name: "alt", Selector: "img", Mode: querylist.MustParseRuleMode("alt"), Tags: "-b"},
		})

		assert.Equal(t, "<b>bold</b>", field(t, records[0], "alt"))
	})

	t.Run("attribute fan-out keeps absent values", func(t *testing.T) {
		t.Parallel()

		records := extract(t, `<a href="/1">1</a><a>2</a>`, querylist.RuleSet{rule("href", "a", "href")})

		assert.Equal(t, []any{"/1", nil}, field(t, records[0], "href"))
	})
}

func TestQuery_FieldsMode(t *testing.T) {
	t.Parallel()

	mode := querylist.MustParseRuleMode([]querylist.FieldSpec{
		{Name: "title", Mode: "text"},
		{Name: "link", Mode: "href"},
	})

	t.Run("returns a record for a single match", func(t *testing.T) {
		t.Parallel()

		records := extract(t, `<a href="/x">X</a>`, querylist.RuleSet{{Name: "item", Selector: "a", Mode: mode}})

		want := querylist.NewRecord(
			querylist.Field{Name: "title", Value: "X"},
			querylist.Field{Name: "link", Value: "/x"},
		)
		assert.Equal(t, want, field(t, records[0], "item"))
	})

	t.Run("returns one record per element for several matches", func(t *testing.T) {
		t.Parallel()

		records := extract(t, `<a href="/x">X</a><a href="/y">Y</a>`, querylist.RuleSet{{Name: "items", Selector: "a", Mode: mode}})

		want := []any{
			querylist.NewRecord(querylist.Field{Name: "title", Value: "X"}, querylist.Field{Name: "link", Value: "/x"}),
			querylist.NewRecord(querylist.Field{Name: "title", Value: "Y"}, querylist.Field{Name: "link", Value: "/y"}),
		}
		assert.Equal(t, want, field(t, records[0], "items"))
	})

	t.Run("returns empty values when nothing matches", func(t *testing.T) {
		t.Parallel()

		records := extract(t, `<p>x</p>`, querylist.RuleSet{{Name: "item", Selector: "a", Mode: mode}})

		want := querylist.NewRecord(
			querylist.Field{Name: "title", Value: ""},
			querylist.Field{Name: "link", Value: nil},
		)
		assert.Equal(t, want, field(t, records[0], "item"))
	})
}

func TestQuery_Callbacks(t *testing.T) {
	t.Parallel()

	upper := func(v any, _ string) (any, error) {
		s, _ := v.(string)
		return strings.ToUpper(s), nil
	}

	t.Run("applies rule callback with the field name", func(t *testing.T) {
		t.Parallel()

		var gotField string
		rules := querylist.RuleSet{{
			Name:     "title",
			Selector: "h1",
			Mode:     querylist.MustParseRuleMode("text"),
			Callback: func(v any, field string) (any, error) {
				gotField = field
				return strings.ToUpper(v.(string)), nil
			},
		}}

		records := extract(t, `<h1>hello</h1>`, rules)

		assert.Equal(t, "title", gotField)
		assert.Equal(t, "HELLO", field(t, records[0], "title"))
	})

	t.Run("applies callbacks for every range item", func(t *testing.T) {
		t.Parallel()

		calls := 0
		rules := querylist.RuleSet{{
			Name:     "v",
			Mode:     querylist.MustParseRuleMode("text"),
			Callback: func(v any, _ string) (any, error) { calls++; return v, nil },
		}}

		records := extract(t, `<li>a</li><li>b</li><li>c</li>`, rules, goquery.WithRange("li"))

		assert.Len(t, records, 3)
		assert.Equal(t, 3, calls)
	})

	t.Run("applies query field func after rule callback", func(t *testing.T) {
		t.Parallel()

		rules := querylist.RuleSet{{
			Name:     "v",
			Selector: "p",
			Mode:     querylist.MustParseRuleMode("text"),
			Callback: func(v any, _ string) (any, error) { return v.(string) + "!", nil },
		}}

		records := extract(t, `<p>hi</p>`, rules, goquery.WithFieldFunc(upper))

		assert.Equal(t, "HI!", field(t, records[0], "v"))
	})

	t.Run("run field func runs last", func(t *testing.T) {
		t.Parallel()

		q, err := goquery.NewQuery(querylist.RuleSet{rule("v", "p", "text")}, goquery.WithFieldFunc(upper))
		require.NoError(t, err)
		doc, err := goquery.NewDocumentFromString(`<p>hi</p>`)
		require.NoError(t, err)

		records, err := q.RunWithFieldFunc(doc, func(v any, field string) (any, error) {
			return field + "=" + v.(string), nil
		})

		require.NoError(t, err)
		assert.Equal(t, "v=HI", field(t, records[0], "v"))
	})

	t.Run("returns callback error unchanged", func(t *testing.T) {
		t.Parallel()

		errBoom := errors.New("boom")
		rules := querylist.RuleSet{{
			Name:     "v",
			Selector: "p",
			Mode:     querylist.MustParseRuleMode("text"),
			Callback: func(any, string) (any, error) { return nil, errBoom },
		}}
		q, err := goquery.NewQuery(rules)
		require.NoError(t, err)

		records, err := q.Extract(`<p>hi</p>`)

		assert.Nil(t, records)
		assert.Same(t, errBoom, err)
	})
}

func TestNewQuery(t *testing.T) {
	t.Parallel()

	t.Run("returns selector error for malformed rule selector", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.NewQuery(querylist.RuleSet{rule("v", "div[", "text")})

		require.Error(t, err)
		assert.Equal(t, querylist.ESELECTOR, querylist.ErrorCode(err))
		assert.Contains(t, querylist.ErrorMessage(err), `rule "v"`)
	})

	t.Run("returns selector error for malformed range", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.NewQuery(querylist.RuleSet{rule("v", "p", "text")}, goquery.WithRange(">>"))

		require.Error(t, err)
		assert.Equal(t, querylist.ESELECTOR, querylist.ErrorCode(err))
	})

	t.Run("rejects empty rule set", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.NewQuery(nil)

		assert.Equal(t, querylist.EINVALID, querylist.ErrorCode(err))
	})

	t.Run("rejects rule without mode", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.NewQuery(querylist.RuleSet{{Name: "v", Selector: "p"}})

		assert.Equal(t, querylist.EINVALID, querylist.ErrorCode(err))
	})

	t.Run("copies the rule set", func(t *testing.T) {
		t.Parallel()

		rules := querylist.RuleSet{rule("v", "p", "text")}
		q, err := goquery.NewQuery(rules, goquery.WithRange("li"))
		require.NoError(t, err)

		rules[0].Name = "changed"

		assert.Equal(t, "v", q.Rules()[0].Name)
		assert.Equal(t, "li", q.Range())
	})
}

func TestFind(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromString(`<p>a</p><p>b</p>`)
	require.NoError(t, err)

	sel, err := goquery.Find(doc, "p")
	require.NoError(t, err)
	assert.Equal(t, 2, sel.Length())

	_, err = goquery.Find(doc, "p[")
	assert.Equal(t, querylist.ESELECTOR, querylist.ErrorCode(err))
}

func TestQuery_TableMarkup(t *testing.T) {
	t.Parallel()

	const table = `<table><tr><td>a<script>x</script></td><td>b</td></tr></table>`

	tests := []struct {
		name string
		mode string
		tags string
		want string
	}{
		{name: "html keeps cells without a tag spec", mode: "html", tags: "", want: "<td>a<script>x</script></td><td>b</td>"},
		{name: "html deny pass keeps cells", mode: "html", tags: "-script", want: "<td>a</td><td>b</td>"},
		{name: "html unwraps allowed cells after deny pass", mode: "html", tags: "td -script", want: "ab"},
		{name: "text keeps allowed cells after deny pass", mode: "text", tags: "td -script", want: "<td>a</td><td>b</td>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			records := extract(t, table, querylist.RuleSet{{
				Name:     "row",
				Selector: "tr",
				Mode:     querylist.MustParseRuleMode(tt.mode),
				Tags:     tt.tags,
			}})

			require.Len(t, records, 1)
			assert.Equal(t, tt.want, field(t, records[0], "row"))
		})
	}

	t.Run("texts keeps allowed cells per row", func(t *testing.T) {
		t.Parallel()

		records := extract(t, `<table><tr><td>a<span>x</span></td></tr><tr><td>b</td></tr></table>`,
			querylist.RuleSet{{Name: "rows", Selector: "tr", Mode: querylist.MustParseRuleMode("texts"), Tags: "td -span"}})

		require.Len(t, records, 1)
		assert.Equal(t, []any{"<td>a</td>", "<td>b</td>"}, field(t, records[0], "rows"))
	})
}

func TestQuery_ExtractOptions(t *testing.T) {
	t.Parallel()

	t.Run("decodes input with configured charset", func(t *testing.T) {
		t.Parallel()

		records := extract(t, "<p>caf\xe9</p>", querylist.RuleSet{rule("v", "p", "text")},
			goquery.WithCharset("iso-8859-1"))

		assert.Equal(t, "café", field(t, records[0], "v"))
	})

	t.Run("sniffs charset from meta tag", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><meta charset="iso-8859-1"></head><body><p>caf` + "\xe9" + `</p></body></html>`

		records := extract(t, html, querylist.RuleSet{rule("v", "p", "text")},
			goquery.WithCharset(goquery.CharsetAuto))

		assert.Equal(t, "café", field(t, records[0], "v"))
	})

	t.Run("drops the head when asked", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>T</title></head><body><p>x</p></body></html>`
		rules := querylist.RuleSet{rule("title", "title", "exists")}

		kept := extract(t, html, rules)
		removed := extract(t, html, rules, goquery.WithRemoveHead())

		assert.Equal(t, true, field(t, kept[0], "title"))
		assert.Equal(t, false, field(t, removed[0], "title"))
	})

	t.Run("rejects unknown charset at construction", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.NewQuery(querylist.RuleSet{rule("v", "p", "text")}, goquery.WithCharset("no-such-charset"))

		assert.Equal(t, querylist.EINVALID, querylist.ErrorCode(err))
	})
}
