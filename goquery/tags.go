package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sd2595101/querylist"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseTagSpec splits a whitespace-separated tag spec into allowed and
// denied tag names. Tokens prefixed with "-" are denied; the prefix is
// stripped. Names are lowercased and keep their order.
func ParseTagSpec(spec string) (allow, deny []string) {
	for _, tok := range strings.Fields(spec) {
		tok = strings.ToLower(tok)
		if len(tok) > 1 && tok[0] == '-' {
			deny = append(deny, tok[1:])
			continue
		}
		allow = append(allow, tok)
	}
	return allow, deny
}

// StripTags removes the denied elements of spec (with their content) and
// then unwraps the allowed tags, keeping their content. An empty spec
// returns the fragment with surrounding whitespace trimmed.
//
// Table parts such as <tr> or <td> at the start of fragment are parsed as
// if inside their table, so they survive the deny pass.
func StripTags(fragment, spec string) (string, error) {
	return stripTags(fragment, spec, nil)
}

// AllowTags removes the denied elements of spec (with their content) and
// then drops the markup of every tag that is not allowed. Text is kept as
// written. An empty spec strips all markup.
func AllowTags(fragment, spec string) (string, error) {
	return allowTags(fragment, spec, nil)
}

// stripTags is StripTags for the inner HTML of parent. A nil parent infers
// the context from fragment.
func stripTags(fragment, spec string, parent *html.Node) (string, error) {
	allow, deny := ParseTagSpec(spec)
	out, err := removeTags(fragment, deny, parent)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if len(allow) == 0 {
		return out, nil
	}
	return filterTags(out, toSet(allow), false), nil
}

// allowTags is AllowTags for the inner HTML of parent. A nil parent infers
// the context from fragment.
func allowTags(fragment, spec string, parent *html.Node) (string, error) {
	allow, deny := ParseTagSpec(spec)
	out, err := removeTags(fragment, deny, parent)
	if err != nil {
		return "", err
	}
	return filterTags(strings.TrimSpace(out), toSet(allow), true), nil
}

// removeTags parses fragment into a scratch tree, removes every element
// named in tags and renders the remainder. The fragment is parsed as the
// content of parent so context-dependent elements like <td> are kept. The
// scratch tree never escapes this call.
func removeTags(fragment string, tags []string, parent *html.Node) (string, error) {
	if len(tags) == 0 {
		return fragment, nil
	}
	m, err := compileSelector(strings.Join(tags, ","))
	if err != nil {
		return "", err
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), fragmentContext(fragment, parent))
	if err != nil {
		return "", querylist.Errorf(querylist.EINVALID, "failed to parse HTML fragment: %v", err)
	}

	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	scratch := goquery.NewDocumentFromNode(root)
	scratch.FindMatcher(m).Remove()

	out, err := scratch.Html()
	if err != nil {
		return "", querylist.Errorf(querylist.EINTERNAL, "failed to render HTML fragment: %v", err)
	}
	return out, nil
}

// fragmentContext returns a detached copy of parent to parse its inner HTML
// in. Without an element parent the context follows the fragment's first
// tag: table parts get their table ancestor, anything else a <body>.
func fragmentContext(fragment string, parent *html.Node) *html.Node {
	if parent != nil && parent.Type == html.ElementNode {
		return &html.Node{
			Type:      html.ElementNode,
			Data:      parent.Data,
			DataAtom:  parent.DataAtom,
			Namespace: parent.Namespace,
		}
	}

	ctx := atom.Body
	z := html.NewTokenizer(strings.NewReader(fragment))
	for tt := z.Next(); tt != html.ErrorToken; tt = z.Next() {
		if tt == html.TextToken && strings.TrimSpace(string(z.Raw())) == "" {
			continue
		}
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Td, atom.Th:
				ctx = atom.Tr
			case atom.Tr:
				ctx = atom.Tbody
			case atom.Tbody, atom.Thead, atom.Tfoot, atom.Caption, atom.Colgroup:
				ctx = atom.Table
			case atom.Col:
				ctx = atom.Colgroup
			}
		}
		break
	}
	return &html.Node{Type: html.ElementNode, Data: ctx.String(), DataAtom: ctx}
}

// filterTags walks the tokens of fragment. With keep set, only tags in set
// are written; otherwise tags in set are dropped. Text is always written
// verbatim. Comments and doctypes are dropped when keeping.
func filterTags(fragment string, set map[string]bool, keep bool) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF, or input the tokenizer cannot continue past.
			return b.String()
		}
		raw := string(z.Raw())
		switch tt {
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if set[string(name)] == keep {
				b.WriteString(raw)
			}
		case html.CommentToken, html.DoctypeToken:
			if !keep {
				b.WriteString(raw)
			}
		default:
			b.WriteString(raw)
		}
	}
}

func toSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return set
}
