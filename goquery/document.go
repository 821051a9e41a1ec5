// Package goquery implements rule-based record extraction on top of
// github.com/PuerkitoBio/goquery.
package goquery

import (
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/sd2595101/querylist"
	"golang.org/x/net/html/charset"
)

// CharsetAuto makes NewDocument sniff the encoding from byte order marks
// and meta tags.
const CharsetAuto = "auto"

// NewDocument parses HTML from r. A non-empty charsetLabel (e.g. "gbk",
// "iso-8859-1") decodes the input to UTF-8 before parsing.
func NewDocument(r io.Reader, charsetLabel string) (*goquery.Document, error) {
	if charsetLabel == CharsetAuto {
		decoded, err := charset.NewReader(r, "")
		if err != nil {
			return nil, querylist.Errorf(querylist.EINVALID, "failed to detect charset: %v", err)
		}
		r = decoded
	} else if charsetLabel != "" {
		decoded, err := charset.NewReaderLabel(charsetLabel, r)
		if err != nil {
			return nil, querylist.Errorf(querylist.EINVALID, "unsupported charset %q: %v", charsetLabel, err)
		}
		r = decoded
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, querylist.Errorf(querylist.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

// NewDocumentFromString parses UTF-8 markup.
func NewDocumentFromString(markup string) (*goquery.Document, error) {
	return NewDocument(strings.NewReader(markup), "")
}

var headPattern = regexp.MustCompile(`(?is)<head\b[^>]*>.*</head>`)

// RemoveHead replaces the document head with an empty one. Pages that
// declare a conflicting charset in a meta tag often parse cleanly without
// their head.
func RemoveHead(markup string) string {
	return headPattern.ReplaceAllString(markup, "<head></head>")
}

// compileSelector compiles a CSS selector. Unlike goquery.Selection.Find,
// malformed syntax is reported instead of silently matching nothing.
func compileSelector(selector string) (goquery.Matcher, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, querylist.Errorf(querylist.ESELECTOR, "invalid selector %q: %v", selector, err)
	}
	return m, nil
}
