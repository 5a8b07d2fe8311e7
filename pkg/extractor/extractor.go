package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ErrInvalidSelector is returned when a CSS selector does not compile
var ErrInvalidSelector = errors.New("invalid CSS selector")

// Selector is a compiled CSS selector
type Selector struct {
	raw     string
	matcher cascadia.Selector
}

// CompileSelector parses a CSS selector such as "h2" or "article h2.title"
func CompileSelector(s string) (Selector, error) {
	m, err := cascadia.Compile(s)
	if err != nil {
		return Selector{}, fmt.Errorf("%w %q: %v", ErrInvalidSelector, s, err)
	}
	return Selector{raw: s, matcher: m}, nil
}

func (s Selector) String() string {
	return s.raw
}

// Document is a parsed HTML page
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from raw HTML. The parser is lenient, so
// malformed markup yields a best-effort tree rather than an error.
func Parse(body []byte) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{doc: goquery.NewDocumentFromNode(root)}, nil
}

// Texts returns the trimmed text content of every element matching sel, in
// document order. No match yields an empty, non-nil slice.
func (d *Document) Texts(sel Selector) []string {
	texts := []string{}
	if sel.matcher == nil {
		return texts
	}
	d.doc.FindMatcher(sel.matcher).Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(s.Text()))
	})
	return texts
}

// Title returns the trimmed text of the first <title> element, or "" if the
// document has none.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// Hrefs returns the raw href of every anchor that carries one, in document
// order. Duplicates are kept.
func (d *Document) Hrefs() []string {
	var hrefs []string
	d.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}
