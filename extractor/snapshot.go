package extractor

import (
	"bytes"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Snapshot parses the rendered HTML of the current page into a goquery
// document, for routines that read many elements at once instead of
// issuing one driver round-trip per element.
func (e *Extractor) Snapshot() (*goquery.Document, error) {
	if e.session == nil {
		return nil, errors.New("no open session")
	}
	raw, err := e.session.HTML()
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(raw))
}

// SelectHTML parses rawHTML, matches elements against the given CSS
// selector, and returns the concatenated outer HTML of all matched
// elements.
//
// If no elements match, the original rawHTML is returned unchanged so
// that downstream processing still has something to work with.
func SelectHTML(rawHTML string, selector string) (string, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	matches := cascadia.QueryAll(doc, sel)
	if len(matches) == 0 {
		return rawHTML, nil
	}

	var buf bytes.Buffer
	for _, node := range matches {
		if err := html.Render(&buf, node); err != nil {
			return "", err
		}
	}

	return buf.String(), nil
}
