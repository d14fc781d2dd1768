// Package amazon provides page extractors for amazon.com.
package amazon

import (
	"errors"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/pagelift/browser"
	"github.com/use-agent/pagelift/extractor"
)

func init() {
	extractor.Register("amazon.book", func(f browser.Factory) *extractor.Extractor {
		return NewBook(f).Extractor
	})
}

// Book extracts fields from an amazon book product page.
//
// Fields: title, cover_url, authors.
type Book struct {
	*extractor.Extractor
}

// NewBook creates a Book extractor without loading anything.
func NewBook(f browser.Factory) *Book {
	b := &Book{}
	b.Extractor = extractor.New(extractor.Options{Factory: f})
	b.Add(
		extractor.Routine{Name: "title", Doc: "book title", Fn: b.parseTitle},
		extractor.Routine{Name: "cover_url", Doc: "book cover url", Fn: b.parseCoverURL},
		extractor.Routine{Name: "authors", Doc: "book authors", Fn: b.parseAuthors},
	)
	return b
}

// FetchBook loads the product page and runs all routines.
func FetchBook(url string, f browser.Factory) (*Book, error) {
	b := NewBook(f)
	if err := b.Extract(url); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Book) Title() string    { return b.Data()["title"] }
func (b *Book) CoverURL() string { return b.Data()["cover_url"] }
func (b *Book) Authors() string  { return b.Data()["authors"] }

func (b *Book) parseTitle() error {
	title, err := b.Session().TextX("//span[@id='productTitle'][1]")
	title = strings.TrimSpace(title)
	if err != nil || title == "" {
		return errors.New("Title not found.")
	}
	b.Set("title", title)
	return nil
}

func (b *Book) parseCoverURL() error {
	coverURL, err := b.Session().AttributeX("//img[@id='imgBlkFront'][1]", "src")
	if err != nil || coverURL == "" {
		return errors.New("Cover url not found.")
	}
	b.Set("cover_url", coverURL)
	return nil
}

// parseAuthors reads the byline from a snapshot of the rendered HTML:
// one driver round-trip instead of one per author link.
func (b *Book) parseAuthors() error {
	doc, err := b.Snapshot()
	if err != nil {
		return errors.New("Authors not found.")
	}
	var authors []string
	doc.Find("#bylineInfo .author a").Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Text())
		if name != "" && !slices.Contains(authors, name) {
			authors = append(authors, name)
		}
	})
	if len(authors) == 0 {
		return errors.New("Authors not found.")
	}
	b.Set("authors", strings.Join(authors, ", "))
	return nil
}
