// Package article provides a site-agnostic extractor for readable
// article pages: the main content is located with the Mozilla
// Readability algorithm and converted to Markdown.
package article

import (
	"errors"
	nurl "net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	readability "github.com/go-shiori/go-readability"
	"github.com/use-agent/pagelift/browser"
	"github.com/use-agent/pagelift/extractor"
)

func init() {
	extractor.Register("article", func(f browser.Factory) *extractor.Extractor {
		return New(f).Extractor
	})
}

// minContentLength is the minimum TextContent length (in characters)
// for readability output to be considered valid. Below this threshold
// we assume the algorithm failed to locate the main content.
const minContentLength = 50

// mdConverter is goroutine-safe and reused across all pages.
var mdConverter = newMarkdownConverter()

// newMarkdownConverter creates the converter used for article content:
//
//   - base plugin: strips script, style, iframe, noscript, head, meta,
//     link, input, textarea and HTML comments.
//   - commonmark plugin: standard Markdown rendering (headings, lists,
//     links, code blocks, emphasis, blockquotes, etc.).
//   - table plugin: preserves table structure with minimal cell padding.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// Page extracts fields from any readable article page.
//
// Fields: title, byline, excerpt, content_markdown, content_text,
// canonical_url.
type Page struct {
	*extractor.Extractor
}

// New creates an article Page extractor without loading anything.
func New(f browser.Factory) *Page {
	p := &Page{}
	p.Extractor = extractor.New(extractor.Options{Factory: f})
	p.Add(
		extractor.Routine{Name: "readable", Doc: "readable article content", Fn: p.parseReadable},
		extractor.Routine{Name: "canonical_url", Doc: "canonical link", Fn: p.parseCanonical},
	)
	return p
}

// Fetch loads the page and runs all routines.
func Fetch(url string, f browser.Factory) (*Page, error) {
	p := New(f)
	if err := p.Extract(url); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Page) TitleField() string { return p.Data()["title"] }
func (p *Page) Markdown() string   { return p.Data()["content_markdown"] }
func (p *Page) Text() string       { return p.Data()["content_text"] }

func (p *Page) parseReadable() error {
	raw, err := p.Session().HTML()
	if err != nil {
		return errors.New("Readable content not found.")
	}

	pageURL, err := nurl.Parse(p.Address())
	if err != nil {
		return errors.New("Readable content not found.")
	}

	art, err := readability.FromReader(strings.NewReader(raw), pageURL)
	if err != nil {
		return errors.New("Readable content not found.")
	}
	if len(strings.TrimSpace(art.TextContent)) < minContentLength {
		return errors.New("Readable content not found.")
	}

	markdown, err := mdConverter.ConvertString(art.Content,
		converter.WithDomain(pageURL.Scheme+"://"+pageURL.Host))
	if err != nil {
		return errors.New("Readable content not found.")
	}

	p.Set("content_markdown", markdown)
	p.Set("content_text", strings.TrimSpace(art.TextContent))
	if t := strings.TrimSpace(art.Title); t != "" {
		p.Set("title", t)
	}
	if b := strings.TrimSpace(art.Byline); b != "" {
		p.Set("byline", b)
	}
	if ex := strings.TrimSpace(art.Excerpt); ex != "" {
		p.Set("excerpt", ex)
	}
	return nil
}

func (p *Page) parseCanonical() error {
	doc, err := p.Snapshot()
	if err != nil {
		return errors.New("Canonical link not found.")
	}
	href, ok := doc.Find("link[rel='canonical']").Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return errors.New("Canonical link not found.")
	}
	p.Set("canonical_url", href)
	return nil
}
