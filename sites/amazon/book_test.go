package amazon

import (
	"errors"
	"testing"

	"github.com/use-agent/pagelift/browser"
	"github.com/use-agent/pagelift/extractor"
)

type fakeSession struct {
	texts map[string]string
	attrs map[string]string
	html  string
}

func (f *fakeSession) Navigate(string) error { return nil }

func (f *fakeSession) TextX(xpath string) (string, error) {
	if v, ok := f.texts[xpath]; ok {
		return v, nil
	}
	return "", errors.New("cannot find element")
}

func (f *fakeSession) AttributeX(xpath, _ string) (string, error) {
	if v, ok := f.attrs[xpath]; ok {
		return v, nil
	}
	return "", errors.New("cannot find element")
}

func (f *fakeSession) HTML() (string, error) { return f.html, nil }

func (f *fakeSession) Eval(string) (string, error) { return "", nil }

func (f *fakeSession) Close() error { return nil }

func factoryFor(s browser.Session) browser.Factory {
	return func() (browser.Session, error) { return s, nil }
}

const bookPage = `<html><body>
<div id="bylineInfo">
  <span class="author"><a>Timo Koski</a></span>
  <span class="author"><a>John Noble</a></span>
</div>
</body></html>`

func TestBook_AllFields(t *testing.T) {
	s := &fakeSession{
		texts: map[string]string{"//span[@id='productTitle'][1]": "Bayesian Networks: An Introduction"},
		attrs: map[string]string{"//img[@id='imgBlkFront'][1]": "https://images.example/cover.jpg"},
		html:  bookPage,
	}

	b, err := FetchBook("https://www.amazon.com/dp/0470743042/", factoryFor(s))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if got := b.Title(); got != "Bayesian Networks: An Introduction" {
		t.Errorf("title = %q", got)
	}
	if got := b.CoverURL(); got != "https://images.example/cover.jpg" {
		t.Errorf("cover_url = %q", got)
	}
	if got := b.Authors(); got != "Timo Koski, John Noble" {
		t.Errorf("authors = %q", got)
	}
	if len(b.Failures()) != 0 {
		t.Errorf("failures = %v, want none", b.Failures())
	}
}

func TestBook_MissingCoverIsIsolated(t *testing.T) {
	s := &fakeSession{
		texts: map[string]string{"//span[@id='productTitle'][1]": "Book A"},
		html:  bookPage,
	}

	b, err := FetchBook("https://www.amazon.com/dp/000/", factoryFor(s))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if got := b.Title(); got != "Book A" {
		t.Errorf("title = %q, want %q", got, "Book A")
	}
	if _, ok := b.Data()["cover_url"]; ok {
		t.Error("cover_url present in result map despite failed routine")
	}
	failures := b.Failures()
	if len(failures) != 1 || failures[0] != "Cover url not found." {
		t.Errorf("failures = %v, want [Cover url not found.]", failures)
	}
}

func TestBook_EmptyPage(t *testing.T) {
	s := &fakeSession{html: "<html><body></body></html>"}

	b, err := FetchBook("https://www.amazon.com/dp/000/", factoryFor(s))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(b.Data()) != 0 {
		t.Errorf("result map = %v, want empty", b.Data())
	}
	if len(b.Failures()) != 3 {
		t.Errorf("failures = %v, want one per routine", b.Failures())
	}
}

func TestBook_IsRegistered(t *testing.T) {
	builder, ok := extractor.Lookup("amazon.book")
	if !ok {
		t.Fatal("amazon.book not registered")
	}
	e := builder(factoryFor(&fakeSession{html: bookPage}))
	if err := e.Extract("https://www.amazon.com/dp/000/"); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if _, ok := e.Data()["authors"]; !ok {
		t.Errorf("registry-built extractor produced %v", e.Data())
	}
}
