package article

import (
	"errors"
	"strings"
	"testing"

	"github.com/use-agent/pagelift/browser"
)

type fakeSession struct {
	html    string
	htmlErr error
}

func (f *fakeSession) Navigate(string) error { return nil }

func (f *fakeSession) TextX(string) (string, error) {
	return "", errors.New("cannot find element")
}

func (f *fakeSession) AttributeX(string, string) (string, error) {
	return "", errors.New("cannot find element")
}

func (f *fakeSession) HTML() (string, error) { return f.html, f.htmlErr }

func (f *fakeSession) Eval(string) (string, error) { return "", nil }

func (f *fakeSession) Close() error { return nil }

func factoryFor(s browser.Session) browser.Factory {
	return func() (browser.Session, error) { return s, nil }
}

const articlePage = `<html>
<head>
  <title>On Page Extraction</title>
  <link rel="canonical" href="https://blog.example.com/page-extraction">
</head>
<body>
  <article>
    <h1>On Page Extraction</h1>
    <p>Extracting structured fields from rendered pages is mostly a matter
    of patience. The driver loads the document, the routines walk it, and
    whatever survives the trip ends up in a map keyed by field name.</p>
    <p>When a routine fails the others keep going, which is the only
    behaviour that makes partial results useful in practice. A failure
    list on the side records what went missing and why, so the caller can
    decide whether the page changed or the network did.</p>
    <p>Everything else is bookkeeping: reset the state on navigation,
    never let one broken locator abort the run, and keep the log lines
    boring enough to grep.</p>
  </article>
</body>
</html>`

func TestPage_ReadableContent(t *testing.T) {
	p, err := Fetch("https://blog.example.com/page-extraction?utm=x", factoryFor(&fakeSession{html: articlePage}))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if got := p.TitleField(); !strings.Contains(got, "On Page Extraction") {
		t.Errorf("title = %q", got)
	}
	if md := p.Markdown(); !strings.Contains(md, "patience") {
		t.Errorf("content_markdown missing article text: %q", md)
	}
	if text := p.Text(); len(text) < minContentLength {
		t.Errorf("content_text too short: %d chars", len(text))
	}
	if got := p.Data()["canonical_url"]; got != "https://blog.example.com/page-extraction" {
		t.Errorf("canonical_url = %q", got)
	}
	if len(p.Failures()) != 0 {
		t.Errorf("failures = %v, want none", p.Failures())
	}
}

func TestPage_TooShortContentFails(t *testing.T) {
	p, err := Fetch("https://blog.example.com/stub", factoryFor(&fakeSession{
		html: `<html><head><title>Stub</title></head><body><p>hi</p></body></html>`,
	}))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if _, ok := p.Data()["content_markdown"]; ok {
		t.Error("content_markdown present despite unreadable page")
	}
	found := false
	for _, f := range p.Failures() {
		if f == "Readable content not found." {
			found = true
		}
	}
	if !found {
		t.Errorf("failures = %v, want readable-content failure", p.Failures())
	}
}

func TestPage_SessionHTMLErrorIsNonFatal(t *testing.T) {
	p, err := Fetch("https://blog.example.com/x", factoryFor(&fakeSession{
		htmlErr: errors.New("target closed"),
	}))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	// Both routines read the page HTML; both should fail, neither fatally.
	if len(p.Failures()) != 2 {
		t.Errorf("failures = %v, want 2", p.Failures())
	}
}
