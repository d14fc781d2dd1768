package browser

import (
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Session is the browser-automation handle consumed by page extractors.
// It is the only surface extraction routines touch, so tests can
// substitute a fake without a running browser.
//
// A Session is exclusively owned by one extractor at a time; sharing
// across goroutines is the caller's responsibility.
type Session interface {
	// Navigate loads the given address and waits for the DOM to settle.
	Navigate(url string) error

	// TextX returns the visible text of the first element matching the
	// XPath expression.
	TextX(xpath string) (string, error)

	// AttributeX returns the named attribute of the first element
	// matching the XPath expression, falling back to the element
	// property of the same name (e.g. "innerHTML").
	AttributeX(xpath, name string) (string, error)

	// HTML returns the full rendered page HTML.
	HTML() (string, error)

	// Eval runs a JS function on the page and returns its string result.
	Eval(js string) (string, error)

	// Close releases the session. For locally launched browsers this
	// kills the browser process; for remote (CDP) sessions it closes
	// the page and disconnects without killing the browser.
	Close() error
}

// rodSession is the rod-backed Session implementation.
type rodSession struct {
	browser    *rod.Browser
	page       *rod.Page
	launcher   *launcher.Launcher // nil for remote (CDP) sessions
	router     *rod.HijackRouter  // nil when nothing is blocked
	navTimeout time.Duration
	elTimeout  time.Duration
}

func (s *rodSession) Navigate(url string) error {
	p := s.page.Timeout(s.navTimeout)
	if err := p.Navigate(url); err != nil {
		return err
	}
	// Best effort: proceed with the current DOM if it never converges.
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"url", url, "error", err,
		)
	}
	return nil
}

func (s *rodSession) TextX(xpath string) (string, error) {
	el, err := s.page.Timeout(s.elTimeout).ElementX(xpath)
	if err != nil {
		return "", err
	}
	return el.Text()
}

func (s *rodSession) AttributeX(xpath, name string) (string, error) {
	el, err := s.page.Timeout(s.elTimeout).ElementX(xpath)
	if err != nil {
		return "", err
	}
	attr, err := el.Attribute(name)
	if err != nil {
		return "", err
	}
	if attr != nil {
		return *attr, nil
	}
	// Selenium-style fallback: "src", "innerHTML" etc. may only exist
	// as DOM properties.
	prop, err := el.Property(name)
	if err != nil {
		return "", err
	}
	return prop.Str(), nil
}

func (s *rodSession) HTML() (string, error) {
	return s.page.HTML()
}

func (s *rodSession) Eval(js string) (string, error) {
	res, err := s.page.Eval(js)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (s *rodSession) Close() error {
	if s.router != nil {
		_ = s.router.Stop()
	}
	if err := s.page.Close(); err != nil {
		slog.Warn("failed to close page", "error", err)
	}
	// browser.Close only disconnects the WebSocket; the launcher kill
	// below is what actually stops a locally launched process.
	err := s.browser.Close()
	if s.launcher != nil {
		s.launcher.Kill()
	}
	return err
}
