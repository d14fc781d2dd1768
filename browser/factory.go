package browser

import (
	"log/slog"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/pagelift/config"
	"github.com/ysmood/gson"
)

// Factory produces a fresh Session. Extractors acquire their session
// lazily through one of these; the default is Local with default
// configuration.
type Factory func() (Session, error)

// Default returns the standard local-browser factory.
func Default() Factory {
	cfg := config.Load()
	return Local(cfg.Browser, cfg.Extractor)
}

// Local returns a factory that launches a local Chromium and opens a
// single page on it. Each call launches its own browser process, so
// Close fully releases the session.
func Local(browserCfg config.BrowserConfig, exCfg config.ExtractorConfig) Factory {
	return func() (Session, error) {
		l := launcher.New().
			Headless(browserCfg.Headless).
			NoSandbox(browserCfg.NoSandbox)

		if browserCfg.Bin != "" {
			l = l.Bin(browserCfg.Bin)
		}
		if browserCfg.Proxy != "" {
			l = l.Proxy(browserCfg.Proxy)
		}

		// ── Stealth flags ────────────────────────────────────────────────
		l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
		l.Delete(flags.Flag("enable-automation"))
		l.Set(flags.Flag("disable-background-timer-throttling"))
		l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
		l.Set(flags.Flag("disable-component-update"))
		l.Set(flags.Flag("disable-default-apps"))
		l.Set(flags.Flag("disable-dev-shm-usage"))
		l.Set(flags.Flag("disable-extensions"))
		l.Set(flags.Flag("no-first-run"))

		controlURL, err := l.Launch()
		if err != nil {
			return nil, err
		}
		slog.Info("browser launched", "controlURL", controlURL)

		b := rod.New().ControlURL(controlURL)
		if err := b.Connect(); err != nil {
			l.Kill()
			return nil, err
		}

		s, err := newSession(b, l, browserCfg, exCfg)
		if err != nil {
			_ = b.Close()
			l.Kill()
			return nil, err
		}
		return s, nil
	}
}

// Remote returns a factory that connects to an existing browser over
// the Chrome DevTools Protocol. Closing the session closes its page
// and disconnects, but leaves the browser running.
func Remote(cdpURL string, browserCfg config.BrowserConfig, exCfg config.ExtractorConfig) Factory {
	return func() (Session, error) {
		b := rod.New().ControlURL(cdpURL)
		if err := b.Connect(); err != nil {
			return nil, err
		}
		slog.Info("connected to remote browser", "cdpURL", cdpURL)

		s, err := newSession(b, nil, browserCfg, exCfg)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		return s, nil
	}
}

// newSession opens a page on the connected browser and applies stealth
// injection, extra headers and resource blocking. Order matters: all
// three only take effect for navigations that happen after they are
// installed.
func newSession(b *rod.Browser, l *launcher.Launcher, browserCfg config.BrowserConfig, exCfg config.ExtractorConfig) (*rodSession, error) {
	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}

	if browserCfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	if headers := parseHeaders(browserCfg.ExtraHeaders); len(headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(headers),
		}.Call(page)
	}

	router := setupHijack(page, exCfg.BlockedResourceTypes)

	return &rodSession{
		browser:    b,
		page:       page,
		launcher:   l,
		router:     router,
		navTimeout: exCfg.NavigationTimeout,
		elTimeout:  exCfg.ElementTimeout,
	}, nil
}

// parseHeaders converts "Name: Value" pairs into a header map,
// skipping entries without a colon.
func parseHeaders(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	headers := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
