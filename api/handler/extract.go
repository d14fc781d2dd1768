package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagelift/browser"
	"github.com/use-agent/pagelift/config"
	"github.com/use-agent/pagelift/extractor"
	"github.com/use-agent/pagelift/models"
)

// Extract returns a handler for POST /api/v1/extract.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Look up the site extractor in the registry.
//  3. Build a session factory for this request (local launch, or the
//     request's CDP endpoint) — one session per request, released on return.
//  4. Navigate + run all routines; fatal errors map to HTTP statuses,
//     per-routine failures come back in the failure list.
func Extract(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ExtractResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		// ── 2. Registry lookup ──────────────────────────────────────
		builder, ok := extractor.Lookup(req.Site)
		if !ok {
			c.JSON(http.StatusBadRequest, models.ExtractResponse{
				Site: req.Site,
				URL:  req.URL,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeUnknownSite,
					Message: "no extractor registered for site " + req.Site,
				},
			})
			return
		}

		// ── 3. Per-request session factory ──────────────────────────
		browserCfg := cfg.Browser
		browserCfg.Stealth = browserCfg.Stealth || req.Stealth

		extractorCfg := cfg.Extractor
		timeout := time.Duration(req.Timeout) * time.Second
		if timeout > extractorCfg.MaxTimeout {
			timeout = extractorCfg.MaxTimeout
		}
		if timeout < extractorCfg.NavigationTimeout {
			extractorCfg.NavigationTimeout = timeout
		}

		var factory browser.Factory
		if req.CDPURL != "" {
			factory = browser.Remote(req.CDPURL, browserCfg, extractorCfg)
		} else {
			factory = browser.Local(browserCfg, extractorCfg)
		}

		e := builder(factory)
		defer func() { _ = e.Close() }()

		// ── 4. Navigate + extract ───────────────────────────────────
		navStart := time.Now()
		err := e.Navigate(req.URL)
		navigationMs := time.Since(navStart).Milliseconds()

		if err != nil {
			respondError(c, req, err, models.TimingInfo{
				TotalMs:      time.Since(totalStart).Milliseconds(),
				NavigationMs: navigationMs,
			})
			return
		}

		extractStart := time.Now()
		e.RunAll()
		extractionMs := time.Since(extractStart).Milliseconds()

		c.JSON(http.StatusOK, models.ExtractResponse{
			Success:  len(e.Failures()) == 0,
			Site:     req.Site,
			URL:      req.URL,
			Fields:   e.Data(),
			Failures: e.Failures(),
			Timing: models.TimingInfo{
				TotalMs:      time.Since(totalStart).Milliseconds(),
				NavigationMs: navigationMs,
				ExtractionMs: extractionMs,
			},
		})
	}
}

// respondError maps typed internal errors to HTTP status codes.
func respondError(c *gin.Context, req models.ExtractRequest, err error, timing models.TimingInfo) {
	detail := &models.ErrorDetail{
		Code:    models.ErrCodeInternal,
		Message: err.Error(),
	}

	var xerr *models.ExtractError
	if errors.As(err, &xerr) {
		detail = xerr.ToDetail()
	}

	status := http.StatusInternalServerError
	switch detail.Code {
	case models.ErrCodeSession:
		status = http.StatusServiceUnavailable
	case models.ErrCodeNavigation:
		status = http.StatusBadGateway
	case models.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	case models.ErrCodeInvalidInput, models.ErrCodeUnknownSite:
		status = http.StatusBadRequest
	}

	c.JSON(status, models.ExtractResponse{
		Site:   req.Site,
		URL:    req.URL,
		Timing: timing,
		Error:  detail,
	})
}
