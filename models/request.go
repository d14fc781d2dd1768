package models

// ExtractRequest is the payload for POST /api/v1/extract.
type ExtractRequest struct {
	// Site selects a registered page extractor (e.g. "amazon.book",
	// "article"). Required.
	Site string `json:"site" binding:"required"`

	// URL is the target page to load. Required.
	URL string `json:"url" binding:"required,url"`

	// Timeout is the maximum duration in seconds for the entire
	// navigate + extract operation. Default: 30. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`

	// Stealth enables anti-bot-detection evasions for the session
	// opened for this request (e.g. navigator.webdriver masking).
	// Default: false.
	Stealth bool `json:"stealth,omitempty"`

	// CDPURL connects the session to an existing browser over the
	// Chrome DevTools Protocol instead of launching a local one.
	CDPURL string `json:"cdp_url,omitempty" binding:"omitempty,url"`
}

// Defaults applies default values to unset fields.
func (r *ExtractRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 30
	}
}
