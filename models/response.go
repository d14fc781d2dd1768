package models

// ExtractResponse is the response for POST /api/v1/extract.
type ExtractResponse struct {
	// Success indicates whether navigation succeeded and every
	// extraction routine completed without error. Individual routine
	// failures leave Success false but still return partial Fields.
	Success bool `json:"success"`

	// Site is the extractor that handled the request.
	Site string `json:"site"`

	// URL is the address that was loaded.
	URL string `json:"url"`

	// Fields maps field names to extracted values. A field whose
	// routine failed is absent.
	Fields map[string]string `json:"fields"`

	// Failures lists the failure message of every routine that did not
	// complete, in routine registration order.
	Failures []string `json:"failures,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when the whole cycle failed (session
	// acquisition or navigation).
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// NavigationMs is the time spent loading the page.
	NavigationMs int64 `json:"navigation_ms"`

	// ExtractionMs is the time spent running the extraction routines.
	ExtractionMs int64 `json:"extraction_ms"`
}

// SitesResponse is the response for GET /api/v1/sites.
type SitesResponse struct {
	Sites []string `json:"sites"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"` // always "healthy"; the server holds no browser state
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
