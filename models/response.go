package models

// ScreenshotResponse is the response for POST /api/v1/screenshot.
type ScreenshotResponse struct {
	// Success indicates whether the capture completed without errors.
	Success bool `json:"success"`

	// Image is the base64-encoded screenshot in the requested format.
	Image string `json:"image,omitempty"`

	// Format is the delivered image encoding ("png" or "jpeg").
	Format string `json:"format,omitempty"`

	// Width and Height are the final image dimensions in pixels.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// PageHeight is the stabilized document height used by the capture,
	// zero for fixed-height captures.
	PageHeight int `json:"page_height,omitempty"`

	// Strategy reports which capture path produced the image:
	// "fixed", "single" or "tiled".
	Strategy string `json:"strategy,omitempty"`

	// TileCount is the number of stitched tiles (tiled strategy only).
	TileCount int `json:"tile_count,omitempty"`

	// FinalURL is the URL after following all redirects.
	FinalURL string `json:"final_url,omitempty"`

	// Metadata contains page metadata extracted from the rendered HTML.
	Metadata Metadata `json:"metadata"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// Metadata holds page-level information extracted alongside the screenshot.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
	Language    string `json:"language,omitempty"`
	OGImage     string `json:"og_image,omitempty"`
	SourceURL   string `json:"source_url"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// NavigationMs is the time spent navigating and rendering the page.
	NavigationMs int64 `json:"navigation_ms"`

	// CaptureMs is the time spent probing, scrolling, capturing and stitching.
	CaptureMs int64 `json:"capture_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}
