package models

// ScreenshotRequest is the payload for POST /api/v1/screenshot.
type ScreenshotRequest struct {
	// URL is the target page to capture. Required.
	URL string `json:"url" binding:"required,url"`

	// FullPage captures the entire rendered document instead of a
	// fixed-height viewport. Pages taller than TileThreshold are captured
	// in tiles and stitched together.
	// Default: false.
	FullPage bool `json:"full_page,omitempty"`

	// Width is the viewport width in pixels for the whole capture.
	// Default: 1366.
	Width int `json:"width,omitempty" binding:"omitempty,min=320,max=3840"`

	// Height is the viewport height in pixels. Honored only when
	// FullPage is false.
	// Default: 900.
	Height int `json:"height,omitempty" binding:"omitempty,min=240,max=20000"`

	// TileThreshold is the page height in pixels above which the tiled
	// capture strategy is used instead of a single screenshot call.
	// Default: 15000.
	TileThreshold int `json:"tile_threshold,omitempty" binding:"omitempty,min=1000"`

	// SettleDelayMs is the pause after every scroll/resize, giving lazy
	// content time to render before the next capture.
	// Default: 2000.
	SettleDelayMs int `json:"settle_delay_ms,omitempty" binding:"omitempty,min=0,max=30000"`

	// FallbackHeight substitutes for the page height when every probe
	// reading comes back zero (broken CSS, empty body).
	// Default: 22000.
	FallbackHeight int `json:"fallback_height,omitempty" binding:"omitempty,min=1"`

	// Format selects the output encoding. PNG is lossless; JPEG is
	// converted from the PNG composite.
	// Allowed: "png" (default), "jpeg".
	Format string `json:"format,omitempty" binding:"omitempty,oneof=png jpeg"`

	// Quality is the JPEG quality (1-100). Ignored for PNG.
	// Default: 90.
	Quality int `json:"quality,omitempty" binding:"omitempty,min=1,max=100"`

	// Timeout is the maximum duration in seconds for the entire capture
	// (navigation + rendering + tiling + stitching).
	// Default: 120. Max: 600. Tiled captures of very long pages are slow.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=600"`

	// Stealth enables anti-bot-detection evasions (e.g. navigator.webdriver masking).
	// Default: false.
	Stealth bool `json:"stealth,omitempty"`

	// BlockAds blocks requests to known ad/tracking domains. Images and
	// stylesheets are never blocked: they are the screenshot.
	// Default: false.
	BlockAds bool `json:"block_ads,omitempty"`

	// RemoveOverlays strips cookie banners and fixed-position popups
	// before capturing.
	// Default: false.
	RemoveOverlays bool `json:"remove_overlays,omitempty"`

	// Cookies are injected before navigation.
	Cookies []Cookie `json:"cookies,omitempty"`

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string `json:"headers,omitempty"`

	// Actions are executed in order after page load and before capture.
	Actions []Action `json:"actions,omitempty"`

	// MaxAge enables the response cache: a cached screenshot younger
	// than MaxAge milliseconds is returned without driving the browser.
	// Default: 0 (cache disabled).
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *ScreenshotRequest) Defaults() {
	if r.Width == 0 {
		r.Width = 1366
	}
	if r.Height == 0 {
		r.Height = 900
	}
	if r.TileThreshold == 0 {
		r.TileThreshold = 15000
	}
	if r.SettleDelayMs == 0 {
		r.SettleDelayMs = 2000
	}
	if r.FallbackHeight == 0 {
		r.FallbackHeight = 22000
	}
	if r.Format == "" {
		r.Format = "png"
	}
	if r.Quality == 0 {
		r.Quality = 90
	}
	if r.Timeout == 0 {
		r.Timeout = 120
	}
}

// Cookie is a cookie injected into the browser before navigation.
type Cookie struct {
	Name   string `json:"name" binding:"required"`
	Value  string `json:"value" binding:"required"`
	Domain string `json:"domain,omitempty"`
	Path   string `json:"path,omitempty"`
}

// Action is a single browser interaction executed before capture.
type Action struct {
	// Type is one of "wait", "click", "scroll", "execute_js".
	Type string `json:"type" binding:"required,oneof=wait click scroll execute_js"`

	// Selector is the CSS selector for "click", or the element "wait" blocks on.
	Selector string `json:"selector,omitempty"`

	// Milliseconds is the duration for "wait" when no selector is given.
	Milliseconds int `json:"milliseconds,omitempty"`

	// Direction is "down" (default) or "up" for "scroll".
	Direction string `json:"direction,omitempty"`

	// Amount is the number of viewports to scroll for "scroll".
	Amount int `json:"amount,omitempty"`

	// Code is the JavaScript for "execute_js".
	Code string `json:"code,omitempty"`
}
