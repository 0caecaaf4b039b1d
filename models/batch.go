package models

// BatchRequest is the payload for POST /api/v1/batch/screenshot.
type BatchRequest struct {
	// URLs is the list of pages to capture. Required.
	URLs []string `json:"urls" binding:"required,min=1,max=100"`

	// Options contains shared capture settings applied to all URLs.
	Options BatchOptions `json:"options"`

	// WebhookURL, when set, receives a signed "batch.completed" event
	// once every URL has been processed.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// WebhookSecret signs the webhook payload with HMAC-SHA256.
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// BatchOptions are the shared capture settings applied to every URL in a batch.
type BatchOptions struct {
	FullPage       bool   `json:"full_page,omitempty"`
	Width          int    `json:"width,omitempty" binding:"omitempty,min=320,max=3840"`
	Height         int    `json:"height,omitempty" binding:"omitempty,min=240,max=20000"`
	Format         string `json:"format,omitempty" binding:"omitempty,oneof=png jpeg"`
	Quality        int    `json:"quality,omitempty" binding:"omitempty,min=1,max=100"`
	Timeout        int    `json:"timeout,omitempty" binding:"omitempty,min=1,max=600"`
	Stealth        bool   `json:"stealth,omitempty"`
	BlockAds       bool   `json:"block_ads,omitempty"`
	RemoveOverlays bool   `json:"remove_overlays,omitempty"`
}

// BatchResponse is the immediate response for POST /api/v1/batch/screenshot.
type BatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// BatchStatusResponse is the response for GET /api/v1/batch/:id.
type BatchStatusResponse struct {
	ID        string                `json:"id"`
	Status    string                `json:"status"`
	Completed int                   `json:"completed"`
	Total     int                   `json:"total"`
	Results   []*ScreenshotResponse `json:"results,omitempty"`
}

// BatchJob tracks an in-progress batch capture operation.
type BatchJob struct {
	ID        string
	Status    string // "processing", "completed", "partial", "failed"
	Total     int
	Completed int
	Results   []*ScreenshotResponse
	CreatedAt int64 // unix timestamp
}
