package handler

import (
	"bytes"
	"encoding/base64"
	"image"
	"net/http"
	"time"

	"github.com/AmanSainju12/pagecapture/browser"
	"github.com/AmanSainju12/pagecapture/cache"
	"github.com/AmanSainju12/pagecapture/meta"
	"github.com/AmanSainju12/pagecapture/models"
	"github.com/gin-gonic/gin"

	_ "image/jpeg"
	_ "image/png"
)

// Screenshot returns a handler for POST /api/v1/screenshot.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Cache lookup when the client opted in with max_age.
//  3. Browser.DoScreenshot → encoded image + page facts.
//  4. Metadata extraction from the rendered HTML.
//  5. Fill Timing, store in cache, return 200.
func Screenshot(b *browser.Browser, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ScreenshotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScreenshotResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		// ── 2. Cache lookup ─────────────────────────────────────────
		if cc != nil && req.MaxAge > 0 {
			cacheKey := cache.Key(req.URL, req.FullPage, req.Width, req.Height, req.Format)
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				resp := *cached
				resp.CacheStatus = "hit"
				resp.Timing = models.TimingInfo{
					TotalMs: time.Since(totalStart).Milliseconds(),
				}
				c.JSON(http.StatusOK, &resp)
				return
			}
		}

		// ── 3. Capture ──────────────────────────────────────────────
		captureStart := time.Now()
		result, err := b.DoScreenshot(c.Request.Context(), &req)
		captureMs := time.Since(captureStart).Milliseconds()

		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs:   time.Since(totalStart).Milliseconds(),
				CaptureMs: captureMs,
			})
			return
		}

		// ── 4. Metadata + image dimensions ──────────────────────────
		metadata := meta.Extract(result.RawHTML, result.FinalURL)
		if metadata.Title == "" {
			metadata.Title = result.Title
		}

		width, height := imageDims(result.Image)

		// ── 5. Build response ───────────────────────────────────────
		resp := &models.ScreenshotResponse{
			Success:    true,
			Image:      base64.StdEncoding.EncodeToString(result.Image),
			Format:     result.Format,
			Width:      width,
			Height:     height,
			PageHeight: result.PageHeight,
			Strategy:   result.Strategy,
			TileCount:  result.TileCount,
			FinalURL:   result.FinalURL,
			Metadata:   metadata,
			Timing: models.TimingInfo{
				TotalMs:   time.Since(totalStart).Milliseconds(),
				CaptureMs: captureMs,
			},
		}

		// ── 6. Cache store ──────────────────────────────────────────
		if cc != nil && req.MaxAge > 0 {
			cacheKey := cache.Key(req.URL, req.FullPage, req.Width, req.Height, req.Format)
			cc.Set(cacheKey, resp)
			resp.CacheStatus = "miss"
		}

		c.JSON(http.StatusOK, resp)
	}
}

// imageDims decodes only the image header to report final dimensions.
func imageDims(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

// respondError maps a CaptureError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	capErr, ok := err.(*models.CaptureError)
	if !ok {
		capErr = models.NewCaptureError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(capErr), models.ScreenshotResponse{
		Success: false,
		Error:   capErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.CaptureError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation, models.ErrCodeSessionUnavailable:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
