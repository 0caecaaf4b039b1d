package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"image"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AmanSainju12/pagecapture/browser"
	"github.com/AmanSainju12/pagecapture/meta"
	"github.com/AmanSainju12/pagecapture/models"
	"github.com/AmanSainju12/pagecapture/webhook"
	"github.com/gin-gonic/gin"
)

// batchStore holds all in-flight and completed batch jobs.
var batchStore sync.Map

func init() {
	// Background goroutine to expire batch jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			batchStore.Range(func(key, value any) bool {
				job := value.(*models.BatchJob)
				if job.CreatedAt < cutoff {
					batchStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// PostBatch returns a handler for POST /api/v1/batch/screenshot.
// It validates the request, creates a batch job, and launches goroutines
// to capture each URL concurrently.
func PostBatch(b *browser.Browser) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		if len(req.URLs) > 100 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "maximum 100 URLs per batch",
				},
			})
			return
		}

		jobID := "batch-" + randomID()
		job := &models.BatchJob{
			ID:        jobID,
			Status:    "processing",
			Total:     len(req.URLs),
			Completed: 0,
			Results:   make([]*models.ScreenshotResponse, len(req.URLs)),
			CreatedAt: time.Now().Unix(),
		}
		batchStore.Store(jobID, job)

		// Launch captures in background.
		go runBatch(b, job, req)

		c.JSON(http.StatusOK, models.BatchResponse{
			ID:     jobID,
			Status: "processing",
			Total:  len(req.URLs),
		})
	}
}

// GetBatch returns a handler for GET /api/v1/batch/:id.
func GetBatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("id")
		val, ok := batchStore.Load(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "batch job not found",
				},
			})
			return
		}

		job := val.(*models.BatchJob)
		c.JSON(http.StatusOK, models.BatchStatusResponse{
			ID:        job.ID,
			Status:    job.Status,
			Completed: job.Completed,
			Total:     job.Total,
			Results:   job.Results,
		})
	}
}

// runBatch processes all URLs in a batch job with concurrency limited by a
// semaphore sized to the page pool. When a webhook URL is configured, a
// signed "batch.completed" event is delivered once every URL has finished.
func runBatch(b *browser.Browser, job *models.BatchJob, req models.BatchRequest) {
	maxConcurrent := b.Stats().MaxPages
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	sem := make(chan struct{}, maxConcurrent)

	var wg sync.WaitGroup
	var completed atomic.Int32
	var failed atomic.Int32

	for i, rawURL := range req.URLs {
		wg.Add(1)
		go func(idx int, targetURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resp := captureOne(b, targetURL, req.Options)
			job.Results[idx] = resp

			if resp.Success {
				completed.Add(1)
			} else {
				failed.Add(1)
			}
			job.Completed = int(completed.Load()) + int(failed.Load())
		}(i, rawURL)
	}

	wg.Wait()

	failedCount := int(failed.Load())
	completedCount := int(completed.Load())

	switch {
	case failedCount == job.Total:
		job.Status = "failed"
	case failedCount > 0:
		job.Status = "partial"
	default:
		job.Status = "completed"
	}
	job.Completed = completedCount + failedCount

	slog.Info("batch job finished",
		"id", job.ID,
		"status", job.Status,
		"completed", completedCount,
		"failed", failedCount,
		"total", job.Total,
	)

	if req.WebhookURL != "" {
		webhook.DeliverAsync(req.WebhookURL, req.WebhookSecret, &webhook.Event{
			Type:      "batch.completed",
			JobID:     job.ID,
			Timestamp: time.Now().Unix(),
			Data: models.BatchStatusResponse{
				ID:        job.ID,
				Status:    job.Status,
				Completed: job.Completed,
				Total:     job.Total,
				Results:   job.Results,
			},
		})
	}
}

// captureOne performs a single capture for one URL using shared batch options.
func captureOne(b *browser.Browser, targetURL string, opts models.BatchOptions) *models.ScreenshotResponse {
	totalStart := time.Now()

	sreq := &models.ScreenshotRequest{
		URL:            targetURL,
		FullPage:       opts.FullPage,
		Width:          opts.Width,
		Height:         opts.Height,
		Format:         opts.Format,
		Quality:        opts.Quality,
		Timeout:        opts.Timeout,
		Stealth:        opts.Stealth,
		BlockAds:       opts.BlockAds,
		RemoveOverlays: opts.RemoveOverlays,
	}
	sreq.Defaults()

	captureStart := time.Now()
	result, err := b.DoScreenshot(context.Background(), sreq)
	captureMs := time.Since(captureStart).Milliseconds()

	if err != nil {
		capErr, ok := err.(*models.CaptureError)
		if !ok {
			capErr = models.NewCaptureError(models.ErrCodeInternal, err.Error(), err)
		}
		return &models.ScreenshotResponse{
			Success: false,
			Error:   capErr.ToDetail(),
			Timing: models.TimingInfo{
				TotalMs:   time.Since(totalStart).Milliseconds(),
				CaptureMs: captureMs,
			},
		}
	}

	metadata := meta.Extract(result.RawHTML, result.FinalURL)
	if metadata.Title == "" {
		metadata.Title = result.Title
	}

	width, height := 0, 0
	if cfg, _, decErr := image.DecodeConfig(bytes.NewReader(result.Image)); decErr == nil {
		width, height = cfg.Width, cfg.Height
	}

	return &models.ScreenshotResponse{
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
}

// randomID generates a short random hex string for job IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
