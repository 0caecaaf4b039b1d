package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// screenshotRequest mirrors the PageCapture API request model.
type screenshotRequest struct {
	URL      string `json:"url"`
	FullPage bool   `json:"full_page,omitempty"`
	Width    int    `json:"width,omitempty"`
	Format   string `json:"format,omitempty"`
}

// screenshotResponse mirrors the PageCapture API response model.
type screenshotResponse struct {
	Success    bool   `json:"success"`
	Image      string `json:"image"`
	Format     string `json:"format"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	PageHeight int    `json:"page_height"`
	Strategy   string `json:"strategy"`
	TileCount  int    `json:"tile_count"`
	FinalURL   string `json:"final_url"`
	Metadata   *struct {
		Title     string `json:"title"`
		SourceURL string `json:"source_url"`
	} `json:"metadata"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// batchResponse mirrors the PageCapture batch API response.
type batchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// batchStatusResponse mirrors the PageCapture batch status API response.
type batchStatusResponse struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	Completed int               `json:"completed"`
	Total     int               `json:"total"`
	Results   []json.RawMessage `json:"results"`
}

func main() {
	apiURL := os.Getenv("PAGECAPTURE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("PAGECAPTURE_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "PAGECAPTURE_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"pagecapture",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	screenshotURLTool := mcp.NewTool("screenshot_url",
		mcp.WithDescription("Capture a screenshot of a web page. Full-page mode scrolls through the entire document, capturing it in tiles and stitching them into one tall image, so even pages tens of thousands of pixels long come back complete."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to capture"),
		),
		mcp.WithBoolean("full_page",
			mcp.Description("Capture the entire page instead of a single viewport (default: false)"),
		),
		mcp.WithNumber("width",
			mcp.Description("Viewport width in pixels (default: 1366)"),
		),
		mcp.WithString("format",
			mcp.Description("Image format: 'png' (default, lossless) or 'jpeg' (smaller)"),
			mcp.Enum("png", "jpeg"),
		),
		mcp.WithString("output_path",
			mcp.Description("Optional local file path to save the image to. When set, the tool returns the path instead of the image data."),
		),
	)
	s.AddTool(screenshotURLTool, handleScreenshotURL(apiURL, apiKey))

	// batch_screenshot tool
	batchScreenshotTool := mcp.NewTool("batch_screenshot",
		mcp.WithDescription("Capture screenshots of multiple URLs in parallel. Returns a status line per URL; images are saved under output_dir."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of URLs to capture"),
		),
		mcp.WithBoolean("full_page",
			mcp.Description("Capture entire pages instead of single viewports (default: false)"),
		),
		mcp.WithString("format",
			mcp.Description("Image format: 'png' (default) or 'jpeg'"),
			mcp.Enum("png", "jpeg"),
		),
		mcp.WithString("output_dir",
			mcp.Required(),
			mcp.Description("Local directory to save the captured images into"),
		),
	)
	s.AddTool(batchScreenshotTool, handleBatchScreenshot(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the PageCapture API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// pollJobCompletion polls a job endpoint until status is no longer "processing" or context is cancelled.
func pollJobCompletion(ctx context.Context, client *http.Client, apiURL, apiKey, endpoint string) ([]byte, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+endpoint, nil)
			if err != nil {
				return nil, fmt.Errorf("create poll request: %w", err)
			}
			req.Header.Set("X-API-Key", apiKey)

			resp, err := client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("poll request failed: %w", err)
			}

			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read poll response: %w", err)
			}

			// Quick check if still processing.
			var status struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse poll status: %w", err)
			}

			if status.Status != "processing" {
				return body, nil
			}
		}
	}
}

func handleScreenshotURL(apiURL, apiKey string) server.ToolHandlerFunc {
	// Tiled full-page captures of very long pages can take minutes.
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := screenshotRequest{
			URL:      url,
			FullPage: request.GetBool("full_page", false),
			Width:    request.GetInt("width", 0),
			Format:   request.GetString("format", ""),
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/screenshot", reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("screenshot request failed: %v", err)), nil
		}

		var shotResp screenshotResponse
		if err := json.Unmarshal(respBody, &shotResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !shotResp.Success {
			errMsg := "screenshot failed"
			if shotResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", shotResp.Error.Code, shotResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		summary := formatSummary(&shotResp)

		if outputPath := request.GetString("output_path", ""); outputPath != "" {
			if err := saveImage(outputPath, shotResp.Image); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to save image: %v", err)), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("Saved to %s\n%s", outputPath, summary)), nil
		}

		return mcp.NewToolResultImage(summary, shotResp.Image, mimeType(shotResp.Format)), nil
	}
}

func handleBatchScreenshot(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
		}
		outputDir, err := request.RequireString("output_dir")
		if err != nil {
			return mcp.NewToolResultError("output_dir is required"), nil
		}
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create output dir: %v", err)), nil
		}

		format := request.GetString("format", "png")
		payload := map[string]interface{}{
			"urls": urls,
			"options": map[string]interface{}{
				"full_page": request.GetBool("full_page", false),
				"format":    format,
			},
		}

		// POST to create batch job.
		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/batch/screenshot", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("batch request failed: %v", err)), nil
		}

		var batchResp batchResponse
		if err := json.Unmarshal(respBody, &batchResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse batch response: %v", err)), nil
		}

		if batchResp.ID == "" {
			return mcp.NewToolResultError("batch job creation failed"), nil
		}

		// Poll for completion.
		resultBody, err := pollJobCompletion(ctx, client, apiURL, apiKey, "/api/v1/batch/"+batchResp.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling batch job failed: %v", err)), nil
		}

		var statusResp batchStatusResponse
		if err := json.Unmarshal(resultBody, &statusResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse batch status: %v", err)), nil
		}

		// Save images and format one status line per URL.
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Batch %s: %s (%d/%d completed)\n\n", statusResp.ID, statusResp.Status, statusResp.Completed, statusResp.Total))

		for i, raw := range statusResp.Results {
			var sr screenshotResponse
			if err := json.Unmarshal(raw, &sr); err != nil {
				sb.WriteString(fmt.Sprintf("[%d] parse error\n", i+1))
				continue
			}
			if !sr.Success {
				errMsg := "unknown error"
				if sr.Error != nil {
					errMsg = sr.Error.Message
				}
				sb.WriteString(fmt.Sprintf("[%d] FAILED: %s\n", i+1, errMsg))
				continue
			}

			path := fmt.Sprintf("%s/%03d.%s", outputDir, i+1, extension(sr.Format))
			if err := saveImage(path, sr.Image); err != nil {
				sb.WriteString(fmt.Sprintf("[%d] save failed: %v\n", i+1, err))
				continue
			}
			sb.WriteString(fmt.Sprintf("[%d] %s → %s (%dx%d, %s)\n", i+1, sr.FinalURL, path, sr.Width, sr.Height, sr.Strategy))
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}

// formatSummary builds a one-line description of a completed capture.
func formatSummary(r *screenshotResponse) string {
	title := ""
	if r.Metadata != nil {
		title = r.Metadata.Title
	}
	return fmt.Sprintf("%s (%s) — %dx%d %s, strategy=%s, tiles=%d",
		title, r.FinalURL, r.Width, r.Height, r.Format, r.Strategy, r.TileCount)
}

// saveImage decodes a base64 image and writes it to disk.
func saveImage(path, b64 string) error {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func mimeType(format string) string {
	if format == "jpeg" {
		return "image/jpeg"
	}
	return "image/png"
}

func extension(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return "png"
}
