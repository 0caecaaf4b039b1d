package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL   = flag.String("api-url", "http://localhost:8080", "PageCapture API base URL")
	apiKey   = flag.String("api-key", "", "API key for authenticated requests")
	runs     = flag.Int("runs", 3, "Number of runs per URL for averaging")
	fullPage = flag.Bool("full-page", true, "Capture full pages (exercises the tiled strategy)")
	output   = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Test URLs covering short, medium and very long pages.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Short", "https://example.com"},
	{"Blog", "https://go.dev/blog/go1.21"},
	{"Docs", "https://go.dev/doc/effective_go"},
	{"News", "https://www.bbc.com/news"},
	{"Long", "https://en.wikipedia.org/wiki/History_of_mathematics"},
}

// --- Request / Response types (mirrors models package) ---

type screenshotRequest struct {
	URL      string `json:"url"`
	FullPage bool   `json:"full_page"`
	Format   string `json:"format"`
	Timeout  int    `json:"timeout"`
}

type screenshotResponse struct {
	Success    bool         `json:"success"`
	Image      string       `json:"image"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	PageHeight int          `json:"page_height"`
	Strategy   string       `json:"strategy"`
	TileCount  int          `json:"tile_count"`
	Timing     timingInfo   `json:"timing"`
	Error      *errorDetail `json:"error,omitempty"`
}

type timingInfo struct {
	TotalMs   int64 `json:"total_ms"`
	CaptureMs int64 `json:"capture_ms"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Benchmark result types ---

type runResult struct {
	Run        int    `json:"run"`
	TotalMs    int64  `json:"total_ms"`
	CaptureMs  int64  `json:"capture_ms"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	PageHeight int    `json:"page_height"`
	Strategy   string `json:"strategy"`
	TileCount  int    `json:"tile_count"`
	ImageBytes int    `json:"image_bytes"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type urlAverages struct {
	TotalMs    float64 `json:"total_ms"`
	CaptureMs  float64 `json:"capture_ms"`
	ImageBytes float64 `json:"image_bytes"`
}

type urlResult struct {
	URL      string       `json:"url"`
	Label    string       `json:"label"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	FullPage   bool        `json:"full_page"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== PageCapture Benchmark Suite ===")
	fmt.Printf("API URL:    %s\n", *apiURL)
	fmt.Printf("Full page:  %t\n", *fullPage)
	fmt.Printf("Runs/URL:   %d\n", *runs)
	fmt.Printf("Output:     %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure PageCapture is running (e.g. make run)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		FullPage:   *fullPage,
		RunsPerURL: *runs,
	}

	for _, t := range testURLs {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Label, t.URL)
		ur := urlResult{URL: t.URL, Label: t.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(t.URL, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %dx%d  %s  %d tiles\n", rr.TotalMs, rr.Width, rr.Height, rr.Strategy, rr.TileCount)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	// Print summary table.
	printTable(report.Results)

	// Write JSON report.
	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkURL(url string, run int) runResult {
	rr := runResult{Run: run}

	reqBody := screenshotRequest{
		URL:      url,
		FullPage: *fullPage,
		Format:   "png",
		Timeout:  300,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest("POST", *apiURL+"/api/v1/screenshot", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	client := &http.Client{Timeout: 330 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var sr screenshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = sr.Success
	rr.TotalMs = sr.Timing.TotalMs
	rr.CaptureMs = sr.Timing.CaptureMs
	rr.Width = sr.Width
	rr.Height = sr.Height
	rr.PageHeight = sr.PageHeight
	rr.Strategy = sr.Strategy
	rr.TileCount = sr.TileCount
	rr.ImageBytes = base64.StdEncoding.DecodedLen(len(sr.Image))

	if sr.Error != nil {
		rr.Error = sr.Error.Message
	}

	return rr
}

func computeAverages(runs []runResult) *urlAverages {
	var successCount int
	var avg urlAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.TotalMs += float64(r.TotalMs)
		avg.CaptureMs += float64(r.CaptureMs)
		avg.ImageBytes += float64(r.ImageBytes)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.TotalMs /= n
	avg.CaptureMs /= n
	avg.ImageBytes /= n
	return &avg
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tAvg Latency\tImage Size\tStrategy\tTiles\n")
	fmt.Fprintf(w, "───\t───────────\t──────────\t────────\t─────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\n", truncateURL(r.URL, 40))
			continue
		}

		strategy, tiles := dominantStrategy(r.Runs)

		fmt.Fprintf(w, "%s\t%dms\t%s\t%s\t%d\n",
			truncateURL(r.URL, 40),
			int64(r.Averages.TotalMs),
			formatInt(int(r.Averages.ImageBytes)),
			strategy,
			tiles,
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func dominantStrategy(runs []runResult) (string, int) {
	counts := map[string]int{}
	tiles := map[string]int{}
	for _, r := range runs {
		if r.Success {
			counts[r.Strategy]++
			tiles[r.Strategy] = r.TileCount
		}
	}
	best, bestCount := "", 0
	for s, count := range counts {
		if count > bestCount {
			best = s
			bestCount = count
		}
	}
	return best, tiles[best]
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
