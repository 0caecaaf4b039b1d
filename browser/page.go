package browser

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/AmanSainju12/pagecapture/capture"
	"github.com/AmanSainju12/pagecapture/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// Result is the output of a completed screenshot request.
type Result struct {
	// Image is the encoded screenshot in the requested format.
	Image  []byte
	Format string

	// PageHeight is the stabilized document height (full-page only).
	PageHeight int

	// Strategy is the capture path taken: "fixed", "single" or "tiled".
	Strategy string

	// TileCount is the number of stitched tiles (tiled strategy only).
	TileCount int

	// Title and FinalURL come from the rendered page.
	Title    string
	FinalURL string

	// RawHTML is the rendered document, used for metadata extraction.
	RawHTML string
}

// DoScreenshot drives one full capture against a pooled page.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Timeout guard          – hard deadline on the entire operation
//  2. Acquire page           – borrow a tab from the pool (or create one)
//  3. DEFER: cleanup         – about:blank + health-scored return to pool
//  4. Stealth injection      – mask navigator.webdriver etc. (before navigation!)
//  5. Headers + cookies      – must be installed before navigation
//  6. Hijack mount           – ad/tracker blocking only; assets are the screenshot
//  7. Context binding        – propagate timeout to all Rod operations
//  8. Navigate               – triggers page load
//  9. Wait                   – DOM stable
//  10. Overlays + actions    – optional pre-capture interactions
//  11. Capture pipeline      – probe height, pick strategy, tile, stitch
//  12. Encode + extract      – JPEG conversion, title, final URL, HTML
//
// The page's scroll position and viewport are mutated throughout; the
// page is exclusively owned by this request until the deferred return.
func (b *Browser) DoScreenshot(ctx context.Context, req *models.ScreenshotRequest) (*Result, error) {
	// ── 1. Timeout guard ──────────────────────────────────────────────
	timeout := time.Duration(req.Timeout) * time.Second
	if timeout > b.captureCfg.MaxTimeout {
		timeout = b.captureCfg.MaxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// ── 2. Acquire page from pool ─────────────────────────────────────
	handle, acquireErr := b.pool.Get()
	if acquireErr != nil {
		return nil, models.NewCaptureError(
			models.ErrCodeSessionUnavailable,
			"failed to acquire page from pool",
			acquireErr,
		)
	}
	page := handle.page

	// ── 3. CRITICAL DEFER: reset page + guarantee pool return ────────
	// about:blank uses the ORIGINAL page reference (without request
	// context), so cleanup succeeds even if the request context expired.
	captureOK := false
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		b.pool.Put(handle, captureOK)
	}()

	// ── 4. Stealth injection ──────────────────────────────────────────
	if req.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	// ── 5. Extra headers + cookies ───────────────────────────────────
	if len(req.Headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(req.Headers),
		}.Call(page)
	}
	for _, cookie := range req.Cookies {
		domain := cookie.Domain
		if domain == "" {
			if u, parseErr := url.Parse(req.URL); parseErr == nil {
				domain = u.Host
			}
		}
		path := cookie.Path
		if path == "" {
			path = "/"
		}
		_, _ = proto.NetworkSetCookie{
			Name:   cookie.Name,
			Value:  cookie.Value,
			Domain: domain,
			Path:   path,
		}.Call(page)
	}

	// ── 6. Mount hijack router (ad/tracking domains only) ────────────
	router := setupHijack(page, req.BlockAds)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	// ── 7. Bind request context to page ───────────────────────────────
	p := page.Context(ctx)

	// ── 8. Navigate ───────────────────────────────────────────────────
	if navErr := p.Navigate(req.URL); navErr != nil {
		return nil, categorizeError(navErr, "navigation to target URL failed")
	}

	// ── 9. Wait strategy ──────────────────────────────────────────────
	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"error", stableErr,
		)
	}

	// ── 10. Overlays + actions ───────────────────────────────────────
	if req.RemoveOverlays {
		removeOverlays(p)
	}
	if len(req.Actions) > 0 {
		if err := executeActions(ctx, page, req.Actions); err != nil {
			return nil, err
		}
	}

	// ── 11. Capture pipeline ─────────────────────────────────────────
	session := &pageSession{page: p}
	capRes, capErr := capture.Screenshot(session, capture.Options{
		FullPage:           req.FullPage,
		Width:              req.Width,
		Height:             req.Height,
		TileThreshold:      req.TileThreshold,
		TileHeight:         b.captureCfg.TileHeight,
		SettleDelay:        time.Duration(req.SettleDelayMs) * time.Millisecond,
		FallbackHeight:     req.FallbackHeight,
		MaxProbeIterations: b.captureCfg.MaxProbeIterations,
	})
	if capErr != nil {
		return nil, categorizeCaptureError(capErr)
	}

	// ── 12. Encode + extract metadata ────────────────────────────────
	img := capRes.PNG
	format := "png"
	if req.Format == "jpeg" {
		jpg, convErr := capture.PNGToJPEG(capRes.PNG, req.Quality)
		if convErr != nil {
			return nil, models.NewCaptureError(
				models.ErrCodeInvalidCapture,
				"failed to convert screenshot to JPEG",
				convErr,
			)
		}
		img = jpg
		format = "jpeg"
	}

	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		// Metadata is best-effort; the screenshot itself succeeded.
		slog.Debug("failed to extract page HTML for metadata", "error", htmlErr)
	}
	title := evalStringOrEmpty(p, `() => document.title`)
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	captureOK = true
	return &Result{
		Image:      img,
		Format:     format,
		PageHeight: capRes.PageHeight,
		Strategy:   capRes.Strategy,
		TileCount:  capRes.TileCount,
		Title:      title,
		FinalURL:   finalURL,
		RawHTML:    rawHTML,
	}, nil
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// removeOverlays injects JS to remove fixed/sticky positioned elements with
// high z-index, which are typically cookie consent banners and popup
// overlays. A banner pinned to the viewport would otherwise repeat on
// every tile of a stitched capture.
func removeOverlays(p *rod.Page) {
	const js = `() => {
		const els = document.querySelectorAll('*');
		for (const el of els) {
			const style = window.getComputedStyle(el);
			const pos = style.position;
			if (pos === 'fixed' || pos === 'sticky') {
				const z = parseInt(style.zIndex, 10);
				if (z >= 900 || style.zIndex === 'auto') {
					el.remove();
				}
			}
		}
		const selectors = [
			'[class*="cookie"]', '[class*="consent"]', '[class*="overlay"]',
			'[id*="cookie"]', '[id*="consent"]', '[id*="overlay"]',
			'[class*="popup"]', '[id*="popup"]',
			'[class*="gdpr"]', '[id*="gdpr"]',
		];
		for (const sel of selectors) {
			document.querySelectorAll(sel).forEach(el => {
				const style = window.getComputedStyle(el);
				if (style.position === 'fixed' || style.position === 'sticky' || style.position === 'absolute') {
					el.remove();
				}
			});
		}
		// Modals often pin body overflow; undo it so scrolling works.
		document.documentElement.style.overflow = '';
		document.body.style.overflow = '';
	}`
	_, _ = p.Eval(js)
}

// categorizeError wraps raw errors into typed CaptureErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.CaptureError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewCaptureError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewCaptureError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewCaptureError(models.ErrCodeNavigation, msg, err)
	}
}

// categorizeCaptureError maps pipeline failures onto the error taxonomy.
func categorizeCaptureError(err error) *models.CaptureError {
	switch {
	case errors.Is(err, capture.ErrInvalidCapture):
		return models.NewCaptureError(models.ErrCodeInvalidCapture,
			"capture returned an invalid image", err)
	case errors.Is(err, capture.ErrEmptyComposite):
		return models.NewCaptureError(models.ErrCodeEmptyComposite,
			"no tiles were produced for merging", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return models.NewCaptureError(models.ErrCodeTimeout,
			"capture timed out", err)
	default:
		return models.NewCaptureError(models.ErrCodeSessionUnavailable,
			"browser session failed during capture", err)
	}
}
