package browser

import (
	"log/slog"
	"time"

	"github.com/AmanSainju12/pagecapture/config"
	"github.com/AmanSainju12/pagecapture/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// Browser manages the global Chromium lifecycle and the page pool.
// It is safe for concurrent use; each checked-out page serves exactly
// one capture at a time.
type Browser struct {
	browser    *rod.Browser
	pool       *pagePool
	browserCfg config.BrowserConfig
	captureCfg config.CaptureConfig
	startTime  time.Time
}

// New launches a headless browser and initialises the reusable page pool.
func New(browserCfg config.BrowserConfig, captureCfg config.CaptureConfig) (*Browser, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.DefaultProxy != "" {
		l = l.Proxy(browserCfg.DefaultProxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("no-first-run"))
	// Screenshots of long pages need a roomy shared memory segment,
	// and GPU rasterization is flaky under Xvfb.
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("hide-scrollbars"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewCaptureError(
			models.ErrCodeSessionUnavailable,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewCaptureError(
			models.ErrCodeSessionUnavailable,
			"failed to connect to browser",
			err,
		)
	}

	pool := newPagePool(browser, browserCfg.MaxPages)
	slog.Info("page pool created", "maxPages", browserCfg.MaxPages)

	return &Browser{
		browser:    browser,
		pool:       pool,
		browserCfg: browserCfg,
		captureCfg: captureCfg,
		startTime:  time.Now(),
	}, nil
}

// Stats returns a snapshot of the pool's current state.
func (b *Browser) Stats() models.PoolStats {
	return models.PoolStats{
		MaxPages:    b.browserCfg.MaxPages,
		ActivePages: b.pool.ActiveCount(),
	}
}

// Close drains the page pool and kills the browser process.
// Call this on graceful shutdown to prevent zombie Chrome processes.
func (b *Browser) Close() {
	slog.Info("browser shutting down: draining page pool")
	b.pool.Stop()
	slog.Info("browser shutting down: closing browser")
	b.browser.MustClose()
	slog.Info("browser shutdown complete")
}
