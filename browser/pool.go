package browser

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Retirement thresholds for pooled pages. A tab that keeps failing, has
// served many captures, or has simply lived long enough accumulates
// renderer state (caches, service workers, leaked listeners) and gets
// replaced by a fresh one.
const (
	retireErrScore = 3.0
	retireUseCount = 50
	retireAge      = 50 * time.Minute
)

// pageHandle wraps a pooled page with health tracking metadata.
type pageHandle struct {
	page     *rod.Page
	errScore float64
	useCount int
	created  time.Time
	mu       sync.Mutex
}

// recordResult applies health scoring after a capture.
func (h *pageHandle) recordResult(success bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.useCount++
	if success {
		h.errScore = math.Max(0, h.errScore-0.5)
	} else {
		h.errScore += 1.0
	}
}

// shouldRetire returns true if the page should be destroyed instead of
// returned to the pool.
func (h *pageHandle) shouldRetire() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.errScore >= retireErrScore {
		return true
	}
	if h.useCount >= retireUseCount {
		return true
	}
	return time.Since(h.created) >= retireAge
}

// pagePool is a bounded pool of browser tabs with health-based
// recycling. Pages are created lazily up to the capacity.
type pagePool struct {
	browser *rod.Browser
	idle    chan *pageHandle
	created atomic.Int32 // live handles (idle + active)
	active  atomic.Int32 // currently checked-out handles
	max     int32
}

func newPagePool(browser *rod.Browser, maxPages int) *pagePool {
	if maxPages < 1 {
		maxPages = 1
	}
	return &pagePool{
		browser: browser,
		idle:    make(chan *pageHandle, maxPages),
		max:     int32(maxPages),
	}
}

// Get acquires a page handle, creating a new tab if the pool is under
// capacity, otherwise blocking until one is returned.
func (p *pagePool) Get() (*pageHandle, error) {
	select {
	case h := <-p.idle:
		p.active.Add(1)
		return h, nil
	default:
	}

	if p.created.Add(1) <= p.max {
		page, err := p.browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			p.created.Add(-1)
			return nil, err
		}
		p.active.Add(1)
		return &pageHandle{page: page, created: time.Now()}, nil
	}
	p.created.Add(-1)

	h := <-p.idle
	p.active.Add(1)
	return h, nil
}

// Put returns a handle to the pool, retiring unhealthy pages. Retired
// pages are closed; their slot is freed for lazy recreation on demand.
func (p *pagePool) Put(h *pageHandle, success bool) {
	p.active.Add(-1)
	h.recordResult(success)

	if h.shouldRetire() {
		slog.Debug("page pool: retiring page",
			"errScore", h.errScore, "useCount", h.useCount)
		_ = h.page.Close()
		p.created.Add(-1)
		return
	}
	p.idle <- h
}

// ActiveCount returns the number of currently checked-out handles.
func (p *pagePool) ActiveCount() int {
	return int(p.active.Load())
}

// Stop closes all idle pages. Tabs still serving a capture are reaped
// when the browser process itself is closed.
func (p *pagePool) Stop() {
	for {
		select {
		case h := <-p.idle:
			_ = h.page.Close()
			p.created.Add(-1)
		default:
			return
		}
	}
}
