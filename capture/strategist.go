package capture

import (
	"bytes"
	"fmt"
	"image/png"
	"log/slog"
	"time"
)

const (
	// minCaptureBytes is the smallest plausible screenshot. Anything
	// below this is an empty or truncated capture.
	minCaptureBytes = 1000

	// remainderMargin is added to the remainder tile's viewport so lazy
	// content appearing during the final scroll is not cut off.
	remainderMargin = 150
)

// Options configures a single screenshot request against a session.
type Options struct {
	// FullPage captures the entire document; false captures a fixed
	// (Width, Height) viewport.
	FullPage bool

	// Width is the viewport width, fixed for the whole capture.
	Width int

	// Height is the viewport height used when FullPage is false.
	Height int

	// TileThreshold is the stabilized height above which the tiled
	// strategy replaces the single-shot capture.
	TileThreshold int

	// TileHeight is the nominal tile height for the tiled strategy.
	// A configured constant, independent of the measured page height.
	TileHeight int

	// SettleDelay is the pause after every scroll and resize.
	SettleDelay time.Duration

	// FallbackHeight substitutes when the height probe reads zero.
	FallbackHeight int

	// MaxProbeIterations bounds the height stabilization loop.
	MaxProbeIterations int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1366
	}
	if o.Height <= 0 {
		o.Height = 900
	}
	if o.TileThreshold <= 0 {
		o.TileThreshold = 15000
	}
	if o.TileHeight <= 0 {
		o.TileHeight = 15000
	}
	if o.FallbackHeight <= 0 {
		o.FallbackHeight = 22000
	}
	if o.MaxProbeIterations <= 0 {
		o.MaxProbeIterations = 10
	}
	return o
}

// Result is the outcome of a capture, with enough detail for the caller
// to report which path produced the image.
type Result struct {
	// PNG is the final lossless image.
	PNG []byte

	// Strategy is "fixed", "single" or "tiled".
	Strategy string

	// PageHeight is the stabilized document height (zero for "fixed").
	PageHeight int

	// TileCount is the number of stitched tiles ("tiled" only).
	TileCount int
}

// Screenshot runs the full pipeline: stabilize the height, pick a
// strategy, capture, and (for the tiled path) stitch the tiles.
//
// Any session failure aborts the whole capture; partial tile sets are
// discarded rather than merged into a silently corrupt composite.
func Screenshot(s Session, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	if !opts.FullPage {
		return captureFixed(s, opts)
	}

	height, err := StabilizeHeight(s, ProbeOptions{
		SettleDelay:    opts.SettleDelay,
		MaxIterations:  opts.MaxProbeIterations,
		FallbackHeight: opts.FallbackHeight,
	})
	if err != nil {
		return nil, err
	}

	if height <= opts.TileThreshold {
		return captureSingle(s, opts, height)
	}
	return captureTiled(s, opts, height)
}

// captureFixed resizes to the caller's exact viewport and captures once.
func captureFixed(s Session, opts Options) (*Result, error) {
	if err := s.Resize(opts.Width, opts.Height); err != nil {
		return nil, fmt.Errorf("resize viewport: %w", err)
	}
	s.Sleep(opts.SettleDelay)

	buf, err := captureValid(s)
	if err != nil {
		return nil, err
	}
	return &Result{PNG: buf, Strategy: "fixed"}, nil
}

// captureSingle handles full pages short enough for one screenshot call.
// The viewport is grown to the stabilized height plus the chrome offset
// so the content area, not the outer window, matches the page.
func captureSingle(s Session, opts Options, height int) (*Result, error) {
	offset, err := chromeOffset(s)
	if err != nil {
		return nil, err
	}
	if err := s.Resize(opts.Width, height+offset); err != nil {
		return nil, fmt.Errorf("resize viewport: %w", err)
	}
	s.Sleep(opts.SettleDelay)

	// Some pages only load below-the-fold content once it has been
	// scrolled into view, so visit the bottom and come back.
	if err := scrollTo(s, 0, height); err != nil {
		return nil, err
	}
	s.Sleep(opts.SettleDelay)
	if err := scrollTo(s, 0, 0); err != nil {
		return nil, err
	}
	s.Sleep(opts.SettleDelay)

	buf, err := captureValid(s)
	if err != nil {
		return nil, err
	}
	slog.Debug("single-shot capture complete", "height", height, "bytes", len(buf))
	return &Result{PNG: buf, Strategy: "single", PageHeight: height}, nil
}

// captureTiled walks the page in fixed-height tiles and stitches them.
//
// The scroll offset advances by each tile's actual decoded pixel height,
// not the nominal tile height, so scroll or render drift never loses or
// duplicates content between tiles.
func captureTiled(s Session, opts Options, height int) (*Result, error) {
	chrome, err := chromeOffset(s)
	if err != nil {
		return nil, err
	}
	if err := s.Resize(opts.Width, opts.TileHeight+chrome); err != nil {
		return nil, fmt.Errorf("resize viewport: %w", err)
	}
	s.Sleep(opts.SettleDelay)

	tileCount := height / opts.TileHeight
	slog.Debug("tiled capture starting",
		"pageHeight", height,
		"tileHeight", opts.TileHeight,
		"tiles", tileCount,
	)

	tiles := make([]Tile, 0, tileCount+1)
	offset := 0
	for i := 0; i < tileCount; i++ {
		if err := scrollTo(s, 0, offset); err != nil {
			return nil, err
		}
		s.Sleep(opts.SettleDelay)

		buf, err := captureValid(s)
		if err != nil {
			return nil, fmt.Errorf("tile %d: %w", i, err)
		}
		img, err := png.Decode(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("tile %d: decode: %w", i, err)
		}

		tiles = append(tiles, Tile{Image: img, Offset: offset})
		offset += img.Bounds().Dy()
	}

	remainder := height % opts.TileHeight
	if remainder != 0 {
		tile, err := captureRemainder(s, opts, height, chrome, remainder, tileCount)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, *tile)
	}

	composite, err := Merge(tiles, opts.Width)
	if err != nil {
		return nil, err
	}
	return &Result{
		PNG:        composite,
		Strategy:   "tiled",
		PageHeight: height,
		TileCount:  len(tiles),
	}, nil
}

// captureRemainder grabs the final partial tile below the last full one.
func captureRemainder(s Session, opts Options, height, chrome, remainder, tilesCaptured int) (*Tile, error) {
	// Pin the body taller than the page so the browser cannot clamp the
	// final scroll position short of the true bottom.
	_, err := s.Evaluate(fmt.Sprintf(`() => document.body.style.height = '%dpx'`, height+opts.TileHeight))
	if err != nil {
		return nil, fmt.Errorf("pin body height: %w", err)
	}

	if err := s.Resize(opts.Width, remainder+chrome+remainderMargin); err != nil {
		return nil, fmt.Errorf("resize viewport for remainder: %w", err)
	}
	s.Sleep(opts.SettleDelay)

	scrollOffset := opts.TileHeight * tilesCaptured
	if err := scrollTo(s, 0, scrollOffset); err != nil {
		return nil, err
	}
	s.Sleep(opts.SettleDelay)

	buf, err := captureValid(s)
	if err != nil {
		return nil, fmt.Errorf("remainder tile: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("remainder tile: decode: %w", err)
	}

	slog.Debug("remainder tile captured", "remainder", remainder, "scrollOffset", scrollOffset)
	return &Tile{Image: img, Offset: scrollOffset}, nil
}

// captureValid captures the viewport and rejects implausibly small output.
func captureValid(s Session) ([]byte, error) {
	buf, err := s.Capture()
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	if !IsValidScreenshot(buf, minCaptureBytes) {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidCapture, len(buf))
	}
	return buf, nil
}
