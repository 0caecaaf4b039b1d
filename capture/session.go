// Package capture implements the scroll-capture-and-merge pipeline:
// probing a page for its true rendered height, choosing between a
// single-shot and a tiled capture strategy, and stitching captured
// tiles into one lossless composite image.
//
// The package never talks to a browser directly. Everything goes
// through the Session interface, so the pipeline can be tested against
// a scripted fake instead of a live Chromium.
package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/ysmood/gson"
)

// Session is the remote browser surface the pipeline drives. All calls
// are blocking round-trips; the pipeline never overlaps them because the
// session has shared visual state (scroll position, viewport size).
type Session interface {
	// Evaluate runs a JS function string (e.g. "() => window.innerHeight")
	// against the live document and returns the result.
	Evaluate(js string) (gson.JSON, error)

	// Resize sets the viewport dimensions.
	Resize(width, height int) error

	// Capture takes a PNG bitmap of the current viewport.
	Capture() ([]byte, error)

	// Sleep is a cooperative delay allowing reflow and lazy loading.
	Sleep(d time.Duration)
}

// Sentinel errors surfaced by the pipeline. Session-level failures
// (unreachable browser, evaluate errors) propagate wrapped instead.
var (
	// ErrInvalidCapture means a capture call returned an empty or
	// implausibly small image.
	ErrInvalidCapture = errors.New("capture returned an invalid image")

	// ErrEmptyComposite means Merge was called with zero tiles, which is
	// a programming error in the caller.
	ErrEmptyComposite = errors.New("no tiles to merge")
)

// scrollTo scrolls the document to the given coordinates.
func scrollTo(s Session, x, y int) error {
	_, err := s.Evaluate(fmt.Sprintf(`() => window.scrollTo(%d, %d)`, x, y))
	if err != nil {
		return fmt.Errorf("scroll to (%d, %d): %w", x, y, err)
	}
	return nil
}

// chromeOffset returns the pixel difference between the outer window and
// the inner content area (toolbars, borders). Adding it to a resize call
// makes the content area, not the outer window, match the target height.
// In headless emulation it is usually zero.
func chromeOffset(s Session) (int, error) {
	return evalIntRetry(s, `() => window.outerHeight - window.innerHeight`)
}
