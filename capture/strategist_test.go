package capture

import (
	"errors"
	"strings"
	"testing"
)

func TestScreenshot_FixedHeight(t *testing.T) {
	s := &fakeSession{heights: []int{9999}}

	res, err := Screenshot(s, Options{Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != "fixed" {
		t.Errorf("strategy = %q, want %q", res.Strategy, "fixed")
	}
	if s.captures != 1 {
		t.Errorf("capture calls = %d, want 1", s.captures)
	}
	// The fixed path never probes the page height.
	if s.metricCalls != 0 {
		t.Errorf("height metrics read %d times, want 0", s.metricCalls)
	}
	img := decodePNG(res.PNG)
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 800 || h != 600 {
		t.Errorf("image = %dx%d, want 800x600", w, h)
	}
}

func TestScreenshot_SingleShot(t *testing.T) {
	s := &fakeSession{heights: []int{4000, 4000}, chrome: 85}

	res, err := Screenshot(s, Options{
		FullPage:      true,
		Width:         800,
		TileThreshold: 15000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != "single" {
		t.Errorf("strategy = %q, want %q", res.Strategy, "single")
	}
	if res.PageHeight != 4000 {
		t.Errorf("page height = %d, want 4000", res.PageHeight)
	}
	if s.captures != 1 {
		t.Errorf("capture calls = %d, want 1", s.captures)
	}
	// Viewport grows by the chrome offset so the content area matches.
	if s.vpHeight != 4000+85 {
		t.Errorf("viewport height = %d, want %d", s.vpHeight, 4000+85)
	}
	// Lazy-content re-trigger: bottom then back to top.
	last := s.scrolls[len(s.scrolls)-1]
	if last != "() => window.scrollTo(0, 0)" {
		t.Errorf("last scroll = %q, want back to top", last)
	}
	prev := s.scrolls[len(s.scrolls)-2]
	if prev != "() => window.scrollTo(0, 4000)" {
		t.Errorf("second-to-last scroll = %q, want bottom of page", prev)
	}
}

func TestScreenshot_TiledWithRemainder(t *testing.T) {
	s := &fakeSession{heights: []int{2500, 2500}, chrome: 40}

	res, err := Screenshot(s, Options{
		FullPage:      true,
		Width:         800,
		TileThreshold: 1000,
		TileHeight:    1000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != "tiled" {
		t.Errorf("strategy = %q, want %q", res.Strategy, "tiled")
	}
	// floor(2500/1000) = 2 primary tiles + 1 remainder tile.
	if s.captures != 3 {
		t.Errorf("capture calls = %d, want 3", s.captures)
	}
	if res.TileCount != 3 {
		t.Errorf("tile count = %d, want 3", res.TileCount)
	}

	// The body is pinned taller than the page before the final capture.
	if !strings.Contains(s.pinnedBody, "3500px") {
		t.Errorf("body pin = %q, want height 3500px", s.pinnedBody)
	}

	// Remainder scroll offset is tileHeight x tilesCaptured.
	foundRemainderScroll := false
	for _, sc := range s.scrolls {
		if sc == "() => window.scrollTo(0, 2000)" {
			foundRemainderScroll = true
		}
	}
	if !foundRemainderScroll {
		t.Errorf("remainder scroll to offset 2000 not issued; scrolls: %v", s.scrolls)
	}

	// Composite: 1000 + 1000 + (500 remainder + 150 margin viewport)
	// pasted tiles, plus the fixed composite margin.
	img := decodePNG(res.PNG)
	wantHeight := 1000 + 1000 + 650 + CompositeMargin
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 800 || h != wantHeight {
		t.Errorf("composite = %dx%d, want 800x%d", w, h, wantHeight)
	}
}

func TestScreenshot_TiledExactDivision(t *testing.T) {
	s := &fakeSession{heights: []int{2000, 2000}}

	res, err := Screenshot(s, Options{
		FullPage:      true,
		Width:         800,
		TileThreshold: 1000,
		TileHeight:    1000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// No zero-height remainder tile is ever appended.
	if s.captures != 2 {
		t.Errorf("capture calls = %d, want 2", s.captures)
	}
	if res.TileCount != 2 {
		t.Errorf("tile count = %d, want 2", res.TileCount)
	}
	if s.pinnedBody != "" {
		t.Errorf("body height was pinned (%q) despite exact division", s.pinnedBody)
	}
}

func TestScreenshot_ThresholdBoundary(t *testing.T) {
	// stabilized = threshold + 1, tile height = threshold: one primary
	// capture plus exactly one remainder capture.
	s := &fakeSession{heights: []int{1001, 1001}}

	res, err := Screenshot(s, Options{
		FullPage:      true,
		Width:         800,
		TileThreshold: 1000,
		TileHeight:    1000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.captures != 2 {
		t.Errorf("capture calls = %d, want 2", s.captures)
	}
	if res.TileCount != 2 {
		t.Errorf("tile count = %d, want 2", res.TileCount)
	}
}

func TestScreenshot_CaptureFailureAborts(t *testing.T) {
	captureErr := errors.New("target crashed")
	s := &fakeSession{heights: []int{2500, 2500}, captureErr: captureErr}

	res, err := Screenshot(s, Options{
		FullPage:      true,
		Width:         800,
		TileThreshold: 1000,
		TileHeight:    1000,
	})
	if err == nil {
		t.Fatal("expected capture failure to abort, got nil error")
	}
	if !errors.Is(err, captureErr) {
		t.Errorf("error %v does not wrap the capture error", err)
	}
	// Partial results are discarded, never returned.
	if res != nil {
		t.Errorf("got partial result %+v, want nil", res)
	}
	// The first failed tile aborts the loop.
	if s.captures != 1 {
		t.Errorf("capture calls = %d, want 1", s.captures)
	}
}

func TestScreenshot_Idempotent(t *testing.T) {
	opts := Options{
		FullPage:      true,
		Width:         800,
		TileThreshold: 1000,
		TileHeight:    1000,
	}

	first, err := Screenshot(&fakeSession{heights: []int{2500, 2500}}, opts)
	if err != nil {
		t.Fatalf("first capture: %v", err)
	}
	second, err := Screenshot(&fakeSession{heights: []int{2500, 2500}}, opts)
	if err != nil {
		t.Fatalf("second capture: %v", err)
	}

	a, b := decodePNG(first.PNG).Bounds(), decodePNG(second.PNG).Bounds()
	if a.Dx() != b.Dx() || a.Dy() != b.Dy() {
		t.Errorf("dimensions differ between runs: %dx%d vs %dx%d",
			a.Dx(), a.Dy(), b.Dx(), b.Dy())
	}
}
