package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"time"

	"github.com/ysmood/gson"
)

// fakeSession is a scripted stand-in for a live browser. Height reads
// are served from a fixed sequence (one entry per six-metric read), and
// Capture synthesizes a PNG matching the current viewport content size.
type fakeSession struct {
	heights []int // successive page-height readings
	chrome  int   // outerHeight - innerHeight

	evalErr    error // when set, every Evaluate fails
	captureErr error // when set, every Capture fails

	metricCalls int
	captures    int
	scrolls     []string
	pinnedBody  string
	vpWidth     int
	vpHeight    int
	sleeps      int
}

func (f *fakeSession) Evaluate(js string) (gson.JSON, error) {
	if f.evalErr != nil {
		return gson.New(nil), f.evalErr
	}
	switch {
	case strings.Contains(js, "window.scrollTo"):
		f.scrolls = append(f.scrolls, js)
		return gson.New(nil), nil
	case strings.Contains(js, "outerHeight - window.innerHeight"):
		return gson.New(f.chrome), nil
	case strings.Contains(js, "document.body.style.height"):
		f.pinnedBody = js
		return gson.New(nil), nil
	default:
		// One of the six height metrics. All six metrics within one
		// read report the same scripted value.
		idx := f.metricCalls / len(heightMetrics)
		f.metricCalls++
		if idx >= len(f.heights) {
			idx = len(f.heights) - 1
		}
		return gson.New(f.heights[idx]), nil
	}
}

func (f *fakeSession) Resize(width, height int) error {
	f.vpWidth = width
	f.vpHeight = height
	return nil
}

func (f *fakeSession) Capture() ([]byte, error) {
	f.captures++
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	// The capture covers the content area: viewport minus chrome.
	h := f.vpHeight - f.chrome
	if h < 1 {
		h = 1
	}
	return noisyPNG(f.vpWidth, h), nil
}

func (f *fakeSession) Sleep(time.Duration) {
	f.sleeps++
}

// noisyPNG builds a PNG whose pixels vary enough that the encoded size
// comfortably clears the validity threshold.
func noisyPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x*7 + y*13) % 256),
				G: uint8((x*3 + y*5) % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(fmt.Sprintf("noisyPNG: %v", err))
	}
	return buf.Bytes()
}

// uniformTile builds a Tile of the given size filled with one color.
func uniformTile(w, h int, c color.RGBA) Tile {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return Tile{Image: img}
}

// decodePNG decodes test output, panicking on malformed data.
func decodePNG(data []byte) image.Image {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		panic(fmt.Sprintf("decodePNG: %v", err))
	}
	return img
}
