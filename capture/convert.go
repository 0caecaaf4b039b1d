package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
)

// IsValidScreenshot reports whether data is a plausible screenshot:
// non-empty and at least minBytes long.
func IsValidScreenshot(data []byte, minBytes int) bool {
	return len(data) > 0 && len(data) >= minBytes
}

// PNGToJPEG re-encodes a PNG screenshot as JPEG at the given quality.
// Transparent regions are flattened onto white, matching what the page
// background would look like in a browser.
func PNGToJPEG(data []byte, quality int) ([]byte, error) {
	if !IsValidScreenshot(data, minCaptureBytes) {
		return nil, fmt.Errorf("%w: refusing to convert %d bytes", ErrInvalidCapture, len(data))
	}
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}

	bounds := img.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
