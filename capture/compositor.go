package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

// CompositeMargin is extra canvas height below the last tile. Tiles can
// render slightly taller than nominal (late fonts, lazy images) and must
// not be cropped by the composite.
const CompositeMargin = 150

// Tile is one captured bitmap of a sub-region of a long page, destined
// for vertical stitching.
type Tile struct {
	// Image is the decoded capture.
	Image image.Image

	// Offset is the scroll position the tile was captured at. It is
	// informational only: placement in the composite is determined by
	// position in the tile sequence, never by this field.
	Offset int
}

// Merge stitches ordered tiles into one PNG of the given width. Tiles
// are pasted top to bottom at cumulative offsets in sequence order.
// Merging zero tiles is a programming error and fails loudly.
func Merge(tiles []Tile, width int) ([]byte, error) {
	if len(tiles) == 0 {
		return nil, ErrEmptyComposite
	}

	total := 0
	for _, t := range tiles {
		total += t.Image.Bounds().Dy()
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, total+CompositeMargin))
	offset := 0
	for _, t := range tiles {
		h := t.Image.Bounds().Dy()
		dst := image.Rect(0, offset, width, offset+h)
		draw.Draw(canvas, dst, t.Image, t.Image.Bounds().Min, draw.Src)
		offset += h
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode composite: %w", err)
	}
	return buf.Bytes(), nil
}
