package capture

import (
	"errors"
	"image/color"
	"testing"
)

func TestMerge_PastesAtCumulativeOffsets(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	green := color.RGBA{G: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}

	tiles := []Tile{
		uniformTile(800, 100, red),
		uniformTile(800, 100, green),
		uniformTile(800, 50, blue),
	}

	out, err := Merge(tiles, 800)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img := decodePNG(out)
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 800 || h != 250+CompositeMargin {
		t.Fatalf("composite = %dx%d, want 800x%d", w, h, 250+CompositeMargin)
	}

	// Tile 3 lands at vertical offset 200, right after the first two.
	checks := []struct {
		y    int
		want color.RGBA
	}{
		{0, red},
		{99, red},
		{100, green},
		{199, green},
		{200, blue},
		{249, blue},
	}
	for _, c := range checks {
		r, g, b, _ := img.At(400, c.y).RGBA()
		got := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}
		if got != c.want {
			t.Errorf("pixel at y=%d is %v, want %v", c.y, got, c.want)
		}
	}
}

func TestMerge_IgnoresTileOffsetField(t *testing.T) {
	// Placement follows sequence order, never the Offset field.
	a := uniformTile(100, 40, color.RGBA{R: 255, A: 255})
	b := uniformTile(100, 40, color.RGBA{B: 255, A: 255})
	a.Offset = 99999
	b.Offset = 0

	out, err := Merge([]Tile{a, b}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img := decodePNG(out)

	r, _, _, _ := img.At(50, 0).RGBA()
	if uint8(r>>8) != 255 {
		t.Error("first tile in sequence should be pasted at the top")
	}
	_, _, bl, _ := img.At(50, 40).RGBA()
	if uint8(bl>>8) != 255 {
		t.Error("second tile in sequence should follow at offset 40")
	}
}

func TestMerge_EmptyFailsLoudly(t *testing.T) {
	_, err := Merge(nil, 800)
	if err == nil {
		t.Fatal("merging zero tiles must fail, got nil error")
	}
	if !errors.Is(err, ErrEmptyComposite) {
		t.Errorf("error = %v, want ErrEmptyComposite", err)
	}
}
