package capture

import (
	"bytes"
	"errors"
	"image/jpeg"
	"testing"
)

func TestIsValidScreenshot(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		minBytes int
		want     bool
	}{
		{"nil", nil, 1000, false},
		{"empty", []byte{}, 1000, false},
		{"too small", make([]byte, 999), 1000, false},
		{"at threshold", make([]byte, 1000), 1000, true},
		{"large", make([]byte, 50000), 1000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidScreenshot(tt.data, tt.minBytes); got != tt.want {
				t.Errorf("IsValidScreenshot(%d bytes, %d) = %v, want %v",
					len(tt.data), tt.minBytes, got, tt.want)
			}
		})
	}
}

func TestPNGToJPEG(t *testing.T) {
	src := noisyPNG(400, 300)

	out, err := PNGToJPEG(src, 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not valid JPEG: %v", err)
	}
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 400 || h != 300 {
		t.Errorf("converted image = %dx%d, want 400x300", w, h)
	}
}

func TestPNGToJPEG_RejectsInvalidInput(t *testing.T) {
	_, err := PNGToJPEG([]byte("tiny"), 90)
	if err == nil {
		t.Fatal("expected error for implausibly small input")
	}
	if !errors.Is(err, ErrInvalidCapture) {
		t.Errorf("error = %v, want ErrInvalidCapture", err)
	}
}
