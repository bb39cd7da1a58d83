package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name          string
		data          []byte
		width, height int
	}{
		{"small jpeg kept", encodeJPEG(t, 50, 40), 50, 40},
		{"png converted", encodePNG(t, 64, 64, color.NRGBA{0, 0, 255, 255}), 64, 64},
		{"wide downscaled", encodeJPEG(t, 2048, 1024), 1024, 512},
		{"tall downscaled", encodePNG(t, 300, 3000, color.NRGBA{1, 2, 3, 255}), 102, 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pic, err := Process(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if pic.MIME != "image/jpeg" {
				t.Errorf("MIME = %q, want image/jpeg", pic.MIME)
			}
			if pic.Width != tt.width || pic.Height != tt.height {
				t.Errorf("size = %dx%d, want %dx%d", pic.Width, pic.Height, tt.width, tt.height)
			}

			img, err := jpeg.Decode(bytes.NewReader(pic.Data))
			if err != nil {
				t.Fatalf("decoding output: %v", err)
			}
			if got := img.Bounds().Size(); got != image.Pt(tt.width, tt.height) {
				t.Errorf("decoded size = %v", got)
			}
		})
	}
}

func TestProcessFlattensTransparency(t *testing.T) {
	pic, err := Process(bytes.NewReader(encodePNG(t, 8, 8, color.NRGBA{})))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(pic.Data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	r, g, b, _ := img.At(4, 4).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("transparent pixel = (%d,%d,%d), want near white", r>>8, g>>8, b>>8)
	}
}

func TestProcessRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"text", []byte("not an image"), ErrUnsupported},
		{"gif", []byte("GIF89a\x01\x00\x01\x00"), ErrUnsupported},
		{"truncated png", encodePNG(t, 10, 10, color.Black)[:20], ErrUnsupported},
		{"too large", append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, MaxUploadBytes)...), ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Process(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
