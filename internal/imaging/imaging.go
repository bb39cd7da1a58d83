// Package imaging normalizes uploaded item pictures before they are stored.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

const (
	// MaxUploadBytes caps the size of an accepted upload.
	MaxUploadBytes = 5 << 20
	// MaxDimension bounds the longer edge of a stored picture.
	MaxDimension = 1024
	jpegQuality  = 85
)

var (
	ErrTooLarge    = errors.New("image exceeds 5 MB")
	ErrUnsupported = errors.New("only JPEG and PNG images are accepted")
)

var decoders = map[string]func(io.Reader) (image.Image, error){
	"image/jpeg": jpeg.Decode,
	"image/png":  png.Decode,
}

// Picture is an encoded image ready for storage.
type Picture struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Process reads an upload, checks its real content type, shrinks it to fit
// MaxDimension and re-encodes it as JPEG. Transparent areas become white.
func Process(r io.Reader) (*Picture, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	decode, ok := decoders[http.DetectContentType(data)]
	if !ok {
		return nil, ErrUnsupported
	}
	src, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	dst := flatten(src, fit(src.Bounds().Size(), MaxDimension))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	size := dst.Bounds().Size()
	return &Picture{Data: buf.Bytes(), MIME: "image/jpeg", Width: size.X, Height: size.Y}, nil
}

// fit scales size down so neither edge exceeds limit. Smaller images are left alone.
func fit(size image.Point, limit int) image.Point {
	if size.X <= limit && size.Y <= limit {
		return size
	}
	if size.X >= size.Y {
		return image.Pt(limit, clampMin(size.Y*limit/size.X))
	}
	return image.Pt(clampMin(size.X*limit/size.Y), limit)
}

func clampMin(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// flatten draws src over a white canvas of the given size.
func flatten(src image.Image, size image.Point) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if size == src.Bounds().Size() {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
