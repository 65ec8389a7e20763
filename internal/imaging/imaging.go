// Package imaging decodes uploads, scales them down and re-encodes them for
// storage.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxDimension bounds both sides of a stored image.
const MaxDimension = 1200

// MaxPixels bounds the decoded size of a source image. Compressed formats
// can describe far more pixels than their byte size suggests.
const MaxPixels = 50_000_000

const jpegQuality = 85

var (
	ErrUnsupported = errors.New("file is not a supported image")
	ErrTooLarge    = errors.New("image dimensions too large")
)

type Processed struct {
	Image       image.Image
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// Process decodes r, fits it within MaxDimension and re-encodes it. PNG and
// GIF sources are stored as PNG to keep transparency; everything else as JPEG.
func Process(r io.Reader) (*Processed, error) {
	src, format, err := decode(r)
	if err != nil {
		return nil, err
	}

	img := Fit(src, MaxDimension)

	var buf bytes.Buffer
	out := &Processed{Image: img, Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	switch format {
	case "png", "gif":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		out.ContentType, out.Ext = "image/png", ".png"
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		out.ContentType, out.Ext = "image/jpeg", ".jpg"
	}
	out.Data = buf.Bytes()
	return out, nil
}

// Decode reads an image for analysis only, shrunk to at most max pixels a side.
func Decode(r io.Reader, max int) (image.Image, error) {
	src, _, err := decode(r)
	if err != nil {
		return nil, err
	}
	return Fit(src, max), nil
}

// decode checks the header dimensions before allocating the bitmap.
func decode(r io.Reader) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("%w: empty image", ErrUnsupported)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return src, format, nil
}

// Fit scales img down so neither side exceeds max. Smaller images are
// returned unchanged.
func Fit(img image.Image, max int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return img
	}

	scale := float64(max) / float64(w)
	if s := float64(max) / float64(h); s < scale {
		scale = s
	}
	nw := int(float64(w)*scale + 0.5)
	nh := int(float64(h)*scale + 0.5)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
