package extraction

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// loadNormalizedImage decodes an image file (first frame for GIF) and re-encodes it as
// PNG in gray or opaque RGB, the two color modes the OCR engines read reliably.
func loadNormalizedImage(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return encodePNG(normalizeColor(src))
}

func normalizeColor(src image.Image) image.Image {
	switch s := src.(type) {
	case *image.Gray:
		return s
	case *image.RGBA:
		if s.Opaque() {
			return s
		}
	case *image.Gray16:
		b := src.Bounds()
		dst := image.NewGray(b)
		draw.Draw(dst, b, src, b.Min, draw.Src)
		return dst
	}
	// Paletted, CMYK, YCbCr and alpha images are flattened onto white.
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, b, src, b.Min, draw.Over)
	return dst
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
