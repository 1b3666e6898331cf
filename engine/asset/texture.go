package asset

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxTextureSize caps the width and height of decoded textures; larger images are scaled down
// keeping their aspect ratio.
const MaxTextureSize = 2048

// DecodeImage decodes a PNG, JPEG, BMP, TIFF or WebP image into tightly packed RGBA.
//
// Parameters:
//   - r: the encoded image
//   - maxSize: largest allowed width or height, 0 for no limit
//
// Returns:
//   - *image.RGBA: the decoded image with its origin at (0, 0)
//   - error: error if the data is not a supported image
func DecodeImage(r io.Reader, maxSize int) (*image.RGBA, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("asset: failed to decode image: %w", err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("asset: %s image is empty", format)
	}

	w, h := b.Dx(), b.Dy()
	if maxSize > 0 && (w > maxSize || h > maxSize) {
		if w >= h {
			w, h = maxSize, max(1, h*maxSize/b.Dx())
		} else {
			w, h = max(1, w*maxSize/b.Dy()), maxSize
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
		return dst, nil
	}

	if rgba, ok := src.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*w {
		return rgba, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, nil
}

// LoadImage reads and decodes an image file, capped at MaxTextureSize.
func LoadImage(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("asset: failed to read %s: %w", path, err)
	}
	return DecodeImage(bytes.NewReader(data), MaxTextureSize)
}

// SolidImage returns a 1x1 image of the given color.
func SolidImage(r, g, b, a uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	copy(img.Pix, []byte{r, g, b, a})
	return img
}
