// Package images downscales uploaded pictures into inline data URLs so
// they can live inside a persisted slice instead of on a blob store.
package images

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/disintegration/imaging"
)

// MaxDimension is the default bound for the longest image side.
const MaxDimension = 600

// Compress decodes raw image bytes, scales the image down so its longest
// side is at most maxDim while keeping the aspect ratio, and returns it
// as a PNG data URL. Images already within the bound are never upscaled.
func Compress(raw []byte, maxDim int) (string, error) {
	if maxDim <= 0 {
		maxDim = MaxDimension
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("images: decode: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("images: encode: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
