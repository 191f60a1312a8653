package images

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decodeDataURL(t *testing.T, dataURL string) image.Image {
	t.Helper()
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(dataURL, prefix) {
		t.Fatalf("unexpected prefix: %.40q", dataURL)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, prefix))
	if err != nil {
		t.Fatalf("base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	return img
}

func TestCompressScalesDownProportionally(t *testing.T) {
	out, err := Compress(pngBytes(t, 1200, 300), 600)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	got := decodeDataURL(t, out).Bounds()
	if got.Dx() != 600 || got.Dy() != 150 {
		t.Errorf("bounds = %dx%d, want 600x150", got.Dx(), got.Dy())
	}
}

func TestCompressNeverUpscales(t *testing.T) {
	out, err := Compress(pngBytes(t, 40, 30), 600)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	got := decodeDataURL(t, out).Bounds()
	if got.Dx() != 40 || got.Dy() != 30 {
		t.Errorf("bounds = %dx%d, want original 40x30", got.Dx(), got.Dy())
	}
}

func TestCompressDefaultsMaxDimension(t *testing.T) {
	out, err := Compress(pngBytes(t, 700, 700), 0)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	got := decodeDataURL(t, out).Bounds()
	if got.Dx() != MaxDimension || got.Dy() != MaxDimension {
		t.Errorf("bounds = %dx%d, want %dx%d", got.Dx(), got.Dy(), MaxDimension, MaxDimension)
	}
}

func TestCompressRejectsGarbage(t *testing.T) {
	if _, err := Compress([]byte("not an image"), 600); err == nil {
		t.Fatal("garbage accepted")
	}
}
