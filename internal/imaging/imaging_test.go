package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(img image.Image) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func decode(t *testing.T, p *Photo) image.Image {
	t.Helper()
	if p.MIME != "image/jpeg" {
		t.Fatalf("expected image/jpeg, got %s", p.MIME)
	}
	img, err := jpeg.Decode(bytes.NewReader(p.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	return img
}

func TestProcessKeepsSmallImage(t *testing.T) {
	p, err := Process(bytes.NewReader(encodeJPEG(solid(120, 80, color.RGBA{200, 0, 0, 255}))))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	b := decode(t, p).Bounds()
	if b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("expected 120x80, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestProcessDownscalesLandscape(t *testing.T) {
	p, err := Process(bytes.NewReader(encodePNG(solid(1600, 400, color.RGBA{0, 0, 255, 255}))))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	b := decode(t, p).Bounds()
	if b.Dx() != MaxDimension || b.Dy() != 200 {
		t.Errorf("expected %dx200, got %dx%d", MaxDimension, b.Dx(), b.Dy())
	}
}

func TestProcessDownscalesPortrait(t *testing.T) {
	p, err := Process(bytes.NewReader(encodePNG(solid(300, 1200, color.RGBA{0, 255, 0, 255}))))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	b := decode(t, p).Bounds()
	if b.Dx() != 200 || b.Dy() != MaxDimension {
		t.Errorf("expected 200x%d, got %dx%d", MaxDimension, b.Dx(), b.Dy())
	}
}

func TestProcessFlattensTransparency(t *testing.T) {
	p, err := Process(bytes.NewReader(encodePNG(solid(10, 10, color.RGBA{0, 0, 0, 0}))))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	r, g, b, _ := decode(t, p).At(5, 5).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected white background, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestProcessRejectsNonImage(t *testing.T) {
	_, err := Process(strings.NewReader("this is not an image"))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestProcessRejectsOversized(t *testing.T) {
	data := append([]byte("\xff\xd8\xff"), make([]byte, MaxUploadBytes)...)
	_, err := Process(bytes.NewReader(data))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestThumbnail(t *testing.T) {
	p, err := Process(bytes.NewReader(encodeJPEG(solid(640, 480, color.RGBA{90, 90, 90, 255}))))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	thumb, err := Thumbnail(p.Data)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	b := decode(t, thumb).Bounds()
	if b.Dx() != ThumbnailDimension || b.Dy() != 72 {
		t.Errorf("expected %dx72, got %dx%d", ThumbnailDimension, b.Dx(), b.Dy())
	}
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		w, h, maxDim int
		wantW, wantH int
	}{
		{100, 100, 800, 100, 100},
		{1600, 1600, 800, 800, 800},
		{4000, 2, 800, 800, 1},
		{2, 4000, 800, 1, 800},
	}
	for _, tt := range tests {
		w, h := scaledSize(tt.w, tt.h, tt.maxDim)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("scaledSize(%d, %d, %d) = %d, %d; want %d, %d", tt.w, tt.h, tt.maxDim, w, h, tt.wantW, tt.wantH)
		}
	}
}
