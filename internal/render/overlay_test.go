package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/owlvision/owlvision-mcp/internal/detect"
)

func testCanvas(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{200, 200, 200, 255})
		}
	}
	return img
}

func decodeResult(t *testing.T, r *Result) image.Image {
	t.Helper()

	raw, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	return img
}

func TestOverlay_PreservesDimensions(t *testing.T) {
	detections := []detect.Detection{
		{Box: detect.Box{X1: 10, Y1: 20, X2: 80, Y2: 90}, Score: 0.87, PromptIndex: 0},
	}

	result, err := Overlay(testCanvas(200, 150), detections, []string{"cat"})
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}

	if result.Width != 200 || result.Height != 150 {
		t.Errorf("result size: got %dx%d, want 200x150", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s", result.MimeType)
	}
	if result.BoxCount != 1 {
		t.Errorf("BoxCount: got %d, want 1", result.BoxCount)
	}

	decoded := decodeResult(t, result)
	if decoded.Bounds().Dx() != 200 || decoded.Bounds().Dy() != 150 {
		t.Errorf("decoded size: got %dx%d, want 200x150", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestOverlay_DrawsBoxOutline(t *testing.T) {
	detections := []detect.Detection{
		{Box: detect.Box{X1: 50, Y1: 50, X2: 120, Y2: 110}, Score: 0.5, PromptIndex: 0},
	}

	result, err := Overlay(testCanvas(200, 150), detections, []string{"dog"})
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}

	decoded := decodeResult(t, result)

	// A pixel on the box edge must differ from the flat background; a pixel
	// well inside the box must not.
	bg := color.RGBA{200, 200, 200, 255}
	edge := color.RGBAModel.Convert(decoded.At(80, 50)).(color.RGBA)
	inside := color.RGBAModel.Convert(decoded.At(85, 80)).(color.RGBA)

	if edge == bg {
		t.Error("box edge pixel should be painted")
	}
	if inside != bg {
		t.Error("box interior should stay untouched")
	}
}

func TestOverlay_NoDetections(t *testing.T) {
	result, err := Overlay(testCanvas(120, 120), nil, []string{"cat"})
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	if result.BoxCount != 0 {
		t.Errorf("BoxCount: got %d, want 0", result.BoxCount)
	}

	// The output must still be a valid image of the source.
	decoded := decodeResult(t, result)
	if decoded.Bounds().Dx() != 120 {
		t.Errorf("decoded width: got %d", decoded.Bounds().Dx())
	}
}

func TestOverlay_UnknownPromptIndex(t *testing.T) {
	detections := []detect.Detection{
		{Box: detect.Box{X1: 10, Y1: 40, X2: 60, Y2: 100}, Score: 0.4, PromptIndex: 7},
	}

	// An index outside the label list must not panic.
	result, err := Overlay(testCanvas(150, 150), detections, []string{"cat"})
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	if result.BoxCount != 1 {
		t.Errorf("BoxCount: got %d, want 1", result.BoxCount)
	}
}

func TestOverlay_CaptionNearTopEdge(t *testing.T) {
	// A box touching the top edge forces the caption below the corner; it
	// must still render without panicking.
	detections := []detect.Detection{
		{Box: detect.Box{X1: 0, Y1: 0, X2: 100, Y2: 60}, Score: 0.9, PromptIndex: 0},
	}

	if _, err := Overlay(testCanvas(150, 150), detections, []string{"bird"}); err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
}

func TestMakePalette_DistinctColors(t *testing.T) {
	palette := makePalette(5)
	if len(palette) != 5 {
		t.Fatalf("palette size: got %d, want 5", len(palette))
	}

	seen := make(map[color.RGBA]bool)
	for _, c := range palette {
		if seen[c] {
			t.Errorf("duplicate palette color %v", c)
		}
		seen[c] = true
	}

	if len(makePalette(0)) != 1 {
		t.Error("empty palette request should still yield one color")
	}
}
