// Package render burns detection results into an image: box outlines in a
// per-prompt color, with "{label}: {score}" captions on a filled background.
// The rendered image is returned PNG-encoded in base64, ready to be offered
// as a download.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/anthonynsimon/bild/clone"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/owlvision/owlvision-mcp/internal/detect"
)

// ExemplarLabel is the placeholder caption for image-guided detections,
// which carry no semantic label of their own.
const ExemplarLabel = "similar object"

// boxThickness is the outline width in pixels.
const boxThickness = 3

// Result is the rendered artifact.
type Result struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	BoxCount    int    `json:"box_count"`
}

// Overlay draws detections onto a copy of img. labels maps a detection's
// PromptIndex to its caption text; indices outside the slice fall back to
// "unknown". Box colors are assigned per prompt index so detections from the
// same prompt share a hue.
func Overlay(img image.Image, detections []detect.Detection, labels []string) (*Result, error) {
	canvas := clone.AsRGBA(img)
	bounds := canvas.Bounds()

	palette := makePalette(len(labels))

	for _, d := range detections {
		label := "unknown"
		if d.PromptIndex >= 0 && d.PromptIndex < len(labels) {
			label = labels[d.PromptIndex]
		}
		col := palette[paletteIndex(d.PromptIndex, len(palette))]

		x1, y1 := int(d.Box.X1), int(d.Box.Y1)
		x2, y2 := int(d.Box.X2), int(d.Box.Y2)

		drawRect(canvas, x1, y1, x2, y2, col)
		drawCaption(canvas, x1, y1, fmt.Sprintf("%s: %.3f", label, d.Score), col)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode rendered image: %w", err)
	}

	return &Result{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		BoxCount:    len(detections),
	}, nil
}

// makePalette returns n visually distinct colors by spacing hues evenly. At
// least one color is always returned.
func makePalette(n int) []color.RGBA {
	if n < 1 {
		n = 1
	}
	palette := make([]color.RGBA, n)
	for i := range palette {
		hue := float64(i) * 360.0 / float64(n)
		r, g, b := colorful.Hsv(hue, 0.9, 0.9).RGB255()
		palette[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return palette
}

func paletteIndex(promptIndex, size int) int {
	if promptIndex < 0 {
		return 0
	}
	return promptIndex % size
}

// drawRect draws a rectangle outline clipped to the image bounds.
func drawRect(img *image.RGBA, x1, y1, x2, y2 int, col color.Color) {
	bounds := img.Bounds()

	setPixel := func(x, y int) {
		if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			img.Set(x, y, col)
		}
	}

	for t := 0; t < boxThickness; t++ {
		for x := x1; x <= x2; x++ {
			setPixel(x, y1+t)
			setPixel(x, y2-t)
		}
		for y := y1; y <= y2; y++ {
			setPixel(x1+t, y)
			setPixel(x2-t, y)
		}
	}
}

// drawCaption draws text just above (x, y) on a filled background in the box
// color, shifting below the corner when the box touches the top edge.
func drawCaption(img *image.RGBA, x, y int, text string, bg color.RGBA) {
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, text).Ceil()
	textHeight := face.Metrics().Height.Ceil()

	top := y - textHeight - 2
	if top < img.Bounds().Min.Y {
		top = y + boxThickness + 1
	}

	bgRect := image.Rect(x, top, x+textWidth+4, top+textHeight+2)
	fillRect(img, bgRect.Intersect(img.Bounds()), bg)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(captionInk(bg)),
		Face: face,
		Dot:  fixed.P(x+2, top+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

func fillRect(img *image.RGBA, r image.Rectangle, col color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, col)
		}
	}
}

// captionInk picks black or white text for legibility against bg.
func captionInk(bg color.RGBA) color.Color {
	// Rec. 601 luma.
	luma := 0.299*float64(bg.R) + 0.587*float64(bg.G) + 0.114*float64(bg.B)
	if luma > 140 {
		return color.Black
	}
	return color.White
}
