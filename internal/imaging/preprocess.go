package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// DefaultMaxEdge is the default bound on the longer image edge before an
// image is shipped to the inference backend.
const DefaultMaxEdge = 800

// ToRGB returns img as an NRGBA image, flattening palettes and YCbCr data.
// The backend expects plain RGB input.
func ToRGB(img image.Image) image.Image {
	if _, ok := img.(*image.NRGBA); ok {
		return img
	}
	return imaging.Clone(img)
}

// FitWithin downscales img so that neither edge exceeds maxEdge, preserving
// aspect ratio. Images already within the bound are returned unchanged;
// upscaling never happens.
func FitWithin(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	if maxEdge <= 0 || (b.Dx() <= maxEdge && b.Dy() <= maxEdge) {
		return img
	}
	return imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
}
