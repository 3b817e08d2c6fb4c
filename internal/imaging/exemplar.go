package imaging

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
)

// ExemplarResult describes a saved exemplar crop.
type ExemplarResult struct {
	// Path is the temp PNG holding the crop, usable wherever an image path is
	// accepted.
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// CropExemplar cuts the region (x1,y1)-(x2,y2) out of img and saves it as a
// temporary PNG, returning its path. The crop can then serve as the exemplar
// for image-guided detection. The caller owns the temp file.
func CropExemplar(cache *ImageCache, img image.Image, x1, y1, x2, y2 int) (*ExemplarResult, error) {
	bounds := img.Bounds()
	if x1 < bounds.Min.X || y1 < bounds.Min.Y || x2 > bounds.Max.X || y2 > bounds.Max.Y {
		return nil, fmt.Errorf("exemplar region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			x1, y1, x2, y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid exemplar region: x1 must be < x2, y1 must be < y2")
	}

	cropped := imaging.Crop(img, image.Rect(x1, y1, x2, y2))

	tmpFile, err := os.CreateTemp("", "exemplar-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmpFile.Name()

	if err := png.Encode(tmpFile, cropped); err != nil {
		tmpFile.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to encode exemplar: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write exemplar: %w", err)
	}

	// The crop may be smaller than MinDimension; that is fine for an
	// exemplar, so it goes straight into the cache instead of through Load.
	cache.Put(path, cropped)

	return &ExemplarResult{
		Path:   path,
		Width:  cropped.Bounds().Dx(),
		Height: cropped.Bounds().Dy(),
	}, nil
}
