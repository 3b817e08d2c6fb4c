package imaging

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"
)

// FetchTimeout bounds a URL image download.
const FetchTimeout = 10 * time.Second

// maxFetchBytes caps how much image data a URL fetch will read.
const maxFetchBytes = 32 << 20

// FetchURL downloads and decodes an image, storing it in the cache under its
// URL so later tool calls can refer to it the same way they refer to file
// paths.
func FetchURL(ctx context.Context, cache *ImageCache, url string) (image.Image, error) {
	if img, ok := cache.Get(url); ok {
		return img, nil
	}

	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode fetched image: %w", err)
	}
	if err := ValidateSize(img); err != nil {
		return nil, err
	}

	cache.Put(url, img)
	return img, nil
}
