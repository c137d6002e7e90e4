package report

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// maxImageBytes caps letterhead downloads
const maxImageBytes = 5 << 20

// ImageSource loads letterhead graphics referenced by URL
type ImageSource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPImageSource fetches images over HTTP(S)
type HTTPImageSource struct {
	client *http.Client
}

// NewHTTPImageSource creates an image source with the given request timeout
func NewHTTPImageSource(timeout time.Duration) *HTTPImageSource {
	return &HTTPImageSource{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads the image at url
func (s *HTTPImageSource) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image request returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

// LoadImage resolves a configured image URL. An empty URL yields nil; a
// failed fetch is logged and yields an image without data so the layout
// draws a placeholder.
func LoadImage(ctx context.Context, src ImageSource, logger *zap.Logger, name, url string) *Image {
	if url == "" {
		return nil
	}
	img := &Image{Name: name}
	if src == nil {
		return img
	}

	data, err := src.Fetch(ctx, url)
	if err != nil {
		logger.Warn("failed to load report image",
			zap.String("image", name),
			zap.String("url", url),
			zap.Error(err))
		return img
	}
	img.Data = data
	return img
}
