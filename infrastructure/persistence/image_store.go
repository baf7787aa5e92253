package persistence

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"video-sync/infrastructure/logger"
)

// ImageStore downloads remote images into a local directory, keyed by the
// filename taken from the URL path. An existing file with the same name is
// reused without a download.
type ImageStore struct {
	dir        string
	httpClient *http.Client
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{
		dir:        dir,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *ImageStore) Store(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse image url: %w", err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("image url %q has no filename", rawURL)
	}
	target := filepath.Join(s.dir, name)
	if _, err := os.Stat(target); err == nil {
		return name, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download image %s: status %d", rawURL, resp.StatusCode)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("store image %s: %w", name, err)
	}
	logger.GetLogger().WithField("file", name).Debug("stored image")
	return name, nil
}

// Dimensions reads the pixel size from the stored file's header without
// decoding the full image.
func (s *ImageStore) Dimensions(_ context.Context, name string) (int, int, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image %s: %w", name, err)
	}
	return cfg.Width, cfg.Height, nil
}
