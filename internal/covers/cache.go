package covers

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// maxCoverSize caps a single downloaded cover.
const maxCoverSize = 10 << 20

var ErrNoCover = errors.New("notebook has no cover")

// Cache keeps local copies of notebook cover images so the grid does not hit
// the backend for every tile.
type Cache struct {
	*Resolver
	cacheDir   string
	httpClient *http.Client
	group      singleflight.Group
}

// NewCache creates a cover cache at cacheDir. Relative cover paths reported by
// the backend are resolved against baseURL.
func NewCache(cacheDir, baseURL string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	resolver, err := NewResolver(baseURL)
	if err != nil {
		return nil, err
	}

	return &Cache{
		Resolver: resolver,
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Resolver maps the cover values stored on notebooks to backend URLs.
type Resolver struct {
	baseURL *url.URL
}

func NewResolver(baseURL string) (*Resolver, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Resolver{baseURL: base}, nil
}

// Resolve turns the cover value stored on a notebook into an absolute URL.
func (r *Resolver) Resolve(cover string) (string, error) {
	ref, err := url.Parse(cover)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	return r.baseURL.ResolveReference(&url.URL{Path: strings.TrimLeft(ref.Path, "/"), RawQuery: ref.RawQuery}).String(), nil
}

// GetCover returns the path of the cached cover for a notebook, downloading
// it first when needed. Concurrent calls for the same cover share one download.
func (c *Cache) GetCover(ctx context.Context, notebookID int64, cover string) (string, error) {
	if cover == "" {
		return "", ErrNoCover
	}

	coverURL, err := c.Resolve(cover)
	if err != nil {
		return "", err
	}

	cachePath := filepath.Join(c.cacheDir, c.coverFilename(notebookID, coverURL))
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	// Waiters share the download, so one caller going away must not cancel it.
	fetchCtx := context.WithoutCancel(ctx)
	_, err, _ = c.group.Do(cachePath, func() (any, error) {
		return nil, c.fetchAndCache(fetchCtx, coverURL, cachePath)
	})
	if err != nil {
		return "", err
	}
	return cachePath, nil
}

// InvalidateCover removes every cached cover for a notebook.
func (c *Cache) InvalidateCover(notebookID int64) error {
	pattern := filepath.Join(c.cacheDir, fmt.Sprintf("cover_%d_*", notebookID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

// coverFilename keys the file by notebook and URL so a new cover upload gets
// a new file. The extension is kept for content-type detection.
func (c *Cache) coverFilename(notebookID int64, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	ext := ".img"
	if u, err := url.Parse(coverURL); err == nil {
		switch e := strings.ToLower(path.Ext(u.Path)); e {
		case ".jpg", ".jpeg", ".png", ".gif", ".webp":
			ext = e
		}
	}
	return fmt.Sprintf("cover_%d_%x%s", notebookID, hash[:8], ext)
}

func (c *Cache) fetchAndCache(ctx context.Context, coverURL, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Wordbook/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	// Temp file in the same directory so the rename is atomic
	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	n, err := io.Copy(tmpFile, io.LimitReader(resp.Body, maxCoverSize+1))
	if err != nil {
		return err
	}
	if n > maxCoverSize {
		return fmt.Errorf("cover exceeds %d bytes", maxCoverSize)
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, cachePath)
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}
