package object

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"
)

// FS is the filesystem surface secret export needs. The OS implementation
// is the default; tests substitute an in-memory one.
type FS interface {
	// EnsureDir creates the directory (and parents) if it does not exist.
	EnsureDir(path string) error
	// WriteFile writes data to path with the given mode.
	WriteFile(path string, data []byte, mode fs.FileMode) error
	// FileExists reports whether path exists.
	FileExists(path string) bool
}

// ExportDirMode is the mode for created export directories.
const ExportDirMode fs.FileMode = 0700

// ExportFileMode is the mode for exported secret files. Exports carry
// credential material; owner-only access.
const ExportFileMode fs.FileMode = 0600

// OSFS implements FS against the real filesystem.
type OSFS struct{}

// EnsureDir creates the directory (and parents) if it does not exist.
func (OSFS) EnsureDir(path string) error {
	return os.MkdirAll(path, ExportDirMode)
}

// WriteFile writes data to path with the given mode.
func (OSFS) WriteFile(path string, data []byte, mode fs.FileMode) error {
	return os.WriteFile(path, data, mode)
}

// FileExists reports whether path exists.
func (OSFS) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Downloader fetches bytes from a short-lived pre-signed URL. File-secret
// download URLs are already authenticated; no session headers are attached.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// HTTPDownloader implements Downloader over a plain HTTP client.
type HTTPDownloader struct {
	Client *http.Client
}

// NewHTTPDownloader creates a downloader with a 5 minute timeout suitable
// for large file secrets.
func NewHTTPDownloader() *HTTPDownloader {
	return &HTTPDownloader{Client: &http.Client{Timeout: 5 * time.Minute}}
}

// Download fetches the URL and returns the body bytes.
func (d *HTTPDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
