package gateways

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ochairo/pkgverify/internal/domain/interfaces"
	"github.com/ochairo/pkgverify/internal/domain/interfaces/gateways"
)

const maxRedirects = 10

// Downloader fetches remote files to disk
type Downloader struct {
	httpClient *http.Client
	userAgent  string
	logger     interfaces.Logger
}

// NewDownloader creates a new downloader
func NewDownloader(timeout time.Duration, userAgent string, logger interfaces.Logger) *Downloader {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Downloader{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Fetch downloads url to dest and returns the final HTTP status code.
// Transport failures return gateways.NoStatus. Only a 200 response leaves a
// file at dest; anything else removes what was written.
func (d *Downloader) Fetch(ctx context.Context, url, dest string) int {
	status, err := d.downloadFile(ctx, url, dest)
	if err != nil {
		d.logger.Warn("download failed",
			interfaces.F("url", url),
			interfaces.F("status", status),
			interfaces.F("error", err.Error()),
		)
	}
	return status
}

// downloadFile streams the response body through a temporary file that is
// renamed into place on success
func (d *Downloader) downloadFile(ctx context.Context, url, dest string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return gateways.NoStatus, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return gateways.NoStatus, fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_ = os.Remove(dest)
		return resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return gateways.NoStatus, fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := dest + ".tmp"
	//nolint:gosec // G304: dest is the caller chosen download destination
	out, err := os.Create(tmpPath)
	if err != nil {
		return gateways.NoStatus, fmt.Errorf("failed to create file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		_ = out.Close()
		if cleanupNeeded {
			_ = os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return gateways.NoStatus, fmt.Errorf("failed to write file: %w", err)
	}
	if err := out.Close(); err != nil {
		return gateways.NoStatus, fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return gateways.NoStatus, fmt.Errorf("failed to move file into place: %w", err)
	}
	cleanupNeeded = false

	d.logger.Debug("downloaded",
		interfaces.F("file", filepath.Base(dest)),
		interfaces.F("bytes", written),
	)
	return resp.StatusCode, nil
}
