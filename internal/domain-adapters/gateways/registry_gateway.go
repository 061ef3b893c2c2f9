package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jmgilman/go/errors"

	"github.com/ochairo/pkgverify/internal/domain/entities"
	"github.com/ochairo/pkgverify/internal/domain/interfaces"
)

const (
	// Maximum number of retry attempts for registry requests
	maxRetries = 3
	// Initial backoff duration
	initialBackoff = 1 * time.Second
	// Max backoff duration
	maxBackoff = 16 * time.Second
	// Registry responses above this size are rejected
	maxRegistryResponse = 32 << 20
)

// rubyGemsVersion is one element of the /api/v1/versions/<name>.json array
type rubyGemsVersion struct {
	Number   string `json:"number"`
	Platform string `json:"platform"`
	SHA      string `json:"sha"`
}

// RubyGemsGateway queries a RubyGems compatible versions API
type RubyGemsGateway struct {
	httpClient  *http.Client
	urlTemplate string
	userAgent   string
	logger      interfaces.Logger
	backoff     func(attempt int) time.Duration
}

// NewRubyGemsGateway creates a registry gateway. urlTemplate holds "{name}",
// e.g. "https://rubygems.org/api/v1/versions/{name}.json".
func NewRubyGemsGateway(urlTemplate string, timeout time.Duration, userAgent string, logger interfaces.Logger) *RubyGemsGateway {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &RubyGemsGateway{
		httpClient:  &http.Client{Timeout: timeout},
		urlTemplate: urlTemplate,
		userAgent:   userAgent,
		logger:      logger,
		backoff:     calculateBackoff,
	}
}

// ListReleases returns every published release of the named gem.
// Results are never cached.
func (g *RubyGemsGateway) ListReleases(ctx context.Context, name string) ([]entities.RegistryRelease, error) {
	endpoint := strings.ReplaceAll(g.urlTemplate, "{name}", url.PathEscape(name))

	body, err := g.getWithRetry(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var versions []rubyGemsVersion
	if err := json.Unmarshal(body, &versions); err != nil {
		return nil, fmt.Errorf("failed to parse registry response: %w", err)
	}

	releases := make([]entities.RegistryRelease, 0, len(versions))
	for _, v := range versions {
		releases = append(releases, entities.RegistryRelease{
			Number:   v.Number,
			Platform: v.Platform,
			SHA256:   v.SHA,
		})
	}

	g.logger.Debug("registry releases",
		interfaces.F("gem", name),
		interfaces.F("count", len(releases)),
	)
	return releases, nil
}

// getWithRetry performs a GET with exponential backoff on retryable failures
func (g *RubyGemsGateway) getWithRetry(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := g.backoff(attempt - 1)
			g.logger.Debug("retrying registry request",
				interfaces.F("attempt", attempt),
				interfaces.F("wait", wait.String()),
			)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, err := g.getOnce(ctx, endpoint)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !errors.IsRetryable(err) || ctx.Err() != nil {
			return nil, err
		}
	}

	return nil, errors.Wrapf(lastErr, errors.GetCode(lastErr), "registry request failed after %d retries", maxRetries)
}

func (g *RubyGemsGateway) getOnce(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNetwork, "HTTP request failed")
	}
	//nolint:errcheck // Defer close
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		code := errors.CodeNotFound
		if isRetryableError(resp.StatusCode) {
			code = errors.CodeUnavailable
		}
		return nil, errors.Newf(code, "registry returned HTTP %d for %s", resp.StatusCode, endpoint)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRegistryResponse))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNetwork, "failed to read response")
	}
	return body, nil
}

// isRetryableError reports whether a status code is worth retrying
func isRetryableError(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, // 429
		http.StatusInternalServerError, // 500
		http.StatusBadGateway,          // 502
		http.StatusServiceUnavailable,  // 503
		http.StatusGatewayTimeout:      // 504
		return true
	default:
		return false
	}
}

// calculateBackoff returns the backoff duration for a retry attempt
func calculateBackoff(attempt int) time.Duration {
	backoff := float64(initialBackoff) * math.Pow(2, float64(attempt))
	if backoff > float64(maxBackoff) {
		backoff = float64(maxBackoff)
	}
	return time.Duration(backoff)
}
