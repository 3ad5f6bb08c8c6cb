package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"resty.dev/v3"
)

// Prober reports whether a repository serves a coordinate. A false result
// with a nil error is a definitive miss; an error means the repository could
// not be asked.
type Prober interface {
	Has(ctx context.Context, repo Ref, c Coordinate) (bool, error)
}

// DefaultProbeTimeout bounds a single HEAD request.
const DefaultProbeTimeout = 15 * time.Second

// HTTPProber probes Maven repositories with HEAD requests on the artifact's
// POM. file:// repositories are checked on the local filesystem.
type HTTPProber struct {
	client *resty.Client
}

// NewHTTPProber creates a prober whose requests time out after timeout
// (DefaultProbeTimeout when zero).
func NewHTTPProber(timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "buildplan")
	return &HTTPProber{client: client}
}

// Close releases idle connections held by the underlying client.
func (p *HTTPProber) Close() error {
	return p.client.Close()
}

// Has implements Prober.
func (p *HTTPProber) Has(ctx context.Context, repo Ref, c Coordinate) (bool, error) {
	u, err := url.Parse(repo.URL)
	if err != nil {
		return false, fmt.Errorf("failed to parse repository url: %w", err)
	}
	if u.Scheme == "file" {
		return hasFile(filepath.Join(filepath.FromSlash(u.Path), filepath.FromSlash(c.POMPath())))
	}

	target := repo.URL + "/" + c.POMPath()
	resp, err := p.client.R().SetContext(ctx).Head(target)
	if err != nil {
		return false, fmt.Errorf("failed to probe %s: %w", target, err)
	}

	switch code := resp.StatusCode(); {
	case code >= 200 && code < 300:
		return true, nil
	case code == http.StatusNotFound || code == http.StatusGone:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %d probing %s", code, target)
	}
}

func hasFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}
