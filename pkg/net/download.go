package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const (
	// maxBodyBytes caps a fetched table.
	maxBodyBytes = 64 << 20
)

var ErrorURLNotFound = errors.New("URL not found")

// IsURL reports whether s looks like an http(s) location rather than a path.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch GETs url and returns its body. When token is set it is sent as a
// bearer token. The caller must close the returned reader.
func Fetch(ctx context.Context, url, token string) (io.ReadCloser, error) {
	var (
		c   *http.Client
		err error
	)
	if token != "" {
		c = GetOAuthClient(ctx, token)
	} else {
		c, err = GetHTTPClient()
		if err != nil {
			return nil, fmt.Errorf("error creating HTTP client: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP Get request: %w", err)
	}
	req.Header.Set("User-Agent", clientAgent)
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := c.Do(req) //nolint:gosec // URL supplied by the local user
	if err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", url, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrorURLNotFound
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("error downloading file (status: %d - %s): %s", resp.StatusCode, strings.TrimSpace(resp.Status), url)
	}

	slog.Debug("fetched", "url", url, "content_type", resp.Header.Get("Content-Type"))
	return &limitedBody{Reader: io.LimitReader(resp.Body, maxBodyBytes), closer: resp.Body}, nil
}

type limitedBody struct {
	io.Reader
	closer io.Closer
}

func (b *limitedBody) Close() error {
	return b.closer.Close()
}
