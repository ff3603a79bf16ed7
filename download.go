package anaconda

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Saraiah-TiPeAnCo-Wilson/anaconda-client/rest"
)

// Download is a streaming handle on a distribution fetched from the
// storage backend. The caller owns closing Body.
type Download struct {
	Body          io.ReadCloser
	ContentLength int64
	ContentType   string

	// URL is the storage location the content streams from.
	URL string
}

type downloadConfig struct {
	md5 string
}

// DownloadOption configures a Download call.
type DownloadOption func(*downloadConfig)

// DownloadWithMD5 sends the hex digest of a previously downloaded copy
// for cache validation. When the server still holds identical content it
// answers 304 and Download returns nil.
func DownloadWithMD5(md5 string) DownloadOption {
	return func(cfg *downloadConfig) {
		cfg.md5 = md5
	}
}

// Download fetches a package distribution.
//
// The API answers the download endpoint with a redirect to the storage
// backend; the redirect is followed explicitly and the storage response
// is returned as a stream. With DownloadWithMD5, an unchanged
// distribution yields (nil, nil) and no redirect is followed.
func (c *Client) Download(ctx context.Context, owner, pkg, release, basename string, opts ...DownloadOption) (*Download, error) {
	cfg := downloadConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var header http.Header
	if cfg.md5 != "" {
		header = http.Header{"Etag": []string{cfg.md5}}
	}

	path := apiPath("download", owner, pkg, release, basename)
	resp, err := c.rest.Open(ctx, http.MethodGet, path, header,
		http.StatusFound, http.StatusNotModified)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil, nil
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return nil, fmt.Errorf("anaconda: download redirect missing Location header")
	}
	return c.fetchStorage(ctx, location)
}

func (c *Client) fetchStorage(ctx context.Context, location string) (*Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("anaconda: build storage request: %w", err)
	}

	resp, err := c.storage.Do(req)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, URL: location, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, rest.NewError(resp.StatusCode, http.MethodGet, location)
	}
	return &Download{
		Body:          resp.Body,
		ContentLength: resp.ContentLength,
		ContentType:   resp.Header.Get("Content-Type"),
		URL:           location,
	}, nil
}
