package anaconda

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Saraiah-TiPeAnCo-Wilson/anaconda-client/rest"
)

// Option configures a Client.
type Option func(*Client) error

// WithDomain sets the API domain, e.g. "https://api.anaconda.org".
func WithDomain(domain string) Option {
	return func(c *Client) error {
		if domain == "" {
			return errors.New("anaconda: domain must not be empty")
		}
		c.restOpts = append(c.restOpts, rest.WithBaseURL(domain))
		return nil
	}
}

// WithToken sets the auth token for the session. Without it the client
// acts as an anonymous user.
func WithToken(token string) Option {
	return func(c *Client) error {
		c.restOpts = append(c.restOpts, rest.WithToken(token))
		return nil
	}
}

// WithUserAgent overrides the User-Agent header on API calls.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.restOpts = append(c.restOpts, rest.WithUserAgent(ua))
		return nil
	}
}

// WithInsecureSkipVerify disables TLS certificate verification for both
// the API session and the storage leg of uploads.
func WithInsecureSkipVerify(insecure bool) Option {
	return func(c *Client) error {
		c.insecure = insecure
		c.restOpts = append(c.restOpts, rest.WithInsecureSkipVerify(insecure))
		return nil
	}
}

// WithHTTPClient replaces the HTTP client backing the API session. The
// storage leg keeps its own client and timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("anaconda: http client must not be nil")
		}
		c.restOpts = append(c.restOpts, rest.WithHTTPClient(hc))
		return nil
	}
}

// WithLogger sets the logger for debug traces and version-skew warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithUploadTimeout overrides the storage-leg timeout ceiling.
func WithUploadTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return errors.New("anaconda: upload timeout must be positive")
		}
		c.uploadTimeout = d
		return nil
	}
}

// WithVersionSkewFunc registers a callback observing server API versions
// newer than this client's.
func WithVersionSkewFunc(fn func(serverVersion string)) Option {
	return func(c *Client) error {
		c.restOpts = append(c.restOpts, rest.WithVersionSkewFunc(fn))
		return nil
	}
}
