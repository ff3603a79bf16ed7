package anaconda

import (
	"crypto/tls"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Saraiah-TiPeAnCo-Wilson/anaconda-client/rest"
)

// DefaultUploadTimeout is the ceiling for the storage leg of an upload.
// Large artifacts on slow links can legitimately take hours.
const DefaultUploadTimeout = 10 * time.Hour

// Client talks to an anaconda.org style package repository.
//
// Capability groups that the API scopes to organizations and channels are
// composed as fields rather than mixed into the main type.
type Client struct {
	rest    *rest.Client
	storage *http.Client
	logger  *slog.Logger

	restOpts      []rest.Option
	insecure      bool
	uploadTimeout time.Duration

	// Channels manages the owner's distribution channels.
	Channels *ChannelService

	// Orgs manages organization groups and their members.
	Orgs *OrgService
}

// New creates a Client. With no options it talks anonymously to
// api.anaconda.org.
func New(opts ...Option) (*Client, error) {
	c := &Client{uploadTimeout: DefaultUploadTimeout}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.logger != nil {
		c.restOpts = append(c.restOpts, rest.WithLogger(c.logger))
	}
	c.rest = rest.New(c.restOpts...)

	// The storage leg bypasses the shared session: its own timeout
	// ceiling, redirects allowed, same TLS policy.
	storage := &http.Client{Timeout: c.uploadTimeout}
	if c.insecure {
		storage.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	c.storage = storage

	c.Channels = &ChannelService{rest: c.rest}
	c.Orgs = &OrgService{rest: c.rest}
	return c, nil
}

// Token returns the session's auth token, or "" when anonymous.
func (c *Client) Token() string {
	return c.rest.Token()
}

// SetToken installs an auth token on the session. Not safe to call with
// requests in flight.
func (c *Client) SetToken(token string) {
	c.rest.SetToken(token)
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.logger
}

// apiPath joins path segments with each one escaped.
func apiPath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, "/")
}
