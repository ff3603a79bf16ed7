// Package rest performs authenticated HTTP calls against an anaconda.org
// style API server and enforces a single status-to-error translation
// policy for every call.
package rest

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	// DefaultDomain is the public anaconda.org API endpoint.
	DefaultDomain = "https://api.anaconda.org"

	// APIVersion is the protocol version this client speaks. It is sent
	// on every call and compared against the server's advertised version.
	APIVersion = "0.8"

	versionHeader = "X-Binstar-Api-Version"
)

// defaultUserAgent mirrors the identification the reference clients send.
var defaultUserAgent = fmt.Sprintf("Binstar/%s (+https://anaconda.org)", APIVersion)

// Client is the shared session for all API calls: base URL, auth token,
// default headers, and TLS policy.
//
// The connection pool and default headers are shared across calls.
// SetToken mutates the session and must not race with in-flight requests;
// callers issuing concurrent requests own that exclusion.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	insecure   bool
	httpClient *http.Client
	logger     *slog.Logger

	// onVersionSkew, when set, observes server versions newer than
	// APIVersion. Informational only; never fails a call.
	onVersionSkew func(serverVersion string)
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API domain. A trailing slash is trimmed.
func WithBaseURL(domain string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(domain, "/")
	}
}

// WithToken sets the bearer token sent as "Authorization: token <value>".
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(insecure bool) Option {
	return func(c *Client) {
		c.insecure = insecure
	}
}

// WithHTTPClient replaces the underlying HTTP client. The client is
// copied and redirect following is disabled on the copy; API calls handle
// redirects explicitly.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		cp := *hc
		c.httpClient = &cp
	}
}

// WithLogger sets the logger for debug traces and version-skew warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithVersionSkewFunc registers a callback invoked when the server
// advertises a newer API version than this client.
func WithVersionSkewFunc(fn func(serverVersion string)) Option {
	return func(c *Client) {
		c.onVersionSkew = fn
	}
}

// New creates a Client. With no options it talks anonymously to
// DefaultDomain.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultDomain,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
		if c.insecure {
			c.httpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
	}
	// Redirects are handled by callers (the download flow inspects the
	// 302 itself), never followed implicitly.
	c.httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return c
}

// SetToken installs the auth token on the session, typically after
// Authenticate succeeds. Not safe to call with requests in flight.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the session token, or "" for anonymous sessions.
func (c *Client) Token() string {
	return c.token
}

// BaseURL returns the configured API domain without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// InsecureSkipVerify reports whether TLS verification is disabled.
func (c *Client) InsecureSkipVerify() bool {
	return c.insecure
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.logger
}

// Request performs a JSON API call. A non-nil payload is sent as a
// canonical JSON body; GET and DELETE calls usually pass nil. The
// response body is decoded into out when out is non-nil and the server
// returned one. allowed defaults to {200}; any other status yields a
// typed error and nothing is decoded.
func (c *Client) Request(ctx context.Context, method, path string, payload, out any, allowed ...int) error {
	return c.request(ctx, method, path, payload, out, "", "", allowed)
}

// RequestBasicAuth is Request with HTTP basic credentials instead of the
// session token, used by the authentication handshake itself.
func (c *Client) RequestBasicAuth(ctx context.Context, method, path, username, password string, payload, out any, allowed ...int) error {
	return c.request(ctx, method, path, payload, out, username, password, allowed)
}

func (c *Client) request(ctx context.Context, method, path string, payload, out any, username, password string, allowed []int) error {
	resp, err := c.do(ctx, method, path, payload, nil, username, password)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, allowed); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, URL: resp.Request.URL.String(), Err: err}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("rest: decode %s %s response: %w", method, path, err)
	}
	return nil
}

// Open performs a call and returns the raw response for callers that
// stream or inspect the body themselves (downloads). The response passes
// the same status policy as Request; the caller owns closing the body.
func (c *Client) Open(ctx context.Context, method, path string, header http.Header, allowed ...int) (*http.Response, error) {
	resp, err := c.do(ctx, method, path, nil, header, "", "")
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus(resp, allowed); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, header http.Header, username, password string) (*http.Response, error) {
	url := c.baseURL + path

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("rest: encode %s %s payload: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("rest: build %s %s: %w", method, path, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(versionHeader, APIVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	if username != "" {
		req.SetBasicAuth(username, password)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	c.log().Debug("api call", "method", method, "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}

	c.checkVersionSkew(resp)
	return resp, nil
}
