package anaconda

import (
	"context"
	"fmt"
	"net/http"
	"os"
)

// AuthenticateRequest describes a token creation via basic auth. The
// username and password are used once and never stored; the resulting
// token is installed on the session.
type AuthenticateRequest struct {
	Username string
	Password string

	// Application identifies the requesting application; it becomes the
	// token's note.
	Application    string
	ApplicationURL string

	// ForUser creates the token on behalf of another user.
	ForUser string

	// Scopes limit what the token may do. Empty means full access.
	Scopes []string

	CreatedWith string

	// MaxAge is the token lifetime in seconds; zero means no expiry.
	MaxAge int

	// Strength is "strong" (default) or "weak".
	Strength string

	// FailIfExists rejects the request when a token with the same note
	// already exists instead of rotating it.
	FailIfExists bool

	// Hostname defaults to os.Hostname().
	Hostname string
}

// Authenticate creates an authentication token and installs it on the
// session, so subsequent calls are authenticated. The token is returned
// for the caller to persist.
func (c *Client) Authenticate(ctx context.Context, req AuthenticateRequest) (string, error) {
	if req.Username == "" || req.Password == "" {
		return "", &ValidationError{Reason: "username and password are required"}
	}
	strength := req.Strength
	if strength == "" {
		strength = "strong"
	}
	hostname := req.Hostname
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	payload := map[string]any{
		"scopes":         req.Scopes,
		"note":           req.Application,
		"note_url":       req.ApplicationURL,
		"hostname":       hostname,
		"user":           req.ForUser,
		"max-age":        req.MaxAge,
		"created_with":   req.CreatedWith,
		"strength":       strength,
		"fail-if-exists": req.FailIfExists,
	}

	var out struct {
		Token string `json:"token"`
	}
	err := c.rest.RequestBasicAuth(ctx, http.MethodPost, "/authentications",
		req.Username, req.Password, payload, &out)
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("anaconda: authentication response carried no token")
	}
	c.rest.SetToken(out.Token)
	return out.Token, nil
}

// Authentication returns information about the session's current token.
func (c *Client) Authentication(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.rest.Request(ctx, http.MethodGet, "/authentication", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Authentications lists the user's authentication tokens.
func (c *Client) Authentications(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := c.rest.Request(ctx, http.MethodGet, "/authentications", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveAuthentication revokes the token named name, or the session's
// current token when name is empty.
func (c *Client) RemoveAuthentication(ctx context.Context, name string) error {
	path := "/authentications"
	if name != "" {
		path = apiPath("authentications", "name", name)
	}
	return c.rest.Request(ctx, http.MethodDelete, path, nil, nil, http.StatusCreated)
}

// ListScopes returns the scopes tokens can be limited to.
func (c *Client) ListScopes(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.rest.Request(ctx, http.MethodGet, "/scopes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
