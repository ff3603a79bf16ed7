package anaconda

import (
	"context"
	"net/http"
)

// User returns a user's profile, or the authenticated user's when login
// is empty.
func (c *Client) User(ctx context.Context, login string) (map[string]any, error) {
	path := "/user"
	if login != "" {
		path = apiPath("user", login)
	}
	var out map[string]any
	if err := c.rest.Request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserPackages lists a user's packages, or the authenticated user's when
// login is empty.
func (c *Client) UserPackages(ctx context.Context, login string) ([]map[string]any, error) {
	path := "/packages"
	if login != "" {
		path = apiPath("packages", login)
	}
	var out []map[string]any
	if err := c.rest.Request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
