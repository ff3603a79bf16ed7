package anaconda

import (
	"context"
	"net/http"
)

// Distribution returns a single distribution's metadata.
func (c *Client) Distribution(ctx context.Context, owner, pkg, release, basename string) (map[string]any, error) {
	var out map[string]any
	path := apiPath("dist", owner, pkg, release, basename)
	if err := c.rest.Request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveDistribution deletes a distribution addressed by basename or by
// id; exactly one must be given.
func (c *Client) RemoveDistribution(ctx context.Context, owner, pkg, release, basename, id string) (map[string]any, error) {
	var path string
	switch {
	case basename != "" && id != "":
		return nil, &ValidationError{Reason: "basename and id are mutually exclusive"}
	case basename != "":
		path = apiPath("dist", owner, pkg, release, basename)
	case id != "":
		path = apiPath("dist", owner, pkg, release, "-", id)
	default:
		return nil, &ValidationError{Reason: "either basename or id is required"}
	}

	var out map[string]any
	if err := c.rest.Request(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
