package anaconda

import (
	"context"
	"net/http"
)

// ReleaseSpec describes a release to create under a package.
type ReleaseSpec struct {
	// Requirements the release declares, keyed by requirement kind.
	Requirements map[string]any

	// Announce is posted to all package watchers.
	Announce string

	// Description is the long-form release description.
	Description string
}

// Release returns a release's metadata.
func (c *Client) Release(ctx context.Context, owner, pkg, version string) (map[string]any, error) {
	var out map[string]any
	path := apiPath("release", owner, pkg, version)
	if err := c.rest.Request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddRelease creates a release under a package.
func (c *Client) AddRelease(ctx context.Context, owner, pkg, version string, spec ReleaseSpec) (map[string]any, error) {
	payload := map[string]any{
		"requirements": spec.Requirements,
		"announce":     spec.Announce,
		"description":  spec.Description,
	}
	var out map[string]any
	path := apiPath("release", owner, pkg, version)
	if err := c.rest.Request(ctx, http.MethodPost, path, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveRelease deletes a release and all files under it.
func (c *Client) RemoveRelease(ctx context.Context, owner, pkg, version string) error {
	path := apiPath("release", owner, pkg, version)
	return c.rest.Request(ctx, http.MethodDelete, path, nil, nil, http.StatusCreated)
}
