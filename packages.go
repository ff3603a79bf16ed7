package anaconda

import (
	"context"
	"net/http"
	"net/url"
)

// PackageSpec describes a package to create.
type PackageSpec struct {
	Summary    string
	License    string
	LicenseURL string

	// Public hosts the package publicly. Note the zero value is private.
	Public bool

	// Attrs are extra indexed attributes for the package.
	Attrs map[string]any
}

// Package returns a package's metadata.
func (c *Client) Package(ctx context.Context, owner, name string) (map[string]any, error) {
	var out map[string]any
	path := apiPath("package", owner, name)
	if err := c.rest.Request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddPackage creates a package under the owner's account. Distributions
// are added to it later via Upload.
func (c *Client) AddPackage(ctx context.Context, owner, name string, spec PackageSpec) (map[string]any, error) {
	attrs := map[string]any{}
	for k, v := range spec.Attrs {
		attrs[k] = v
	}
	attrs["summary"] = spec.Summary
	attrs["license"] = map[string]any{"name": spec.License, "url": spec.LicenseURL}

	payload := map[string]any{
		"public":       spec.Public,
		"publish":      false,
		"public_attrs": attrs,
	}

	var out map[string]any
	path := apiPath("package", owner, name)
	if err := c.rest.Request(ctx, http.MethodPost, path, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RemovePackage deletes a package and everything under it.
func (c *Client) RemovePackage(ctx context.Context, owner, name string) error {
	path := apiPath("package", owner, name)
	return c.rest.Request(ctx, http.MethodDelete, path, nil, nil, http.StatusCreated)
}

// AllPackages lists every visible package, optionally only those
// modified after the given timestamp.
func (c *Client) AllPackages(ctx context.Context, modifiedAfter string) ([]map[string]any, error) {
	path := "/package_listing"
	if modifiedAfter != "" {
		path += "?" + url.Values{"modified_after": []string{modifiedAfter}}.Encode()
	}
	var out []map[string]any
	if err := c.rest.Request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PackageCollaborators lists the users collaborating on a package.
func (c *Client) PackageCollaborators(ctx context.Context, owner, name string) ([]map[string]any, error) {
	var out []map[string]any
	path := apiPath("packages", owner, name, "collaborators")
	if err := c.rest.Request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddPackageCollaborator grants a user collaborator access to a package.
func (c *Client) AddPackageCollaborator(ctx context.Context, owner, name, collaborator string) error {
	path := apiPath("packages", owner, name, "collaborators", collaborator)
	return c.rest.Request(ctx, http.MethodPut, path, nil, nil, http.StatusCreated)
}

// RemovePackageCollaborator revokes a user's collaborator access.
func (c *Client) RemovePackageCollaborator(ctx context.Context, owner, name, collaborator string) error {
	path := apiPath("packages", owner, name, "collaborators", collaborator)
	return c.rest.Request(ctx, http.MethodDelete, path, nil, nil, http.StatusCreated)
}
