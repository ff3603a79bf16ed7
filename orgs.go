package anaconda

import (
	"context"
	"net/http"

	"github.com/Saraiah-TiPeAnCo-Wilson/anaconda-client/rest"
)

// OrgService manages an organization's groups and their members.
type OrgService struct {
	rest *rest.Client
}

// Groups lists the organization's groups.
func (s *OrgService) Groups(ctx context.Context, org string) (map[string]any, error) {
	var out map[string]any
	path := apiPath("groups", org)
	if err := s.rest.Request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Group returns one group's metadata.
func (s *OrgService) Group(ctx context.Context, org, name string) (map[string]any, error) {
	var out map[string]any
	path := apiPath("group", org, name)
	if err := s.rest.Request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddGroup creates a group with the given permission level ("read",
// "write", or "admin").
func (s *OrgService) AddGroup(ctx context.Context, org, name, perms string) error {
	payload := map[string]any{"perms": perms}
	path := apiPath("group", org, name)
	return s.rest.Request(ctx, http.MethodPost, path, payload, nil, http.StatusCreated)
}

// Members lists a group's members.
func (s *OrgService) Members(ctx context.Context, org, name string) ([]map[string]any, error) {
	var out []map[string]any
	path := apiPath("group", org, name, "members")
	if err := s.rest.Request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddMember adds a user to a group.
func (s *OrgService) AddMember(ctx context.Context, org, name, member string) error {
	path := apiPath("group", org, name, "members", member)
	return s.rest.Request(ctx, http.MethodPut, path, nil, nil, http.StatusCreated)
}

// RemoveMember removes a user from a group.
func (s *OrgService) RemoveMember(ctx context.Context, org, name, member string) error {
	path := apiPath("group", org, name, "members", member)
	return s.rest.Request(ctx, http.MethodDelete, path, nil, nil, http.StatusCreated)
}
