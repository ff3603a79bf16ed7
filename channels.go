package anaconda

import (
	"context"
	"net/http"

	"github.com/Saraiah-TiPeAnCo-Wilson/anaconda-client/rest"
)

// ChannelService manages an owner's distribution channels. Distributions
// are published into channels at upload time; locking a channel freezes
// its contents.
type ChannelService struct {
	rest *rest.Client
}

// List returns the owner's channels.
func (s *ChannelService) List(ctx context.Context, owner string) ([]map[string]any, error) {
	var out []map[string]any
	path := apiPath("channels", owner)
	if err := s.rest.Request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Show returns one channel's metadata and file listing.
func (s *ChannelService) Show(ctx context.Context, owner, channel string) (map[string]any, error) {
	var out map[string]any
	path := apiPath("channels", owner, channel)
	if err := s.rest.Request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Add creates a channel.
func (s *ChannelService) Add(ctx context.Context, owner, channel string) error {
	path := apiPath("channels", owner, channel)
	return s.rest.Request(ctx, http.MethodPost, path, nil, nil, http.StatusCreated)
}

// Remove deletes a channel. Files in it remain part of their releases.
func (s *ChannelService) Remove(ctx context.Context, owner, channel string) error {
	path := apiPath("channels", owner, channel)
	return s.rest.Request(ctx, http.MethodDelete, path, nil, nil, http.StatusCreated)
}

// Lock freezes a channel against further publishes.
func (s *ChannelService) Lock(ctx context.Context, owner, channel string) error {
	path := apiPath("channels", owner, channel, "lock")
	return s.rest.Request(ctx, http.MethodPost, path, nil, nil, http.StatusCreated)
}

// Unlock reopens a locked channel.
func (s *ChannelService) Unlock(ctx context.Context, owner, channel string) error {
	path := apiPath("channels", owner, channel, "unlock")
	return s.rest.Request(ctx, http.MethodPost, path, nil, nil, http.StatusCreated)
}
