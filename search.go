package anaconda

import (
	"context"
	"net/http"
	"net/url"
)

// Search finds packages by name, optionally limited to one package type
// such as "conda" or "pypi".
func (c *Client) Search(ctx context.Context, query, packageType string) ([]map[string]any, error) {
	params := url.Values{"name": []string{query}}
	if packageType != "" {
		params.Set("type", packageType)
	}

	var out []map[string]any
	if err := c.rest.Request(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
