package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// ResolveIdentifier converts a human-readable session name into its stable
// identifier. The conversion is deterministic on the server, so repeated
// calls with the same name return the same identifier. An empty name fails
// locally without touching the network.
func (c *Client) ResolveIdentifier(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}

	var payload struct {
		UUID string `json:"uuid"`
	}
	path := "/uuid/convert-string/" + url.PathEscape(name)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
		return "", err
	}
	return payload.UUID, nil
}
