package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/wolfman30/sports-travel-platform/internal/catalog"
)

// Client serves the catalog straight from the API.
var _ catalog.Repository = (*Client)(nil)

// ListEvents fetches events, optionally narrowed by category or search text.
func (c *Client) ListEvents(ctx context.Context, filter catalog.EventFilter) ([]*catalog.Event, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		q.Set("search", s)
	}
	raw, err := c.invoke(ctx, request{Method: http.MethodGet, Endpoint: "/events", Path: "/events", Query: q})
	if err != nil {
		return nil, err
	}
	return decodeList[*catalog.Event](raw, "events")
}

func (c *Client) GetEvent(ctx context.Context, id string) (*catalog.Event, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("apiclient: event id required")
	}
	raw, err := c.invoke(ctx, request{Method: http.MethodGet, Endpoint: "/events/{id}", Path: "/events/" + url.PathEscape(id)})
	if err != nil {
		return nil, notFoundAs(err, catalog.ErrEventNotFound)
	}
	return decodeData[catalog.Event](raw)
}

func (c *Client) CreateEvent(ctx context.Context, in catalog.EventInput) (*catalog.Event, error) {
	raw, err := c.invoke(ctx, request{Method: http.MethodPost, Endpoint: "/events", Path: "/events", Body: in})
	if err != nil {
		return nil, err
	}
	return decodeData[catalog.Event](raw)
}

func (c *Client) UpdateEvent(ctx context.Context, id string, in catalog.EventInput) (*catalog.Event, error) {
	raw, err := c.invoke(ctx, request{Method: http.MethodPatch, Endpoint: "/events/{id}", Path: "/events/" + url.PathEscape(id), Body: in})
	if err != nil {
		return nil, notFoundAs(err, catalog.ErrEventNotFound)
	}
	return decodeData[catalog.Event](raw)
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	_, err := c.invoke(ctx, request{Method: http.MethodDelete, Endpoint: "/events/{id}", Path: "/events/" + url.PathEscape(id)})
	return notFoundAs(err, catalog.ErrEventNotFound)
}

// ListPackages fetches packages, optionally narrowed by event, tier or search text.
func (c *Client) ListPackages(ctx context.Context, filter catalog.PackageFilter) ([]*catalog.Package, error) {
	q := url.Values{}
	if filter.EventID != "" {
		q.Set("eventId", filter.EventID)
	}
	if filter.Tier != "" {
		q.Set("tier", string(filter.Tier))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		q.Set("search", s)
	}
	raw, err := c.invoke(ctx, request{Method: http.MethodGet, Endpoint: "/packages", Path: "/packages", Query: q})
	if err != nil {
		return nil, err
	}
	remote, err := decodeList[remotePackage](raw, "packages")
	if err != nil {
		return nil, err
	}
	out := make([]*catalog.Package, 0, len(remote))
	for _, p := range remote {
		out = append(out, p.toPackage())
	}
	return out, nil
}

func (c *Client) GetPackage(ctx context.Context, id string) (*catalog.Package, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("apiclient: package id required")
	}
	raw, err := c.invoke(ctx, request{Method: http.MethodGet, Endpoint: "/packages/{id}", Path: "/packages/" + url.PathEscape(id)})
	if err != nil {
		return nil, notFoundAs(err, catalog.ErrPackageNotFound)
	}
	p, err := decodeData[remotePackage](raw)
	if err != nil {
		return nil, err
	}
	return p.toPackage(), nil
}

func (c *Client) CreatePackage(ctx context.Context, in catalog.PackageInput) (*catalog.Package, error) {
	raw, err := c.invoke(ctx, request{Method: http.MethodPost, Endpoint: "/packages", Path: "/packages", Body: in})
	if err != nil {
		return nil, err
	}
	p, err := decodeData[remotePackage](raw)
	if err != nil {
		return nil, err
	}
	return p.toPackage(), nil
}

func (c *Client) UpdatePackage(ctx context.Context, id string, in catalog.PackageInput) (*catalog.Package, error) {
	raw, err := c.invoke(ctx, request{Method: http.MethodPatch, Endpoint: "/packages/{id}", Path: "/packages/" + url.PathEscape(id), Body: in})
	if err != nil {
		return nil, notFoundAs(err, catalog.ErrPackageNotFound)
	}
	p, err := decodeData[remotePackage](raw)
	if err != nil {
		return nil, err
	}
	return p.toPackage(), nil
}

func (c *Client) DeletePackage(ctx context.Context, id string) error {
	_, err := c.invoke(ctx, request{Method: http.MethodDelete, Endpoint: "/packages/{id}", Path: "/packages/" + url.PathEscape(id)})
	return notFoundAs(err, catalog.ErrPackageNotFound)
}
