package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wolfman30/sports-travel-platform/internal/dashboard"
	"github.com/wolfman30/sports-travel-platform/internal/leads"
	"github.com/wolfman30/sports-travel-platform/internal/quotes"
)

const defaultRecentLimit = 5

func (c *Client) DashboardStats(ctx context.Context) (*dashboard.Stats, error) {
	raw, err := c.invoke(ctx, request{Method: http.MethodGet, Endpoint: "/dashboard/stats", Path: "/dashboard/stats"})
	if err != nil {
		return nil, err
	}
	return decodeData[dashboard.Stats](raw)
}

func (c *Client) DashboardRevenue(ctx context.Context) (*dashboard.Revenue, error) {
	raw, err := c.invoke(ctx, request{Method: http.MethodGet, Endpoint: "/dashboard/revenue", Path: "/dashboard/revenue"})
	if err != nil {
		return nil, err
	}
	return decodeData[dashboard.Revenue](raw)
}

// RecentLeads returns the newest leads; limit defaults to 5.
func (c *Client) RecentLeads(ctx context.Context, limit int) ([]*leads.Lead, error) {
	raw, err := c.invoke(ctx, request{
		Method:   http.MethodGet,
		Endpoint: "/dashboard/recent-leads",
		Path:     "/dashboard/recent-leads",
		Query:    recentQuery(limit),
	})
	if err != nil {
		return nil, err
	}
	remote, err := decodeList[remoteLead](raw, "leads")
	if err != nil {
		return nil, err
	}
	return toLeads(remote), nil
}

// RecentQuotes returns the newest quotes; limit defaults to 5.
func (c *Client) RecentQuotes(ctx context.Context, limit int) ([]*quotes.Quote, error) {
	raw, err := c.invoke(ctx, request{
		Method:   http.MethodGet,
		Endpoint: "/dashboard/recent-quotes",
		Path:     "/dashboard/recent-quotes",
		Query:    recentQuery(limit),
	})
	if err != nil {
		return nil, err
	}
	remote, err := decodeList[remoteQuote](raw, "quotes")
	if err != nil {
		return nil, err
	}
	return toQuotes(remote), nil
}

func recentQuery(limit int) url.Values {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return url.Values{"limit": []string{strconv.Itoa(limit)}}
}

// DashboardSource serves dashboard.Source from the API.
type DashboardSource struct {
	c *Client
}

var _ dashboard.Source = (*DashboardSource)(nil)

func NewDashboardSource(c *Client) *DashboardSource {
	return &DashboardSource{c: c}
}

func (d *DashboardSource) Stats(ctx context.Context) (*dashboard.Stats, error) {
	return d.c.DashboardStats(ctx)
}

func (d *DashboardSource) Revenue(ctx context.Context) (*dashboard.Revenue, error) {
	return d.c.DashboardRevenue(ctx)
}
