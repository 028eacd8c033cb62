package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/wolfman30/sports-travel-platform/internal/leads"
)

// LeadPage is one page of a lead listing.
type LeadPage struct {
	Leads []*leads.Lead
	Total int
	Page  int
	Pages int
}

// ListLeads fetches one page of leads filtered by status and event.
func (c *Client) ListLeads(ctx context.Context, filter leads.ListLeadsFilter) (*LeadPage, error) {
	f := filter.Normalize()
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.EventID != "" {
		q.Set("event", f.EventID)
	}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("limit", strconv.Itoa(f.Limit))
	raw, err := c.invoke(ctx, request{Method: http.MethodGet, Endpoint: "/leads", Path: "/leads", Query: q})
	if err != nil {
		return nil, err
	}
	out, err := decodeData[struct {
		Leads      []remoteLead `json:"leads"`
		Pagination pagination   `json:"pagination"`
	}](raw)
	if err != nil {
		return nil, err
	}
	return &LeadPage{
		Leads: toLeads(out.Leads),
		Total: out.Pagination.Total,
		Page:  out.Pagination.Page,
		Pages: out.Pagination.Pages,
	}, nil
}

func (c *Client) GetLead(ctx context.Context, id string) (*leads.Lead, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("apiclient: lead id required")
	}
	raw, err := c.invoke(ctx, request{Method: http.MethodGet, Endpoint: "/leads/{id}", Path: "/leads/" + url.PathEscape(id)})
	if err != nil {
		return nil, notFoundAs(err, leads.ErrLeadNotFound)
	}
	l, err := decodeData[remoteLead](raw)
	if err != nil {
		return nil, err
	}
	return l.toLead(), nil
}

func (c *Client) CreateLead(ctx context.Context, req leads.CreateLeadRequest) (*leads.Lead, error) {
	raw, err := c.invoke(ctx, request{Method: http.MethodPost, Endpoint: "/leads", Path: "/leads", Body: req})
	if err != nil {
		return nil, err
	}
	l, err := decodeData[remoteLead](raw)
	if err != nil {
		return nil, err
	}
	return l.toLead(), nil
}

// UpdateLead patches a lead. A status in req is recorded server-side in the
// lead's history with req.StatusNotes.
func (c *Client) UpdateLead(ctx context.Context, id string, req leads.UpdateLeadRequest) (*leads.Lead, error) {
	raw, err := c.invoke(ctx, request{Method: http.MethodPatch, Endpoint: "/leads/{id}", Path: "/leads/" + url.PathEscape(id), Body: req})
	if err != nil {
		return nil, notFoundAs(err, leads.ErrLeadNotFound)
	}
	l, err := decodeData[remoteLead](raw)
	if err != nil {
		return nil, err
	}
	return l.toLead(), nil
}

func (c *Client) DeleteLead(ctx context.Context, id string) error {
	_, err := c.invoke(ctx, request{Method: http.MethodDelete, Endpoint: "/leads/{id}", Path: "/leads/" + url.PathEscape(id)})
	return notFoundAs(err, leads.ErrLeadNotFound)
}

// LeadHistory returns the lead's status history as the API orders it,
// newest first.
func (c *Client) LeadHistory(ctx context.Context, id string) ([]leads.StatusHistoryEntry, error) {
	raw, err := c.invoke(ctx, request{Method: http.MethodGet, Endpoint: "/leads/{id}/history", Path: "/leads/" + url.PathEscape(id) + "/history"})
	if err != nil {
		return nil, notFoundAs(err, leads.ErrLeadNotFound)
	}
	remote, err := decodeList[remoteHistoryEntry](raw, "history")
	if err != nil {
		return nil, err
	}
	out := make([]leads.StatusHistoryEntry, 0, len(remote))
	for _, h := range remote {
		e := h.toEntry()
		if e.LeadID == "" {
			e.LeadID = id
		}
		out = append(out, e)
	}
	return out, nil
}

// LeadRepository runs the lead service against the API.
type LeadRepository struct {
	c *Client
}

var _ leads.Repository = (*LeadRepository)(nil)

func NewLeadRepository(c *Client) *LeadRepository {
	if c == nil {
		panic("apiclient: client required")
	}
	return &LeadRepository{c: c}
}

func (r *LeadRepository) Create(ctx context.Context, lead *leads.Lead) (*leads.Lead, error) {
	return r.c.CreateLead(ctx, leads.CreateLeadRequest{
		Name:              lead.Name,
		Email:             lead.Email,
		Phone:             lead.Phone,
		EventID:           lead.EventID,
		PackageID:         lead.PackageID,
		NumberOfTravelers: lead.NumberOfTravelers,
		TravelDate:        lead.TravelDate,
		Notes:             lead.Notes,
	})
}

func (r *LeadRepository) GetByID(ctx context.Context, id string) (*leads.Lead, error) {
	return r.c.GetLead(ctx, id)
}

// List asks the API for the page; search text has no server-side filter and
// is applied to the returned page.
// List lets the API page when there is no search. The API has no text
// search, so a search walks every page and pages the matches locally.
func (r *LeadRepository) List(ctx context.Context, filter leads.ListLeadsFilter) ([]*leads.Lead, error) {
	if strings.TrimSpace(filter.Search) == "" {
		page, err := r.c.ListLeads(ctx, filter)
		if err != nil {
			return nil, err
		}
		return page.Leads, nil
	}

	var matched []*leads.Lead
	for n := 1; ; n++ {
		page, err := r.c.ListLeads(ctx, leads.ListLeadsFilter{
			Status:  filter.Status,
			EventID: filter.EventID,
			Page:    n,
			Limit:   remotePageLimit,
		})
		if err != nil {
			return nil, err
		}
		for _, l := range page.Leads {
			if filter.Matches(*l) {
				matched = append(matched, l)
			}
		}
		if len(page.Leads) < remotePageLimit || n >= page.Pages {
			break
		}
	}

	f := filter.Normalize()
	start := f.Offset()
	if start >= len(matched) {
		return []*leads.Lead{}, nil
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (r *LeadRepository) Update(ctx context.Context, id string, patch leads.Patch, change *leads.StatusChange) (*leads.Lead, error) {
	req := leads.UpdateLeadRequest{Patch: patch}
	if change != nil {
		to := change.To
		req.Status = &to
		req.StatusNotes = change.Notes
	}
	return r.c.UpdateLead(ctx, id, req)
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	return r.c.DeleteLead(ctx, id)
}

// History returns entries in append order, reversing the API's newest-first listing.
func (r *LeadRepository) History(ctx context.Context, id string) ([]leads.StatusHistoryEntry, error) {
	entries, err := r.c.LeadHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
