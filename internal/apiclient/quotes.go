package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/wolfman30/sports-travel-platform/internal/quotes"
)

// remotePageLimit is the page size used when the adapter walks every page.
const remotePageLimit = 100

// QuotePage is one page of a quote listing.
type QuotePage struct {
	Quotes []*quotes.Quote
	Total  int
	Page   int
	Pages  int
}

// ListQuotes fetches one page of quotes. The status filter is the server's
// stored status; lapsed quotes are only reported as expired by the quote service.
func (c *Client) ListQuotes(ctx context.Context, filter quotes.ListQuotesFilter) (*QuotePage, error) {
	f := filter.Normalize()
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.LeadID != "" {
		q.Set("leadId", f.LeadID)
	}
	if f.EventID != "" {
		q.Set("eventId", f.EventID)
	}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("limit", strconv.Itoa(f.Limit))
	raw, err := c.invoke(ctx, request{Method: http.MethodGet, Endpoint: "/quotes", Path: "/quotes", Query: q})
	if err != nil {
		return nil, err
	}
	out, err := decodeData[struct {
		Quotes     []remoteQuote `json:"quotes"`
		Pagination pagination    `json:"pagination"`
	}](raw)
	if err != nil {
		return nil, err
	}
	return &QuotePage{
		Quotes: toQuotes(out.Quotes),
		Total:  out.Pagination.Total,
		Page:   out.Pagination.Page,
		Pages:  out.Pagination.Pages,
	}, nil
}

func (c *Client) GetQuote(ctx context.Context, id string) (*quotes.Quote, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("apiclient: quote id required")
	}
	raw, err := c.invoke(ctx, request{Method: http.MethodGet, Endpoint: "/quotes/{id}", Path: "/quotes/" + url.PathEscape(id)})
	if err != nil {
		return nil, notFoundAs(err, quotes.ErrQuoteNotFound)
	}
	q, err := decodeData[remoteQuote](raw)
	if err != nil {
		return nil, err
	}
	return q.toQuote(), nil
}

// GenerateQuote asks the API to price a quote from a lead's package.
func (c *Client) GenerateQuote(ctx context.Context, req quotes.GenerateRequest) (*quotes.Quote, error) {
	if strings.TrimSpace(req.LeadID) == "" {
		return nil, errors.New("apiclient: lead id required")
	}
	raw, err := c.invoke(ctx, request{Method: http.MethodPost, Endpoint: "/quotes/generate", Path: "/quotes/generate", Body: req})
	if err != nil {
		return nil, err
	}
	q, err := decodeData[remoteQuote](raw)
	if err != nil {
		return nil, err
	}
	return q.toQuote(), nil
}

func (c *Client) UpdateQuote(ctx context.Context, id string, req quotes.UpdateQuoteRequest) (*quotes.Quote, error) {
	raw, err := c.invoke(ctx, request{Method: http.MethodPatch, Endpoint: "/quotes/{id}", Path: "/quotes/" + url.PathEscape(id), Body: req})
	if err != nil {
		return nil, notFoundAs(err, quotes.ErrQuoteNotFound)
	}
	q, err := decodeData[remoteQuote](raw)
	if err != nil {
		return nil, err
	}
	return q.toQuote(), nil
}

func (c *Client) DeleteQuote(ctx context.Context, id string) error {
	_, err := c.invoke(ctx, request{Method: http.MethodDelete, Endpoint: "/quotes/{id}", Path: "/quotes/" + url.PathEscape(id)})
	return notFoundAs(err, quotes.ErrQuoteNotFound)
}

// QuoteRepository runs the quote service against the API.
type QuoteRepository struct {
	c *Client
}

var _ quotes.Repository = (*QuoteRepository)(nil)

func NewQuoteRepository(c *Client) *QuoteRepository {
	if c == nil {
		panic("apiclient: client required")
	}
	return &QuoteRepository{c: c}
}

// Create generates the quote remotely, then pushes any adjustments or
// non-draft status the caller already set.
func (r *QuoteRepository) Create(ctx context.Context, q *quotes.Quote) (*quotes.Quote, error) {
	req := quotes.GenerateRequest{LeadID: q.LeadID, Notes: q.Notes}
	if !q.ValidUntil.IsZero() {
		until := q.ValidUntil
		req.ValidUntil = &until
	}
	created, err := r.c.GenerateQuote(ctx, req)
	if err != nil {
		return nil, err
	}
	if q.Adjustments.Len() == 0 && (q.Status == "" || q.Status == quotes.StatusDraft) {
		return created, nil
	}
	update := quotes.UpdateQuoteRequest{}
	if q.Adjustments.Len() > 0 {
		adj := q.Adjustments.Clone()
		update.Adjustments = &adj
	}
	if q.Status != "" && q.Status != created.Status {
		status := q.Status
		update.Status = &status
	}
	return r.c.UpdateQuote(ctx, created.ID, update)
}

func (r *QuoteRepository) GetByID(ctx context.Context, id string) (*quotes.Quote, error) {
	return r.c.GetQuote(ctx, id)
}

// List walks every page matching the lead and event parts of filter.
func (r *QuoteRepository) List(ctx context.Context, filter quotes.ListQuotesFilter) ([]*quotes.Quote, error) {
	var out []*quotes.Quote
	for page := 1; ; page++ {
		res, err := r.c.ListQuotes(ctx, quotes.ListQuotesFilter{
			LeadID:  filter.LeadID,
			EventID: filter.EventID,
			Page:    page,
			Limit:   remotePageLimit,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, res.Quotes...)
		if len(res.Quotes) < remotePageLimit || page >= res.Pages {
			break
		}
	}
	if out == nil {
		out = []*quotes.Quote{}
	}
	return out, nil
}

// Update sends only the fields that differ from the stored quote. The API
// rejects a past validUntil, so an unchanged one must not be resent.
func (r *QuoteRepository) Update(ctx context.Context, q *quotes.Quote) (*quotes.Quote, error) {
	stored, err := r.c.GetQuote(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	req := changedFields(stored, q)
	if req == (quotes.UpdateQuoteRequest{}) {
		return stored, nil
	}
	return r.c.UpdateQuote(ctx, q.ID, req)
}

func changedFields(stored, q *quotes.Quote) quotes.UpdateQuoteRequest {
	var req quotes.UpdateQuoteRequest
	if q.Status != stored.Status {
		status := q.Status
		req.Status = &status
	}
	if !q.ValidUntil.IsZero() && !q.ValidUntil.Equal(stored.ValidUntil) {
		until := q.ValidUntil
		req.ValidUntil = &until
	}
	if q.Notes != stored.Notes {
		notes := q.Notes
		req.Notes = &notes
	}
	if !q.Adjustments.Equal(stored.Adjustments) {
		adj := q.Adjustments.Clone()
		req.Adjustments = &adj
	}
	return req
}

func (r *QuoteRepository) Delete(ctx context.Context, id string) error {
	return r.c.DeleteQuote(ctx, id)
}
