package quotes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the storage contract for quotes. List applies only the
// lead and event parts of the filter; status and paging are evaluated by the
// service because expiry is computed at read time.
type Repository interface {
	Create(ctx context.Context, q *Quote) (*Quote, error)
	GetByID(ctx context.Context, id string) (*Quote, error)
	List(ctx context.Context, filter ListQuotesFilter) ([]*Quote, error)
	Update(ctx context.Context, q *Quote) (*Quote, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository keeps quotes in process memory.
type InMemoryRepository struct {
	mu     sync.RWMutex
	quotes map[string]*Quote
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{quotes: make(map[string]*Quote)}
}

func (r *InMemoryRepository) Create(_ context.Context, q *Quote) (*Quote, error) {
	stored := q.clone()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = stored.CreatedAt

	r.mu.Lock()
	r.quotes[stored.ID] = stored
	r.mu.Unlock()
	return stored.clone(), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.quotes[id]
	if !ok {
		return nil, ErrQuoteNotFound
	}
	return q.clone(), nil
}

// List returns matching quotes newest first.
func (r *InMemoryRepository) List(_ context.Context, filter ListQuotesFilter) ([]*Quote, error) {
	r.mu.RLock()
	out := make([]*Quote, 0, len(r.quotes))
	for _, q := range r.quotes {
		if filter.matchesRefs(q) {
			out = append(out, q.clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Update replaces the mutable fields of a stored quote.
func (r *InMemoryRepository) Update(_ context.Context, q *Quote) (*Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.quotes[q.ID]
	if !ok {
		return nil, ErrQuoteNotFound
	}
	if existing.Status.IsTerminal() {
		return nil, ErrQuoteClosed
	}
	next := existing.clone()
	next.Status = q.Status
	next.ValidUntil = q.ValidUntil
	next.Notes = q.Notes
	next.Adjustments = q.Adjustments.Clone()
	next.FinalPrice = q.FinalPrice
	next.UpdatedAt = time.Now().UTC()
	r.quotes[q.ID] = next
	return next.clone(), nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quotes[id]; !ok {
		return ErrQuoteNotFound
	}
	delete(r.quotes, id)
	return nil
}
