package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage.
//
// Update must apply the patch and, when change is non-nil and moves the
// lead to a different status, append the history entry in one atomic write.
// History returns a lead's entries in append order.
type Repository interface {
	Create(ctx context.Context, lead *Lead) (*Lead, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter ListLeadsFilter) ([]*Lead, error)
	Update(ctx context.Context, id string, patch Patch, change *StatusChange) (*Lead, error)
	Delete(ctx context.Context, id string) error
	History(ctx context.Context, id string) ([]StatusHistoryEntry, error)
}

// InMemoryRepository keeps leads and their history in process memory.
type InMemoryRepository struct {
	mu      sync.RWMutex
	leads   map[string]*Lead
	history map[string][]StatusHistoryEntry
	now     func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads:   make(map[string]*Lead),
		history: make(map[string][]StatusHistoryEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create stores lead, assigning an id and timestamps when missing.
func (r *InMemoryRepository) Create(_ context.Context, lead *Lead) (*Lead, error) {
	stored := *lead
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	now := r.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}

	r.mu.Lock()
	r.leads[stored.ID] = &stored
	r.mu.Unlock()

	out := stored
	return &out, nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	out := *lead
	return &out, nil
}

// List returns matching leads newest first.
func (r *InMemoryRepository) List(_ context.Context, filter ListLeadsFilter) ([]*Lead, error) {
	r.mu.RLock()
	matched := make([]*Lead, 0, len(r.leads))
	for _, l := range r.leads {
		if filter.Matches(*l) {
			cp := *l
			matched = append(matched, &cp)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	f := filter.Normalize()
	start := f.Offset()
	if start >= len(matched) {
		return []*Lead{}, nil
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

// Update applies patch and change under one lock.
func (r *InMemoryRepository) Update(_ context.Context, id string, patch Patch, change *StatusChange) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	next := *lead
	patch.Apply(&next)
	now := r.now()

	if change != nil && change.To != next.Status {
		at := change.At
		if at.IsZero() {
			at = now
		}
		r.history[id] = append(r.history[id], StatusHistoryEntry{
			ID:         uuid.New().String(),
			LeadID:     id,
			FromStatus: next.Status,
			ToStatus:   change.To,
			Notes:      change.Notes,
			CreatedAt:  at,
		})
		next.Status = change.To
	}
	next.UpdatedAt = now
	r.leads[id] = &next

	out := next
	return &out, nil
}

// Delete removes the lead together with its history.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leads[id]; !ok {
		return ErrLeadNotFound
	}
	delete(r.leads, id)
	delete(r.history, id)
	return nil
}

func (r *InMemoryRepository) History(_ context.Context, id string) ([]StatusHistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.leads[id]; !ok {
		return nil, ErrLeadNotFound
	}
	entries := r.history[id]
	out := make([]StatusHistoryEntry, len(entries))
	copy(out, entries)
	return out, nil
}
