package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Repository defines the storage contract for events and packages.
type Repository interface {
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]*Event, error)
	CreateEvent(ctx context.Context, in EventInput) (*Event, error)
	UpdateEvent(ctx context.Context, id string, in EventInput) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error

	GetPackage(ctx context.Context, id string) (*Package, error)
	ListPackages(ctx context.Context, filter PackageFilter) ([]*Package, error)
	CreatePackage(ctx context.Context, in PackageInput) (*Package, error)
	UpdatePackage(ctx context.Context, id string, in PackageInput) (*Package, error)
	DeletePackage(ctx context.Context, id string) error
}

// InMemoryRepository keeps the catalog in process memory.
type InMemoryRepository struct {
	mu       sync.RWMutex
	events   map[string]*Event
	packages map[string]*Package
}

// NewInMemoryRepository creates an empty in-memory catalog.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		events:   make(map[string]*Event),
		packages: make(map[string]*Package),
	}
}

func (r *InMemoryRepository) GetEvent(_ context.Context, id string) (*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *InMemoryRepository) ListEvents(_ context.Context, filter EventFilter) ([]*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Event, 0, len(r.events))
	for _, e := range r.events {
		if filter.Matches(*e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *InMemoryRepository) CreateEvent(_ context.Context, in EventInput) (*Event, error) {
	e := eventFromInput(uuid.NewString(), in)
	r.mu.Lock()
	r.events[e.ID] = e
	r.mu.Unlock()
	cp := *e
	return &cp, nil
}

func (r *InMemoryRepository) UpdateEvent(_ context.Context, id string, in EventInput) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return nil, ErrEventNotFound
	}
	e := eventFromInput(id, in)
	r.events[id] = e
	cp := *e
	return &cp, nil
}

// DeleteEvent removes the event and its packages.
func (r *InMemoryRepository) DeleteEvent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(r.events, id)
	for pid, p := range r.packages {
		if p.EventID == id {
			delete(r.packages, pid)
		}
	}
	return nil
}

func (r *InMemoryRepository) GetPackage(_ context.Context, id string) (*Package, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.packages[id]
	if !ok {
		return nil, ErrPackageNotFound
	}
	return clonePackage(p), nil
}

func (r *InMemoryRepository) ListPackages(_ context.Context, filter PackageFilter) ([]*Package, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Package, 0, len(r.packages))
	for _, p := range r.packages {
		if filter.Matches(*p) {
			out = append(out, clonePackage(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EventID != out[j].EventID {
			return out[i].EventID < out[j].EventID
		}
		return tierRank(out[i].Tier) < tierRank(out[j].Tier)
	})
	return out, nil
}

func (r *InMemoryRepository) CreatePackage(_ context.Context, in PackageInput) (*Package, error) {
	p := packageFromInput(uuid.NewString(), in)
	r.mu.Lock()
	r.packages[p.ID] = p
	r.mu.Unlock()
	return clonePackage(p), nil
}

func (r *InMemoryRepository) UpdatePackage(_ context.Context, id string, in PackageInput) (*Package, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.packages[id]; !ok {
		return nil, ErrPackageNotFound
	}
	p := packageFromInput(id, in)
	r.packages[id] = p
	return clonePackage(p), nil
}

func (r *InMemoryRepository) DeletePackage(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.packages[id]; !ok {
		return ErrPackageNotFound
	}
	delete(r.packages, id)
	return nil
}

func eventFromInput(id string, in EventInput) *Event {
	return &Event{
		ID:          id,
		Name:        in.Name,
		Location:    in.Location,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Category:    in.Category,
		Featured:    in.Featured,
		Description: in.Description,
		Image:       in.Image,
	}
}

func packageFromInput(id string, in PackageInput) *Package {
	return &Package{
		ID:           id,
		EventID:      in.EventID,
		Name:         in.Name,
		Description:  in.Description,
		Tier:         in.Tier,
		BasePrice:    in.BasePrice,
		MaxTravelers: in.MaxTravelers,
		Features:     append([]string(nil), in.Features...),
	}
}

func clonePackage(p *Package) *Package {
	cp := *p
	cp.Features = append([]string(nil), p.Features...)
	return &cp
}

func tierRank(t Tier) int {
	for i, candidate := range tierOrder {
		if candidate == t {
			return i
		}
	}
	return len(tierOrder)
}
