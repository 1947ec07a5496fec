package appointments

import (
	"context"
	"sort"
	"sync"
)

// Repository defines the interface for appointment storage
type Repository interface {
	Create(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]*Appointment, error)
}

// ListFilter narrows List results. Date bounds are inclusive ISO dates.
type ListFilter struct {
	From   string
	To     string
	Limit  int
	Offset int
}

func (f ListFilter) normalized() ListFilter {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// InMemoryRepository keeps appointments in process memory.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Appointment
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[string]*Appointment)}
}

// Create stores a copy of appt.
func (r *InMemoryRepository) Create(ctx context.Context, appt *Appointment) error {
	cp := *appt
	r.mu.Lock()
	r.items[cp.ID] = &cp
	r.mu.Unlock()
	return nil
}

// GetByID retrieves an appointment by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	appt, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *appt
	return &cp, nil
}

// List returns appointments ordered by scheduled time, newest request last.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Appointment, error) {
	filter = filter.normalized()
	r.mu.RLock()
	out := make([]*Appointment, 0, len(r.items))
	for _, appt := range r.items {
		if filter.From != "" && appt.Date < filter.From {
			continue
		}
		if filter.To != "" && appt.Date > filter.To {
			continue
		}
		cp := *appt
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledFor.Equal(out[j].ScheduledFor) {
			return out[i].ScheduledFor.Before(out[j].ScheduledFor)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if filter.Offset >= len(out) {
		return []*Appointment{}, nil
	}
	out = out[filter.Offset:]
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

var _ Repository = (*InMemoryRepository)(nil)
