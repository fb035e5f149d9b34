package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/salon-connect/internal/domain/entity"
	"github.com/oksasatya/salon-connect/internal/domain/repository"
	"github.com/oksasatya/salon-connect/pkg/geo"
)

type SalonRepository struct {
	mu     sync.RWMutex
	salons map[string]*entity.Salon
}

func NewSalonRepository() *SalonRepository {
	return &SalonRepository{salons: make(map[string]*entity.Salon)}
}

// copySalon deep-copies through JSON so callers never share nested slices with the store.
func copySalon(s *entity.Salon) *entity.Salon {
	b, _ := json.Marshal(s)
	var out entity.Salon
	_ = json.Unmarshal(b, &out)
	return &out
}

func (r *SalonRepository) Create(ctx context.Context, s *entity.Salon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.salons[s.ID]; ok {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	r.salons[s.ID] = copySalon(s)
	return nil
}

func (r *SalonRepository) GetByID(ctx context.Context, id string) (*entity.Salon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.salons[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copySalon(s), nil
}

func (r *SalonRepository) ListActive(ctx context.Context) ([]*entity.Salon, error) {
	return r.filterActive(func(*entity.Salon) bool { return true }), nil
}

func (r *SalonRepository) FindActiveInBox(ctx context.Context, box geo.Box) ([]*entity.Salon, error) {
	return r.filterActive(func(s *entity.Salon) bool { return box.Contains(s.Location) }), nil
}

func (r *SalonRepository) filterActive(keep func(*entity.Salon) bool) []*entity.Salon {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Salon, 0, len(r.salons))
	for _, s := range r.salons {
		if s.IsActive && keep(s) {
			out = append(out, copySalon(s))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *SalonRepository) Update(ctx context.Context, s *entity.Salon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.salons[s.ID]
	if !ok {
		return repository.ErrNotFound
	}
	s.CreatedAt = cur.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	r.salons[s.ID] = copySalon(s)
	return nil
}

func (r *SalonRepository) SetActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.salons[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.IsActive = active
	s.UpdatedAt = time.Now().UTC()
	return nil
}

var _ repository.SalonRepository = (*SalonRepository)(nil)
