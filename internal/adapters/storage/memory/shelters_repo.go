package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"pet-adoption-hub/internal/domain/shelters"
)

type shelterRepo struct {
	mu   sync.RWMutex
	byID map[string]shelters.Shelter
}

func NewShelterRepo() shelters.Repository {
	return &shelterRepo{
		byID: make(map[string]shelters.Shelter),
	}
}

// clone evita que el caller comparta Services/PremiumExpiry con lo guardado.
func cloneShelter(s shelters.Shelter) shelters.Shelter {
	if s.Services != nil {
		s.Services = append([]string(nil), s.Services...)
	}
	if s.PremiumExpiry != nil {
		t := *s.PremiumExpiry
		s.PremiumExpiry = &t
	}
	return s
}

func (r *shelterRepo) Create(ctx context.Context, s shelters.Shelter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(s.ID) == "" {
		return errIDRequired
	}
	if _, exists := r.byID[s.ID]; exists {
		return fmt.Errorf("shelter %s: %w", s.ID, ErrDuplicate)
	}
	r.byID[s.ID] = cloneShelter(s)
	return nil
}

func (r *shelterRepo) Update(ctx context.Context, s shelters.Shelter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[s.ID]; !exists {
		return fmt.Errorf("shelter %s: %w", s.ID, ErrNotFound)
	}
	r.byID[s.ID] = cloneShelter(s)
	return nil
}

func (r *shelterRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return fmt.Errorf("shelter %s: %w", id, ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}

func (r *shelterRepo) GetByID(ctx context.Context, id string) (shelters.Shelter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return shelters.Shelter{}, fmt.Errorf("shelter %s: %w", id, ErrNotFound)
	}
	return cloneShelter(s), nil
}

func (r *shelterRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]shelters.Shelter, error) {
	return r.filter(func(s shelters.Shelter) bool { return s.OwnerUserID == ownerUserID }), nil
}

func (r *shelterRepo) List(ctx context.Context, status shelters.Status) ([]shelters.Shelter, error) {
	return r.filter(func(s shelters.Shelter) bool { return status == "" || s.Status == status }), nil
}

func (r *shelterRepo) filter(keep func(shelters.Shelter) bool) []shelters.Shelter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]shelters.Shelter, 0)
	for _, s := range r.byID {
		if keep(s) {
			out = append(out, cloneShelter(s))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}
