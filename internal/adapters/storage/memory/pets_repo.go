package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"pet-adoption-hub/internal/domain/pets"
)

type petRepo struct {
	mu   sync.RWMutex
	byID map[string]pets.Pet
}

func NewPetRepo() pets.Repository {
	return &petRepo{
		byID: make(map[string]pets.Pet),
	}
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errIDRequired
	}
	if _, exists := r.byID[p.ID]; exists {
		return fmt.Errorf("pet %s: %w", p.ID, ErrDuplicate)
	}
	r.byID[p.ID] = p
	return nil
}

func (r *petRepo) Update(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errIDRequired
	}
	if _, exists := r.byID[p.ID]; !exists {
		return fmt.Errorf("pet %s: %w", p.ID, ErrNotFound)
	}
	r.byID[p.ID] = p
	return nil
}

func (r *petRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return fmt.Errorf("pet %s: %w", id, ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return pets.Pet{}, fmt.Errorf("pet %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (r *petRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	return r.filter(func(p pets.Pet) bool { return p.OwnerUserID == ownerUserID }, 0), nil
}

func (r *petRepo) ListByShelter(ctx context.Context, shelterID string) ([]pets.Pet, error) {
	return r.filter(func(p pets.Pet) bool { return p.ShelterID == shelterID }, 0), nil
}

// List: location matchea por substring sin distinguir mayúsculas.
func (r *petRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	location := strings.ToLower(f.Location)
	return r.filter(func(p pets.Pet) bool {
		if f.Status != "" && p.Status != f.Status {
			return false
		}
		if f.Type != "" && !strings.EqualFold(p.Type, f.Type) {
			return false
		}
		if location != "" && !strings.Contains(strings.ToLower(p.Location), location) {
			return false
		}
		return true
	}, f.Limit), nil
}

func (r *petRepo) filter(keep func(pets.Pet) bool, limit int) []pets.Pet {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.byID {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
