package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-adoption-hub/internal/domain/adoptions"
)

type adoptionRepo struct {
	mu   sync.RWMutex
	byID map[string]adoptions.Request
}

func NewAdoptionRepo() adoptions.Repository {
	return &adoptionRepo{
		byID: make(map[string]adoptions.Request),
	}
}

func (r *adoptionRepo) Create(ctx context.Context, req adoptions.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(req.ID) == "" {
		return errIDRequired
	}
	if _, exists := r.byID[req.ID]; exists {
		return fmt.Errorf("adoption request %s: %w", req.ID, ErrDuplicate)
	}
	r.byID[req.ID] = req
	return nil
}

func (r *adoptionRepo) Update(ctx context.Context, req adoptions.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[req.ID]; !exists {
		return fmt.Errorf("adoption request %s: %w", req.ID, ErrNotFound)
	}
	r.byID[req.ID] = req
	return nil
}

func (r *adoptionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return fmt.Errorf("adoption request %s: %w", id, ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}

func (r *adoptionRepo) GetByID(ctx context.Context, id string) (adoptions.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.byID[id]
	if !ok {
		return adoptions.Request{}, fmt.Errorf("adoption request %s: %w", id, ErrNotFound)
	}
	return req, nil
}

func (r *adoptionRepo) ListByRequester(ctx context.Context, userID string) ([]adoptions.Request, error) {
	return r.filter(func(req adoptions.Request) bool { return req.RequesterUserID == userID }), nil
}

func (r *adoptionRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]adoptions.Request, error) {
	return r.filter(func(req adoptions.Request) bool { return req.OwnerUserID == ownerUserID }), nil
}

func (r *adoptionRepo) ListByPet(ctx context.Context, petID string) ([]adoptions.Request, error) {
	return r.filter(func(req adoptions.Request) bool { return req.PetID == petID }), nil
}

func (r *adoptionRepo) ListByRequesterAndPet(ctx context.Context, userID, petID string) ([]adoptions.Request, error) {
	return r.filter(func(req adoptions.Request) bool {
		return req.RequesterUserID == userID && req.PetID == petID
	}), nil
}

func (r *adoptionRepo) ListByStatusUpdatedBefore(ctx context.Context, status adoptions.Status, before time.Time) ([]adoptions.Request, error) {
	return r.filter(func(req adoptions.Request) bool {
		return req.Status == status && req.UpdatedAt.Before(before)
	}), nil
}

func (r *adoptionRepo) filter(keep func(adoptions.Request) bool) []adoptions.Request {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]adoptions.Request, 0)
	for _, req := range r.byID {
		if keep(req) {
			out = append(out, req)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}
