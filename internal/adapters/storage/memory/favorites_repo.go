package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"pet-adoption-hub/internal/domain/favorites"
)

type favoriteRepo struct {
	mu     sync.RWMutex
	byID   map[string]favorites.Favorite
	byPair map[[2]string]string // (user, pet) -> id
}

func NewFavoriteRepo() favorites.Repository {
	return &favoriteRepo{
		byID:   make(map[string]favorites.Favorite),
		byPair: make(map[[2]string]string),
	}
}

func (r *favoriteRepo) Create(ctx context.Context, f favorites.Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(f.ID) == "" {
		return errIDRequired
	}
	key := [2]string{f.UserID, f.PetID}
	if _, exists := r.byPair[key]; exists {
		return fmt.Errorf("favorite (%s, %s): %w", f.UserID, f.PetID, ErrDuplicate)
	}
	r.byID[f.ID] = f
	r.byPair[key] = f.ID
	return nil
}

func (r *favoriteRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, exists := r.byID[id]
	if !exists {
		return fmt.Errorf("favorite %s: %w", id, ErrNotFound)
	}
	delete(r.byID, id)
	delete(r.byPair, [2]string{f.UserID, f.PetID})
	return nil
}

func (r *favoriteRepo) GetByUserAndPet(ctx context.Context, userID, petID string) (favorites.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPair[[2]string{userID, petID}]
	if !ok {
		return favorites.Favorite{}, fmt.Errorf("favorite (%s, %s): %w", userID, petID, ErrNotFound)
	}
	return r.byID[id], nil
}

func (r *favoriteRepo) ListByUser(ctx context.Context, userID string) ([]favorites.Favorite, error) {
	return r.filter(func(f favorites.Favorite) bool { return f.UserID == userID }), nil
}

func (r *favoriteRepo) ListByPet(ctx context.Context, petID string) ([]favorites.Favorite, error) {
	return r.filter(func(f favorites.Favorite) bool { return f.PetID == petID }), nil
}

func (r *favoriteRepo) filter(keep func(favorites.Favorite) bool) []favorites.Favorite {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]favorites.Favorite, 0)
	for _, f := range r.byID {
		if keep(f) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}
