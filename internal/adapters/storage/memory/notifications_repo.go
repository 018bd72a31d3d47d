package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"pet-adoption-hub/internal/domain/notifications"
)

type notificationRepo struct {
	mu   sync.RWMutex
	byID map[string]notifications.Notification
}

func NewNotificationRepo() notifications.Repository {
	return &notificationRepo{
		byID: make(map[string]notifications.Notification),
	}
}

func (r *notificationRepo) Create(ctx context.Context, n notifications.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(n.ID) == "" {
		return errIDRequired
	}
	if _, exists := r.byID[n.ID]; exists {
		return fmt.Errorf("notification %s: %w", n.ID, ErrDuplicate)
	}
	r.byID[n.ID] = n
	return nil
}

func (r *notificationRepo) Update(ctx context.Context, n notifications.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[n.ID]; !exists {
		return fmt.Errorf("notification %s: %w", n.ID, ErrNotFound)
	}
	r.byID[n.ID] = n
	return nil
}

func (r *notificationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}

func (r *notificationRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.byID[id]
	if !ok {
		return notifications.Notification{}, fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return n, nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string) ([]notifications.Notification, error) {
	return r.filter(func(n notifications.Notification) bool { return n.UserID == userID }), nil
}

func (r *notificationRepo) ListByPet(ctx context.Context, petID string) ([]notifications.Notification, error) {
	return r.filter(func(n notifications.Notification) bool { return n.Links.PetID == petID }), nil
}

func (r *notificationRepo) filter(keep func(notifications.Notification) bool) []notifications.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]notifications.Notification, 0)
	for _, n := range r.byID {
		if keep(n) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}
