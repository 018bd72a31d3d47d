package notifications

import "context"

type Repository interface {
	Create(ctx context.Context, n Notification) error
	Update(ctx context.Context, n Notification) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Notification, error)

	// ListByUser: created_at desc.
	ListByUser(ctx context.Context, userID string) ([]Notification, error)
	ListByPet(ctx context.Context, petID string) ([]Notification, error)
}
