package adoptions

import (
	"context"
	"time"
)

// Los listados devuelven created_at desc.
type Repository interface {
	Create(ctx context.Context, r Request) error
	Update(ctx context.Context, r Request) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Request, error)

	ListByRequester(ctx context.Context, userID string) ([]Request, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Request, error)
	ListByPet(ctx context.Context, petID string) ([]Request, error)
	ListByRequesterAndPet(ctx context.Context, userID, petID string) ([]Request, error)
	ListByStatusUpdatedBefore(ctx context.Context, status Status, before time.Time) ([]Request, error)
}
