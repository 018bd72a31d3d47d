package shelters

import "context"

type Repository interface {
	Create(ctx context.Context, s Shelter) error
	Update(ctx context.Context, s Shelter) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Shelter, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Shelter, error)
	// List con status vacío devuelve todos. Orden: created_at desc.
	List(ctx context.Context, status Status) ([]Shelter, error)
}
