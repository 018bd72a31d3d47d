package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error)
	ListByShelter(ctx context.Context, shelterID string) ([]Pet, error)
	List(ctx context.Context, filter ListFilter) ([]Pet, error)
}

// ListFilter: campos vacíos no filtran. Orden: created_at desc.
type ListFilter struct {
	Status   Status
	Type     string
	Location string
	Limit    int
}
