package favorites

import "context"

type Repository interface {
	// Create devuelve un error apperr.ErrConflict si ya existe el par (user, pet).
	Create(ctx context.Context, f Favorite) error
	Delete(ctx context.Context, id string) error
	GetByUserAndPet(ctx context.Context, userID, petID string) (Favorite, error)
	// ListByUser: created_at desc.
	ListByUser(ctx context.Context, userID string) ([]Favorite, error)
	ListByPet(ctx context.Context, petID string) ([]Favorite, error)
}
