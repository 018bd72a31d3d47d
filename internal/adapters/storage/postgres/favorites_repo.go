package postgres

import (
	"context"
	"database/sql"

	"pet-adoption-hub/internal/domain/favorites"
)

type FavoritesRepo struct {
	db *sql.DB
}

func NewFavoritesRepo(db *sql.DB) *FavoritesRepo {
	return &FavoritesRepo{db: db}
}

// Create: la restricción UNIQUE (user_id, pet_id) se traduce a ErrDuplicate.
func (r *FavoritesRepo) Create(ctx context.Context, f favorites.Favorite) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO favorites (id, user_id, pet_id, created_at) VALUES ($1,$2,$3,$4)
	`, f.ID, f.UserID, f.PetID, f.CreatedAt)
	return classify("favorite", f.UserID+"/"+f.PetID, err)
}

func (r *FavoritesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res, "favorite", id)
}

func (r *FavoritesRepo) GetByUserAndPet(ctx context.Context, userID, petID string) (favorites.Favorite, error) {
	var f favorites.Favorite
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, pet_id, created_at FROM favorites WHERE user_id = $1 AND pet_id = $2
	`, userID, petID).Scan(&f.ID, &f.UserID, &f.PetID, &f.CreatedAt)
	if err != nil {
		return favorites.Favorite{}, classify("favorite", userID+"/"+petID, err)
	}
	return f, nil
}

func (r *FavoritesRepo) ListByUser(ctx context.Context, userID string) ([]favorites.Favorite, error) {
	return r.query(ctx, `WHERE user_id = $1`, userID)
}

func (r *FavoritesRepo) ListByPet(ctx context.Context, petID string) ([]favorites.Favorite, error) {
	return r.query(ctx, `WHERE pet_id = $1`, petID)
}

func (r *FavoritesRepo) query(ctx context.Context, where string, args ...any) ([]favorites.Favorite, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, pet_id, created_at FROM favorites `+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]favorites.Favorite, 0)
	for rows.Next() {
		var f favorites.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.PetID, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
