package postgres

import (
	"context"
	"database/sql"
	"time"

	"pet-adoption-hub/internal/domain/adoptions"
)

type AdoptionsRepo struct {
	db *sql.DB
}

func NewAdoptionsRepo(db *sql.DB) *AdoptionsRepo {
	return &AdoptionsRepo{db: db}
}

const adoptionColumns = `
	id, requester_user_id, pet_id, owner_user_id,
	pet_name, pet_type, pet_breed, pet_image_url,
	adopter_name, adopter_email, message,
	status, owner_notes, created_at, updated_at`

func (r *AdoptionsRepo) Create(ctx context.Context, req adoptions.Request) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO adoption_requests (`+adoptionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		req.ID,
		req.RequesterUserID,
		req.PetID,
		req.OwnerUserID,
		req.Pet.Name,
		req.Pet.Type,
		req.Pet.Breed,
		req.Pet.ImageURL,
		req.AdopterName,
		req.AdopterEmail,
		req.Message,
		string(req.Status),
		req.OwnerNotes,
		req.CreatedAt,
		req.UpdatedAt,
	)
	return classify("adoption request", req.ID, err)
}

// Update solo toca lo que cambia en una transición.
func (r *AdoptionsRepo) Update(ctx context.Context, req adoptions.Request) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE adoption_requests
		SET status = $2, owner_notes = $3, updated_at = $4
		WHERE id = $1
	`, req.ID, string(req.Status), req.OwnerNotes, req.UpdatedAt)
	if err != nil {
		return err
	}
	return expectOne(res, "adoption request", req.ID)
}

func (r *AdoptionsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM adoption_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res, "adoption request", id)
}

func (r *AdoptionsRepo) GetByID(ctx context.Context, id string) (adoptions.Request, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+adoptionColumns+` FROM adoption_requests WHERE id = $1`, id)
	req, err := scanAdoption(row)
	if err != nil {
		return adoptions.Request{}, classify("adoption request", id, err)
	}
	return req, nil
}

func (r *AdoptionsRepo) ListByRequester(ctx context.Context, userID string) ([]adoptions.Request, error) {
	return r.query(ctx, `WHERE requester_user_id = $1`, userID)
}

func (r *AdoptionsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]adoptions.Request, error) {
	return r.query(ctx, `WHERE owner_user_id = $1`, ownerUserID)
}

func (r *AdoptionsRepo) ListByPet(ctx context.Context, petID string) ([]adoptions.Request, error) {
	return r.query(ctx, `WHERE pet_id = $1`, petID)
}

func (r *AdoptionsRepo) ListByRequesterAndPet(ctx context.Context, userID, petID string) ([]adoptions.Request, error) {
	return r.query(ctx, `WHERE requester_user_id = $1 AND pet_id = $2`, userID, petID)
}

func (r *AdoptionsRepo) ListByStatusUpdatedBefore(ctx context.Context, status adoptions.Status, before time.Time) ([]adoptions.Request, error) {
	return r.query(ctx, `WHERE status = $1 AND updated_at < $2`, string(status), before)
}

func (r *AdoptionsRepo) query(ctx context.Context, where string, args ...any) ([]adoptions.Request, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+adoptionColumns+` FROM adoption_requests `+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]adoptions.Request, 0)
	for rows.Next() {
		req, err := scanAdoption(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanAdoption(s scanner) (adoptions.Request, error) {
	var req adoptions.Request
	var status string
	err := s.Scan(
		&req.ID,
		&req.RequesterUserID,
		&req.PetID,
		&req.OwnerUserID,
		&req.Pet.Name,
		&req.Pet.Type,
		&req.Pet.Breed,
		&req.Pet.ImageURL,
		&req.AdopterName,
		&req.AdopterEmail,
		&req.Message,
		&status,
		&req.OwnerNotes,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	req.Status = adoptions.Status(status)
	return req, err
}
