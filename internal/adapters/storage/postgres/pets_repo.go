package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-adoption-hub/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, owner_user_id, shelter_id, shelter_name,
	name, type, breed, gender, age, location,
	description, image_url, status,
	created_at, updated_at`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		p.ID,
		p.OwnerUserID,
		p.ShelterID,
		p.ShelterName,
		p.Name,
		p.Type,
		p.Breed,
		p.Gender,
		p.Age,
		p.Location,
		p.Description,
		p.ImageURL,
		string(p.Status),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return classify("pet", p.ID, err)
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			shelter_id = $2,
			shelter_name = $3,
			name = $4,
			type = $5,
			breed = $6,
			gender = $7,
			age = $8,
			location = $9,
			description = $10,
			image_url = $11,
			status = $12,
			updated_at = $13
		WHERE id = $1
	`,
		p.ID,
		p.ShelterID,
		p.ShelterName,
		p.Name,
		p.Type,
		p.Breed,
		p.Gender,
		p.Age,
		p.Location,
		p.Description,
		p.ImageURL,
		string(p.Status),
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return expectOne(res, "pet", p.ID)
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res, "pet", id)
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, fmt.Errorf("pet: %w", ErrNotFound)
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)
	p, err := scanPet(row)
	if err != nil {
		return pets.Pet{}, classify("pet", id, err)
	}
	return p, nil
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	return r.query(ctx, `SELECT `+petColumns+` FROM pets WHERE owner_user_id = $1 ORDER BY created_at DESC, id DESC`, ownerUserID)
}

func (r *PetsRepo) ListByShelter(ctx context.Context, shelterID string) ([]pets.Pet, error) {
	return r.query(ctx, `SELECT `+petColumns+` FROM pets WHERE shelter_id = $1 ORDER BY created_at DESC, id DESC`, shelterID)
}

func (r *PetsRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.Type != "" {
		add("lower(type) = lower($%d)", f.Type)
	}
	if f.Location != "" {
		add("location ILIKE '%%' || $%d || '%%'", f.Location)
	}

	q := `SELECT ` + petColumns + ` FROM pets`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	return r.query(ctx, q, args...)
}

func (r *PetsRepo) query(ctx context.Context, q string, args ...any) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPet(s scanner) (pets.Pet, error) {
	var p pets.Pet
	var status string
	err := s.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.ShelterID,
		&p.ShelterName,
		&p.Name,
		&p.Type,
		&p.Breed,
		&p.Gender,
		&p.Age,
		&p.Location,
		&p.Description,
		&p.ImageURL,
		&status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	p.Status = pets.Status(status)
	return p, err
}
