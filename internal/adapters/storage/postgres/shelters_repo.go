package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"pet-adoption-hub/internal/domain/shelters"
)

type SheltersRepo struct {
	db *sql.DB
}

func NewSheltersRepo(db *sql.DB) *SheltersRepo {
	return &SheltersRepo{db: db}
}

const shelterColumns = `
	id, owner_user_id, name, description, location, address,
	phone, email, website, services, rating, pets_count,
	status, is_premium, premium_expiry, created_at, updated_at`

func (r *SheltersRepo) Create(ctx context.Context, s shelters.Shelter) error {
	services, err := marshalServices(s.Services)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO shelters (`+shelterColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		s.ID,
		s.OwnerUserID,
		s.Name,
		s.Description,
		s.Location,
		s.Address,
		s.Phone,
		s.Email,
		s.Website,
		services,
		s.Rating,
		s.PetsCount,
		string(s.Status),
		s.IsPremium,
		nullTime(s.PremiumExpiry),
		s.CreatedAt,
		s.UpdatedAt,
	)
	return classify("shelter", s.ID, err)
}

func (r *SheltersRepo) Update(ctx context.Context, s shelters.Shelter) error {
	services, err := marshalServices(s.Services)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE shelters
		SET
			name = $2,
			description = $3,
			location = $4,
			address = $5,
			phone = $6,
			email = $7,
			website = $8,
			services = $9,
			rating = $10,
			pets_count = $11,
			status = $12,
			is_premium = $13,
			premium_expiry = $14,
			updated_at = $15
		WHERE id = $1
	`,
		s.ID,
		s.Name,
		s.Description,
		s.Location,
		s.Address,
		s.Phone,
		s.Email,
		s.Website,
		services,
		s.Rating,
		s.PetsCount,
		string(s.Status),
		s.IsPremium,
		nullTime(s.PremiumExpiry),
		s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return expectOne(res, "shelter", s.ID)
}

func (r *SheltersRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shelters WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res, "shelter", id)
}

func (r *SheltersRepo) GetByID(ctx context.Context, id string) (shelters.Shelter, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+shelterColumns+` FROM shelters WHERE id = $1`, id)
	s, err := scanShelter(row)
	if err != nil {
		return shelters.Shelter{}, classify("shelter", id, err)
	}
	return s, nil
}

func (r *SheltersRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]shelters.Shelter, error) {
	return r.query(ctx, `SELECT `+shelterColumns+` FROM shelters WHERE owner_user_id = $1 ORDER BY created_at DESC, id DESC`, ownerUserID)
}

func (r *SheltersRepo) List(ctx context.Context, status shelters.Status) ([]shelters.Shelter, error) {
	if status == "" {
		return r.query(ctx, `SELECT `+shelterColumns+` FROM shelters ORDER BY created_at DESC, id DESC`)
	}
	return r.query(ctx, `SELECT `+shelterColumns+` FROM shelters WHERE status = $1 ORDER BY created_at DESC, id DESC`, string(status))
}

func (r *SheltersRepo) query(ctx context.Context, q string, args ...any) ([]shelters.Shelter, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]shelters.Shelter, 0)
	for rows.Next() {
		s, err := scanShelter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanShelter(sc scanner) (shelters.Shelter, error) {
	var (
		s        shelters.Shelter
		services []byte
		status   string
		expiry   sql.NullTime
	)
	if err := sc.Scan(
		&s.ID,
		&s.OwnerUserID,
		&s.Name,
		&s.Description,
		&s.Location,
		&s.Address,
		&s.Phone,
		&s.Email,
		&s.Website,
		&services,
		&s.Rating,
		&s.PetsCount,
		&status,
		&s.IsPremium,
		&expiry,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return shelters.Shelter{}, err
	}
	s.Status = shelters.Status(status)
	s.PremiumExpiry = timePtr(expiry)
	if len(services) > 0 {
		if err := json.Unmarshal(services, &s.Services); err != nil {
			return shelters.Shelter{}, err
		}
	}
	return s, nil
}

// services se guarda como JSONB: un set chico que no se consulta por elemento.
func marshalServices(services []string) (string, error) {
	if services == nil {
		services = []string{}
	}
	b, err := json.Marshal(services)
	return string(b), err
}
