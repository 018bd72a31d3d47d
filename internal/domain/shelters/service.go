package shelters

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"pet-adoption-hub/internal/platform/apperr"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = apperr.ErrValidation
	ErrForbidden    = apperr.ErrPermission
	ErrNotFound     = apperr.ErrNotFound
)

const maxPremiumDays = 366

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type RegisterInput struct {
	Name        string
	Description string
	Location    string
	Address     string
	Phone       string
	Email       string
	Website     string
	Services    []string
}

// Register crea el refugio en pending; un admin lo activa con SetStatus.
func (s *Service) Register(ctx context.Context, ownerUserID string, in RegisterInput) (Shelter, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Shelter{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Shelter{}, fmt.Errorf("name required: %w", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Location) == "" {
		return Shelter{}, fmt.Errorf("location required: %w", ErrInvalidInput)
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return Shelter{}, err
	}

	now := s.now()
	sh := Shelter{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Address:     strings.TrimSpace(in.Address),
		Phone:       strings.TrimSpace(in.Phone),
		Email:       email,
		Website:     strings.TrimSpace(in.Website),
		Services:    normalizeServices(in.Services),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, sh); err != nil {
		return Shelter{}, err
	}
	return sh, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Shelter, error) {
	if strings.TrimSpace(id) == "" {
		return Shelter{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// OwnerAndName lo consume pets al publicar una mascota a nombre de un refugio.
func (s *Service) OwnerAndName(ctx context.Context, id string) (string, string, error) {
	sh, err := s.GetByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	return sh.OwnerUserID, sh.Name, nil
}

func (s *Service) List(ctx context.Context, status Status) ([]Shelter, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrInvalidInput)
	}
	return s.repo.List(ctx, status)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Shelter, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// PremiumActive evalúa la expiración con el reloj del servicio.
func (s *Service) PremiumActive(sh Shelter) bool {
	return sh.IsPremiumActive(s.now())
}

// UpdateInput: nil = no tocar.
type UpdateInput struct {
	Name        *string
	Description *string
	Location    *string
	Address     *string
	Phone       *string
	Email       *string
	Website     *string
	Services    *[]string
}

func (s *Service) Update(ctx context.Context, callerID, id string, in UpdateInput) (Shelter, error) {
	sh, err := s.owned(ctx, callerID, id)
	if err != nil {
		return Shelter{}, err
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return Shelter{}, fmt.Errorf("name required: %w", ErrInvalidInput)
		}
		sh.Name = v
	}
	if in.Location != nil {
		v := strings.TrimSpace(*in.Location)
		if v == "" {
			return Shelter{}, fmt.Errorf("location required: %w", ErrInvalidInput)
		}
		sh.Location = v
	}
	if in.Email != nil {
		v, err := normalizeEmail(*in.Email)
		if err != nil {
			return Shelter{}, err
		}
		sh.Email = v
	}
	if in.Services != nil {
		sh.Services = normalizeServices(*in.Services)
	}
	if in.Description != nil {
		sh.Description = strings.TrimSpace(*in.Description)
	}
	if in.Address != nil {
		sh.Address = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		sh.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Website != nil {
		sh.Website = strings.TrimSpace(*in.Website)
	}

	sh.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, sh); err != nil {
		return Shelter{}, err
	}
	return sh, nil
}

// SetStatus es moderación: la ruta HTTP solo la expone a admins.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (Shelter, error) {
	if !status.Valid() {
		return Shelter{}, fmt.Errorf("unknown status %q: %w", status, ErrInvalidInput)
	}
	sh, err := s.GetByID(ctx, id)
	if err != nil {
		return Shelter{}, err
	}
	if sh.Status == status {
		return sh, nil
	}

	sh.Status = status
	sh.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, sh); err != nil {
		return Shelter{}, err
	}
	return sh, nil
}

// ActivatePremium extiende desde max(now, vencimiento actual).
func (s *Service) ActivatePremium(ctx context.Context, callerID, id string, days int) (Shelter, error) {
	if days < 1 || days > maxPremiumDays {
		return Shelter{}, fmt.Errorf("days must be between 1 and %d: %w", maxPremiumDays, ErrInvalidInput)
	}
	sh, err := s.owned(ctx, callerID, id)
	if err != nil {
		return Shelter{}, err
	}

	now := s.now()
	from := now
	if sh.PremiumExpiry != nil && sh.PremiumExpiry.After(now) {
		from = *sh.PremiumExpiry
	}
	expiry := from.AddDate(0, 0, days)

	sh.IsPremium = true
	sh.PremiumExpiry = &expiry
	sh.UpdatedAt = now
	if err := s.repo.Update(ctx, sh); err != nil {
		return Shelter{}, err
	}
	return sh, nil
}

// Delete no toca las mascotas del refugio: quedan publicadas con el shelter_name denormalizado.
func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	sh, err := s.owned(ctx, callerID, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, sh.ID)
}

func (s *Service) owned(ctx context.Context, callerID, id string) (Shelter, error) {
	if strings.TrimSpace(callerID) == "" || strings.TrimSpace(id) == "" {
		return Shelter{}, ErrInvalidInput
	}
	sh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Shelter{}, err
	}
	if sh.OwnerUserID != callerID {
		return Shelter{}, ErrForbidden
	}
	return sh, nil
}

func normalizeEmail(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", nil
	}
	addr, err := mail.ParseAddress(v)
	if err != nil {
		return "", fmt.Errorf("invalid email: %w", ErrInvalidInput)
	}
	return strings.ToLower(addr.Address), nil
}

func normalizeServices(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
