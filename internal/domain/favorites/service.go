package favorites

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption-hub/internal/domain/pets"
	"pet-adoption-hub/internal/platform/apperr"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = apperr.ErrValidation
	ErrNotFound     = apperr.ErrNotFound
	ErrDuplicate    = apperr.ErrConflict
)

// PetLookup es lo único que este módulo necesita de pets.
type PetLookup interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
}

type Service struct {
	repo Repository
	pets PetLookup
	now  func() time.Time
}

func NewService(repo Repository, petLookup PetLookup) *Service {
	return &Service{
		repo: repo,
		pets: petLookup,
		now:  time.Now,
	}
}

// Add es idempotente: si ya existe devuelve el favorito guardado y created=false.
func (s *Service) Add(ctx context.Context, userID, petID string) (Favorite, bool, error) {
	userID = strings.TrimSpace(userID)
	petID = strings.TrimSpace(petID)
	if userID == "" || petID == "" {
		return Favorite{}, false, ErrInvalidInput
	}

	if _, err := s.pets.GetByID(ctx, petID); err != nil {
		return Favorite{}, false, err
	}

	if f, err := s.repo.GetByUserAndPet(ctx, userID, petID); err == nil {
		return f, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Favorite{}, false, err
	}

	f := Favorite{
		ID:        uuid.NewString(),
		UserID:    userID,
		PetID:     petID,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, f); err != nil {
		// Otro request ganó la carrera: devolvemos el que quedó.
		if errors.Is(err, ErrDuplicate) {
			existing, getErr := s.repo.GetByUserAndPet(ctx, userID, petID)
			if getErr == nil {
				return existing, false, nil
			}
		}
		return Favorite{}, false, err
	}
	return f, true, nil
}

// Remove es idempotente: quitar algo que no estaba no es error.
func (s *Service) Remove(ctx context.Context, userID, petID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(petID) == "" {
		return ErrInvalidInput
	}
	f, err := s.repo.GetByUserAndPet(ctx, userID, petID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, f.ID)
}

func (s *Service) IsFavorite(ctx context.Context, userID, petID string) (bool, error) {
	_, err := s.repo.GetByUserAndPet(ctx, userID, petID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Favorite, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

// FavoritePet junta el favorito con la mascota vigente.
type FavoritePet struct {
	Favorite Favorite
	Pet      pets.Pet
}

// ListPetsForUser omite favoritos cuya mascota ya no existe (cascade pendiente o fallido).
func (s *Service) ListPetsForUser(ctx context.Context, userID string) ([]FavoritePet, error) {
	items, err := s.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]FavoritePet, 0, len(items))
	for _, f := range items {
		p, err := s.pets.GetByID(ctx, f.PetID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, FavoritePet{Favorite: f, Pet: p})
	}
	return out, nil
}

// DeleteByPet borra uno por uno; ante error devuelve lo borrado hasta ahí.
func (s *Service) DeleteByPet(ctx context.Context, petID string) (int, error) {
	if strings.TrimSpace(petID) == "" {
		return 0, ErrInvalidInput
	}
	items, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, f := range items {
		if err := s.repo.Delete(ctx, f.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
