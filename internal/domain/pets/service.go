package pets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"pet-adoption-hub/internal/platform/apperr"
	"pet-adoption-hub/internal/ports/blob"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = apperr.ErrValidation
	ErrForbidden    = apperr.ErrPermission
	ErrNotFound     = apperr.ErrNotFound

	ErrImagesDisabled = errors.New("image upload disabled")
)

// ShelterLookup resuelve dueño y nombre de un refugio.
// Se define aquí para evitar el import pets -> shelters.
type ShelterLookup interface {
	OwnerAndName(ctx context.Context, shelterID string) (ownerUserID, name string, err error)
}

type Service struct {
	repo     Repository
	shelters ShelterLookup
	images   blob.Store
	now      func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// WithShelters habilita publicar mascotas a nombre de un refugio.
func (s *Service) WithShelters(l ShelterLookup) *Service {
	s.shelters = l
	return s
}

// WithImages habilita la subida de imágenes. Sin store, SetImage devuelve ErrImagesDisabled.
func (s *Service) WithImages(st blob.Store) *Service {
	s.images = st
	return s
}

type CreateInput struct {
	Name        string
	Type        string
	Breed       string
	Gender      string
	Age         string
	Location    string
	Description string
	ImageURL    string
	ShelterID   string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, fmt.Errorf("name required: %w", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Type) == "" {
		return Pet{}, fmt.Errorf("type required: %w", ErrInvalidInput)
	}

	shelterID := strings.TrimSpace(in.ShelterID)
	var shelterName string
	if shelterID != "" {
		var err error
		shelterName, err = s.resolveShelter(ctx, ownerUserID, shelterID)
		if err != nil {
			return Pet{}, err
		}
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		ShelterID:   shelterID,
		ShelterName: shelterName,
		Name:        strings.TrimSpace(in.Name),
		Type:        strings.ToLower(strings.TrimSpace(in.Type)),
		Breed:       strings.TrimSpace(in.Breed),
		Gender:      strings.TrimSpace(in.Gender),
		Age:         strings.TrimSpace(in.Age),
		Location:    strings.TrimSpace(in.Location),
		Description: strings.TrimSpace(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Status:      StatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// resolveShelter exige que el refugio exista y pertenezca al usuario.
func (s *Service) resolveShelter(ctx context.Context, ownerUserID, shelterID string) (string, error) {
	if s.shelters == nil {
		return "", fmt.Errorf("shelters not available: %w", ErrInvalidInput)
	}
	shelterOwner, name, err := s.shelters.OwnerAndName(ctx, shelterID)
	if err != nil {
		return "", err
	}
	if shelterOwner != ownerUserID {
		return "", ErrForbidden
	}
	return name, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	if strings.TrimSpace(id) == "" {
		return Pet{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

func (s *Service) ListByShelter(ctx context.Context, shelterID string) ([]Pet, error) {
	return s.repo.ListByShelter(ctx, shelterID)
}

// ListAvailable es el catálogo público: siempre filtra por status available.
func (s *Service) ListAvailable(ctx context.Context, f ListFilter) ([]Pet, error) {
	f.Status = StatusAvailable
	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
	f.Location = strings.TrimSpace(f.Location)
	if f.Limit < 0 {
		f.Limit = 0
	}
	return s.repo.List(ctx, f)
}

// UpdateInput: nil = no tocar.
type UpdateInput struct {
	Name        *string
	Type        *string
	Breed       *string
	Gender      *string
	Age         *string
	Location    *string
	Description *string
	ImageURL    *string
	Status      *Status
}

func (s *Service) Update(ctx context.Context, callerID, petID string, in UpdateInput) (Pet, error) {
	p, err := s.ownedPet(ctx, callerID, petID)
	if err != nil {
		return Pet{}, err
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return Pet{}, fmt.Errorf("name required: %w", ErrInvalidInput)
		}
		p.Name = v
	}
	if in.Type != nil {
		v := strings.ToLower(strings.TrimSpace(*in.Type))
		if v == "" {
			return Pet{}, fmt.Errorf("type required: %w", ErrInvalidInput)
		}
		p.Type = v
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return Pet{}, fmt.Errorf("unknown status %q: %w", *in.Status, ErrInvalidInput)
		}
		p.Status = *in.Status
	}
	setTrimmed(&p.Breed, in.Breed)
	setTrimmed(&p.Gender, in.Gender)
	setTrimmed(&p.Age, in.Age)
	setTrimmed(&p.Location, in.Location)
	setTrimmed(&p.Description, in.Description)
	setTrimmed(&p.ImageURL, in.ImageURL)

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// SetImage sube la imagen al blob store y reemplaza ImageURL. La imagen previa se borra best-effort.
func (s *Service) SetImage(ctx context.Context, callerID, petID, filename, contentType string, r io.Reader, size int64) (Pet, error) {
	if s.images == nil {
		return Pet{}, ErrImagesDisabled
	}
	if !strings.HasPrefix(contentType, "image/") {
		return Pet{}, fmt.Errorf("content type %q is not an image: %w", contentType, ErrInvalidInput)
	}

	p, err := s.ownedPet(ctx, callerID, petID)
	if err != nil {
		return Pet{}, err
	}

	key := "pets/" + p.ID + "/" + uuid.NewString() + strings.ToLower(path.Ext(filename))
	url, err := s.images.Put(ctx, key, r, size, contentType)
	if err != nil {
		return Pet{}, fmt.Errorf("upload image: %w", err)
	}

	previous := p.ImageURL
	p.ImageURL = url
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}

	_ = s.DiscardImage(ctx, previous)
	return p, nil
}

// DiscardImage borra la imagen del blob store si existe uno configurado.
func (s *Service) DiscardImage(ctx context.Context, imageURL string) error {
	if s.images == nil || strings.TrimSpace(imageURL) == "" {
		return nil
	}
	return s.images.Remove(ctx, imageURL)
}

// Remove borra solo el registro de la mascota (owner only). La limpieza de
// registros dependientes la orquesta petremoval.
func (s *Service) Remove(ctx context.Context, callerID, petID string) (Pet, error) {
	p, err := s.ownedPet(ctx, callerID, petID)
	if err != nil {
		return Pet{}, err
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return Pet{}, fmt.Errorf("delete pet: %w", err)
	}
	return p, nil
}

func (s *Service) ownedPet(ctx context.Context, callerID, petID string) (Pet, error) {
	if strings.TrimSpace(callerID) == "" || strings.TrimSpace(petID) == "" {
		return Pet{}, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerUserID != callerID {
		return Pet{}, ErrForbidden
	}
	return p, nil
}
