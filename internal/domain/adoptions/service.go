package adoptions

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"pet-adoption-hub/internal/domain/conversations"
	"pet-adoption-hub/internal/domain/notifications"
	"pet-adoption-hub/internal/domain/pets"
	"pet-adoption-hub/internal/platform/apperr"
	"pet-adoption-hub/internal/platform/logger"
	"pet-adoption-hub/internal/platform/metrics"
	"pet-adoption-hub/internal/ports/events"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = apperr.ErrValidation
	ErrForbidden    = apperr.ErrPermission
	ErrNotFound     = apperr.ErrNotFound
	ErrBadState     = apperr.ErrConflict
)

const maxMessageLen = 2000

type PetLookup interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
}

type Notifier interface {
	Create(ctx context.Context, in notifications.CreateInput) (notifications.Notification, error)
}

type ConversationOpener interface {
	GetOrCreate(ctx context.Context, userA, userB, petID, adoptionRequestID string) (conversations.Conversation, bool, error)
}

type Service struct {
	repo          Repository
	pets          PetLookup
	notifier      Notifier
	conversations ConversationOpener

	publisher events.Publisher
	metrics   *metrics.Metrics
	log       logger.Logger
	now       func() time.Time
}

func NewService(repo Repository, petLookup PetLookup, notifier Notifier, convs ConversationOpener) *Service {
	return &Service{
		repo:          repo,
		pets:          petLookup,
		notifier:      notifier,
		conversations: convs,
		publisher:     events.Nop{},
		log:           logger.NewNop(),
		now:           time.Now,
	}
}

func (s *Service) WithPublisher(p events.Publisher) *Service {
	if p != nil {
		s.publisher = p
	}
	return s
}

func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

func (s *Service) WithLogger(l logger.Logger) *Service {
	if l != nil {
		s.log = l.With(map[string]any{"module": "adoptions"})
	}
	return s
}

type SubmitInput struct {
	PetID        string
	AdopterName  string
	AdopterEmail string
	Message      string
}

// StatusChangedEvent es el payload de adoptions.status_changed.
type StatusChangedEvent struct {
	RequestID       string    `json:"request_id"`
	PetID           string    `json:"pet_id"`
	RequesterUserID string    `json:"requester_user_id"`
	OwnerUserID     string    `json:"owner_user_id"`
	From            Status    `json:"from,omitempty"`
	To              Status    `json:"to"`
	At              time.Time `json:"at"`
}

// Submit crea la solicitud en pending. La creación es el hecho durable;
// las notificaciones posteriores son best-effort y nunca la deshacen.
func (s *Service) Submit(ctx context.Context, requesterID string, in SubmitInput) (Request, error) {
	requesterID = strings.TrimSpace(requesterID)
	petID := strings.TrimSpace(in.PetID)
	if requesterID == "" || petID == "" {
		return Request{}, ErrInvalidInput
	}

	name := strings.TrimSpace(in.AdopterName)
	if name == "" {
		return Request{}, fmt.Errorf("adopter name required: %w", ErrInvalidInput)
	}
	email := strings.TrimSpace(in.AdopterEmail)
	if email == "" {
		return Request{}, fmt.Errorf("adopter email required: %w", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Request{}, fmt.Errorf("invalid adopter email: %w", ErrInvalidInput)
	}
	message := strings.TrimSpace(in.Message)
	if len([]rune(message)) > maxMessageLen {
		return Request{}, fmt.Errorf("message longer than %d characters: %w", maxMessageLen, ErrInvalidInput)
	}

	pet, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return Request{}, err
	}
	if pet.OwnerUserID == requesterID {
		return Request{}, fmt.Errorf("cannot request your own pet: %w", ErrForbidden)
	}

	// Chequeo advisory (leer-luego-escribir): no es una restricción del store.
	active, err := s.HasActiveRequest(ctx, requesterID, petID)
	if err != nil {
		return Request{}, err
	}
	if active {
		return Request{}, fmt.Errorf("an active request already exists: %w", ErrBadState)
	}

	now := s.now()
	req := Request{
		ID:              uuid.NewString(),
		RequesterUserID: requesterID,
		PetID:           pet.ID,
		OwnerUserID:     pet.OwnerUserID,
		Pet: PetSnapshot{
			Name:     pet.Name,
			Type:     pet.Type,
			Breed:    pet.Breed,
			ImageURL: pet.ImageURL,
		},
		AdopterName:  name,
		AdopterEmail: strings.ToLower(email),
		Message:      message,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return Request{}, err
	}

	s.metrics.AdoptionTransition(string(StatusPending))
	s.publishStatus(ctx, req, "")

	s.notify(ctx, notifications.CreateInput{
		UserID:  req.RequesterUserID,
		Type:    notifications.TypeAdoption,
		Title:   "Solicitud enviada",
		Message: fmt.Sprintf("Tu solicitud para adoptar a %s fue enviada.", req.Pet.Name),
		Links:   notifications.Links{AdoptionRequestID: req.ID, PetID: req.PetID},
	})
	if req.OwnerUserID != "" {
		s.notify(ctx, notifications.CreateInput{
			UserID:  req.OwnerUserID,
			Type:    notifications.TypeAdoptionRequest,
			Title:   "Nueva solicitud de adopción",
			Message: fmt.Sprintf("%s quiere adoptar a %s.", req.AdopterName, req.Pet.Name),
			Links: notifications.Links{
				AdoptionRequestID: req.ID,
				PetID:             req.PetID,
				AdopterID:         req.RequesterUserID,
			},
		})
	}

	return req, nil
}

// Get: visible solo para el solicitante y el dueño.
func (s *Service) Get(ctx context.Context, callerID, id string) (Request, error) {
	if strings.TrimSpace(callerID) == "" || strings.TrimSpace(id) == "" {
		return Request{}, ErrInvalidInput
	}
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.RequesterUserID != callerID && req.OwnerUserID != callerID {
		return Request{}, ErrForbidden
	}
	return req, nil
}

func (s *Service) ListForRequester(ctx context.Context, userID string) ([]Request, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByRequester(ctx, userID)
}

func (s *Service) ListForOwner(ctx context.Context, ownerUserID string) ([]Request, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// HasActiveRequest: true si hay alguna solicitud pending o approved para (user, pet).
func (s *Service) HasActiveRequest(ctx context.Context, userID, petID string) (bool, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(petID) == "" {
		return false, ErrInvalidInput
	}
	items, err := s.repo.ListByRequesterAndPet(ctx, userID, petID)
	if err != nil {
		return false, err
	}
	for _, r := range items {
		if r.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) Approve(ctx context.Context, callerID, id, ownerNotes string) (Request, error) {
	req, err := s.transition(ctx, callerID, id, StatusApproved, &ownerNotes)
	if err != nil {
		return Request{}, err
	}

	links := notifications.Links{AdoptionRequestID: req.ID, PetID: req.PetID}
	conv, _, err := s.conversations.GetOrCreate(ctx, req.OwnerUserID, req.RequesterUserID, req.PetID, req.ID)
	if err != nil {
		s.log.Warn("open conversation after approval failed", map[string]any{"request_id": req.ID, "error": err})
	} else {
		links.ConversationID = conv.ID
	}

	s.notify(ctx, notifications.CreateInput{
		UserID:  req.RequesterUserID,
		Type:    notifications.TypeApproval,
		Title:   "Solicitud aprobada",
		Message: fmt.Sprintf("Tu solicitud para adoptar a %s fue aprobada.", req.Pet.Name),
		Links:   links,
	})
	return req, nil
}

func (s *Service) Reject(ctx context.Context, callerID, id, ownerNotes string) (Request, error) {
	req, err := s.transition(ctx, callerID, id, StatusRejected, &ownerNotes)
	if err != nil {
		return Request{}, err
	}

	s.notify(ctx, notifications.CreateInput{
		UserID:  req.RequesterUserID,
		Type:    notifications.TypeRejection,
		Title:   "Solicitud rechazada",
		Message: fmt.Sprintf("Tu solicitud para adoptar a %s fue rechazada.", req.Pet.Name),
		Links:   notifications.Links{AdoptionRequestID: req.ID, PetID: req.PetID},
	})
	return req, nil
}

// Complete no cambia el status de la mascota: eso lo hace el dueño explícitamente.
func (s *Service) Complete(ctx context.Context, callerID, id string) (Request, error) {
	req, err := s.transition(ctx, callerID, id, StatusCompleted, nil)
	if err != nil {
		return Request{}, err
	}

	s.notify(ctx, notifications.CreateInput{
		UserID:  req.RequesterUserID,
		Type:    notifications.TypeAdoption,
		Title:   "Adopción completada",
		Message: fmt.Sprintf("La adopción de %s quedó completada.", req.Pet.Name),
		Links:   notifications.Links{AdoptionRequestID: req.ID, PetID: req.PetID},
	})
	return req, nil
}

// transition valida dueño y estado antes de escribir. Sin optimistic locking: last write wins.
func (s *Service) transition(ctx context.Context, callerID, id string, to Status, ownerNotes *string) (Request, error) {
	callerID = strings.TrimSpace(callerID)
	if callerID == "" || strings.TrimSpace(id) == "" {
		return Request{}, ErrInvalidInput
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Request{}, err
	}

	owner, err := s.currentOwner(ctx, req)
	if err != nil {
		return Request{}, err
	}
	if owner != callerID {
		return Request{}, ErrForbidden
	}

	if !CanTransition(req.Status, to) {
		return Request{}, fmt.Errorf("cannot move request from %s to %s: %w", req.Status, to, ErrBadState)
	}

	from := req.Status
	req.Status = to
	if ownerNotes != nil {
		req.OwnerNotes = strings.TrimSpace(*ownerNotes)
	}
	req.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, req); err != nil {
		return Request{}, err
	}

	s.metrics.AdoptionTransition(string(to))
	s.publishStatus(ctx, req, from)
	return req, nil
}

// currentOwner usa el dueño vigente de la mascota; si ya no existe, el denormalizado.
func (s *Service) currentOwner(ctx context.Context, req Request) (string, error) {
	pet, err := s.pets.GetByID(ctx, req.PetID)
	if errors.Is(err, ErrNotFound) {
		return req.OwnerUserID, nil
	}
	if err != nil {
		return "", err
	}
	return pet.OwnerUserID, nil
}

// PurgeOldRejected borra las rechazadas con updated_at anterior a now - maxAgeDays.
func (s *Service) PurgeOldRejected(ctx context.Context, maxAgeDays int) (int, error) {
	if maxAgeDays <= 0 {
		return 0, fmt.Errorf("max age days must be > 0: %w", ErrInvalidInput)
	}
	before := s.now().AddDate(0, 0, -maxAgeDays)

	items, err := s.repo.ListByStatusUpdatedBefore(ctx, StatusRejected, before)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, r := range items {
		if err := s.repo.Delete(ctx, r.ID); err != nil {
			s.metrics.RetentionPurged(purged)
			return purged, err
		}
		purged++
	}
	s.metrics.RetentionPurged(purged)
	return purged, nil
}

// DeleteByPet es el paso de cascade al borrar la mascota.
func (s *Service) DeleteByPet(ctx context.Context, petID string) (int, error) {
	if strings.TrimSpace(petID) == "" {
		return 0, ErrInvalidInput
	}
	items, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, r := range items {
		if err := s.repo.Delete(ctx, r.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func (s *Service) notify(ctx context.Context, in notifications.CreateInput) {
	if _, err := s.notifier.Create(ctx, in); err != nil {
		s.log.Warn("adoption notification failed", map[string]any{
			"user_id": in.UserID,
			"type":    string(in.Type),
			"request": in.Links.AdoptionRequestID,
			"error":   err,
		})
	}
}

func (s *Service) publishStatus(ctx context.Context, req Request, from Status) {
	err := s.publisher.Publish(ctx, events.SubjectAdoptionStatusChanged, StatusChangedEvent{
		RequestID:       req.ID,
		PetID:           req.PetID,
		RequesterUserID: req.RequesterUserID,
		OwnerUserID:     req.OwnerUserID,
		From:            from,
		To:              req.Status,
		At:              req.UpdatedAt,
	})
	if err != nil {
		s.log.Warn("publish adoption event failed", map[string]any{"request_id": req.ID, "error": err})
	}
}
