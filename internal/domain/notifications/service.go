package notifications

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

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
)

type Service struct {
	repo      Repository
	hub       *hub
	publisher events.Publisher
	metrics   *metrics.Metrics
	log       logger.Logger
	now       func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:      repo,
		hub:       newHub(),
		publisher: events.Nop{},
		log:       logger.NewNop(),
		now:       time.Now,
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
		s.log = l.With(map[string]any{"module": "notifications"})
	}
	return s
}

type CreateInput struct {
	UserID  string
	Type    Type
	Title   string
	Message string
	Links   Links
}

// CreatedEvent es el payload publicado en notifications.created.
type CreatedEvent struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Type              Type      `json:"type"`
	Title             string    `json:"title"`
	PetID             string    `json:"pet_id,omitempty"`
	AdoptionRequestID string    `json:"adoption_request_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Create guarda con read=false y timestamp=now. No valida más que el destinatario.
func (s *Service) Create(ctx context.Context, in CreateInput) (Notification, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return Notification{}, fmt.Errorf("user id required: %w", ErrInvalidInput)
	}
	if in.Type == "" {
		in.Type = TypeSystem
	}

	n := Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      in.Type,
		Title:     strings.TrimSpace(in.Title),
		Message:   strings.TrimSpace(in.Message),
		Links:     in.Links,
		Read:      false,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return Notification{}, err
	}

	s.metrics.NotificationCreated(string(n.Type))

	if err := s.publisher.Publish(ctx, events.SubjectNotificationCreated, CreatedEvent{
		ID:                n.ID,
		UserID:            n.UserID,
		Type:              n.Type,
		Title:             n.Title,
		PetID:             n.Links.PetID,
		AdoptionRequestID: n.Links.AdoptionRequestID,
		CreatedAt:         n.CreatedAt,
	}); err != nil {
		s.log.Warn("publish notification event failed", map[string]any{"notification_id": n.ID, "error": err})
	}

	s.broadcast(ctx, n.UserID)
	return n, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

// Subscribe entrega el snapshot inicial y luego la lista completa en cada cambio del usuario.
// El unsubscribe devuelto es idempotente.
func (s *Service) Subscribe(ctx context.Context, userID string, onChange Listener) (func(), error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || onChange == nil {
		return nil, ErrInvalidInput
	}

	// Registrar antes de leer: un cambio concurrente o entra en el snapshot o dispara otro broadcast.
	s.hub.deliverMu.Lock()
	id := s.hub.add(userID, onChange)
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.hub.deliverMu.Unlock()
		s.hub.remove(userID, id)
		return nil, err
	}
	onChange(items)
	s.hub.deliverMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.hub.remove(userID, id) })
	}, nil
}

// MarkRead es idempotente: si ya estaba leída no escribe ni notifica.
func (s *Service) MarkRead(ctx context.Context, callerID, id string) (Notification, error) {
	n, err := s.owned(ctx, callerID, id)
	if err != nil {
		return Notification{}, err
	}
	if n.Read {
		return n, nil
	}

	now := s.now()
	n.Read = true
	n.ReadAt = &now
	if err := s.repo.Update(ctx, n); err != nil {
		return Notification{}, err
	}

	s.broadcast(ctx, n.UserID)
	return n, nil
}

// MarkAllRead devuelve cuántas pasaron a leídas.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	items, err := s.ListForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	now := s.now()
	marked := 0
	for _, n := range items {
		if n.Read {
			continue
		}
		n.Read = true
		n.ReadAt = &now
		if err := s.repo.Update(ctx, n); err != nil {
			if marked > 0 {
				s.broadcast(ctx, userID)
			}
			return marked, err
		}
		marked++
	}

	if marked > 0 {
		s.broadcast(ctx, userID)
	}
	return marked, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	items, err := s.ListForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range items {
		if !it.Read {
			n++
		}
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	n, err := s.owned(ctx, callerID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, n.ID); err != nil {
		return err
	}
	s.broadcast(ctx, n.UserID)
	return nil
}

// DeleteByPet borra una por una las notificaciones que referencian la mascota.
// Ante error devuelve lo borrado hasta ese momento.
func (s *Service) DeleteByPet(ctx context.Context, petID string) (int, error) {
	if strings.TrimSpace(petID) == "" {
		return 0, ErrInvalidInput
	}
	items, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return 0, err
	}

	touched := map[string]struct{}{}
	deleted := 0
	var firstErr error
	for _, n := range items {
		if err := s.repo.Delete(ctx, n.ID); err != nil {
			firstErr = err
			break
		}
		deleted++
		touched[n.UserID] = struct{}{}
	}

	for userID := range touched {
		s.broadcast(ctx, userID)
	}
	return deleted, firstErr
}

func (s *Service) owned(ctx context.Context, callerID, id string) (Notification, error) {
	if strings.TrimSpace(callerID) == "" || strings.TrimSpace(id) == "" {
		return Notification{}, ErrInvalidInput
	}
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.UserID != callerID {
		return Notification{}, ErrForbidden
	}
	return n, nil
}

// broadcast relee la lista del usuario y la entrega a sus suscriptores.
// Un fallo de lectura se loguea: la escritura que lo disparó ya es durable.
func (s *Service) broadcast(ctx context.Context, userID string) {
	if !s.hub.hasListeners(userID) {
		return
	}

	s.hub.deliverMu.Lock()
	defer s.hub.deliverMu.Unlock()

	items, err := s.repo.ListByUser(context.WithoutCancel(ctx), userID)
	if err != nil {
		s.log.Warn("notification snapshot failed", map[string]any{"user_id": userID, "error": err})
		return
	}
	for _, l := range s.hub.listeners(userID) {
		l(items)
	}
}

// Subscribers expone el total de suscripciones activas (health / tests).
func (s *Service) Subscribers() int {
	return s.hub.count()
}
