package conversations

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"pet-adoption-hub/internal/domain/notifications"
	"pet-adoption-hub/internal/platform/apperr"
	"pet-adoption-hub/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = apperr.ErrValidation
	ErrForbidden    = apperr.ErrPermission
	ErrNotFound     = apperr.ErrNotFound
)

const (
	maxMessageLen = 2000
	previewLen    = 120
)

// Notifier es el subconjunto de notifications.Service que usa este módulo.
type Notifier interface {
	Create(ctx context.Context, in notifications.CreateInput) (notifications.Notification, error)
}

type Service struct {
	repo     Repository
	notifier Notifier
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      logger.NewNop(),
		now:      time.Now,
	}
}

func (s *Service) WithLogger(l logger.Logger) *Service {
	if l != nil {
		s.log = l.With(map[string]any{"module": "conversations"})
	}
	return s
}

// GetOrCreate devuelve la conversación del par {userA, userB} sin importar el orden.
// Lectura y escritura no son atómicas: dos llamadas simultáneas pueden crear duplicados.
func (s *Service) GetOrCreate(ctx context.Context, userA, userB, petID, adoptionRequestID string) (Conversation, bool, error) {
	userA = strings.TrimSpace(userA)
	userB = strings.TrimSpace(userB)
	if userA == "" || userB == "" || userA == userB {
		return Conversation{}, false, ErrInvalidInput
	}

	existing, err := s.repo.ListByParticipant(ctx, userA)
	if err != nil {
		return Conversation{}, false, err
	}
	for _, c := range existing {
		if c.HasParticipant(userB) {
			return c, false, nil
		}
	}

	participants := []string{userA, userB}
	sort.Strings(participants)

	now := s.now()
	c := Conversation{
		ID:                uuid.NewString(),
		Participants:      participants,
		PetID:             strings.TrimSpace(petID),
		AdoptionRequestID: strings.TrimSpace(adoptionRequestID),
		LastMessage:       "",
		LastMessageTime:   now,
		CreatedAt:         now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Conversation{}, false, err
	}
	return c, true, nil
}

func (s *Service) Get(ctx context.Context, callerID, conversationID string) (Conversation, error) {
	if strings.TrimSpace(callerID) == "" || strings.TrimSpace(conversationID) == "" {
		return Conversation{}, ErrInvalidInput
	}
	c, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		return Conversation{}, err
	}
	if !c.HasParticipant(callerID) {
		return Conversation{}, ErrForbidden
	}
	return c, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Conversation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByParticipant(ctx, userID)
}

// SendMessage: dos escrituras no atómicas (mensaje + resumen de la conversación) y aviso best-effort al otro participante.
func (s *Service) SendMessage(ctx context.Context, conversationID, senderID, senderName, content string) (Message, error) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > maxMessageLen {
		return Message{}, fmt.Errorf("content must have 1-%d characters: %w", maxMessageLen, ErrInvalidInput)
	}

	c, err := s.Get(ctx, senderID, conversationID)
	if err != nil {
		return Message{}, err
	}

	m, err := s.appendMessage(ctx, c, senderID, strings.TrimSpace(senderName), content)
	if err != nil {
		return Message{}, err
	}

	recipient := c.Other(senderID)
	title := "Nuevo mensaje"
	if m.SenderName != "" {
		title = "Nuevo mensaje de " + m.SenderName
	}
	if _, err := s.notifier.Create(ctx, notifications.CreateInput{
		UserID:  recipient,
		Type:    notifications.TypeMessage,
		Title:   title,
		Message: preview(content),
		Links: notifications.Links{
			ConversationID:    c.ID,
			PetID:             c.PetID,
			AdoptionRequestID: c.AdoptionRequestID,
		},
	}); err != nil {
		s.log.Warn("message notification failed", map[string]any{"conversation_id": c.ID, "recipient": recipient, "error": err})
	}

	return m, nil
}

// AppendSystemMessage agrega un mensaje informativo sin notificar a nadie.
func (s *Service) AppendSystemMessage(ctx context.Context, conversationID, content string) (Message, error) {
	content = strings.TrimSpace(content)
	if strings.TrimSpace(conversationID) == "" || content == "" {
		return Message{}, ErrInvalidInput
	}
	c, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		return Message{}, err
	}
	return s.appendMessage(ctx, c, SystemSenderID, "Sistema", content)
}

// AnnouncePetRemoval deja un mensaje de sistema en cada conversación de la mascota.
// Las conversaciones no se borran: el historial queda como informativo.
func (s *Service) AnnouncePetRemoval(ctx context.Context, petID, petName string) (int, error) {
	if strings.TrimSpace(petID) == "" {
		return 0, ErrInvalidInput
	}
	items, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return 0, err
	}

	content := "La mascota de esta conversación fue eliminada."
	if strings.TrimSpace(petName) != "" {
		content = fmt.Sprintf("La mascota %q fue eliminada. La conversación queda como historial.", petName)
	}

	// Cuenta solo lo escrito en esta llamada; las ya avisadas se saltean al reintentar.
	done := 0
	for _, c := range items {
		announced, err := s.hasSystemMessage(ctx, c.ID, content)
		if err != nil {
			return done, err
		}
		if announced {
			continue
		}
		if _, err := s.appendMessage(ctx, c, SystemSenderID, "Sistema", content); err != nil {
			return done, err
		}
		done++
	}
	return done, nil
}

func (s *Service) hasSystemMessage(ctx context.Context, conversationID, content string) (bool, error) {
	msgs, err := s.repo.ListMessages(ctx, conversationID)
	if err != nil {
		return false, err
	}
	for _, m := range msgs {
		if m.SenderID == SystemSenderID && m.Content == content {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) ListMessages(ctx context.Context, callerID, conversationID string) ([]Message, error) {
	c, err := s.Get(ctx, callerID, conversationID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, c.ID)
}

func (s *Service) MarkMessagesRead(ctx context.Context, callerID, conversationID string) (int, error) {
	c, err := s.Get(ctx, callerID, conversationID)
	if err != nil {
		return 0, err
	}
	return s.repo.MarkMessagesRead(ctx, c.ID, callerID)
}

func (s *Service) appendMessage(ctx context.Context, c Conversation, senderID, senderName, content string) (Message, error) {
	now := s.now()
	m := Message{
		ID:             uuid.NewString(),
		ConversationID: c.ID,
		SenderID:       senderID,
		SenderName:     senderName,
		Content:        content,
		Read:           false,
		CreatedAt:      now,
	}
	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return Message{}, err
	}

	c.LastMessage = preview(content)
	c.LastMessageTime = now
	if err := s.repo.Update(ctx, c); err != nil {
		// El mensaje ya quedó guardado; el resumen se corrige con el próximo mensaje.
		s.log.Warn("update conversation summary failed", map[string]any{"conversation_id": c.ID, "message_id": m.ID, "error": err})
	}
	return m, nil
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLen {
		return content
	}
	r := []rune(content)
	return string(r[:previewLen]) + "…"
}
