package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"pet-adoption-hub/internal/domain/conversations"
)

// conversationRepo guarda conversaciones y mensajes bajo el mismo lock.
type conversationRepo struct {
	mu       sync.RWMutex
	byID     map[string]conversations.Conversation
	messages map[string][]conversations.Message // conversation id -> mensajes en orden de alta
}

func NewConversationRepo() conversations.Repository {
	return &conversationRepo{
		byID:     make(map[string]conversations.Conversation),
		messages: make(map[string][]conversations.Message),
	}
}

func cloneConversation(c conversations.Conversation) conversations.Conversation {
	c.Participants = append([]string(nil), c.Participants...)
	return c
}

func (r *conversationRepo) Create(ctx context.Context, c conversations.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errIDRequired
	}
	if _, exists := r.byID[c.ID]; exists {
		return fmt.Errorf("conversation %s: %w", c.ID, ErrDuplicate)
	}
	r.byID[c.ID] = cloneConversation(c)
	return nil
}

func (r *conversationRepo) Update(ctx context.Context, c conversations.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID]; !exists {
		return fmt.Errorf("conversation %s: %w", c.ID, ErrNotFound)
	}
	r.byID[c.ID] = cloneConversation(c)
	return nil
}

func (r *conversationRepo) GetByID(ctx context.Context, id string) (conversations.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return conversations.Conversation{}, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	return cloneConversation(c), nil
}

func (r *conversationRepo) ListByParticipant(ctx context.Context, userID string) ([]conversations.Conversation, error) {
	out := r.filter(func(c conversations.Conversation) bool { return c.HasParticipant(userID) })
	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i].LastMessageTime, out[j].LastMessageTime, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *conversationRepo) ListByPet(ctx context.Context, petID string) ([]conversations.Conversation, error) {
	out := r.filter(func(c conversations.Conversation) bool { return c.PetID == petID })
	sort.SliceStable(out, func(i, j int) bool {
		return older(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *conversationRepo) filter(keep func(conversations.Conversation) bool) []conversations.Conversation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]conversations.Conversation, 0)
	for _, c := range r.byID {
		if keep(c) {
			out = append(out, cloneConversation(c))
		}
	}
	return out
}

func (r *conversationRepo) CreateMessage(ctx context.Context, m conversations.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errIDRequired
	}
	if _, exists := r.byID[m.ConversationID]; !exists {
		return fmt.Errorf("conversation %s: %w", m.ConversationID, ErrNotFound)
	}
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], m)
	return nil
}

func (r *conversationRepo) ListMessages(ctx context.Context, conversationID string) ([]conversations.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Con empate de timestamp se conserva el orden de inserción.
	out := append([]conversations.Message{}, r.messages[conversationID]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *conversationRepo) MarkMessagesRead(ctx context.Context, conversationID, readerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := r.messages[conversationID]
	n := 0
	for i := range msgs {
		if msgs[i].SenderID != readerID && !msgs[i].Read {
			msgs[i].Read = true
			n++
		}
	}
	return n, nil
}
