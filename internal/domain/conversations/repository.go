package conversations

import "context"

type Repository interface {
	Create(ctx context.Context, c Conversation) error
	Update(ctx context.Context, c Conversation) error
	GetByID(ctx context.Context, id string) (Conversation, error)
	// ListByParticipant: last_message_time desc.
	ListByParticipant(ctx context.Context, userID string) ([]Conversation, error)
	ListByPet(ctx context.Context, petID string) ([]Conversation, error)

	CreateMessage(ctx context.Context, m Message) error
	// ListMessages: created_at asc.
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)
	// MarkMessagesRead marca como leídos los mensajes no enviados por readerID.
	MarkMessagesRead(ctx context.Context, conversationID, readerID string) (int, error)
}
