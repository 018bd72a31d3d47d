package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"pet-adoption-hub/internal/domain/conversations"
)

type ConversationsRepo struct {
	db *sql.DB
}

func NewConversationsRepo(db *sql.DB) *ConversationsRepo {
	return &ConversationsRepo{db: db}
}

const conversationColumns = `
	id, participant_a, participant_b, pet_id, adoption_request_id,
	last_message, last_message_time, created_at`

func (r *ConversationsRepo) Create(ctx context.Context, c conversations.Conversation) error {
	if len(c.Participants) != 2 {
		return fmt.Errorf("conversation %s needs exactly two participants", c.ID)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversations (`+conversationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		c.ID,
		c.Participants[0],
		c.Participants[1],
		c.PetID,
		c.AdoptionRequestID,
		c.LastMessage,
		c.LastMessageTime,
		c.CreatedAt,
	)
	return classify("conversation", c.ID, err)
}

func (r *ConversationsRepo) Update(ctx context.Context, c conversations.Conversation) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE conversations
		SET pet_id = $2, adoption_request_id = $3, last_message = $4, last_message_time = $5
		WHERE id = $1
	`, c.ID, c.PetID, c.AdoptionRequestID, c.LastMessage, c.LastMessageTime)
	if err != nil {
		return err
	}
	return expectOne(res, "conversation", c.ID)
}

func (r *ConversationsRepo) GetByID(ctx context.Context, id string) (conversations.Conversation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id)
	c, err := scanConversation(row)
	if err != nil {
		return conversations.Conversation{}, classify("conversation", id, err)
	}
	return c, nil
}

func (r *ConversationsRepo) ListByParticipant(ctx context.Context, userID string) ([]conversations.Conversation, error) {
	return r.query(ctx, `
		SELECT `+conversationColumns+` FROM conversations
		WHERE participant_a = $1 OR participant_b = $1
		ORDER BY last_message_time DESC, id DESC
	`, userID)
}

func (r *ConversationsRepo) ListByPet(ctx context.Context, petID string) ([]conversations.Conversation, error) {
	return r.query(ctx, `
		SELECT `+conversationColumns+` FROM conversations
		WHERE pet_id = $1
		ORDER BY created_at ASC, id ASC
	`, petID)
}

func (r *ConversationsRepo) query(ctx context.Context, q string, args ...any) ([]conversations.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]conversations.Conversation, 0)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanConversation(s scanner) (conversations.Conversation, error) {
	var c conversations.Conversation
	var a, b string
	if err := s.Scan(
		&c.ID,
		&a,
		&b,
		&c.PetID,
		&c.AdoptionRequestID,
		&c.LastMessage,
		&c.LastMessageTime,
		&c.CreatedAt,
	); err != nil {
		return conversations.Conversation{}, err
	}
	c.Participants = []string{a, b}
	return c, nil
}

func (r *ConversationsRepo) CreateMessage(ctx context.Context, m conversations.Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, sender_name, content, read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, m.ID, m.ConversationID, m.SenderID, m.SenderName, m.Content, m.Read, m.CreatedAt)
	return classify("message", m.ID, err)
}

func (r *ConversationsRepo) ListMessages(ctx context.Context, conversationID string) ([]conversations.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, sender_name, content, read, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]conversations.Message, 0)
	for rows.Next() {
		var m conversations.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderName, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ConversationsRepo) MarkMessagesRead(ctx context.Context, conversationID, readerID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE messages SET read = TRUE
		WHERE conversation_id = $1 AND sender_id <> $2 AND read = FALSE
	`, conversationID, readerID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
