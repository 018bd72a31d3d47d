package postgres

import (
	"context"
	"database/sql"

	"pet-adoption-hub/internal/domain/notifications"
)

type NotificationsRepo struct {
	db *sql.DB
}

func NewNotificationsRepo(db *sql.DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

const notificationColumns = `
	id, user_id, type, title, message,
	adoption_request_id, pet_id, adopter_id, conversation_id,
	read, read_at, created_at`

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		n.ID,
		n.UserID,
		string(n.Type),
		n.Title,
		n.Message,
		n.Links.AdoptionRequestID,
		n.Links.PetID,
		n.Links.AdopterID,
		n.Links.ConversationID,
		n.Read,
		nullTime(n.ReadAt),
		n.CreatedAt,
	)
	return classify("notification", n.ID, err)
}

// Update: las notificaciones son append-only salvo el estado de lectura.
func (r *NotificationsRepo) Update(ctx context.Context, n notifications.Notification) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read = $2, read_at = $3 WHERE id = $1
	`, n.ID, n.Read, nullTime(n.ReadAt))
	if err != nil {
		return err
	}
	return expectOne(res, "notification", n.ID)
}

func (r *NotificationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res, "notification", id)
}

func (r *NotificationsRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	n, err := scanNotification(row)
	if err != nil {
		return notifications.Notification{}, classify("notification", id, err)
	}
	return n, nil
}

func (r *NotificationsRepo) ListByUser(ctx context.Context, userID string) ([]notifications.Notification, error) {
	return r.query(ctx, `WHERE user_id = $1`, userID)
}

func (r *NotificationsRepo) ListByPet(ctx context.Context, petID string) ([]notifications.Notification, error) {
	return r.query(ctx, `WHERE pet_id = $1`, petID)
}

func (r *NotificationsRepo) query(ctx context.Context, where string, args ...any) ([]notifications.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+notificationColumns+` FROM notifications `+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notifications.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNotification(s scanner) (notifications.Notification, error) {
	var (
		n      notifications.Notification
		kind   string
		readAt sql.NullTime
	)
	if err := s.Scan(
		&n.ID,
		&n.UserID,
		&kind,
		&n.Title,
		&n.Message,
		&n.Links.AdoptionRequestID,
		&n.Links.PetID,
		&n.Links.AdopterID,
		&n.Links.ConversationID,
		&n.Read,
		&readAt,
		&n.CreatedAt,
	); err != nil {
		return notifications.Notification{}, err
	}
	n.Type = notifications.Type(kind)
	n.ReadAt = timePtr(readAt)
	return n, nil
}
