package events

import "context"

const (
	SubjectNotificationCreated   = "notifications.created"
	SubjectAdoptionStatusChanged = "adoptions.status_changed"
	SubjectPetDeleted            = "pets.deleted"
)

// Publisher emite eventos de dominio hacia el broker. Es best-effort:
// los servicios loguean el error y siguen.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Nop descarta todo. Es el default cuando NATS está deshabilitado.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
