package notifications

import "time"

// @Enum adoption, adoption_request, message, approval, rejection, system
type Type string

const (
	TypeAdoption        Type = "adoption"
	TypeAdoptionRequest Type = "adoption_request"
	TypeMessage         Type = "message"
	TypeApproval        Type = "approval"
	TypeRejection       Type = "rejection"
	TypeSystem          Type = "system"
)

// Links referencia las entidades de origen. PetID se usa para el cascade al borrar la mascota.
type Links struct {
	AdoptionRequestID string
	PetID             string
	AdopterID         string
	ConversationID    string
}

// Notification es append-only salvo Read/ReadAt.
type Notification struct {
	ID      string
	UserID  string
	Type    Type
	Title   string
	Message string
	Links   Links

	Read      bool
	ReadAt    *time.Time
	CreatedAt time.Time
}
