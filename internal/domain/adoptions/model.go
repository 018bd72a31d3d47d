package adoptions

import "time"

// Status de la solicitud. Transiciones válidas:
//
//	pending  -> approved | rejected
//	approved -> completed
//
// rejected y completed son terminales.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCompleted},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Active: cuenta para "una solicitud activa por (usuario, mascota)".
func (s Status) Active() bool {
	return s == StatusPending || s == StatusApproved
}

func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// PetSnapshot copia datos de la mascota al momento de la solicitud.
type PetSnapshot struct {
	Name     string
	Type     string
	Breed    string
	ImageURL string
}

type Request struct {
	ID string

	RequesterUserID string
	PetID           string
	OwnerUserID     string // denormalizado desde la mascota
	Pet             PetSnapshot

	AdopterName  string
	AdopterEmail string
	Message      string

	Status     Status
	OwnerNotes string

	CreatedAt time.Time
	UpdatedAt time.Time
}
