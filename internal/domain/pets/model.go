package pets

import "time"

// Status del anuncio. No se deriva de las solicitudes de adopción: solo cambia por update explícito.
// @Enum available, adopted, reserved
type Status string

const (
	StatusAvailable Status = "available"
	StatusAdopted   Status = "adopted"
	StatusReserved  Status = "reserved"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusAdopted, StatusReserved:
		return true
	}
	return false
}

// Pet representa una mascota publicada para adopción.
type Pet struct {
	ID          string
	OwnerUserID string

	// Opcionales: mascota publicada a nombre de un refugio.
	ShelterID   string
	ShelterName string

	Name     string
	Type     string // dog, cat, ...
	Breed    string
	Gender   string
	Age      string // texto libre ("2 años", "cachorro")
	Location string

	Description string
	ImageURL    string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
