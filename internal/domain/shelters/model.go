package shelters

import "time"

// @Enum pending, active, rejected, inactive
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusRejected Status = "rejected"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusRejected, StatusInactive:
		return true
	}
	return false
}

type Shelter struct {
	ID          string
	OwnerUserID string

	Name        string
	Description string
	Location    string
	Address     string
	Phone       string
	Email       string
	Website     string
	Services    []string // set normalizado (lowercase, sin duplicados, ordenado)

	Rating    float64
	PetsCount int

	Status Status

	IsPremium     bool
	PremiumExpiry *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPremiumActive evalúa la expiración en lectura. Nadie apaga IsPremium al vencer.
func (s Shelter) IsPremiumActive(now time.Time) bool {
	return s.IsPremium && s.PremiumExpiry != nil && s.PremiumExpiry.After(now)
}
