package favorites

import "time"

// Favorite es único por (UserID, PetID).
type Favorite struct {
	ID        string
	UserID    string
	PetID     string
	CreatedAt time.Time
}
