package conversations

import "time"

const SystemSenderID = "system"

// Conversation entre exactamente dos usuarios. Participants se guarda ordenado.
type Conversation struct {
	ID                string
	Participants      []string
	PetID             string
	AdoptionRequestID string

	LastMessage     string
	LastMessageTime time.Time
	CreatedAt       time.Time
}

func (c Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Other devuelve el otro participante ("" si userID no participa).
func (c Conversation) Other(userID string) string {
	if !c.HasParticipant(userID) {
		return ""
	}
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	SenderName     string
	Content        string
	Read           bool
	CreatedAt      time.Time
}

func (m Message) IsSystem() bool { return m.SenderID == SystemSenderID }
