package conversations

import (
	"encoding/json"
	"net/http"
	"time"

	"pet-adoption-hub/internal/middleware"
	"pet-adoption-hub/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/conversations", getOrCreateHandler(svc))
	r.Get("/me/conversations", listMyConversationsHandler(svc))

	r.Route("/conversations/{conversationID}", func(cr chi.Router) {
		cr.Get("/messages", listMessagesHandler(svc))
		cr.Post("/messages", sendMessageHandler(svc))
		cr.Post("/read", markReadHandler(svc))
	})
}

type getOrCreateRequest struct {
	ParticipantID     string `json:"participant_id"`
	PetID             string `json:"pet_id"`
	AdoptionRequestID string `json:"adoption_request_id"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type conversationResponse struct {
	ID                string    `json:"id"`
	Participants      []string  `json:"participants"`
	PetID             string    `json:"pet_id,omitempty"`
	AdoptionRequestID string    `json:"adoption_request_id,omitempty"`
	LastMessage       string    `json:"last_message"`
	LastMessageTime   time.Time `json:"last_message_time"`
	CreatedAt         time.Time `json:"created_at"`
}

type messageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	Content        string    `json:"content"`
	System         bool      `json:"system"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}

type markReadResponse struct {
	Marked int `json:"marked"`
}

// getOrCreateHandler godoc
// @Summary Obtener o crear conversación
// @Description Una conversación por par de usuarios (sin orden). 201 si se creó, 200 si ya existía.
// @Tags conversations
// @Accept json
// @Produce json
// @Param payload body getOrCreateRequest true "Otro participante y vínculos opcionales"
// @Success 200 {object} conversationResponse
// @Success 201 {object} conversationResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Router /conversations [post]
func getOrCreateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req getOrCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, created, err := svc.GetOrCreate(r.Context(), claims.UserID, req.ParticipantID, req.PetID, req.AdoptionRequestID)
		if err != nil {
			writeError(w, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, toConversationResponse(c))
	}
}

func listMyConversationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		items, err := svc.ListForUser(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]conversationResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toConversationResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listMessagesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		items, err := svc.ListMessages(r.Context(), claims.UserID, chi.URLParam(r, "conversationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]messageResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMessageResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// sendMessageHandler godoc
// @Summary Enviar mensaje
// @Description Solo participantes. El otro participante recibe una notificación de tipo `message`.
// @Tags conversations
// @Accept json
// @Produce json
// @Param conversationID path string true "ID de la conversación"
// @Param payload body sendMessageRequest true "Contenido (1-2000 caracteres)"
// @Success 201 {object} messageResponse
// @Failure 400 {string} string "invalid input"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /conversations/{conversationID}/messages [post]
func sendMessageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		name := claims.DisplayName
		if name == "" {
			name = claims.Email
		}

		m, err := svc.SendMessage(r.Context(), chi.URLParam(r, "conversationID"), claims.UserID, name, req.Content)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMessageResponse(m))
	}
}

func markReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		n, err := svc.MarkMessagesRead(r.Context(), claims.UserID, chi.URLParam(r, "conversationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, markReadResponse{Marked: n})
	}
}

func toConversationResponse(c Conversation) conversationResponse {
	return conversationResponse{
		ID:                c.ID,
		Participants:      c.Participants,
		PetID:             c.PetID,
		AdoptionRequestID: c.AdoptionRequestID,
		LastMessage:       c.LastMessage,
		LastMessageTime:   c.LastMessageTime,
		CreatedAt:         c.CreatedAt,
	}
}

func toMessageResponse(m Message) messageResponse {
	return messageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		SenderName:     m.SenderName,
		Content:        m.Content,
		System:         m.IsSystem(),
		Read:           m.Read,
		CreatedAt:      m.CreatedAt,
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, apperr.PublicMessage(err), apperr.HTTPStatus(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
