package notifications

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pet-adoption-hub/internal/middleware"
	"pet-adoption-hub/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

const streamHeartbeat = 25 * time.Second

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/me/notifications", listMyNotificationsHandler(svc))
	r.Get(middleware.StreamPath, streamNotificationsHandler(svc))
	r.Get("/me/notifications/unread-count", unreadCountHandler(svc))
	r.Post("/me/notifications/read-all", markAllReadHandler(svc))

	r.Post("/notifications/{notificationID}/read", markReadHandler(svc))
	r.Delete("/notifications/{notificationID}", deleteNotificationHandler(svc))
}

type linksResponse struct {
	AdoptionRequestID string `json:"adoption_request_id,omitempty"`
	PetID             string `json:"pet_id,omitempty"`
	AdopterID         string `json:"adopter_id,omitempty"`
	ConversationID    string `json:"conversation_id,omitempty"`
}

type notificationResponse struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Type      Type          `json:"type"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Links     linksResponse `json:"links"`
	Read      bool          `json:"read"`
	ReadAt    *time.Time    `json:"read_at,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type countResponse struct {
	Count int `json:"count"`
}

// listMyNotificationsHandler godoc
// @Summary Mis notificaciones
// @Description Más nuevas primero.
// @Tags notifications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {array} notificationResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me/notifications [get]
func listMyNotificationsHandler(svc *Service) http.HandlerFunc {
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
		writeJSON(w, http.StatusOK, toResponses(items))
	}
}

// streamNotificationsHandler godoc
// @Summary Stream de notificaciones (SSE)
// @Description Envía `event: notifications` con la lista completa al conectar y en cada cambio. EventSource no manda headers: en prod usar `?access_token=`.
// @Tags notifications
// @Produce text/event-stream
// @Param access_token query string false "Bearer token (solo para EventSource)"
// @Success 200 {array} notificationResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me/notifications/stream [get]
func streamNotificationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rc := http.NewResponseController(w)
		// El WriteTimeout del server cortaría el stream.
		_ = rc.SetWriteDeadline(time.Time{})

		// Buffer de 1: si el cliente va lento, solo importa el último snapshot.
		updates := make(chan []Notification, 1)
		push := func(items []Notification) {
			for {
				select {
				case updates <- items:
					return
				default:
				}
				select {
				case <-updates:
				default:
				}
			}
		}

		unsubscribe, err := svc.Subscribe(r.Context(), claims.UserID, push)
		if err != nil {
			writeError(w, err)
			return
		}
		defer unsubscribe()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case items := <-updates:
				payload, err := json.Marshal(toResponses(items))
				if err != nil {
					return
				}
				if _, err := fmt.Fprintf(w, "event: notifications\ndata: %s\n\n", payload); err != nil {
					return
				}
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func unreadCountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		n, err := svc.UnreadCount(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, countResponse{Count: n})
	}
}

func markAllReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		n, err := svc.MarkAllRead(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, countResponse{Count: n})
	}
}

// markReadHandler godoc
// @Summary Marcar notificación como leída
// @Description Idempotente. Solo el destinatario.
// @Tags notifications
// @Produce json
// @Param notificationID path string true "ID de la notificación"
// @Success 200 {object} notificationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /notifications/{notificationID}/read [post]
func markReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		n, err := svc.MarkRead(r.Context(), claims.UserID, chi.URLParam(r, "notificationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(n))
	}
}

func deleteNotificationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "notificationID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toResponse(n Notification) notificationResponse {
	return notificationResponse{
		ID:      n.ID,
		UserID:  n.UserID,
		Type:    n.Type,
		Title:   n.Title,
		Message: n.Message,
		Links: linksResponse{
			AdoptionRequestID: n.Links.AdoptionRequestID,
			PetID:             n.Links.PetID,
			AdopterID:         n.Links.AdopterID,
			ConversationID:    n.Links.ConversationID,
		},
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func toResponses(items []Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, toResponse(n))
	}
	return out
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, apperr.PublicMessage(err), apperr.HTTPStatus(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
