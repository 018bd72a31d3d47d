package adoptions

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-adoption-hub/internal/middleware"
	"pet-adoption-hub/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes. adminOnly protege la purga manual de retención.
func RegisterRoutes(r chi.Router, svc *Service, adminOnly func(http.Handler) http.Handler) {
	r.Route("/adoption-requests", func(ar chi.Router) {
		ar.Post("/", submitHandler(svc))
		ar.Get("/{requestID}", getRequestHandler(svc))
		ar.Post("/{requestID}/approve", approveHandler(svc))
		ar.Post("/{requestID}/reject", rejectHandler(svc))
		ar.Post("/{requestID}/complete", completeHandler(svc))
	})

	r.Get("/me/adoption-requests", listMineHandler(svc))
	r.Get("/me/adoption-requests/received", listReceivedHandler(svc))
	r.Get("/pets/{petID}/adoption-requests/active", hasActiveHandler(svc))

	r.With(adminOnly).Post("/admin/adoption-requests/purge", purgeHandler(svc))
}

type submitRequest struct {
	PetID        string `json:"pet_id"`
	AdopterName  string `json:"adopter_name"`  // default: display name del token
	AdopterEmail string `json:"adopter_email"` // default: email del token
	Message      string `json:"message"`
}

type reviewRequest struct {
	OwnerNotes string `json:"owner_notes"`
}

type petSnapshotResponse struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Breed    string `json:"breed"`
	ImageURL string `json:"image_url"`
}

type requestResponse struct {
	ID              string              `json:"id"`
	RequesterUserID string              `json:"requester_user_id"`
	PetID           string              `json:"pet_id"`
	OwnerUserID     string              `json:"owner_user_id"`
	Pet             petSnapshotResponse `json:"pet"`
	AdopterName     string              `json:"adopter_name"`
	AdopterEmail    string              `json:"adopter_email"`
	Message         string              `json:"message,omitempty"`
	Status          Status              `json:"status"`
	OwnerNotes      string              `json:"owner_notes,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type activeResponse struct {
	Active bool `json:"active"`
}

type purgeResponse struct {
	Purged     int `json:"purged"`
	MaxAgeDays int `json:"max_age_days"`
}

// submitHandler godoc
// @Summary Enviar solicitud de adopción
// @Description Crea la solicitud en `pending` y notifica al solicitante y al dueño (best-effort). No se puede solicitar una mascota propia ni tener dos solicitudes activas para la misma mascota.
// @Tags adoption-requests
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body submitRequest true "Datos de la solicitud"
// @Success 201 {object} requestResponse
// @Failure 400 {string} string "invalid json / campos requeridos"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "mascota propia"
// @Failure 404 {string} string "pet not found"
// @Failure 409 {string} string "ya existe una solicitud activa"
// @Router /adoption-requests [post]
func submitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.AdopterName) == "" {
			req.AdopterName = claims.DisplayName
		}
		if strings.TrimSpace(req.AdopterEmail) == "" {
			req.AdopterEmail = claims.Email
		}

		out, err := svc.Submit(r.Context(), claims.UserID, SubmitInput{
			PetID:        req.PetID,
			AdopterName:  req.AdopterName,
			AdopterEmail: req.AdopterEmail,
			Message:      req.Message,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(out))
	}
}

func getRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		out, err := svc.Get(r.Context(), claims.UserID, chi.URLParam(r, "requestID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(out))
	}
}

// approveHandler godoc
// @Summary Aprobar solicitud
// @Description Solo el dueño de la mascota y solo desde `pending`. Abre (o reutiliza) la conversación con el solicitante.
// @Tags adoption-requests
// @Accept json
// @Produce json
// @Param requestID path string true "ID de la solicitud"
// @Param payload body reviewRequest false "Notas del dueño"
// @Success 200 {object} requestResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Failure 409 {string} string "invalid state"
// @Router /adoption-requests/{requestID}/approve [post]
func approveHandler(svc *Service) http.HandlerFunc {
	return reviewHandler(svc.Approve)
}

// rejectHandler godoc
// @Summary Rechazar solicitud
// @Description Solo el dueño de la mascota y solo desde `pending`.
// @Tags adoption-requests
// @Accept json
// @Produce json
// @Param requestID path string true "ID de la solicitud"
// @Param payload body reviewRequest false "Notas del dueño"
// @Success 200 {object} requestResponse
// @Failure 403 {string} string "forbidden"
// @Failure 409 {string} string "invalid state"
// @Router /adoption-requests/{requestID}/reject [post]
func rejectHandler(svc *Service) http.HandlerFunc {
	return reviewHandler(svc.Reject)
}

type reviewFunc func(ctx context.Context, callerID, id, ownerNotes string) (Request, error)

func reviewHandler(review reviewFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Body opcional.
		var req reviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		out, err := review(r.Context(), claims.UserID, chi.URLParam(r, "requestID"), req.OwnerNotes)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(out))
	}
}

func completeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		out, err := svc.Complete(r.Context(), claims.UserID, chi.URLParam(r, "requestID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(out))
	}
}

func listMineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		items, err := svc.ListForRequester(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(items))
	}
}

func listReceivedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		items, err := svc.ListForOwner(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(items))
	}
}

func hasActiveHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		active, err := svc.HasActiveRequest(r.Context(), claims.UserID, chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, activeResponse{Active: active})
	}
}

// purgeHandler godoc
// @Summary Purgar solicitudes rechazadas antiguas
// @Description Mantenimiento manual (el job de retención hace lo mismo periódicamente). Solo admins.
// @Tags admin
// @Produce json
// @Param max_age_days query int true "Antigüedad mínima en días (>0)"
// @Success 200 {object} purgeResponse
// @Failure 400 {string} string "max_age_days inválido"
// @Failure 403 {string} string "forbidden"
// @Router /admin/adoption-requests/purge [post]
func purgeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := strconv.Atoi(r.URL.Query().Get("max_age_days"))
		if err != nil || days <= 0 {
			http.Error(w, "max_age_days must be a positive integer", http.StatusBadRequest)
			return
		}

		n, err := svc.PurgeOldRejected(r.Context(), days)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, purgeResponse{Purged: n, MaxAgeDays: days})
	}
}

func toResponse(req Request) requestResponse {
	return requestResponse{
		ID:              req.ID,
		RequesterUserID: req.RequesterUserID,
		PetID:           req.PetID,
		OwnerUserID:     req.OwnerUserID,
		Pet: petSnapshotResponse{
			Name:     req.Pet.Name,
			Type:     req.Pet.Type,
			Breed:    req.Pet.Breed,
			ImageURL: req.Pet.ImageURL,
		},
		AdopterName:  req.AdopterName,
		AdopterEmail: req.AdopterEmail,
		Message:      req.Message,
		Status:       req.Status,
		OwnerNotes:   req.OwnerNotes,
		CreatedAt:    req.CreatedAt,
		UpdatedAt:    req.UpdatedAt,
	}
}

func toResponses(items []Request) []requestResponse {
	out := make([]requestResponse, 0, len(items))
	for _, req := range items {
		out = append(out, toResponse(req))
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
