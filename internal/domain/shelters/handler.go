package shelters

import (
	"encoding/json"
	"net/http"
	"time"

	"pet-adoption-hub/internal/middleware"
	"pet-adoption-hub/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes: /shelters/{shelterID}/pets lo monta pets.
// adminOnly protege el cambio de status (moderación).
func RegisterRoutes(r chi.Router, svc *Service, adminOnly func(http.Handler) http.Handler) {
	r.Post("/shelters", registerShelterHandler(svc))
	r.Get("/shelters", listSheltersHandler(svc))
	r.Get("/me/shelters", listMySheltersHandler(svc))

	r.Get("/shelters/{shelterID}", getShelterHandler(svc))
	r.Patch("/shelters/{shelterID}", updateShelterHandler(svc))
	r.Delete("/shelters/{shelterID}", deleteShelterHandler(svc))
	r.Post("/shelters/{shelterID}/premium", activatePremiumHandler(svc))
	r.With(adminOnly).Post("/shelters/{shelterID}/status", setStatusHandler(svc))
}

type registerShelterRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Address     string   `json:"address"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email"`
	Website     string   `json:"website"`
	Services    []string `json:"services"`
}

type updateShelterRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	Address     *string   `json:"address"`
	Phone       *string   `json:"phone"`
	Email       *string   `json:"email"`
	Website     *string   `json:"website"`
	Services    *[]string `json:"services"`
}

type premiumRequest struct {
	Days int `json:"days"`
}

type statusRequest struct {
	Status Status `json:"status"`
}

type shelterResponse struct {
	ID              string     `json:"id"`
	OwnerUserID     string     `json:"owner_user_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
	Address         string     `json:"address"`
	Phone           string     `json:"phone"`
	Email           string     `json:"email"`
	Website         string     `json:"website"`
	Services        []string   `json:"services"`
	Rating          float64    `json:"rating"`
	PetsCount       int        `json:"pets_count"`
	Status          Status     `json:"status"`
	IsPremium       bool       `json:"is_premium"`
	IsPremiumActive bool       `json:"is_premium_active"`
	PremiumExpiry   *time.Time `json:"premium_expiry,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// registerShelterHandler godoc
// @Summary Registrar refugio
// @Description El refugio queda en `pending` hasta que un admin lo active.
// @Tags shelters
// @Accept json
// @Produce json
// @Param payload body registerShelterRequest true "Datos del refugio"
// @Success 201 {object} shelterResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Router /shelters [post]
func registerShelterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req registerShelterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sh, err := svc.Register(r.Context(), claims.UserID, RegisterInput{
			Name:        req.Name,
			Description: req.Description,
			Location:    req.Location,
			Address:     req.Address,
			Phone:       req.Phone,
			Email:       req.Email,
			Website:     req.Website,
			Services:    req.Services,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(svc, sh))
	}
}

// listSheltersHandler godoc
// @Summary Listar refugios
// @Description Público. Por defecto solo `active`; `status=all` devuelve todos.
// @Tags shelters
// @Produce json
// @Param status query string false "pending | active | rejected | inactive | all"
// @Success 200 {array} shelterResponse
// @Failure 400 {string} string "status inválido"
// @Router /shelters [get]
func listSheltersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := Status(r.URL.Query().Get("status"))
		switch status {
		case "":
			status = StatusActive
		case "all":
			status = ""
		}

		items, err := svc.List(r.Context(), status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(svc, items))
	}
}

func listMySheltersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(svc, items))
	}
}

func getShelterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sh, err := svc.GetByID(r.Context(), chi.URLParam(r, "shelterID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(svc, sh))
	}
}

func updateShelterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		var req updateShelterRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sh, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "shelterID"), UpdateInput{
			Name:        req.Name,
			Description: req.Description,
			Location:    req.Location,
			Address:     req.Address,
			Phone:       req.Phone,
			Email:       req.Email,
			Website:     req.Website,
			Services:    req.Services,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(svc, sh))
	}
}

func deleteShelterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "shelterID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// activatePremiumHandler godoc
// @Summary Activar o extender premium
// @Description Solo el dueño. Extiende desde el vencimiento vigente o desde ahora.
// @Tags shelters
// @Accept json
// @Produce json
// @Param shelterID path string true "ID del refugio"
// @Param payload body premiumRequest true "Días a agregar (1-366)"
// @Success 200 {object} shelterResponse
// @Failure 400 {string} string "days inválido"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /shelters/{shelterID}/premium [post]
func activatePremiumHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req premiumRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sh, err := svc.ActivatePremium(r.Context(), claims.UserID, chi.URLParam(r, "shelterID"), req.Days)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(svc, sh))
	}
}

func setStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sh, err := svc.SetStatus(r.Context(), chi.URLParam(r, "shelterID"), req.Status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(svc, sh))
	}
}

func toResponse(svc *Service, sh Shelter) shelterResponse {
	services := sh.Services
	if services == nil {
		services = []string{}
	}
	return shelterResponse{
		ID:              sh.ID,
		OwnerUserID:     sh.OwnerUserID,
		Name:            sh.Name,
		Description:     sh.Description,
		Location:        sh.Location,
		Address:         sh.Address,
		Phone:           sh.Phone,
		Email:           sh.Email,
		Website:         sh.Website,
		Services:        services,
		Rating:          sh.Rating,
		PetsCount:       sh.PetsCount,
		Status:          sh.Status,
		IsPremium:       sh.IsPremium,
		IsPremiumActive: svc.PremiumActive(sh),
		PremiumExpiry:   sh.PremiumExpiry,
		CreatedAt:       sh.CreatedAt,
		UpdatedAt:       sh.UpdatedAt,
	}
}

func toResponses(svc *Service, items []Shelter) []shelterResponse {
	out := make([]shelterResponse, 0, len(items))
	for _, sh := range items {
		out = append(out, toResponse(svc, sh))
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
