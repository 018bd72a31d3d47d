package favorites

import (
	"encoding/json"
	"net/http"
	"time"

	"pet-adoption-hub/internal/domain/pets"
	"pet-adoption-hub/internal/middleware"
	"pet-adoption-hub/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/pets/{petID}/favorite", addFavoriteHandler(svc))
	r.Delete("/pets/{petID}/favorite", removeFavoriteHandler(svc))
	r.Get("/pets/{petID}/favorite", isFavoriteHandler(svc))
	r.Get("/me/favorites", listMyFavoritesHandler(svc))
}

type favoriteResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PetID     string    `json:"pet_id"`
	CreatedAt time.Time `json:"created_at"`
}

type favoritePetResponse struct {
	Favorite favoriteResponse `json:"favorite"`
	Pet      pets.PetResponse `json:"pet"`
}

type isFavoriteResponse struct {
	Favorite bool `json:"favorite"`
}

// addFavoriteHandler godoc
// @Summary Marcar mascota como favorita
// @Description Idempotente: 201 la primera vez, 200 si ya era favorita.
// @Tags favorites
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} favoriteResponse
// @Success 201 {object} favoriteResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "not found"
// @Router /pets/{petID}/favorite [post]
func addFavoriteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		f, created, err := svc.Add(r.Context(), claims.UserID, chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, toResponse(f))
	}
}

func removeFavoriteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := svc.Remove(r.Context(), claims.UserID, chi.URLParam(r, "petID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func isFavoriteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		fav, err := svc.IsFavorite(r.Context(), claims.UserID, chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, isFavoriteResponse{Favorite: fav})
	}
}

func listMyFavoritesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		items, err := svc.ListPetsForUser(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]favoritePetResponse, 0, len(items))
		for _, it := range items {
			out = append(out, favoritePetResponse{
				Favorite: toResponse(it.Favorite),
				Pet:      pets.ToResponse(it.Pet),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toResponse(f Favorite) favoriteResponse {
	return favoriteResponse{
		ID:        f.ID,
		UserID:    f.UserID,
		PetID:     f.PetID,
		CreatedAt: f.CreatedAt,
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
