package petremoval

import (
	"encoding/json"
	"net/http"

	"pet-adoption-hub/internal/middleware"
	"pet-adoption-hub/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Delete("/pets/{petID}", deletePetHandler(svc))
}

type deleteResponse struct {
	PetID   string   `json:"pet_id"`
	Deleted Deleted  `json:"deleted"`
	Failed  []string `json:"failed,omitempty"`
}

// deletePetHandler godoc
// @Summary Borrar mascota
// @Description Borra la mascota y limpia solicitudes, notificaciones y favoritos asociados. Las conversaciones se conservan con un mensaje de sistema. Requiere `confirm=true`.
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param confirm query bool true "Confirmación explícita"
// @Success 200 {object} deleteResponse
// @Failure 400 {string} string "confirm=true requerido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("confirm") != "true" {
			http.Error(w, "confirm=true is required to delete a pet", http.StatusBadRequest)
			return
		}

		sum, err := svc.DeletePet(r.Context(), claims.UserID, chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{
			PetID:   sum.PetID,
			Deleted: sum.Deleted,
			Failed:  sum.Failed,
		})
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
