package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"pet-adoption-hub/internal/middleware"
	"pet-adoption-hub/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

const maxImageBytes = 5 << 20

// RegisterRoutes monta las rutas del catálogo. DELETE /pets/{petID} lo monta petremoval.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/pets", createPetHandler(svc))
	r.Get("/pets", listAvailablePetsHandler(svc))
	r.Get("/pets/{petID}", getPetHandler(svc))
	r.Patch("/pets/{petID}", updatePetHandler(svc))
	r.Post("/pets/{petID}/image", uploadImageHandler(svc))

	r.Get("/me/pets", listMyPetsHandler(svc))
	r.Get("/shelters/{shelterID}/pets", listShelterPetsHandler(svc))
}

type createPetRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Breed       string `json:"breed"`
	Gender      string `json:"gender"`
	Age         string `json:"age"`
	Location    string `json:"location"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	ShelterID   string `json:"shelter_id"`
}

type updatePetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	Breed       *string `json:"breed"`
	Gender      *string `json:"gender"`
	Age         *string `json:"age"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	Status      *Status `json:"status"`
}

type PetResponse struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	ShelterID   string    `json:"shelter_id,omitempty"`
	ShelterName string    `json:"shelter_name,omitempty"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Breed       string    `json:"breed"`
	Gender      string    `json:"gender"`
	Age         string    `json:"age"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// createPetHandler godoc
// @Summary Publicar mascota en adopción
// @Description Crea una mascota con status `available`. Si se envía shelter_id, el refugio debe pertenecer al usuario.
// @Tags pets
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createPetRequest true "Datos de la mascota"
// @Success 201 {object} PetResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:        req.Name,
			Type:        req.Type,
			Breed:       req.Breed,
			Gender:      req.Gender,
			Age:         req.Age,
			Location:    req.Location,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			ShelterID:   req.ShelterID,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, ToResponse(p))
	}
}

// listAvailablePetsHandler godoc
// @Summary Catálogo de mascotas disponibles
// @Description Público. Solo devuelve mascotas con status `available`, más nuevas primero.
// @Tags pets
// @Produce json
// @Param type query string false "Tipo (dog, cat, ...)"
// @Param location query string false "Ubicación exacta"
// @Param limit query int false "Máximo de resultados"
// @Success 200 {array} PetResponse
// @Failure 400 {string} string "limit inválido"
// @Router /pets [get]
func listAvailablePetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := ListFilter{
			Type:     q.Get("type"),
			Location: q.Get("location"),
		}
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			f.Limit = n
		}

		items, err := svc.ListAvailable(r.Context(), f)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(items))
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToResponse(p))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description PATCH parcial, solo el dueño. El status no cambia solo por las solicitudes de adopción.
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body updatePetRequest true "Campos a modificar"
// @Success 200 {object} PetResponse
// @Failure 400 {string} string "invalid json / status inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		var req updatePetRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "petID"), UpdateInput{
			Name:        req.Name,
			Type:        req.Type,
			Breed:       req.Breed,
			Gender:      req.Gender,
			Age:         req.Age,
			Location:    req.Location,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			Status:      req.Status,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToResponse(updated))
	}
}

// uploadImageHandler godoc
// @Summary Subir imagen de la mascota
// @Description multipart/form-data con el campo `image` (máx. 5 MB). Requiere blob store habilitado.
// @Tags pets
// @Accept mpfd
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param image formData file true "Imagen"
// @Success 200 {object} PetResponse
// @Failure 400 {string} string "archivo inválido"
// @Failure 403 {string} string "forbidden"
// @Failure 501 {string} string "image upload disabled"
// @Router /pets/{petID}/image [post]
func uploadImageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+1024)
		file, header, err := r.FormFile("image")
		if err != nil {
			http.Error(w, "image file required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxImageBytes {
			http.Error(w, "image too large", http.StatusBadRequest)
			return
		}

		p, err := svc.SetImage(r.Context(), claims.UserID, chi.URLParam(r, "petID"),
			header.Filename, header.Header.Get("Content-Type"), file, header.Size)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToResponse(p))
	}
}

func listMyPetsHandler(svc *Service) http.HandlerFunc {
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
		writeJSON(w, http.StatusOK, toResponses(items))
	}
}

func listShelterPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByShelter(r.Context(), chi.URLParam(r, "shelterID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(items))
	}
}

// ToResponse es exportado porque adoptions y favorites embeben la mascota en sus respuestas.
func ToResponse(p Pet) PetResponse {
	return PetResponse{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		ShelterID:   p.ShelterID,
		ShelterName: p.ShelterName,
		Name:        p.Name,
		Type:        p.Type,
		Breed:       p.Breed,
		Gender:      p.Gender,
		Age:         p.Age,
		Location:    p.Location,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toResponses(items []Pet) []PetResponse {
	out := make([]PetResponse, 0, len(items))
	for _, p := range items {
		out = append(out, ToResponse(p))
	}
	return out
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrImagesDisabled) {
		http.Error(w, err.Error(), http.StatusNotImplemented)
		return
	}
	http.Error(w, apperr.PublicMessage(err), apperr.HTTPStatus(err))
}

// writeJSON: helper local del módulo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
