package animals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/shelters/{shelterID}/animals", listAnimalsHandler(svc))
	r.Get("/shelters/{shelterID}/animals/{animalID}", getAnimalHandler(svc))
	r.Delete("/shelters/{shelterID}/animals/{animalID}/photos/{photoID}", deletePhotoHandler(svc))
}

type animalResponse struct {
	ID           string    `json:"id"`
	Species      string    `json:"species"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	FullLocation string    `json:"fullLocation"`
	IntakeDate   time.Time `json:"intakeDate"`
	Description  *string   `json:"description,omitempty"`
	Sex          *string   `json:"sex,omitempty"`
	MonthsOld    *int      `json:"monthsOld,omitempty"`
	Breed        *string   `json:"breed,omitempty"`
	Photos       []Photo   `json:"photos"`
	Notes        []Note    `json:"notes"`
	Logs         []Log     `json:"logs"`
	InKennel     bool      `json:"inKennel"`
	IsActive     bool      `json:"isActive"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// listAnimalsHandler godoc
// @Summary Listar roster
// @Description Devuelve los animales guardados del shelter. Con active=true omite los desactivados.
// @Tags animals
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param active query bool false "Sólo activos"
// @Success 200 {array} animalResponse
// @Failure 400 {string} string "invalid query"
// @Router /shelters/{shelterID}/animals [get]
func listAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := false
		if v := r.URL.Query().Get("active"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, "invalid active", http.StatusBadRequest)
				return
			}
			activeOnly = b
		}

		list, err := svc.List(r.Context(), chi.URLParam(r, "shelterID"), activeOnly)
		if errors.Is(err, ErrInvalidInput) {
			http.Error(w, "invalid shelter", http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]animalResponse, 0, len(list))
		for _, a := range list {
			out = append(out, toAnimalResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getAnimalHandler godoc
// @Summary Ver animal
// @Tags animals
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param animalID path string true "ID del animal"
// @Success 200 {object} animalResponse
// @Failure 404 {string} string "animal not found"
// @Router /shelters/{shelterID}/animals/{animalID} [get]
func getAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.Get(r.Context(), chi.URLParam(r, "shelterID"), chi.URLParam(r, "animalID"))
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

// deletePhotoHandler godoc
// @Summary Borrar foto
// @Description Quita la foto del animal. Si vino del proveedor queda registrada para que el sync no la vuelva a traer.
// @Tags animals
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param animalID path string true "ID del animal"
// @Param photoID path string true "ID de la foto"
// @Success 200 {object} animalResponse
// @Failure 404 {string} string "animal/photo not found"
// @Router /shelters/{shelterID}/animals/{animalID}/photos/{photoID} [delete]
func deletePhotoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.DeletePhoto(r.Context(),
			chi.URLParam(r, "shelterID"),
			chi.URLParam(r, "animalID"),
			chi.URLParam(r, "photoID"),
		)
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "animal/photo not found", http.StatusNotFound)
			return
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, "invalid photo id", http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func toAnimalResponse(a Animal) animalResponse {
	return animalResponse{
		ID:           a.ID,
		Species:      string(a.Species),
		Name:         a.Name,
		Location:     a.Location,
		FullLocation: a.FullLocation,
		IntakeDate:   a.IntakeDate,
		Description:  a.Description,
		Sex:          a.Sex,
		MonthsOld:    a.MonthsOld,
		Breed:        a.Breed,
		Photos:       orEmpty(a.Photos),
		Notes:        orEmpty(a.Notes),
		Logs:         orEmpty(a.Logs),
		InKennel:     a.InKennel,
		IsActive:     a.IsActive,
		UpdatedAt:    a.UpdatedAt,
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
