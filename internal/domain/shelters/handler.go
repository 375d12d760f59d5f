package shelters

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/shelters/{shelterID}", getShelterHandler(svc))
	r.Put("/shelters/{shelterID}", putShelterHandler(svc))
}

type putShelterRequest struct {
	Name               string `json:"name"`
	ManagementSoftware string `json:"managementSoftware"`
	APIKey             string `json:"apiKey"`
	ASMUsername        string `json:"asmUsername"`
	ASMPassword        string `json:"asmPassword"`
	ASMAccount         string `json:"asmAccountNumber"`
	// nil = true (default del sistema)
	OnlyPrimaryPhoto *bool `json:"onlyIncludePrimaryPhotoFromShelterLuv"`
}

// Las credenciales nunca salen por la API; sólo si están cargadas.
type shelterResponse struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	ManagementSoftware string      `json:"managementSoftware"`
	HasCredentials     bool        `json:"hasCredentials"`
	OnlyPrimaryPhoto   bool        `json:"onlyIncludePrimaryPhotoFromShelterLuv"`
	LastSync           *time.Time  `json:"lastSync,omitempty"`
	LastCatSync        *time.Time  `json:"lastCatSync,omitempty"`
	LastDogSync        *time.Time  `json:"lastDogSync,omitempty"`
	LastSyncChanges    SyncChanges `json:"lastSyncChanges"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// getShelterHandler godoc
// @Summary Ver shelter
// @Description Devuelve software de gestión, preferencias y el ledger del último sync. Las credenciales no se exponen.
// @Tags shelters
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Success 200 {object} shelterResponse
// @Failure 404 {string} string "shelter not found"
// @Router /shelters/{shelterID} [get]
func getShelterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sh, err := svc.GetByID(r.Context(), chi.URLParam(r, "shelterID"))
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "shelter not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toShelterResponse(sh))
	}
}

// putShelterHandler godoc
// @Summary Registrar shelter
// @Description Crea o reemplaza el software de gestión y las credenciales del shelter. El ledger se conserva.
// @Tags shelters
// @Accept json
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param payload body putShelterRequest true "Software y credenciales"
// @Success 200 {object} shelterResponse
// @Failure 400 {string} string "invalid json / software desconocido"
// @Router /shelters/{shelterID} [put]
func putShelterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req putShelterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		st := DefaultSettings()
		st.APIKey = req.APIKey
		st.ASMUsername = req.ASMUsername
		st.ASMPassword = req.ASMPassword
		st.ASMAccount = req.ASMAccount
		if req.OnlyPrimaryPhoto != nil {
			st.OnlyPrimaryPhoto = *req.OnlyPrimaryPhoto
		}

		sh, err := svc.Put(r.Context(), chi.URLParam(r, "shelterID"), PutInput{
			Name:               req.Name,
			ManagementSoftware: ManagementSoftware(req.ManagementSoftware),
			Settings:           st,
		})
		if errors.Is(err, ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toShelterResponse(sh))
	}
}

func toShelterResponse(sh Shelter) shelterResponse {
	return shelterResponse{
		ID:                 sh.ID,
		Name:               sh.Name,
		ManagementSoftware: string(sh.ManagementSoftware),
		HasCredentials:     sh.Settings.HasCredentials(sh.ManagementSoftware),
		OnlyPrimaryPhoto:   sh.Settings.OnlyPrimaryPhoto,
		LastSync:           sh.Ledger.LastSync,
		LastCatSync:        sh.Ledger.LastCatSync,
		LastDogSync:        sh.Ledger.LastDogSync,
		LastSyncChanges:    sh.Ledger.LastSyncChanges,
		UpdatedAt:          sh.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
