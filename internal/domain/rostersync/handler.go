package rostersync

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"shelter-roster-sync/internal/ports/roster"
)

func RegisterRoutes(r chi.Router, svc *Service, d *Dispatcher) {
	r.Post("/sync/events", pushEventHandler(svc))
	r.Post("/sync/dispatch", dispatchHandler(d))
	r.Post("/shelters/{shelterID}/sync", triggerShelterHandler(svc))
}

// Envelope de un push de Pub/Sub.
type pushEnvelope struct {
	Message struct {
		Data       string            `json:"data"`
		MessageID  string            `json:"messageId"`
		Attributes map[string]string `json:"attributes"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

type triggerRequest struct {
	ShelterID        string `json:"shelterId"`
	Provider         string `json:"provider"`
	APIKey           string `json:"apiKey"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	Account          string `json:"account"`
	OnlyPrimaryPhoto *bool  `json:"onlyPrimaryPhoto"`
}

func (req triggerRequest) hasCredentials() bool {
	return req.APIKey != "" || req.Username != "" || req.Password != "" || req.Account != ""
}

// inferProvider: apiKey => shelterluv, usuario/cuenta => asm.
func (req triggerRequest) inferProvider() string {
	if p := strings.TrimSpace(req.Provider); p != "" {
		return p
	}
	switch {
	case req.APIKey != "":
		return "shelterluv"
	case req.Username != "" || req.Account != "":
		return "asm"
	default:
		return ""
	}
}

func (req triggerRequest) toTrigger() Trigger {
	return Trigger{
		ShelterID: req.ShelterID,
		Provider:  req.inferProvider(),
		Credentials: roster.Credentials{
			APIKey:   req.APIKey,
			Username: req.Username,
			Password: req.Password,
			Account:  req.Account,
		},
		OnlyPrimaryPhoto: req.OnlyPrimaryPhoto,
	}
}

type runResponse struct {
	RunID             string    `json:"runId"`
	ShelterID         string    `json:"shelterId"`
	Provider          string    `json:"provider"`
	Mode              string    `json:"mode"`
	Fetched           int       `json:"fetched"`
	Added             []string  `json:"added"`
	Updated           []string  `json:"updated"`
	Removed           []string  `json:"removed"`
	Flushes           int       `json:"flushes"`
	ImagesDeleted     int       `json:"imagesDeleted"`
	CredentialCleared bool      `json:"credentialCleared"`
	StartedAt         time.Time `json:"startedAt"`
	FinishedAt        time.Time `json:"finishedAt"`
}

// pushEventHandler godoc
// @Summary Sync por evento
// @Description Recibe un push de Pub/Sub cuyo data (base64) trae shelterId y credenciales. Si no viene provider se infiere de las credenciales.
// @Tags sync
// @Accept json
// @Produce json
// @Param payload body pushEnvelope true "Envelope de Pub/Sub"
// @Success 200 {object} runResponse
// @Failure 400 {string} string "invalid envelope / trigger inválido"
// @Failure 502 {string} string "proveedor no disponible"
// @Failure 500 {string} string "error de escritura"
// @Router /sync/events [post]
func pushEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var env pushEnvelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			http.Error(w, "invalid envelope", http.StatusBadRequest)
			return
		}
		raw, err := base64.StdEncoding.DecodeString(env.Message.Data)
		if err != nil || len(raw) == 0 {
			http.Error(w, "invalid message data", http.StatusBadRequest)
			return
		}
		var req triggerRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			http.Error(w, "invalid message data", http.StatusBadRequest)
			return
		}

		res, err := svc.Run(r.Context(), req.toTrigger())
		if err != nil {
			writeRunError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRunResponse(res))
	}
}

// triggerShelterHandler godoc
// @Summary Sync de un shelter
// @Description Corre un sync para el shelter. Sin credenciales en el body usa el software y credenciales guardados.
// @Tags sync
// @Accept json
// @Produce json
// @Param shelterID path string true "ID del shelter"
// @Param payload body triggerRequest false "Proveedor y credenciales"
// @Success 200 {object} runResponse
// @Failure 400 {string} string "invalid json / trigger inválido"
// @Failure 502 {string} string "proveedor no disponible"
// @Failure 500 {string} string "error de escritura"
// @Router /shelters/{shelterID}/sync [post]
func triggerShelterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req triggerRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}
		shelterID := chi.URLParam(r, "shelterID")

		var t Trigger
		if req.hasCredentials() {
			req.ShelterID = shelterID
			t = req.toTrigger()
		} else {
			stored, err := svc.TriggerFromStore(r.Context(), shelterID)
			if err != nil {
				writeRunError(w, err)
				return
			}
			stored.OnlyPrimaryPhoto = req.OnlyPrimaryPhoto
			t = stored
		}

		res, err := svc.Run(r.Context(), t)
		if err != nil {
			writeRunError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRunResponse(res))
	}
}

// dispatchHandler godoc
// @Summary Sync de todos los shelters
// @Description Corre un sync por cada shelter registrado con credenciales. Los fallos individuales se reportan sin cortar al resto.
// @Tags sync
// @Produce json
// @Success 200 {object} DispatchReport
// @Failure 500 {string} string "internal error"
// @Router /sync/dispatch [post]
func dispatchHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := d.DispatchAll(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

// writeRunError traduce los errores de Run a status.
func writeRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidTrigger):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrFetch):
		http.Error(w, "provider unavailable", http.StatusBadGateway)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toRunResponse(res Result) runResponse {
	return runResponse{
		RunID:             res.RunID,
		ShelterID:         res.ShelterID,
		Provider:          res.Provider,
		Mode:              string(res.Mode),
		Fetched:           res.Fetched,
		Added:             nonNil(res.Changes.Added),
		Updated:           nonNil(res.Changes.Updated),
		Removed:           nonNil(res.Changes.Removed),
		Flushes:           res.Flushes,
		ImagesDeleted:     res.ImagesDeleted,
		CredentialCleared: res.CredentialCleared,
		StartedAt:         res.StartedAt,
		FinishedAt:        res.FinishedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
