package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelter-roster-sync/internal/config"
)

// fakeShelterLuv sirve un roster editable en /api/v1/animals.
type fakeShelterLuv struct {
	mu      sync.Mutex
	apiKey  string
	animals []map[string]any
}

func (f *fakeShelterLuv) set(rows ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.animals = rows
}

func (f *fakeShelterLuv) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.Header.Get("X-Api-Key") != f.apiKey {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	page := f.animals
	if r.URL.Query().Get("offset") != "0" {
		page = nil
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": 1, "animals": page, "has_more": false})
}

func slRow(id, name, typ string) map[string]any {
	return map[string]any{
		"ID":                 id,
		"Name":               name,
		"Type":               typ,
		"Photos":             []string{"https://sl/" + id + ".jpg"},
		"LastIntakeUnixTime": "1700000000",
		"CurrentLocation":    map[string]any{"Tier1": "Main", "Tier2": "Room 1"},
	}
}

func newTestServer(t *testing.T) (*fakeShelterLuv, http.Handler) {
	t.Helper()
	sl := &fakeShelterLuv{apiKey: "key-1"}
	slSrv := httptest.NewServer(sl)
	t.Cleanup(slSrv.Close)

	h, err := NewRouter(Options{Config: config.Config{
		BatchSize:              499,
		HTTPTimeout:            2 * time.Second,
		ShelterLuvBaseURL:      slSrv.URL,
		ShelterLuvPageSize:     100,
		ShelterLuvDeactivation: "deactivate",
		ASMBaseURL:             slSrv.URL,
		ASMDeactivation:        "delete",
		DispatchConcurrency:    2,
	}})
	require.NoError(t, err)
	return sl, h
}

func call(t *testing.T, h http.Handler, method, path, body string, out any) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

type animalView struct {
	ID       string `json:"id"`
	Species  string `json:"species"`
	Name     string `json:"name"`
	Location string `json:"location"`
	IsActive bool   `json:"isActive"`
	Photos   []struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"photos"`
}

type shelterView struct {
	HasCredentials  bool       `json:"hasCredentials"`
	LastSync        *time.Time `json:"lastSync"`
	LastSyncChanges struct {
		Added   []string `json:"added"`
		Updated []string `json:"updated"`
		Removed []string `json:"removed"`
	} `json:"lastSyncChanges"`
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t)
	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/health", "", nil))
}

func TestEndToEnd_ShelterLuvSyncLifecycle(t *testing.T) {
	sl, h := newTestServer(t)

	require.Equal(t, http.StatusOK, call(t, h, http.MethodPut, "/shelters/S1",
		`{"name":"Happy Paws","managementSoftware":"ShelterLuv","apiKey":"key-1"}`, nil))

	sl.set(slRow("1", "Rex (Bo)", "Dog"), slRow("2", "Mia", "Cat"))
	var run struct {
		Added   []string `json:"added"`
		Removed []string `json:"removed"`
	}
	require.Equal(t, http.StatusOK, call(t, h, http.MethodPost, "/shelters/S1/sync", "", &run))
	assert.Equal(t, []string{"1", "2"}, run.Added)

	var list []animalView
	require.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/shelters/S1/animals", "", &list))
	require.Len(t, list, 2)
	assert.Equal(t, "cat", list[0].Species)
	assert.Equal(t, "Rex", list[1].Name)
	assert.Equal(t, "Main Room 1", list[1].Location)
	require.Len(t, list[1].Photos, 1)

	// el usuario borra la foto de Rex: no vuelve en el próximo sync
	photoID := list[1].Photos[0].ID
	require.Equal(t, http.StatusOK, call(t, h, http.MethodDelete, "/shelters/S1/animals/1/photos/"+photoID, "", nil))

	// Mia sale del roster (soft-delete en ShelterLuv)
	sl.set(slRow("1", "Rex (Bo)", "Dog"))
	require.Equal(t, http.StatusOK, call(t, h, http.MethodPost, "/shelters/S1/sync", "", &run))
	assert.Equal(t, []string{"2"}, run.Removed)

	var active []animalView
	require.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/shelters/S1/animals?active=true", "", &active))
	require.Len(t, active, 1)
	assert.Equal(t, "1", active[0].ID)
	assert.Empty(t, active[0].Photos)

	var sh shelterView
	require.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/shelters/S1", "", &sh))
	require.NotNil(t, sh.LastSync)
	assert.Equal(t, []string{"2"}, sh.LastSyncChanges.Removed)
	assert.True(t, sh.HasCredentials)
}

func TestEndToEnd_RejectedKeyClearsCredential(t *testing.T) {
	sl, h := newTestServer(t)
	sl.apiKey = "rotated"

	require.Equal(t, http.StatusOK, call(t, h, http.MethodPut, "/shelters/S1",
		`{"managementSoftware":"ShelterLuv","apiKey":"key-1"}`, nil))

	var run struct {
		CredentialCleared bool `json:"credentialCleared"`
	}
	require.Equal(t, http.StatusOK, call(t, h, http.MethodPost, "/shelters/S1/sync", "", &run))
	assert.True(t, run.CredentialCleared)

	var sh shelterView
	require.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/shelters/S1", "", &sh))
	assert.False(t, sh.HasCredentials)
	assert.Nil(t, sh.LastSync)

	// sin credenciales el dispatch lo saltea
	var rep struct {
		Skipped []string `json:"skipped"`
	}
	require.Equal(t, http.StatusOK, call(t, h, http.MethodPost, "/sync/dispatch", "", &rep))
	assert.Equal(t, []string{"S1"}, rep.Skipped)
}

func TestNewRouter_InvalidShelterLuvURL(t *testing.T) {
	_, err := NewRouter(Options{Config: config.Config{ShelterLuvBaseURL: "not a url"}})
	assert.Error(t, err)
}
