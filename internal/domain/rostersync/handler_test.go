package rostersync

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelter-roster-sync/internal/domain/animals"
	"shelter-roster-sync/internal/domain/shelters"
	"shelter-roster-sync/internal/ports/roster"
)

func newTestRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, f.svc, NewDispatcher(f.shelters, f.svc, 2, nil))
	return r
}

func pushBody(t *testing.T, payload map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	env := map[string]any{
		"message":      map[string]any{"data": base64.StdEncoding.EncodeToString(raw), "messageId": "m-1"},
		"subscription": "projects/p/subscriptions/roster-sync",
	}
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return string(b)
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPushEvent_RunsSyncAndInfersProvider(t *testing.T) {
	f := newFixture(t, animals.DeactivationDelete, nil)
	f.src.roster = []animals.Animal{dog("A", "Rex")}
	h := newTestRouter(f)

	rec := do(h, http.MethodPost, "/sync/events", pushBody(t, map[string]any{"shelterId": "S1", "apiKey": "key-9"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got runResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "shelterluv", got.Provider)
	assert.Equal(t, []string{"A"}, got.Added)
	assert.Equal(t, []string{}, got.Removed)
	assert.Equal(t, "key-9", f.src.gotCreds.APIKey)
}

func TestPushEvent_StatusMapping(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		fetch   error
		want    int
		cleared bool
	}{
		{name: "bad envelope", body: "{", want: http.StatusBadRequest},
		{name: "bad base64", body: `{"message":{"data":"%%%"}}`, want: http.StatusBadRequest},
		{name: "no provider", body: pushBody(t, map[string]any{"shelterId": "S1"}), want: http.StatusBadRequest},
		{name: "auth", body: pushBody(t, map[string]any{"shelterId": "S1", "apiKey": "bad"}), fetch: roster.ErrAuth, want: http.StatusOK, cleared: true},
		{name: "transport", body: pushBody(t, map[string]any{"shelterId": "S1", "apiKey": "k"}), fetch: fmt.Errorf("%w: timeout", roster.ErrTransport), want: http.StatusBadGateway},
		{name: "parse", body: pushBody(t, map[string]any{"shelterId": "S1", "apiKey": "k"}), fetch: roster.ErrParse, want: http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, animals.DeactivationDelete, nil)
			f.registerShelter(t, true)
			f.src.err = tc.fetch

			rec := do(newTestRouter(f), http.MethodPost, "/sync/events", tc.body)
			require.Equal(t, tc.want, rec.Code, rec.Body.String())
			if tc.cleared {
				var got runResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.True(t, got.CredentialCleared)
			}
		})
	}
}

func TestTriggerShelter_UsesStoredCredentialsWhenBodyEmpty(t *testing.T) {
	f := newFixture(t, animals.DeactivationDelete, nil)
	f.registerShelter(t, true)
	f.src.roster = []animals.Animal{dog("A", "Rex")}
	h := newTestRouter(f)

	rec := do(h, http.MethodPost, "/shelters/S1/sync", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "key-1", f.src.gotCreds.APIKey)

	rec = do(h, http.MethodPost, "/shelters/S1/sync", `{"apiKey":"override"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "override", f.src.gotCreds.APIKey)

	rec = do(h, http.MethodPost, "/shelters/UNKNOWN/sync", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriggerShelter_StoreFailureIs500(t *testing.T) {
	f := newFixture(t, animals.DeactivationDelete, nil)
	f.svc.animals = &failingRepo{AnimalRepo: f.animals, failAfter: 0}
	f.src.roster = []animals.Animal{dog("A", "Rex")}

	rec := do(newTestRouter(f), http.MethodPost, "/shelters/S1/sync", `{"provider":"shelterluv","apiKey":"k"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDispatchHandler(t *testing.T) {
	f := newFixture(t, animals.DeactivationDelete, nil)
	f.registerShelter(t, true)
	_, err := f.shelters.Put(context.Background(), "S2", shelters.PutInput{ManagementSoftware: shelters.SoftwareShelterManager})
	require.NoError(t, err)

	rec := do(newTestRouter(f), http.MethodPost, "/sync/dispatch", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rep DispatchReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, 2, rep.Total)
	assert.Equal(t, []string{"S1"}, rep.Succeeded)
	assert.Equal(t, []string{"S2"}, rep.Skipped)
}
