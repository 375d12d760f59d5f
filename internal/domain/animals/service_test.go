package animals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byShelter  map[string][]Animal
	tombstones map[string][]Tombstone
	listErr    error
}

func newTestRepo(shelterID string, as ...Animal) *testRepo {
	return &testRepo{
		byShelter:  map[string][]Animal{shelterID: as},
		tombstones: map[string][]Tombstone{},
	}
}

func (r *testRepo) ListByShelter(_ context.Context, shelterID string) ([]Animal, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]Animal(nil), r.byShelter[shelterID]...), nil
}

func (r *testRepo) ListTombstones(_ context.Context, shelterID string) (map[string][]Tombstone, error) {
	out := map[string][]Tombstone{}
	for _, t := range r.tombstones[shelterID] {
		out[t.AnimalID] = append(out[t.AnimalID], t)
	}
	return out, nil
}

func (r *testRepo) RemovePhoto(_ context.Context, shelterID string, species Species, animalID string, photos []Photo, t Tombstone) error {
	list := r.byShelter[shelterID]
	for i := range list {
		if list[i].ID == animalID && list[i].Species == species {
			list[i].Photos = photos
			r.tombstones[shelterID] = append(r.tombstones[shelterID], t)
			return nil
		}
	}
	return ErrNotFound
}

func (r *testRepo) NewBatch(string) Batch { return nil }

func listed(id string, sp Species, active bool, photos ...Photo) Animal {
	return Animal{ID: id, Species: sp, Name: id, Photos: photos, IsActive: active}
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return t0 }
	return svc
}

// -------------------------
// Service
// -------------------------

func TestService_ListSortsAndFiltersInactive(t *testing.T) {
	repo := newTestRepo("S1",
		listed("9", SpeciesDog, true),
		listed("2", SpeciesCat, false),
		listed("1", SpeciesDog, true),
	)
	svc := newTestService(repo)

	all, err := svc.List(context.Background(), "S1", false)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	got := []string{}
	for _, a := range all {
		got = append(got, string(a.Species)+"/"+a.ID)
	}
	want := []string{"cat/2", "dog/1", "dog/9"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order %v", got)
		}
	}

	active, _ := svc.List(context.Background(), "S1", true)
	if len(active) != 2 {
		t.Fatalf("expected 2 active, got %d", len(active))
	}

	if _, err := svc.List(context.Background(), " ", false); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_GetNotFound(t *testing.T) {
	svc := newTestService(newTestRepo("S1", listed("1", SpeciesDog, true)))
	if _, err := svc.Get(context.Background(), "S1", "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_DeletePhotoRecordsTombstone(t *testing.T) {
	repo := newTestRepo("S1", listed("A", SpeciesDog, true,
		photo("m1", "https://cdn/m.jpg", PhotoSourceManual),
		photo("p1", "https://sl/1.jpg", "shelterluv"),
	))
	svc := newTestService(repo)

	a, err := svc.DeletePhoto(context.Background(), "S1", "A", "p1")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(a.Photos) != 1 || a.Photos[0].ID != "m1" {
		t.Fatalf("unexpected photos %#v", a.Photos)
	}

	ts, _ := repo.ListTombstones(context.Background(), "S1")
	if len(ts["A"]) != 1 || ts["A"][0].URL != "https://sl/1.jpg" || !ts["A"][0].DeletedAt.Equal(t0) {
		t.Fatalf("unexpected tombstones %#v", ts)
	}

	// un merge posterior no la trae de vuelta
	merged := MergeForUpdate(a.Photos, []Photo{photo("x", "https://sl/1.jpg", "shelterluv")}, ts["A"])
	if len(merged) != 1 {
		t.Fatalf("tombstoned photo came back: %#v", merged)
	}
}

func TestService_DeletePhotoErrors(t *testing.T) {
	svc := newTestService(newTestRepo("S1", listed("A", SpeciesDog, true, photo("p1", "u", "asm"))))

	if _, err := svc.DeletePhoto(context.Background(), "S1", "A", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.DeletePhoto(context.Background(), "S1", "A", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.DeletePhoto(context.Background(), "S1", "B", "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// -------------------------
// Handlers
// -------------------------

func newTestRouter(repo Repository) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, newTestService(repo))
	return r
}

func TestHandlers_ListAndDeletePhoto(t *testing.T) {
	repo := newTestRepo("S1",
		listed("A", SpeciesDog, true, photo("p1", "https://sl/1.jpg", "shelterluv")),
		listed("B", SpeciesCat, false),
	)
	h := newTestRouter(repo)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shelters/S1/animals?active=true", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list []animalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].ID != "A" || len(list[0].Notes) != 0 || list[0].Notes == nil {
		t.Fatalf("unexpected list %#v", list)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shelters/S1/animals?active=maybe", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/shelters/S1/animals/A/photos/p1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/shelters/S1/animals/A/photos/p1", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shelters/S1/animals/Z", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandlers_StoreErrorIs500(t *testing.T) {
	repo := newTestRepo("S1")
	repo.listErr = errors.New("db down")

	rec := httptest.NewRecorder()
	newTestRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shelters/S1/animals", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
