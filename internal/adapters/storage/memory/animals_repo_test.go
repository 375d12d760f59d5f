package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"shelter-roster-sync/internal/domain/animals"
	"shelter-roster-sync/internal/domain/shelters"
)

func TestAnimalBatch_CommitIsAllOrNothing(t *testing.T) {
	repo := NewAnimalRepo()
	ctx := context.Background()

	b := repo.NewBatch("S1")
	b.Insert(animals.Animal{ID: "A", Species: animals.SpeciesDog, Name: "Rex", IsActive: true})
	if err := b.Commit(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	name := "Rexy"
	b = repo.NewBatch("S1")
	b.Update(animals.SpeciesDog, "A", animals.Patch{Name: &name})
	b.Insert(animals.Animal{ID: "B", Species: animals.SpeciesCat})
	b.Deactivate(animals.SpeciesCat, "missing", time.Now())
	if err := b.Commit(ctx); !errors.Is(err, animals.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, _ := repo.ListByShelter(ctx, "S1")
	if len(got) != 1 || got[0].Name != "Rex" {
		t.Fatalf("failed batch must not be applied, got %#v", got)
	}
}

func TestAnimalBatch_ScopedByShelterAndSpecies(t *testing.T) {
	repo := NewAnimalRepo()
	ctx := context.Background()

	b := repo.NewBatch("S1")
	b.Insert(animals.Animal{ID: "A", Species: animals.SpeciesDog, IsActive: true})
	_ = b.Commit(ctx)
	b = repo.NewBatch("S2")
	b.Insert(animals.Animal{ID: "A", Species: animals.SpeciesDog, IsActive: true})
	_ = b.Commit(ctx)

	b = repo.NewBatch("S1")
	b.Deactivate(animals.SpeciesDog, "A", time.Now())
	b.Delete(animals.SpeciesCat, "A")
	if err := b.Commit(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s1, _ := repo.ListByShelter(ctx, "S1")
	s2, _ := repo.ListByShelter(ctx, "S2")
	if len(s1) != 1 || s1[0].IsActive || s1[0].ShelterID != "S1" {
		t.Fatalf("unexpected S1 %#v", s1)
	}
	if len(s2) != 1 || !s2[0].IsActive {
		t.Fatalf("other shelter must be untouched %#v", s2)
	}
}

func TestAnimalRepo_RemovePhotoRecordsTombstone(t *testing.T) {
	repo := NewAnimalRepo()
	ctx := context.Background()

	b := repo.NewBatch("S1")
	b.Insert(animals.Animal{ID: "A", Species: animals.SpeciesDog, Photos: []animals.Photo{{ID: "p", URL: "u"}}})
	_ = b.Commit(ctx)

	if err := repo.RemovePhoto(ctx, "S1", animals.SpeciesDog, "A", nil, animals.Tombstone{AnimalID: "A", URL: "u"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ts, _ := repo.ListTombstones(ctx, "S1")
	if len(ts["A"]) != 1 || ts["A"][0].URL != "u" {
		t.Fatalf("unexpected tombstones %#v", ts)
	}
	if err := repo.RemovePhoto(ctx, "S1", animals.SpeciesCat, "A", nil, animals.Tombstone{}); !errors.Is(err, animals.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestShelterRepo_PutKeepsLedger(t *testing.T) {
	repo := NewShelterRepo()
	ctx := context.Background()
	now := time.Now()

	if err := repo.UpdateLedger(ctx, "S1", shelters.Ledger{}); !errors.Is(err, shelters.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_ = repo.Create(ctx, shelters.Shelter{ID: "S1", Ledger: shelters.Ledger{LastSync: &now}})
	if err := repo.Create(ctx, shelters.Shelter{ID: "S1"}); !errors.Is(err, shelters.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	_ = repo.Put(ctx, shelters.Shelter{ID: "S1", ManagementSoftware: shelters.SoftwareShelterLuv})
	s, _ := repo.GetByID(ctx, "S1")
	if s.Ledger.LastSync == nil || s.ManagementSoftware != shelters.SoftwareShelterLuv {
		t.Fatalf("unexpected shelter %#v", s)
	}
}

func TestObjectStore_DeletePrefix(t *testing.T) {
	s := NewObjectStore()
	s.Put("S1/A/1.jpg", nil)
	s.Put("S1/A/2.jpg", nil)
	s.Put("S1/AB/1.jpg", nil)

	n, err := s.DeletePrefix(context.Background(), "S1/A/")
	if err != nil || n != 2 {
		t.Fatalf("expected 2 deleted, got %d %v", n, err)
	}
	if got := s.Names(); len(got) != 1 || got[0] != "S1/AB/1.jpg" {
		t.Fatalf("unexpected remaining %v", got)
	}
}
