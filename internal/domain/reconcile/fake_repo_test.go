package reconcile

import (
	"context"
	"errors"
	"sort"
	"time"

	"shelter-roster-sync/internal/domain/animals"
)

var errCommit = errors.New("commit failed")

// fakeRepo guarda animales por id y registra el tamaño de cada commit.
type fakeRepo struct {
	byID       map[string]animals.Animal
	tombstones map[string][]animals.Tombstone

	commits []int
	// failOn: número de commit (1-based) que falla.
	failOn int
}

func newFakeRepo(stored ...animals.Animal) *fakeRepo {
	r := &fakeRepo{byID: map[string]animals.Animal{}, tombstones: map[string][]animals.Tombstone{}}
	for _, a := range stored {
		r.byID[a.ID] = a
	}
	return r
}

func (r *fakeRepo) ListByShelter(context.Context, string) ([]animals.Animal, error) {
	out := make([]animals.Animal, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) ListTombstones(context.Context, string) (map[string][]animals.Tombstone, error) {
	return r.tombstones, nil
}

func (r *fakeRepo) RemovePhoto(_ context.Context, _ string, _ animals.Species, id string, photos []animals.Photo, t animals.Tombstone) error {
	a, ok := r.byID[id]
	if !ok {
		return animals.ErrNotFound
	}
	a.Photos = photos
	r.byID[id] = a
	r.tombstones[id] = append(r.tombstones[id], t)
	return nil
}

func (r *fakeRepo) NewBatch(shelterID string) animals.Batch {
	return &fakeBatch{repo: r, shelterID: shelterID}
}

func (r *fakeRepo) ids() []string {
	out := make([]string, 0, len(r.byID))
	for id := range r.byID {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

type fakeBatch struct {
	repo      *fakeRepo
	shelterID string
	ops       []func()
}

func (b *fakeBatch) Insert(a animals.Animal) {
	b.ops = append(b.ops, func() {
		a.ShelterID = b.shelterID
		b.repo.byID[a.ID] = a
	})
}

func (b *fakeBatch) Update(_ animals.Species, id string, p animals.Patch) {
	b.ops = append(b.ops, func() {
		if a, ok := b.repo.byID[id]; ok {
			b.repo.byID[id] = p.Apply(a)
		}
	})
}

func (b *fakeBatch) Deactivate(_ animals.Species, id string, _ time.Time) {
	b.ops = append(b.ops, func() {
		if a, ok := b.repo.byID[id]; ok {
			a.IsActive = false
			b.repo.byID[id] = a
		}
	})
}

func (b *fakeBatch) Delete(_ animals.Species, id string) {
	b.ops = append(b.ops, func() { delete(b.repo.byID, id) })
}

func (b *fakeBatch) Len() int { return len(b.ops) }

func (b *fakeBatch) Commit(context.Context) error {
	n := len(b.repo.commits) + 1
	if b.repo.failOn == n {
		b.repo.failOn = 0
		return errCommit
	}
	for _, op := range b.ops {
		op()
	}
	b.repo.commits = append(b.repo.commits, len(b.ops))
	b.ops = nil
	return nil
}
