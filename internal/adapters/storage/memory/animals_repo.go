package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"shelter-roster-sync/internal/domain/animals"
)

type animalKey struct {
	shelterID string
	species   animals.Species
	id        string
}

type AnimalRepo struct {
	mu    sync.RWMutex
	byKey map[animalKey]animals.Animal
	// shelterID -> animalID -> tombstones
	tombstones map[string]map[string][]animals.Tombstone
	now        func() time.Time
}

func NewAnimalRepo() *AnimalRepo {
	return &AnimalRepo{
		byKey:      make(map[animalKey]animals.Animal),
		tombstones: make(map[string]map[string][]animals.Tombstone),
		now:        time.Now,
	}
}

func (r *AnimalRepo) ListByShelter(ctx context.Context, shelterID string) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for k, a := range r.byKey {
		if k.shelterID == shelterID {
			out = append(out, cloneAnimal(a))
		}
	}
	// Orden estable (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Species != out[j].Species {
			return out[i].Species < out[j].Species
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *AnimalRepo) ListTombstones(ctx context.Context, shelterID string) (map[string][]animals.Tombstone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]animals.Tombstone, len(r.tombstones[shelterID]))
	for id, ts := range r.tombstones[shelterID] {
		out[id] = append([]animals.Tombstone(nil), ts...)
	}
	return out, nil
}

func (r *AnimalRepo) RemovePhoto(ctx context.Context, shelterID string, species animals.Species, animalID string, photos []animals.Photo, t animals.Tombstone) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := animalKey{shelterID: shelterID, species: species, id: animalID}
	a, ok := r.byKey[k]
	if !ok {
		return animals.ErrNotFound
	}
	a.Photos = append([]animals.Photo{}, photos...)
	a.UpdatedAt = r.now()
	r.byKey[k] = a

	if r.tombstones[shelterID] == nil {
		r.tombstones[shelterID] = make(map[string][]animals.Tombstone)
	}
	r.tombstones[shelterID][animalID] = append(r.tombstones[shelterID][animalID], t)
	return nil
}

// PutTombstone registra un tombstone sin tocar el animal (seed de tests y dev).
func (r *AnimalRepo) PutTombstone(shelterID string, t animals.Tombstone) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tombstones[shelterID] == nil {
		r.tombstones[shelterID] = make(map[string][]animals.Tombstone)
	}
	r.tombstones[shelterID][t.AnimalID] = append(r.tombstones[shelterID][t.AnimalID], t)
}

func (r *AnimalRepo) NewBatch(shelterID string) animals.Batch {
	return &animalBatch{repo: r, shelterID: strings.TrimSpace(shelterID)}
}

type batchOp func(view map[animalKey]*animals.Animal, get func(animalKey) (*animals.Animal, bool), now time.Time) error

// animalBatch aplica las operaciones sobre una vista y sólo la vuelca al
// store si todas salieron bien.
type animalBatch struct {
	repo      *AnimalRepo
	shelterID string
	ops       []batchOp
}

func (b *animalBatch) key(species animals.Species, id string) animalKey {
	return animalKey{shelterID: b.shelterID, species: species, id: id}
}

func (b *animalBatch) Insert(a animals.Animal) {
	a = cloneAnimal(a)
	b.ops = append(b.ops, func(view map[animalKey]*animals.Animal, _ func(animalKey) (*animals.Animal, bool), now time.Time) error {
		a.ShelterID = b.shelterID
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
		view[b.key(a.Species, a.ID)] = &a
		return nil
	})
}

func (b *animalBatch) Update(species animals.Species, id string, p animals.Patch) {
	b.ops = append(b.ops, func(view map[animalKey]*animals.Animal, get func(animalKey) (*animals.Animal, bool), now time.Time) error {
		k := b.key(species, id)
		cur, ok := get(k)
		if !ok {
			return animals.ErrNotFound
		}
		next := p.Apply(*cur)
		next.UpdatedAt = now
		view[k] = &next
		return nil
	})
}

func (b *animalBatch) Deactivate(species animals.Species, id string, at time.Time) {
	b.ops = append(b.ops, func(view map[animalKey]*animals.Animal, get func(animalKey) (*animals.Animal, bool), _ time.Time) error {
		k := b.key(species, id)
		cur, ok := get(k)
		if !ok {
			return animals.ErrNotFound
		}
		next := *cur
		next.IsActive = false
		next.UpdatedAt = at
		view[k] = &next
		return nil
	})
}

func (b *animalBatch) Delete(species animals.Species, id string) {
	b.ops = append(b.ops, func(view map[animalKey]*animals.Animal, _ func(animalKey) (*animals.Animal, bool), _ time.Time) error {
		view[b.key(species, id)] = nil
		return nil
	})
}

func (b *animalBatch) Len() int { return len(b.ops) }

func (b *animalBatch) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r := b.repo
	r.mu.Lock()
	defer r.mu.Unlock()

	// nil en la vista = borrado
	view := make(map[animalKey]*animals.Animal)
	get := func(k animalKey) (*animals.Animal, bool) {
		if a, ok := view[k]; ok {
			return a, a != nil
		}
		a, ok := r.byKey[k]
		return &a, ok
	}

	now := r.now()
	for _, op := range b.ops {
		if err := op(view, get, now); err != nil {
			return err
		}
	}

	for k, a := range view {
		if a == nil {
			delete(r.byKey, k)
			continue
		}
		r.byKey[k] = *a
	}
	b.ops = nil
	return nil
}

func cloneAnimal(a animals.Animal) animals.Animal {
	a.Photos = append([]animals.Photo{}, a.Photos...)
	a.Notes = append([]animals.Note{}, a.Notes...)
	a.Logs = append([]animals.Log{}, a.Logs...)
	return a
}
