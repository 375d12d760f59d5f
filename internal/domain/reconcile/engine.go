package reconcile

import (
	"sort"
	"time"

	"shelter-roster-sync/internal/domain/animals"
	"shelter-roster-sync/internal/platform/logger"
)

// TombstoneIndex agrupa tombstones por id de animal.
type TombstoneIndex map[string][]animals.Tombstone

// Snapshot es el roster guardado de un shelter, indexado por id, junto con el
// modo de desactivación que se aplica en esta corrida.
type Snapshot struct {
	mode animals.DeactivationMode
	byID map[string]animals.Animal
}

// NewSnapshot indexa los registros guardados. Si un id aparece en más de un
// bucket gana el primero en orden cat, dog, other.
func NewSnapshot(stored []animals.Animal, mode animals.DeactivationMode) Snapshot {
	rank := map[animals.Species]int{}
	for i, s := range animals.AllSpecies {
		rank[s] = i
	}
	sorted := append([]animals.Animal(nil), stored...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rank[sorted[i].Species] < rank[sorted[j].Species]
	})

	byID := make(map[string]animals.Animal, len(sorted))
	for _, a := range sorted {
		if _, dup := byID[a.ID]; dup {
			continue
		}
		byID[a.ID] = a
	}
	return Snapshot{
		mode: animals.ParseDeactivationMode(string(mode), animals.DeactivationDelete),
		byID: byID,
	}
}

func (s Snapshot) Mode() animals.DeactivationMode { return s.mode }

func (s Snapshot) Len() int { return len(s.byID) }

// scopeIDs son los ids candidatos a desactivación: en soft-delete sólo los activos.
func (s Snapshot) scopeIDs() []string {
	out := make([]string, 0, len(s.byID))
	for id, a := range s.byID {
		if s.mode == animals.DeactivationDeactivate && !a.IsActive {
			continue
		}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Engine calcula el ChangeSet entre el roster del proveedor y el guardado.
// No toca el store.
type Engine struct {
	log logger.Logger
	now func() time.Time
}

func NewEngine(log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{log: log, now: time.Now}
}

func (e *Engine) Reconcile(incoming []animals.Animal, snap Snapshot, tombstones TombstoneIndex) ChangeSet {
	now := e.now().UTC()
	cs := ChangeSet{Mode: snap.mode}
	seen := make(map[string]struct{}, len(incoming))

	for _, in := range incoming {
		if err := animals.Validate(in); err != nil {
			continue
		}
		if _, dup := seen[in.ID]; dup {
			e.log.Warn("duplicate animal id in roster, keeping first", map[string]any{"animal_id": in.ID})
			continue
		}
		seen[in.ID] = struct{}{}

		stored, ok := snap.byID[in.ID]
		if !ok {
			cs.Inserts = append(cs.Inserts, newRecord(in, tombstones[in.ID], now))
			continue
		}

		if stored.Species != in.Species {
			e.log.Warn("species changed upstream, keeping original bucket", map[string]any{
				"animal_id": in.ID,
				"stored":    string(stored.Species),
				"incoming":  string(in.Species),
			})
		}

		merged := animals.MergeForUpdate(stored.Photos, in.Photos, tombstones[in.ID])
		p := animals.PatchFrom(in, merged)
		p.Activate = true
		if !p.Differs(stored) {
			continue
		}
		cs.Updates = append(cs.Updates, Update{ID: in.ID, Species: stored.Species, Patch: p})
	}

	for _, id := range snap.scopeIDs() {
		if _, ok := seen[id]; ok {
			continue
		}
		cs.Deactivations = append(cs.Deactivations, Deactivation{ID: id, Species: snap.byID[id].Species})
	}

	return cs
}

func newRecord(in animals.Animal, tombstones []animals.Tombstone, now time.Time) animals.Animal {
	a := in
	a.Photos = animals.FilterDeletable(in.Photos, tombstones)
	a.Notes, a.Logs = animals.SeedHistory(now)
	a.IsActive = true
	a.CreatedAt = now
	a.UpdatedAt = now
	return a
}
