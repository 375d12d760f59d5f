package reconcile

import (
	"sort"
	"time"

	"shelter-roster-sync/internal/domain/animals"
	"shelter-roster-sync/internal/domain/shelters"
)

// Update es un patch sobre un registro existente, en su bucket original.
type Update struct {
	ID      string
	Species animals.Species
	Patch   animals.Patch
}

// Deactivation es un animal guardado que ya no viene en el roster.
type Deactivation struct {
	ID      string
	Species animals.Species
}

// ChangeSet es el resultado puro de un Reconcile; todavía no se escribió nada.
type ChangeSet struct {
	Mode          animals.DeactivationMode
	Inserts       []animals.Animal
	Updates       []Update
	Deactivations []Deactivation
}

func (c ChangeSet) Empty() bool {
	return len(c.Inserts) == 0 && len(c.Updates) == 0 && len(c.Deactivations) == 0
}

// Summary arma el lastSyncChanges del ledger, con ids ordenados.
func (c ChangeSet) Summary() shelters.SyncChanges {
	out := shelters.SyncChanges{
		Added:   make([]string, 0, len(c.Inserts)),
		Updated: make([]string, 0, len(c.Updates)),
		Removed: make([]string, 0, len(c.Deactivations)),
	}
	for _, a := range c.Inserts {
		out.Added = append(out.Added, a.ID)
	}
	for _, u := range c.Updates {
		out.Updated = append(out.Updated, u.ID)
	}
	for _, d := range c.Deactivations {
		out.Removed = append(out.Removed, d.ID)
	}
	sort.Strings(out.Added)
	sort.Strings(out.Updated)
	sort.Strings(out.Removed)
	return out
}

// UpsertOps son las operaciones de la primera fase: inserts y luego updates.
func (c ChangeSet) UpsertOps() []Op {
	ops := make([]Op, 0, len(c.Inserts)+len(c.Updates))
	for _, a := range c.Inserts {
		ops = append(ops, Op{Kind: OpInsert, ID: a.ID, Species: a.Species, Animal: a})
	}
	for _, u := range c.Updates {
		ops = append(ops, Op{Kind: OpUpdate, ID: u.ID, Species: u.Species, Patch: u.Patch})
	}
	return ops
}

// DeactivationOps son las operaciones de la segunda fase, según el modo.
func (c ChangeSet) DeactivationOps(at time.Time) []Op {
	kind := OpDelete
	if c.Mode == animals.DeactivationDeactivate {
		kind = OpDeactivate
	}
	ops := make([]Op, 0, len(c.Deactivations))
	for _, d := range c.Deactivations {
		ops = append(ops, Op{Kind: kind, ID: d.ID, Species: d.Species, At: at})
	}
	return ops
}
