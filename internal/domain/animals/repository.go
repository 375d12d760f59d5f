package animals

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("animal not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Repository interface {
	// ListByShelter devuelve todos los animales del shelter, de todos los buckets,
	// activos e inactivos.
	ListByShelter(ctx context.Context, shelterID string) ([]Animal, error)

	// ListTombstones devuelve las fotos borradas por usuarios, indexadas por animal.
	ListTombstones(ctx context.Context, shelterID string) (map[string][]Tombstone, error)

	// RemovePhoto reemplaza las fotos del animal y registra el tombstone,
	// todo junto. ErrNotFound si el animal no existe.
	RemovePhoto(ctx context.Context, shelterID string, species Species, animalID string, photos []Photo, t Tombstone) error

	NewBatch(shelterID string) Batch
}

// Batch acumula escrituras que se confirman juntas en Commit.
// Commit es atómico: o se aplican todas las operaciones o ninguna.
// Update y Deactivate sobre un id inexistente hacen fallar el Commit con
// ErrNotFound; Delete de un id inexistente no es error.
type Batch interface {
	Insert(a Animal)
	Update(species Species, id string, p Patch)
	Deactivate(species Species, id string, at time.Time)
	Delete(species Species, id string)

	Len() int
	Commit(ctx context.Context) error
}
