package storage

import "context"

// ObjectStore es el bucket donde viven las imágenes subidas para cada animal,
// bajo el prefijo {shelterId}/{animalId}/.
type ObjectStore interface {
	// DeletePrefix borra todos los objetos bajo prefix y devuelve cuántos borró.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// AnimalPrefix arma el prefijo de imágenes de un animal.
func AnimalPrefix(shelterID, animalID string) string {
	return shelterID + "/" + animalID + "/"
}
