package shelters

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("shelter not found")
	ErrAlreadyExists = errors.New("shelter already exists")
)

type Repository interface {
	GetByID(ctx context.Context, id string) (Shelter, error)
	List(ctx context.Context) ([]Shelter, error)

	// Create falla con ErrAlreadyExists si el id ya existe.
	Create(ctx context.Context, s Shelter) error
	// Put crea o reemplaza nombre, software y settings. No toca el ledger.
	Put(ctx context.Context, s Shelter) error

	// UpdateLedger falla con ErrNotFound si el shelter no existe.
	UpdateLedger(ctx context.Context, id string, l Ledger) error
	// ClearCredentials borra las credenciales del software indicado.
	ClearCredentials(ctx context.Context, id string, m ManagementSoftware) error
}
