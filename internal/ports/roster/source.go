package roster

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"shelter-roster-sync/internal/domain/animals"
)

// Errores de fetch. Los adapters los envuelven con %w; el orquestador decide con errors.Is.
var (
	// ErrAuth: el proveedor rechazó la credencial (401/403).
	ErrAuth = errors.New("roster: provider rejected credentials")
	// ErrTransport: red, timeout o status no-2xx distinto de auth.
	ErrTransport = errors.New("roster: provider unreachable")
	// ErrParse: el payload no se pudo decodificar.
	ErrParse = errors.New("roster: malformed provider payload")

	ErrUnknownProvider    = errors.New("roster: unknown provider")
	ErrMissingCredentials = errors.New("roster: missing credentials")
)

// Credentials es la unión de las credenciales de los proveedores soportados.
// ShelterLuv usa APIKey; ASM usa Username/Password/Account.
type Credentials struct {
	APIKey   string
	Username string
	Password string
	Account  string
}

type FetchOptions struct {
	// OnlyPrimaryPhoto deja sólo la primera foto de cada animal.
	OnlyPrimaryPhoto bool
}

// Source entrega el roster actual de un shelter como registros canónicos.
// Un fetch sin animales es válido y significa "el shelter no tiene animales".
type Source interface {
	Name() string
	DeactivationMode() animals.DeactivationMode
	Fetch(ctx context.Context, creds Credentials, opts FetchOptions) ([]animals.Animal, error)
}

// Registry resuelve un Source por nombre de proveedor (case-insensitive).
type Registry struct {
	sources map[string]Source
}

func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[string]Source, len(sources))}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

func (r *Registry) Register(s Source) {
	if s == nil {
		return
	}
	r.sources[strings.ToLower(s.Name())] = s
}

func (r *Registry) Get(name string) (Source, error) {
	if r != nil {
		if s, ok := r.sources[strings.ToLower(strings.TrimSpace(name))]; ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

// Names devuelve los proveedores registrados, ordenados.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.sources))
	for n := range r.sources {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
