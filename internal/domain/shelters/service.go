package shelters

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (Shelter, error) {
	return s.repo.GetByID(ctx, id)
}

// Settings devuelve los settings guardados o DefaultSettings si el shelter no existe.
func (s *Service) Settings(ctx context.Context, id string) (Settings, error) {
	sh, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, err
	}
	return sh.Settings, nil
}

// ListSyncable devuelve los shelters con management software conocido, ordenados por id.
func (s *Service) ListSyncable(ctx context.Context) ([]Shelter, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Shelter, 0, len(all))
	for _, sh := range all {
		if sh.ManagementSoftware.Provider() != "" {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type PutInput struct {
	Name               string
	ManagementSoftware ManagementSoftware
	Settings           Settings
}

// Put registra o actualiza el shelter con sus credenciales.
func (s *Service) Put(ctx context.Context, id string, in PutInput) (Shelter, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Shelter{}, ErrInvalidInput
	}
	if in.ManagementSoftware != "" && in.ManagementSoftware.Provider() == "" {
		return Shelter{}, ErrInvalidInput
	}

	now := s.now()
	sh := Shelter{
		ID:                 id,
		Name:               strings.TrimSpace(in.Name),
		ManagementSoftware: in.ManagementSoftware,
		Settings:           trimSettings(in.Settings),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Put(ctx, sh); err != nil {
		return Shelter{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// RecordSuccess escribe el ledger del sync: las tres marcas de tiempo se
// actualizan siempre juntas y lastSyncChanges se sobreescribe.
// Si el shelter no existe se crea con el ledger.
func (s *Service) RecordSuccess(ctx context.Context, id string, changes SyncChanges) (Ledger, error) {
	if strings.TrimSpace(id) == "" {
		return Ledger{}, ErrInvalidInput
	}

	now := s.now().UTC()
	l := Ledger{
		LastSync:        &now,
		LastCatSync:     &now,
		LastDogSync:     &now,
		LastSyncChanges: normalizeChanges(changes),
	}

	err := s.repo.UpdateLedger(ctx, id, l)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Ledger{}, err
	}

	err = s.repo.Create(ctx, Shelter{
		ID:        id,
		Settings:  DefaultSettings(),
		Ledger:    l,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, ErrAlreadyExists) {
		// otro writer lo creó entre el update y el create
		return l, s.repo.UpdateLedger(ctx, id, l)
	}
	if err != nil {
		return Ledger{}, err
	}
	return l, nil
}

// ClearCredentials borra la credencial rechazada por el proveedor.
// Si el shelter no existe no hay nada que limpiar.
func (s *Service) ClearCredentials(ctx context.Context, id string, m ManagementSoftware) error {
	err := s.repo.ClearCredentials(ctx, id, m)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func normalizeChanges(c SyncChanges) SyncChanges {
	return SyncChanges{
		Added:   sortedCopy(c.Added),
		Updated: sortedCopy(c.Updated),
		Removed: sortedCopy(c.Removed),
	}
}

func sortedCopy(in []string) []string {
	out := append(make([]string, 0, len(in)), in...)
	sort.Strings(out)
	return out
}

func trimSettings(st Settings) Settings {
	st.APIKey = strings.TrimSpace(st.APIKey)
	st.ASMUsername = strings.TrimSpace(st.ASMUsername)
	st.ASMAccount = strings.TrimSpace(st.ASMAccount)
	return st
}
