package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"shelter-roster-sync/internal/domain/shelters"
)

type shelterRepo struct {
	mu   sync.RWMutex
	byID map[string]shelters.Shelter
}

func NewShelterRepo() shelters.Repository {
	return &shelterRepo{
		byID: make(map[string]shelters.Shelter),
	}
}

func (r *shelterRepo) GetByID(ctx context.Context, id string) (shelters.Shelter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return shelters.Shelter{}, shelters.ErrNotFound
	}
	return cloneShelter(s), nil
}

func (r *shelterRepo) List(ctx context.Context) ([]shelters.Shelter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]shelters.Shelter, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, cloneShelter(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *shelterRepo) Create(ctx context.Context, s shelters.Shelter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(s.ID) == "" {
		return errors.New("shelter id required")
	}
	if _, exists := r.byID[s.ID]; exists {
		return shelters.ErrAlreadyExists
	}
	r.byID[s.ID] = cloneShelter(s)
	return nil
}

func (r *shelterRepo) Put(ctx context.Context, s shelters.Shelter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(s.ID) == "" {
		return errors.New("shelter id required")
	}
	if old, exists := r.byID[s.ID]; exists {
		s.Ledger = old.Ledger
		s.CreatedAt = old.CreatedAt
	}
	r.byID[s.ID] = cloneShelter(s)
	return nil
}

func (r *shelterRepo) UpdateLedger(ctx context.Context, id string, l shelters.Ledger) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return shelters.ErrNotFound
	}
	s.Ledger = l
	r.byID[id] = cloneShelter(s)
	return nil
}

func (r *shelterRepo) ClearCredentials(ctx context.Context, id string, m shelters.ManagementSoftware) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return shelters.ErrNotFound
	}
	switch m {
	case shelters.SoftwareShelterLuv:
		s.Settings.APIKey = ""
	case shelters.SoftwareShelterManager:
		s.Settings.ASMUsername = ""
		s.Settings.ASMPassword = ""
		s.Settings.ASMAccount = ""
	}
	r.byID[id] = s
	return nil
}

func cloneShelter(s shelters.Shelter) shelters.Shelter {
	c := s.Ledger.LastSyncChanges
	s.Ledger.LastSyncChanges = shelters.SyncChanges{
		Added:   append([]string{}, c.Added...),
		Updated: append([]string{}, c.Updated...),
		Removed: append([]string{}, c.Removed...),
	}
	return s
}
