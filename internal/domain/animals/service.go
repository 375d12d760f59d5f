package animals

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Service expone el roster guardado a la API y registra borrados de fotos.
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

// List devuelve los animales del shelter ordenados por especie e id.
// Con activeOnly se omiten los desactivados.
func (s *Service) List(ctx context.Context, shelterID string, activeOnly bool) ([]Animal, error) {
	if strings.TrimSpace(shelterID) == "" {
		return nil, ErrInvalidInput
	}
	all, err := s.repo.ListByShelter(ctx, shelterID)
	if err != nil {
		return nil, err
	}
	out := make([]Animal, 0, len(all))
	for _, a := range all {
		if activeOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Species != out[j].Species {
			return out[i].Species < out[j].Species
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Service) Get(ctx context.Context, shelterID, animalID string) (Animal, error) {
	all, err := s.repo.ListByShelter(ctx, shelterID)
	if err != nil {
		return Animal{}, err
	}
	for _, a := range all {
		if a.ID == animalID {
			return a, nil
		}
	}
	return Animal{}, ErrNotFound
}

// DeletePhoto quita la foto del animal y deja un tombstone con su URL para que
// el próximo sync no la vuelva a traer.
func (s *Service) DeletePhoto(ctx context.Context, shelterID, animalID, photoID string) (Animal, error) {
	if strings.TrimSpace(photoID) == "" {
		return Animal{}, ErrInvalidInput
	}
	a, err := s.Get(ctx, shelterID, animalID)
	if err != nil {
		return Animal{}, err
	}

	var removed *Photo
	kept := make([]Photo, 0, len(a.Photos))
	for i := range a.Photos {
		if a.Photos[i].ID == photoID && removed == nil {
			removed = &a.Photos[i]
			continue
		}
		kept = append(kept, a.Photos[i])
	}
	if removed == nil {
		return Animal{}, ErrNotFound
	}

	t := Tombstone{AnimalID: a.ID, URL: removed.URL, DeletedAt: s.now().UTC()}
	if err := s.repo.RemovePhoto(ctx, shelterID, a.Species, a.ID, kept, t); err != nil {
		return Animal{}, err
	}
	a.Photos = kept
	return a, nil
}
