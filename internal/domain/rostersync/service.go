package rostersync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"shelter-roster-sync/internal/domain/animals"
	"shelter-roster-sync/internal/domain/reconcile"
	"shelter-roster-sync/internal/domain/shelters"
	"shelter-roster-sync/internal/platform/logger"
	"shelter-roster-sync/internal/ports/roster"
	"shelter-roster-sync/internal/ports/storage"
)

var (
	// ErrInvalidTrigger: faltan shelterId, proveedor o credenciales.
	ErrInvalidTrigger = errors.New("rostersync: invalid trigger")
	// ErrFetch: el proveedor no respondió o respondió basura. No se escribió nada.
	ErrFetch = errors.New("rostersync: fetch failed")
	// ErrStore: falló una lectura o escritura del store. Los batches previos quedan.
	ErrStore = errors.New("rostersync: store failed")
)

// Trigger pide un sync de un shelter contra un proveedor.
type Trigger struct {
	ShelterID   string
	Provider    string
	Credentials roster.Credentials

	// nil => se usa el setting guardado del shelter.
	OnlyPrimaryPhoto *bool
}

// Result resume una corrida.
type Result struct {
	RunID     string
	ShelterID string
	Provider  string
	Mode      animals.DeactivationMode

	Fetched       int
	Changes       shelters.SyncChanges
	Flushes       int
	ImagesDeleted int

	// CredentialCleared: el proveedor rechazó la credencial y se borró.
	CredentialCleared bool

	StartedAt  time.Time
	FinishedAt time.Time
}

type Options struct {
	Sources   *roster.Registry
	Animals   animals.Repository
	Shelters  *shelters.Service
	Objects   storage.ObjectStore // opcional
	BatchSize int
	Log       logger.Logger
}

// Service orquesta un sync: fetch, reconcile, dos fases de escritura y ledger.
// No reintenta; la redelivery es responsabilidad de quien dispara.
type Service struct {
	sources   *roster.Registry
	animals   animals.Repository
	shelters  *shelters.Service
	objects   storage.ObjectStore
	engine    *reconcile.Engine
	batchSize int
	log       logger.Logger

	now      func() time.Time
	newRunID func() string
}

func NewService(opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = logger.NewNop()
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = reconcile.DefaultMaxOps
	}
	return &Service{
		sources:   opts.Sources,
		animals:   opts.Animals,
		shelters:  opts.Shelters,
		objects:   opts.Objects,
		engine:    reconcile.NewEngine(log),
		batchSize: batch,
		log:       log,
		now:       time.Now,
		newRunID:  func() string { return ulid.Make().String() },
	}
}

// TriggerFromStore arma el trigger con el software y credenciales guardados.
func (s *Service) TriggerFromStore(ctx context.Context, shelterID string) (Trigger, error) {
	sh, err := s.shelters.GetByID(ctx, shelterID)
	if errors.Is(err, shelters.ErrNotFound) {
		return Trigger{}, fmt.Errorf("%w: shelter %q not registered", ErrInvalidTrigger, shelterID)
	}
	if err != nil {
		return Trigger{}, fmt.Errorf("%w: %w", ErrStore, err)
	}
	t, ok := TriggerFor(sh)
	if !ok {
		return Trigger{}, fmt.Errorf("%w: shelter %q has no usable credentials", ErrInvalidTrigger, shelterID)
	}
	return t, nil
}

// TriggerFor deriva el trigger de un shelter registrado. false si el software
// es desconocido o faltan credenciales.
func TriggerFor(sh shelters.Shelter) (Trigger, bool) {
	provider := sh.ManagementSoftware.Provider()
	if provider == "" || !sh.Settings.HasCredentials(sh.ManagementSoftware) {
		return Trigger{}, false
	}
	return Trigger{
		ShelterID: sh.ID,
		Provider:  provider,
		Credentials: roster.Credentials{
			APIKey:   sh.Settings.APIKey,
			Username: sh.Settings.ASMUsername,
			Password: sh.Settings.ASMPassword,
			Account:  sh.Settings.ASMAccount,
		},
	}, true
}

func (s *Service) Run(ctx context.Context, t Trigger) (Result, error) {
	t.ShelterID = strings.TrimSpace(t.ShelterID)
	if t.ShelterID == "" {
		return Result{}, fmt.Errorf("%w: shelterId required", ErrInvalidTrigger)
	}
	src, err := s.sources.Get(t.Provider)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidTrigger, err)
	}

	res := Result{
		RunID:     s.newRunID(),
		ShelterID: t.ShelterID,
		Provider:  src.Name(),
		Mode:      src.DeactivationMode(),
		StartedAt: s.now().UTC(),
	}
	log := s.log.With(map[string]any{
		"run_id":     res.RunID,
		"shelter_id": res.ShelterID,
		"provider":   res.Provider,
	})
	log.Info("sync started", nil)

	settings, err := s.shelters.Settings(ctx, t.ShelterID)
	if err != nil {
		log.Warn("could not read shelter settings, using defaults", map[string]any{"error": err.Error()})
		settings = shelters.DefaultSettings()
	}
	opts := roster.FetchOptions{OnlyPrimaryPhoto: settings.OnlyPrimaryPhoto}
	if t.OnlyPrimaryPhoto != nil {
		opts.OnlyPrimaryPhoto = *t.OnlyPrimaryPhoto
	}

	incoming, err := src.Fetch(ctx, t.Credentials, opts)
	switch {
	case err == nil:
	case errors.Is(err, roster.ErrMissingCredentials):
		return res, fmt.Errorf("%w: %w", ErrInvalidTrigger, err)
	case errors.Is(err, roster.ErrAuth):
		res.CredentialCleared = s.clearCredentials(ctx, log, t.ShelterID, src.Name())
		res.FinishedAt = s.now().UTC()
		log.Warn("provider rejected credentials, run ended without writes", map[string]any{
			"error":              err.Error(),
			"credential_cleared": res.CredentialCleared,
		})
		return res, nil
	default:
		log.Error("fetch failed", map[string]any{"error": err.Error()})
		return res, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	res.Fetched = len(incoming)

	stored, err := s.animals.ListByShelter(ctx, t.ShelterID)
	if err != nil {
		log.Error("load stored roster failed", map[string]any{"error": err.Error()})
		return res, fmt.Errorf("%w: load roster: %w", ErrStore, err)
	}
	tombstones, err := s.animals.ListTombstones(ctx, t.ShelterID)
	if err != nil {
		log.Error("load tombstones failed", map[string]any{"error": err.Error()})
		return res, fmt.Errorf("%w: load tombstones: %w", ErrStore, err)
	}

	cs := s.engine.Reconcile(incoming, reconcile.NewSnapshot(stored, res.Mode), tombstones)
	res.Changes = cs.Summary()

	upserts := reconcile.NewBatchWriter(s.animals, t.ShelterID,
		reconcile.WithMaxOps(s.batchSize),
		reconcile.WithLogger(log),
	)
	if err := upserts.WritePhase(ctx, cs.UpsertOps()); err != nil {
		res.Flushes = upserts.Flushes()
		log.Error("insert/update phase failed", map[string]any{"error": err.Error(), "committed_ops": upserts.Committed()})
		return res, fmt.Errorf("%w: upserts: %w", ErrStore, err)
	}

	removals := reconcile.NewBatchWriter(s.animals, t.ShelterID,
		reconcile.WithMaxOps(s.batchSize),
		reconcile.WithLogger(log),
		reconcile.WithOnFlush(s.cleanupImages(log, t.ShelterID, &res.ImagesDeleted)),
	)
	err = removals.WritePhase(ctx, cs.DeactivationOps(s.now().UTC()))
	res.Flushes = upserts.Flushes() + removals.Flushes()
	if err != nil {
		log.Error("deactivation phase failed", map[string]any{"error": err.Error(), "committed_ops": removals.Committed()})
		return res, fmt.Errorf("%w: deactivations: %w", ErrStore, err)
	}

	if _, err := s.shelters.RecordSuccess(ctx, t.ShelterID, res.Changes); err != nil {
		log.Error("ledger update failed", map[string]any{"error": err.Error()})
		return res, fmt.Errorf("%w: ledger: %w", ErrStore, err)
	}

	res.FinishedAt = s.now().UTC()
	log.Info("sync finished", map[string]any{
		"fetched":        res.Fetched,
		"added":          len(res.Changes.Added),
		"updated":        len(res.Changes.Updated),
		"removed":        len(res.Changes.Removed),
		"flushes":        res.Flushes,
		"images_deleted": res.ImagesDeleted,
		"duration_ms":    res.FinishedAt.Sub(res.StartedAt).Milliseconds(),
	})
	return res, nil
}

func (s *Service) clearCredentials(ctx context.Context, log logger.Logger, shelterID, provider string) bool {
	m, ok := shelters.SoftwareForProvider(provider)
	if !ok {
		return false
	}
	if err := s.shelters.ClearCredentials(ctx, shelterID, m); err != nil {
		log.Error("clear credentials failed", map[string]any{"error": err.Error()})
		return false
	}
	return true
}

// cleanupImages borra las imágenes de los animales ya borrados o desactivados
// en el store. Best-effort: un error se loguea y no corta la fase.
func (s *Service) cleanupImages(log logger.Logger, shelterID string, deleted *int) reconcile.FlushFunc {
	return func(ctx context.Context, committed []reconcile.Op) {
		if s.objects == nil {
			return
		}
		for _, op := range committed {
			if op.Kind != reconcile.OpDelete && op.Kind != reconcile.OpDeactivate {
				continue
			}
			n, err := s.objects.DeletePrefix(ctx, storage.AnimalPrefix(shelterID, op.ID))
			if err != nil {
				log.Warn("image cleanup failed", map[string]any{"animal_id": op.ID, "error": err.Error()})
				continue
			}
			*deleted += n
		}
	}
}
