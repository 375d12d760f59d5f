package router

import (
	"context"
	"database/sql"
	"fmt"

	"shelter-roster-sync/internal/adapters/roster/asm"
	"shelter-roster-sync/internal/adapters/roster/shelterluv"
	"shelter-roster-sync/internal/adapters/storage/gcs"
	mem "shelter-roster-sync/internal/adapters/storage/memory"
	pg "shelter-roster-sync/internal/adapters/storage/postgres"
	"shelter-roster-sync/internal/config"
	"shelter-roster-sync/internal/domain/animals"
	"shelter-roster-sync/internal/domain/rostersync"
	"shelter-roster-sync/internal/domain/shelters"
	"shelter-roster-sync/internal/platform/logger"
	"shelter-roster-sync/internal/ports/roster"
	"shelter-roster-sync/internal/ports/storage"
)

type Options struct {
	Config config.Config
	Logger logger.Logger

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: bucket de imágenes. nil => memoria.
	Objects storage.ObjectStore

	// Opcional: fuentes ya armadas (tests). nil => se arman desde Config.
	Sources *roster.Registry
}

// Services agrupa los services por módulo; lo comparten la API y el CLI.
type Services struct {
	Animals    *animals.Service
	Shelters   *shelters.Service
	Sync       *rostersync.Service
	Dispatcher *rostersync.Dispatcher
}

// NewSources arma el registry con ShelterLuv y ASM según la config.
func NewSources(cfg config.Config, log logger.Logger) (*roster.Registry, error) {
	sl, err := shelterluv.NewClient(shelterluv.Config{
		BaseURL:      cfg.ShelterLuvBaseURL,
		PageSize:     cfg.ShelterLuvPageSize,
		Timeout:      cfg.HTTPTimeout,
		Deactivation: cfg.ShelterLuvDeactivation,
		Log:          log,
	})
	if err != nil {
		return nil, err
	}
	a := asm.NewClient(asm.Config{
		BaseURL:      cfg.ASMBaseURL,
		Timeout:      cfg.HTTPTimeout,
		Deactivation: cfg.ASMDeactivation,
		Log:          log,
	})
	return roster.NewRegistry(sl, a), nil
}

func NewServices(opts Options) (Services, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	var (
		animalRepo  animals.Repository
		shelterRepo shelters.Repository
	)
	if opts.DB != nil {
		animalRepo = pg.NewAnimalsRepo(opts.DB)
		shelterRepo = pg.NewSheltersRepo(opts.DB)
	} else {
		animalRepo = mem.NewAnimalRepo()
		shelterRepo = mem.NewShelterRepo()
	}

	objects := opts.Objects
	if objects == nil {
		objects = mem.NewObjectStore()
	}

	sources := opts.Sources
	if sources == nil {
		var err error
		if sources, err = NewSources(opts.Config, log); err != nil {
			return Services{}, fmt.Errorf("roster sources: %w", err)
		}
	}

	sheltersSvc := shelters.NewService(shelterRepo)
	syncSvc := rostersync.NewService(rostersync.Options{
		Sources:   sources,
		Animals:   animalRepo,
		Shelters:  sheltersSvc,
		Objects:   objects,
		BatchSize: opts.Config.BatchSize,
		Log:       log,
	})

	return Services{
		Animals:    animals.NewService(animalRepo),
		Shelters:   sheltersSvc,
		Sync:       syncSvc,
		Dispatcher: rostersync.NewDispatcher(sheltersSvc, syncSvc, opts.Config.DispatchConcurrency, log),
	}, nil
}

// Open arma Options desde la config: Postgres si hay DB_DSN (con migración),
// GCS si hay STORAGE_BUCKET. closeFn libera lo que se haya abierto.
func Open(ctx context.Context, cfg config.Config, log logger.Logger) (opts Options, closeFn func(), err error) {
	if log == nil {
		log = logger.NewNop()
	}
	opts = Options{Config: cfg, Logger: log}
	var closers []func() error
	closeFn = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return Options{}, func() {}, fmt.Errorf("open postgres: %w", err)
		}
		closers = append(closers, db.Close)
		if err := pg.Migrate(ctx, db); err != nil {
			closeFn()
			return Options{}, func() {}, err
		}
		opts.DB = db
		log.Info("store: postgres", nil)
	} else {
		log.Warn("store: in-memory (DB_DSN not set)", nil)
	}

	if cfg.StorageBucket != "" {
		objects, err := gcs.New(ctx, cfg.StorageBucket)
		if err != nil {
			closeFn()
			return Options{}, func() {}, fmt.Errorf("open bucket: %w", err)
		}
		closers = append(closers, objects.Close)
		opts.Objects = objects
		log.Info("images: gcs", map[string]any{"bucket": cfg.StorageBucket})
	}

	return opts, closeFn, nil
}
