package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "shelter-roster-sync/docs"
	"shelter-roster-sync/internal/domain/animals"
	"shelter-roster-sync/internal/domain/rostersync"
	"shelter-roster-sync/internal/domain/shelters"
	"shelter-roster-sync/internal/middleware"
	"shelter-roster-sync/internal/platform/logger"
)

func NewRouter(opts Options) (http.Handler, error) {
	svcs, err := NewServices(opts)
	if err != nil {
		return nil, err
	}
	return NewRouterWith(svcs, opts.Logger), nil
}

// NewRouterWith monta las rutas sobre services ya armados.
func NewRouterWith(svcs Services, log logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Rutas por módulo
	shelters.RegisterRoutes(r, svcs.Shelters)
	animals.RegisterRoutes(r, svcs.Animals)
	rostersync.RegisterRoutes(r, svcs.Sync, svcs.Dispatcher)

	return r
}
