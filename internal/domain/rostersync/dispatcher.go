package rostersync

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"shelter-roster-sync/internal/domain/shelters"
	"shelter-roster-sync/internal/platform/logger"
)

const DefaultConcurrency = 4

// Runner es lo que el dispatcher necesita de Service.
type Runner interface {
	Run(ctx context.Context, t Trigger) (Result, error)
}

// DispatchReport resume un dispatch. Un fallo de un shelter no corta al resto.
type DispatchReport struct {
	Total     int               `json:"total"`
	Succeeded []string          `json:"succeeded"`
	Skipped   []string          `json:"skipped"`
	Failed    map[string]string `json:"failed"`
}

// Dispatcher corre un sync por cada shelter registrado, con concurrencia
// acotada. Dos corridas sobre el mismo shelter no se coordinan.
type Dispatcher struct {
	shelters    *shelters.Service
	runner      Runner
	concurrency int
	log         logger.Logger
}

func NewDispatcher(sheltersSvc *shelters.Service, runner Runner, concurrency int, log logger.Logger) *Dispatcher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{shelters: sheltersSvc, runner: runner, concurrency: concurrency, log: log}
}

func (d *Dispatcher) DispatchAll(ctx context.Context) (DispatchReport, error) {
	list, err := d.shelters.ListSyncable(ctx)
	if err != nil {
		return DispatchReport{}, err
	}

	rep := DispatchReport{
		Total:     len(list),
		Succeeded: []string{},
		Skipped:   []string{},
		Failed:    map[string]string{},
	}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for _, sh := range list {
		t, ok := TriggerFor(sh)
		if !ok {
			d.log.Info("shelter skipped: no credentials", map[string]any{"shelter_id": sh.ID})
			rep.Skipped = append(rep.Skipped, sh.ID)
			continue
		}
		g.Go(func() error {
			_, err := d.runner.Run(ctx, t)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rep.Failed[t.ShelterID] = err.Error()
				return nil
			}
			rep.Succeeded = append(rep.Succeeded, t.ShelterID)
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(rep.Succeeded)
	d.log.Info("dispatch finished", map[string]any{
		"total":     rep.Total,
		"succeeded": len(rep.Succeeded),
		"skipped":   len(rep.Skipped),
		"failed":    len(rep.Failed),
	})
	return rep, nil
}
