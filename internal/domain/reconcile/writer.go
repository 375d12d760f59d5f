package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shelter-roster-sync/internal/domain/animals"
	"shelter-roster-sync/internal/platform/logger"
)

// DefaultMaxOps es el máximo de operaciones por batch que acepta el store.
const DefaultMaxOps = 499

var ErrUnknownOp = errors.New("reconcile: unknown op kind")

type OpKind int

const (
	OpInsert OpKind = iota
	OpUpdate
	OpDeactivate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDeactivate:
		return "deactivate"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", int(k))
	}
}

// Op es una escritura sobre un único animal.
type Op struct {
	Kind    OpKind
	ID      string
	Species animals.Species

	Animal animals.Animal // OpInsert
	Patch  animals.Patch  // OpUpdate
	At     time.Time      // OpDeactivate
}

// FlushFunc recibe las operaciones de un batch ya confirmado.
type FlushFunc func(ctx context.Context, committed []Op)

type WriterOption func(*BatchWriter)

func WithMaxOps(n int) WriterOption {
	return func(w *BatchWriter) {
		if n > 0 {
			w.maxOps = n
		}
	}
}

func WithOnFlush(fn FlushFunc) WriterOption {
	return func(w *BatchWriter) { w.onFlush = fn }
}

func WithLogger(l logger.Logger) WriterOption {
	return func(w *BatchWriter) {
		if l != nil {
			w.log = l
		}
	}
}

// BatchWriter acumula operaciones y las confirma en batches de a lo sumo
// maxOps. Cada batch es atómico; no hay transacción entre batches.
// No es seguro para uso concurrente.
type BatchWriter struct {
	repo      animals.Repository
	shelterID string
	maxOps    int
	onFlush   FlushFunc
	log       logger.Logger

	batch   animals.Batch
	pending []Op

	flushes   int
	committed int
}

func NewBatchWriter(repo animals.Repository, shelterID string, opts ...WriterOption) *BatchWriter {
	w := &BatchWriter{
		repo:      repo,
		shelterID: shelterID,
		maxOps:    DefaultMaxOps,
		log:       logger.NewNop(),
	}
	for _, o := range opts {
		o(w)
	}
	w.batch = repo.NewBatch(shelterID)
	return w
}

// Stage agrega op al batch pendiente y lo confirma si llegó al máximo.
func (w *BatchWriter) Stage(ctx context.Context, op Op) error {
	switch op.Kind {
	case OpInsert:
		w.batch.Insert(op.Animal)
	case OpUpdate:
		w.batch.Update(op.Species, op.ID, op.Patch)
	case OpDeactivate:
		w.batch.Deactivate(op.Species, op.ID, op.At)
	case OpDelete:
		w.batch.Delete(op.Species, op.ID)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownOp, op.Kind)
	}
	w.pending = append(w.pending, op)
	return w.FlushIfFull(ctx)
}

func (w *BatchWriter) FlushIfFull(ctx context.Context) error {
	if w.batch.Len() < w.maxOps {
		return nil
	}
	return w.flush(ctx)
}

// FlushRemaining confirma lo que quede pendiente. Se llama al cerrar cada fase.
func (w *BatchWriter) FlushRemaining(ctx context.Context) error {
	if w.batch.Len() == 0 {
		return nil
	}
	return w.flush(ctx)
}

// WritePhase stagea todas las ops y cierra la fase. Al primer error corta:
// los batches anteriores quedan confirmados.
func (w *BatchWriter) WritePhase(ctx context.Context, ops []Op) error {
	for _, op := range ops {
		if err := w.Stage(ctx, op); err != nil {
			return err
		}
	}
	return w.FlushRemaining(ctx)
}

// Flushes devuelve cuántos batches se confirmaron.
func (w *BatchWriter) Flushes() int { return w.flushes }

// Committed devuelve cuántas operaciones se confirmaron.
func (w *BatchWriter) Committed() int { return w.committed }

func (w *BatchWriter) flush(ctx context.Context) error {
	n := w.batch.Len()
	ops := w.pending

	err := w.batch.Commit(ctx)
	w.batch = w.repo.NewBatch(w.shelterID)
	w.pending = nil
	if err != nil {
		return fmt.Errorf("commit batch %d (%d ops): %w", w.flushes+1, n, err)
	}

	w.flushes++
	w.committed += n
	w.log.Debug("batch committed", map[string]any{"batch": w.flushes, "ops": n})

	if w.onFlush != nil {
		w.onFlush(ctx, ops)
	}
	return nil
}
