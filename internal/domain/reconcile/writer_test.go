package reconcile

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelter-roster-sync/internal/domain/animals"
)

func insertOps(n int) []Op {
	ops := make([]Op, 0, n)
	for i := range n {
		a := rec("id-"+strconv.Itoa(i), "x")
		ops = append(ops, Op{Kind: OpInsert, ID: a.ID, Species: a.Species, Animal: a})
	}
	return ops
}

func TestBatchWriter_BatchBoundary(t *testing.T) {
	repo := newFakeRepo()
	var flushed []int
	w := NewBatchWriter(repo, "S1",
		WithMaxOps(499),
		WithOnFlush(func(_ context.Context, ops []Op) { flushed = append(flushed, len(ops)) }),
	)

	require.NoError(t, w.WritePhase(context.Background(), insertOps(1000)))

	assert.Equal(t, []int{499, 499, 2}, repo.commits)
	assert.Equal(t, []int{499, 499, 2}, flushed)
	assert.Equal(t, 3, w.Flushes())
	assert.Equal(t, 1000, w.Committed())
	assert.Len(t, repo.byID, 1000)
}

func TestBatchWriter_FlushRemainingOnEmptyIsNoop(t *testing.T) {
	repo := newFakeRepo()
	w := NewBatchWriter(repo, "S1")
	require.NoError(t, w.FlushRemaining(context.Background()))
	assert.Empty(t, repo.commits)
}

func TestBatchWriter_ExactMultipleFlushesOnStage(t *testing.T) {
	repo := newFakeRepo()
	w := NewBatchWriter(repo, "S1", WithMaxOps(2))
	ctx := context.Background()

	for _, op := range insertOps(4) {
		require.NoError(t, w.Stage(ctx, op))
	}
	assert.Equal(t, []int{2, 2}, repo.commits)
	require.NoError(t, w.FlushRemaining(ctx))
	assert.Equal(t, []int{2, 2}, repo.commits, "no empty trailing commit")
}

func TestBatchWriter_FailedBatchAbortsPhaseAndKeepsPrevious(t *testing.T) {
	repo := newFakeRepo()
	repo.failOn = 2
	w := NewBatchWriter(repo, "S1", WithMaxOps(3))

	err := w.WritePhase(context.Background(), insertOps(10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errCommit))

	// el primer batch quedó confirmado; el resto de la fase no se escribió
	assert.Equal(t, []int{3}, repo.commits)
	assert.Len(t, repo.byID, 3)
	assert.Equal(t, 3, w.Committed())
}

func TestBatchWriter_PhasesAreIndependent(t *testing.T) {
	stored := []animals.Animal{rec("A", "Rex"), rec("B", "Mia")}
	repo := newFakeRepo(stored...)
	cs := newTestEngine().Reconcile([]animals.Animal{rec("A", "Rexy"), rec("C", "Tom")},
		NewSnapshot(stored, animals.DeactivationDelete), nil)

	w := NewBatchWriter(repo, "S1")
	require.NoError(t, w.WritePhase(context.Background(), cs.UpsertOps()))

	repo.failOn = len(repo.commits) + 1
	require.Error(t, w.WritePhase(context.Background(), cs.DeactivationOps(t0)))

	// la fase 1 no se revierte
	assert.Equal(t, "Rexy", repo.byID["A"].Name)
	assert.Contains(t, repo.byID, "C")
	assert.Contains(t, repo.byID, "B")
}

func TestBatchWriter_UnknownOp(t *testing.T) {
	w := NewBatchWriter(newFakeRepo(), "S1")
	err := w.Stage(context.Background(), Op{Kind: OpKind(42)})
	assert.ErrorIs(t, err, ErrUnknownOp)
}
