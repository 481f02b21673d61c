package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"dealerhub/record"
)

func stagedDocs(n int) []record.Document {
	docs := make([]record.Document, n)
	for i := range docs {
		docs[i] = record.Document{ID: fmt.Sprintf("doc-%d", i+1), Kind: record.KindUnit, Payload: record.Unit{}}
	}
	return docs
}

func TestUnitOfWork_EmptyCommitSkipsStore(t *testing.T) {
	t.Parallel()

	store := &memoryStore{}
	unit := NewUnitOfWork(store, 0, nil)
	ids, err := unit.Commit(context.Background())
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if ids == nil || len(ids) != 0 {
		t.Fatalf("expected empty id list, got %#v", ids)
	}
	if store.calls != 0 {
		t.Fatalf("expected store not to be called, got %d calls", store.calls)
	}
	if unit.State() != StateCommitted {
		t.Fatalf("expected committed state, got %s", unit.State())
	}
}

func TestUnitOfWork_SingleBatchWithoutCeiling(t *testing.T) {
	t.Parallel()

	store := &memoryStore{}
	unit := NewUnitOfWork(store, 0, nil)
	for _, doc := range stagedDocs(250) {
		if err := unit.Stage(doc); err != nil {
			t.Fatalf("stage: %v", err)
		}
	}

	ids, err := unit.Commit(context.Background())
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(ids) != 250 || len(store.batches) != 1 {
		t.Fatalf("expected one batch of 250, got %d ids in %d batches", len(ids), len(store.batches))
	}
	if ids[0] != "doc-1" || ids[249] != "doc-250" {
		t.Fatalf("expected ids in staging order, got %s..%s", ids[0], ids[249])
	}
}

func TestUnitOfWork_SplitsAtStoreCeiling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		storeLimit int
		unitLimit  int
		docs       int
		want       []int
	}{
		{name: "store ceiling", storeLimit: 100, docs: 250, want: []int{100, 100, 50}},
		{name: "exact multiple", storeLimit: 100, docs: 200, want: []int{100, 100}},
		{name: "configured cap below ceiling", storeLimit: 100, unitLimit: 40, docs: 90, want: []int{40, 40, 10}},
		{name: "configured cap above ceiling", storeLimit: 25, unitLimit: 40, docs: 30, want: []int{25, 5}},
		{name: "configured cap only", unitLimit: 3, docs: 7, want: []int{3, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{limit: tt.storeLimit}
			unit := NewUnitOfWork(store, tt.unitLimit, nil)
			for _, doc := range stagedDocs(tt.docs) {
				_ = unit.Stage(doc)
			}
			if _, err := unit.Commit(context.Background()); err != nil {
				t.Fatalf("commit: %v", err)
			}
			if len(store.batches) != len(tt.want) {
				t.Fatalf("expected %d batches, got %d", len(tt.want), len(store.batches))
			}
			for i, size := range tt.want {
				if len(store.batches[i]) != size {
					t.Fatalf("batch %d: expected %d documents, got %d", i+1, size, len(store.batches[i]))
				}
			}
		})
	}
}

func TestUnitOfWork_PartialFailureKeepsEarlierBatches(t *testing.T) {
	t.Parallel()

	store := &memoryStore{limit: 10, failOn: 2}
	unit := NewUnitOfWork(store, 0, nil)
	for _, doc := range stagedDocs(25) {
		_ = unit.Stage(doc)
	}

	ids, err := unit.Commit(context.Background())
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if len(ids) != 10 {
		t.Fatalf("expected only the first sub-batch to be confirmed, got %d ids", len(ids))
	}
	if store.calls != 2 {
		t.Fatalf("expected commit to stop after the failed sub-batch, got %d calls", store.calls)
	}
	if unit.State() != StateFailed {
		t.Fatalf("expected failed state, got %s", unit.State())
	}
}

func TestUnitOfWork_ClosedAfterCommit(t *testing.T) {
	t.Parallel()

	unit := NewUnitOfWork(&memoryStore{}, 0, nil)
	_ = unit.Stage(stagedDocs(1)[0])
	if _, err := unit.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := unit.Stage(stagedDocs(1)[0]); !errors.Is(err, errUnitClosed) {
		t.Fatalf("expected closed unit error on stage, got %v", err)
	}
	if _, err := unit.Commit(context.Background()); !errors.Is(err, errUnitClosed) {
		t.Fatalf("expected closed unit error on second commit, got %v", err)
	}
}
