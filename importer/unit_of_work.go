package importer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"dealerhub/record"
)

// Store is the storage collaborator. WriteBatch must be all-or-nothing.
// MaxBatchWrites reports the largest batch one atomic write accepts, or 0
// when the backend has no ceiling.
type Store interface {
	Ping(ctx context.Context) error
	WriteBatch(ctx context.Context, docs []record.Document) error
	MaxBatchWrites() int
}

// UnitState is the lifecycle position of a UnitOfWork.
type UnitState string

const (
	StateCollecting UnitState = "collecting"
	StateCommitting UnitState = "committing"
	StateCommitted  UnitState = "committed"
	StateFailed     UnitState = "failed"
)

var errUnitClosed = errors.New("unit of work no longer accepts records")

// UnitOfWork stages documents for one import and commits them in as few
// atomic sub-batches as the store allows.
type UnitOfWork struct {
	store  Store
	limit  int
	logger *zap.Logger

	staged []record.Document
	state  UnitState
}

// NewUnitOfWork creates a collecting unit. limit caps the sub-batch size on
// top of the store's own ceiling; 0 means no extra cap.
func NewUnitOfWork(store Store, limit int, logger *zap.Logger) *UnitOfWork {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnitOfWork{
		store:  store,
		limit:  limit,
		logger: logger,
		staged: make([]record.Document, 0, 64),
		state:  StateCollecting,
	}
}

func (u *UnitOfWork) State() UnitState {
	return u.state
}

func (u *UnitOfWork) Len() int {
	return len(u.staged)
}

func (u *UnitOfWork) Stage(doc record.Document) error {
	if u.state != StateCollecting {
		return fmt.Errorf("%w (state %s)", errUnitClosed, u.state)
	}
	u.staged = append(u.staged, doc)
	return nil
}

// batchSize resolves the effective sub-batch size; 0 means one batch.
func (u *UnitOfWork) batchSize() int {
	size := u.store.MaxBatchWrites()
	if u.limit > 0 && (size <= 0 || u.limit < size) {
		size = u.limit
	}
	return size
}

// Commit writes every staged document and returns the ids whose sub-batch
// was confirmed. With zero staged documents the store is not called.
func (u *UnitOfWork) Commit(ctx context.Context) ([]string, error) {
	if u.state != StateCollecting {
		return nil, fmt.Errorf("%w (state %s)", errUnitClosed, u.state)
	}
	if len(u.staged) == 0 {
		u.state = StateCommitted
		return []string{}, nil
	}
	u.state = StateCommitting

	batches := chunkDocuments(u.staged, u.batchSize())
	committed := make([]string, 0, len(u.staged))
	for i, batch := range batches {
		if err := u.store.WriteBatch(ctx, batch); err != nil {
			u.state = StateFailed
			u.logger.Error("sub-batch commit failed",
				zap.Int("batch", i+1),
				zap.Int("batches", len(batches)),
				zap.Int("committed", len(committed)),
				zap.Error(err),
			)
			return committed, fmt.Errorf("%w: sub-batch %d of %d: %w", ErrPersistence, i+1, len(batches), err)
		}
		for _, doc := range batch {
			committed = append(committed, doc.ID)
		}
		u.logger.Debug("sub-batch committed",
			zap.Int("batch", i+1),
			zap.Int("batches", len(batches)),
			zap.Int("documents", len(batch)),
		)
	}

	u.state = StateCommitted
	return committed, nil
}

func chunkDocuments(docs []record.Document, size int) [][]record.Document {
	if size <= 0 || size >= len(docs) {
		return [][]record.Document{docs}
	}
	chunks := make([][]record.Document, 0, (len(docs)+size-1)/size)
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		chunks = append(chunks, docs[start:end])
	}
	return chunks
}
