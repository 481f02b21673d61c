package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"dealerhub/record"
)

// memoryStore is an in-memory Store that records every batch it accepts.
type memoryStore struct {
	mu      sync.Mutex
	limit   int
	pingErr error
	// failOn makes the n-th WriteBatch call (1-based) fail; 0 never fails.
	failOn int
	// block makes WriteBatch wait for the context to end and return its error.
	block       bool
	sawDeadline bool
	calls       int
	batches     [][]record.Document
}

func (s *memoryStore) Ping(context.Context) error {
	return s.pingErr
}

func (s *memoryStore) WriteBatch(ctx context.Context, docs []record.Document) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := ctx.Deadline(); ok {
		s.sawDeadline = true
	}
	s.calls++
	if s.failOn > 0 && s.calls == s.failOn {
		return errors.New("write rejected")
	}
	batch := make([]record.Document, len(docs))
	copy(batch, docs)
	s.batches = append(s.batches, batch)
	return nil
}

func (s *memoryStore) MaxBatchWrites() int {
	return s.limit
}

func (s *memoryStore) stored() []record.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []record.Document
	for _, batch := range s.batches {
		out = append(out, batch...)
	}
	return out
}

func sequentialIDs(prefix string) func() string {
	var counter atomic.Int64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, counter.Add(1))
	}
}
