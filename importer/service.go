package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dealerhub/internal/logging"
	"dealerhub/record"
)

// Request is one import invocation.
type Request struct {
	Kind record.Kind
	CSV  string
	// Source names the uploaded file for logging only.
	Source string
}

type Service struct {
	store         Store
	logger        *zap.Logger
	now           func() time.Time
	newID         func() string
	workers       int
	maxBatch      int
	delimiter     string
	commitTimeout time.Duration
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithWorkers sets how many rows are validated and transformed concurrently.
func WithWorkers(workers int) Option {
	return func(s *Service) { s.workers = workers }
}

// WithMaxBatchWrites caps the size of one atomic sub-batch.
func WithMaxBatchWrites(limit int) Option {
	return func(s *Service) { s.maxBatch = limit }
}

func WithListDelimiter(delimiter string) Option {
	return func(s *Service) { s.delimiter = delimiter }
}

// WithCommitTimeout bounds the commit step; 0 leaves it unbounded.
func WithCommitTimeout(timeout time.Duration) Option {
	return func(s *Service) { s.commitTimeout = timeout }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		workers:   4,
		delimiter: DefaultListDelimiter,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// rowOutcome is the result of processing one row: either a staged document
// or a row error.
type rowOutcome struct {
	doc    *record.Document
	rowErr *RowError
}

// Import parses, validates and transforms every row of req.CSV and commits
// the valid ones atomically. The returned Result is always populated; the
// error is non-nil only for fatal failures (configuration, unreadable input,
// commit), never for individual bad rows.
func (s *Service) Import(ctx context.Context, req Request) (Result, error) {
	started := time.Now()
	logger := s.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	logger = logger.With(zap.String("kind", req.Kind.String()), zap.String("source", req.Source))
	agg := newAggregator(req.Kind)

	schema, err := SchemaFor(req.Kind)
	if err != nil {
		return agg.fail(err), err
	}
	schema = schema.WithListDelimiter(s.delimiter)

	if err := s.checkStore(ctx); err != nil {
		logger.Error("storage unavailable, import aborted", zap.Error(err))
		return agg.fail(err), err
	}

	table, err := Tokenize(req.CSV)
	if err != nil {
		logger.Warn("csv input rejected", zap.Error(err))
		return agg.fail(err), err
	}

	outcomes := s.processRows(schema, table.Rows)

	unit := NewUnitOfWork(s.store, s.maxBatch, logger)
	for i, outcome := range outcomes {
		agg.countRow()
		if outcome.rowErr != nil {
			logger.Debug("row rejected",
				zap.Int("row", outcome.rowErr.RowIndex),
				zap.String("reason", string(outcome.rowErr.Kind)),
				zap.String("message", outcome.rowErr.Message),
			)
			agg.addError(*outcome.rowErr)
			continue
		}
		if err := unit.Stage(*outcome.doc); err != nil {
			agg.addError(RowError{
				RowIndex: table.Rows[i].Index,
				Kind:     ErrorKindTransform,
				Message:  err.Error(),
				RawRow:   table.Rows[i].Raw,
			})
		}
	}

	commitCtx := ctx
	if s.commitTimeout > 0 {
		var cancel context.CancelFunc
		commitCtx, cancel = context.WithTimeout(ctx, s.commitTimeout)
		defer cancel()
	}
	ids, err := unit.Commit(commitCtx)
	agg.committed(ids)
	if err != nil {
		logger.Error("import commit failed",
			zap.Int("staged", unit.Len()),
			zap.Int("committed", len(ids)),
			zap.Error(err),
		)
		result := agg.fail(err)
		return result, err
	}

	result := agg.finish()
	logger.Info("import finished",
		zap.Int("total_rows", result.TotalRows),
		zap.Int("imported", result.ImportedCount),
		zap.Int("errors", result.ErrorCount),
		zap.Duration("duration", time.Since(started)),
	)
	return result, nil
}

func (s *Service) checkStore(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("%w: no store configured", ErrConfig)
	}
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil
}

// processRows runs validation and transformation for every row. Rows are
// independent, so they are spread over the worker pool; outcomes keep the
// input order.
func (s *Service) processRows(schema Schema, rows []Row) []rowOutcome {
	outcomes := make([]rowOutcome, len(rows))

	var group errgroup.Group
	group.SetLimit(s.workers)
	for i := range rows {
		group.Go(func() error {
			outcomes[i] = s.processRow(schema, rows[i])
			return nil
		})
	}
	_ = group.Wait()

	return outcomes
}

func (s *Service) processRow(schema Schema, row Row) rowOutcome {
	if row.ParseErr != "" {
		return rowOutcome{rowErr: &RowError{
			RowIndex: row.Index,
			Kind:     ErrorKindParse,
			Message:  row.ParseErr,
			RawRow:   row.Raw,
		}}
	}

	values, violations := Validate(schema, row)
	if len(violations) > 0 {
		return rowOutcome{rowErr: &RowError{
			RowIndex: row.Index,
			Kind:     ErrorKindValidation,
			Message:  joinViolations(violations),
			RawRow:   row.Raw,
			Fields:   violations,
		}}
	}

	doc, err := Transform(schema, schema.build(values), Meta{
		ID:    s.newID(),
		Now:   s.now(),
		NewID: s.newID,
	})
	if err != nil {
		return rowOutcome{rowErr: &RowError{
			RowIndex: row.Index,
			Kind:     ErrorKindTransform,
			Message:  fmt.Sprintf("transform failed: %v", err),
			RawRow:   row.Raw,
		}}
	}
	return rowOutcome{doc: &doc}
}
