package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"dealerhub/record"
)

const (
	BackendSQLite   = "sqlite"
	BackendMongo    = "mongo"
	BackendDynamoDB = "dynamodb"
)

var (
	ErrUnknownBackend = errors.New("unknown storage backend")
	// ErrUnavailable wraps any failure to reach the configured backend.
	ErrUnavailable = errors.New("storage backend unavailable")
)

// Backend is a document store the importer can commit to and the CLI and
// web layer can read from.
type Backend interface {
	Ping(ctx context.Context) error
	WriteBatch(ctx context.Context, docs []record.Document) error
	MaxBatchWrites() int
	ListDocuments(ctx context.Context, kind record.Kind) ([]record.Document, error)
	DeleteKind(ctx context.Context, kind record.Kind) (int64, error)
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend        string
	MaxBatchWrites int

	SQLitePath string

	MongoURI      string
	MongoDatabase string

	DynamoTable    string
	DynamoRegion   string
	DynamoEndpoint string
}

func Open(ctx context.Context, opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendSQLite:
		if strings.TrimSpace(opts.SQLitePath) == "" {
			return nil, fmt.Errorf("%w: sqlite path is empty", ErrUnavailable)
		}
		store, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return store, nil
	case BackendMongo:
		store, err := OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase, opts.MaxBatchWrites)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return store, nil
	case BackendDynamoDB:
		store, err := OpenDynamo(ctx, opts.DynamoTable, opts.DynamoRegion, opts.DynamoEndpoint, opts.MaxBatchWrites)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

func sortDocuments(docs []record.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
}
