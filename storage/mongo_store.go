package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"dealerhub/record"
)

// DefaultMongoBatchWrites keeps one transaction well below the server's
// transaction size limits.
const DefaultMongoBatchWrites = 1000

// MongoStore writes each kind into its own collection. A batch is inserted
// inside one multi-document transaction, so the server must run as a
// replica set.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	limit  int
}

func OpenMongo(ctx context.Context, uri, database string, limit int) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	if limit <= 0 {
		limit = DefaultMongoBatchWrites
	}
	return &MongoStore{client: client, db: client.Database(database), limit: limit}, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongodb: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongodb: %w", err)
	}
	return nil
}

func (s *MongoStore) MaxBatchWrites() int {
	return s.limit
}

func (s *MongoStore) WriteBatch(ctx context.Context, docs []record.Document) error {
	if len(docs) == 0 {
		return nil
	}

	order, grouped, err := groupForMongo(docs)
	if err != nil {
		return err
	}

	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongodb session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		for _, name := range order {
			if _, err := s.db.Collection(name).InsertMany(sessCtx, grouped[name]); err != nil {
				return nil, fmt.Errorf("insert into %s: %w", name, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("mongodb transaction: %w", err)
	}
	return nil
}

func (s *MongoStore) ListDocuments(ctx context.Context, kind record.Kind) ([]record.Document, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.db.Collection(collectionName(kind)).Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find %s documents: %w", kind, err)
	}
	defer cursor.Close(ctx)

	docs := make([]record.Document, 0, 256)
	for cursor.Next(ctx) {
		doc, err := fromMongoDocument(kind, cursor.Current)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s documents: %w", kind, err)
	}
	return docs, nil
}

func (s *MongoStore) DeleteKind(ctx context.Context, kind record.Kind) (int64, error) {
	res, err := s.db.Collection(collectionName(kind)).DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("delete %s documents: %w", kind, err)
	}
	return res.DeletedCount, nil
}

func collectionName(kind record.Kind) string {
	return string(kind) + "s"
}

// groupForMongo splits a batch by target collection, keeping first-seen
// collection order and document order inside each collection.
func groupForMongo(docs []record.Document) ([]string, map[string][]interface{}, error) {
	order := make([]string, 0, 1)
	grouped := make(map[string][]interface{}, 1)
	for _, doc := range docs {
		encoded, err := toMongoDocument(doc)
		if err != nil {
			return nil, nil, err
		}
		name := collectionName(doc.Kind)
		if _, ok := grouped[name]; !ok {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], encoded)
	}
	return order, grouped, nil
}

// toMongoDocument flattens the payload next to the document metadata.
func toMongoDocument(doc record.Document) (bson.D, error) {
	raw, err := bson.Marshal(doc.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", doc.Kind, doc.ID, err)
	}
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("flatten %s %s: %w", doc.Kind, doc.ID, err)
	}

	out := make(bson.D, 0, len(fields)+4)
	out = append(out,
		bson.E{Key: "_id", Value: doc.ID},
		bson.E{Key: "kind", Value: string(doc.Kind)},
		bson.E{Key: "createdAt", Value: doc.CreatedAt},
		bson.E{Key: "updatedAt", Value: doc.UpdatedAt},
	)
	return append(out, fields...), nil
}

type mongoMeta struct {
	ID        string    `bson:"_id"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func fromMongoDocument(kind record.Kind, raw bson.Raw) (record.Document, error) {
	var meta mongoMeta
	if err := bson.Unmarshal(raw, &meta); err != nil {
		return record.Document{}, fmt.Errorf("decode %s metadata: %w", kind, err)
	}
	payload, err := record.NewPayload(kind)
	if err != nil {
		return record.Document{}, err
	}
	if err := bson.Unmarshal(raw, payload); err != nil {
		return record.Document{}, fmt.Errorf("decode %s %s: %w", kind, meta.ID, err)
	}
	return record.Document{
		ID:        meta.ID,
		Kind:      kind,
		CreatedAt: meta.CreatedAt.UTC(),
		UpdatedAt: meta.UpdatedAt.UTC(),
		Payload:   record.Deref(payload),
	}, nil
}
