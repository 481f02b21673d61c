package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"dealerhub/record"
)

// DynamoMaxTransactItems is the service limit for one TransactWriteItems call.
const DynamoMaxTransactItems = 100

const dynamoMaxBatchDelete = 25

// DynamoAPI is the part of *dynamodb.Client the store uses.
type DynamoAPI interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynamoStore keeps all kinds in one table keyed by the string attribute id.
type DynamoStore struct {
	client DynamoAPI
	table  string
	limit  int
}

func NewDynamoStore(client DynamoAPI, table string, limit int) *DynamoStore {
	if limit <= 0 || limit > DynamoMaxTransactItems {
		limit = DynamoMaxTransactItems
	}
	return &DynamoStore{client: client, table: table, limit: limit}
}

// OpenDynamo builds a client from the default AWS credential chain. A non-empty
// endpoint points the client at a local emulator.
func OpenDynamo(ctx context.Context, table, region, endpoint string, limit int) (*DynamoStore, error) {
	var cfgOpts []func(*awscfg.LoadOptions) error
	if region != "" {
		cfgOpts = append(cfgOpts, awscfg.WithRegion(region))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewDynamoStore(client, table, limit), nil
}

func (s *DynamoStore) Close() error {
	return nil
}

func (s *DynamoStore) Ping(ctx context.Context) error {
	out, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	if err != nil {
		return fmt.Errorf("describe table %s: %w", s.table, err)
	}
	if out.Table != nil && out.Table.TableStatus != types.TableStatusActive {
		return fmt.Errorf("table %s is %s", s.table, out.Table.TableStatus)
	}
	return nil
}

func (s *DynamoStore) MaxBatchWrites() int {
	return s.limit
}

func (s *DynamoStore) WriteBatch(ctx context.Context, docs []record.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if len(docs) > s.limit {
		return fmt.Errorf("batch of %d exceeds the %d item transaction limit", len(docs), s.limit)
	}

	items := make([]types.TransactWriteItem, 0, len(docs))
	for _, doc := range docs {
		item, err := toDynamoItem(doc)
		if err != nil {
			return err
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.table),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		})
	}

	if _, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		return fmt.Errorf("dynamodb TransactWriteItems failed: %w", err)
	}
	return nil
}

func (s *DynamoStore) ListDocuments(ctx context.Context, kind record.Kind) ([]record.Document, error) {
	items, err := s.scanKind(ctx, kind, false)
	if err != nil {
		return nil, err
	}

	docs := make([]record.Document, 0, len(items))
	for _, item := range items {
		doc, err := fromDynamoItem(kind, item)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	sortDocuments(docs)
	return docs, nil
}

func (s *DynamoStore) DeleteKind(ctx context.Context, kind record.Kind) (int64, error) {
	items, err := s.scanKind(ctx, kind, true)
	if err != nil {
		return 0, err
	}

	var deleted int64
	for start := 0; start < len(items); start += dynamoMaxBatchDelete {
		end := min(start+dynamoMaxBatchDelete, len(items))
		requests := make([]types.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: map[string]types.AttributeValue{"id": item["id"]}},
			})
		}
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.table: requests},
		})
		if err != nil {
			return deleted, fmt.Errorf("dynamodb BatchWriteItem failed: %w", err)
		}
		if pending := len(out.UnprocessedItems[s.table]); pending > 0 {
			return deleted + int64(len(requests)-pending), fmt.Errorf("dynamodb left %d delete(s) unprocessed", pending)
		}
		deleted += int64(len(requests))
	}
	return deleted, nil
}

func (s *DynamoStore) scanKind(ctx context.Context, kind record.Kind, keysOnly bool) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.ScanInput{
		TableName:                 aws.String(s.table),
		FilterExpression:          aws.String("#kind = :kind"),
		ExpressionAttributeNames:  map[string]string{"#kind": "kind"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":kind": &types.AttributeValueMemberS{Value: string(kind)}},
	}
	if keysOnly {
		input.ProjectionExpression = aws.String("id")
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb Scan failed: %w", err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

func toDynamoItem(doc record.Document) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(doc.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s %s: %w", doc.Kind, doc.ID, err)
	}
	item["id"] = &types.AttributeValueMemberS{Value: doc.ID}
	item["kind"] = &types.AttributeValueMemberS{Value: string(doc.Kind)}
	item["createdAt"] = &types.AttributeValueMemberS{Value: doc.CreatedAt.UTC().Format(time.RFC3339Nano)}
	item["updatedAt"] = &types.AttributeValueMemberS{Value: doc.UpdatedAt.UTC().Format(time.RFC3339Nano)}
	return item, nil
}

type dynamoMeta struct {
	ID        string `dynamodbav:"id"`
	CreatedAt string `dynamodbav:"createdAt"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

func fromDynamoItem(kind record.Kind, item map[string]types.AttributeValue) (record.Document, error) {
	var meta dynamoMeta
	if err := attributevalue.UnmarshalMap(item, &meta); err != nil {
		return record.Document{}, fmt.Errorf("unmarshal %s metadata: %w", kind, err)
	}
	payload, err := record.NewPayload(kind)
	if err != nil {
		return record.Document{}, err
	}
	if err := attributevalue.UnmarshalMap(item, payload); err != nil {
		return record.Document{}, fmt.Errorf("unmarshal %s %s: %w", kind, meta.ID, err)
	}

	doc := record.Document{ID: meta.ID, Kind: kind, Payload: record.Deref(payload)}
	if doc.CreatedAt, err = time.Parse(time.RFC3339Nano, meta.CreatedAt); err != nil {
		return record.Document{}, fmt.Errorf("parse createdAt %q: %w", meta.CreatedAt, err)
	}
	if doc.UpdatedAt, err = time.Parse(time.RFC3339Nano, meta.UpdatedAt); err != nil {
		return record.Document{}, fmt.Errorf("parse updatedAt %q: %w", meta.UpdatedAt, err)
	}
	return doc, nil
}
