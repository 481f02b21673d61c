package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"dealerhub/record"
)

type fakeDynamo struct {
	transactCalls [][]types.TransactWriteItem
	transactErr   error
	items         []map[string]types.AttributeValue
	deleted       int
	tableStatus   types.TableStatus
}

func (f *fakeDynamo) DescribeTable(context.Context, *dynamodb.DescribeTableInput, ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableStatus: f.tableStatus}}, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	if f.transactErr != nil {
		return nil, f.transactErr
	}
	f.transactCalls = append(f.transactCalls, in.TransactItems)
	for _, item := range in.TransactItems {
		f.items = append(f.items, item.Put.Item)
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	want := in.ExpressionAttributeValues[":kind"].(*types.AttributeValueMemberS).Value
	var out []map[string]types.AttributeValue
	for _, item := range f.items {
		if kind, ok := item["kind"].(*types.AttributeValueMemberS); ok && kind.Value == want {
			out = append(out, item)
		}
	}
	return &dynamodb.ScanOutput{Items: out}, nil
}

func (f *fakeDynamo) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	for _, requests := range in.RequestItems {
		f.deleted += len(requests)
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func TestDynamoStore_LimitIsCappedAtServiceMaximum(t *testing.T) {
	t.Parallel()

	if got := NewDynamoStore(&fakeDynamo{}, "records", 0).MaxBatchWrites(); got != DynamoMaxTransactItems {
		t.Fatalf("expected default limit %d, got %d", DynamoMaxTransactItems, got)
	}
	if got := NewDynamoStore(&fakeDynamo{}, "records", 500).MaxBatchWrites(); got != DynamoMaxTransactItems {
		t.Fatalf("expected limit capped at %d, got %d", DynamoMaxTransactItems, got)
	}
	if got := NewDynamoStore(&fakeDynamo{}, "records", 40).MaxBatchWrites(); got != 40 {
		t.Fatalf("expected configured limit 40, got %d", got)
	}
}

func TestDynamoStore_WriteBatchUsesOneTransaction(t *testing.T) {
	t.Parallel()

	client := &fakeDynamo{}
	store := NewDynamoStore(client, "records", 0)
	if err := store.WriteBatch(context.Background(), testDocuments()); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if len(client.transactCalls) != 1 || len(client.transactCalls[0]) != 3 {
		t.Fatalf("expected one transaction with 3 puts, got %d calls", len(client.transactCalls))
	}

	put := client.transactCalls[0][0].Put
	if *put.TableName != "records" || *put.ConditionExpression != "attribute_not_exists(id)" {
		t.Fatalf("unexpected put: %+v", put)
	}
	if id := put.Item["id"].(*types.AttributeValueMemberS).Value; id != "dealer-1" {
		t.Fatalf("unexpected item id %q", id)
	}
	if _, ok := put.Item["name"]; !ok {
		t.Fatalf("expected payload attributes next to metadata, got %v", put.Item)
	}

	unitItem := client.transactCalls[0][1].Put.Item
	if _, ok := unitItem["installationDate"]; ok {
		t.Fatalf("expected absent unit dates to be omitted")
	}
}

func TestDynamoStore_RejectsOversizedBatch(t *testing.T) {
	t.Parallel()

	client := &fakeDynamo{}
	store := NewDynamoStore(client, "records", 2)
	if err := store.WriteBatch(context.Background(), testDocuments()); err == nil {
		t.Fatalf("expected oversized batch to be rejected")
	}
	if len(client.transactCalls) != 0 {
		t.Fatalf("expected no transaction call")
	}
}

func TestDynamoStore_TransactionFailure(t *testing.T) {
	t.Parallel()

	client := &fakeDynamo{transactErr: errors.New("TransactionCanceledException")}
	store := NewDynamoStore(client, "records", 0)
	if err := store.WriteBatch(context.Background(), testDocuments()); err == nil {
		t.Fatalf("expected transaction error")
	}
}

func TestDynamoStore_ListAndDeleteKind(t *testing.T) {
	t.Parallel()

	client := &fakeDynamo{}
	store := NewDynamoStore(client, "records", 0)
	ctx := context.Background()
	if err := store.WriteBatch(ctx, testDocuments()); err != nil {
		t.Fatalf("write batch: %v", err)
	}

	dealers, err := store.ListDocuments(ctx, record.KindDealer)
	if err != nil {
		t.Fatalf("list dealers: %v", err)
	}
	if len(dealers) != 2 || dealers[0].ID != "dealer-1" {
		t.Fatalf("unexpected dealers: %+v", dealers)
	}
	dealer := dealers[0].Payload.(record.Dealer)
	if dealer.Name != "Acme Agri" || len(dealer.Notes) != 1 || !dealer.Notes[0].Timestamp.Equal(testNow) {
		t.Fatalf("unexpected decoded dealer: %+v", dealer)
	}

	deleted, err := store.DeleteKind(ctx, record.KindDealer)
	if err != nil {
		t.Fatalf("delete dealers: %v", err)
	}
	if deleted != 2 || client.deleted != 2 {
		t.Fatalf("expected 2 deletes, got %d", deleted)
	}
}

func TestDynamoStore_PingRequiresActiveTable(t *testing.T) {
	t.Parallel()

	if err := NewDynamoStore(&fakeDynamo{tableStatus: types.TableStatusActive}, "records", 0).Ping(context.Background()); err != nil {
		t.Fatalf("ping active table: %v", err)
	}
	if err := NewDynamoStore(&fakeDynamo{tableStatus: types.TableStatusCreating}, "records", 0).Ping(context.Background()); err == nil {
		t.Fatalf("expected error for table that is still being created")
	}
}
