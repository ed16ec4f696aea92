package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

// DynamoDBAPI defines the subset of the DynamoDB client used by the store.
// Having an interface here lets tests substitute a mock client.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store implements the Storage interface using AWS DynamoDB. Every write is a
// single-item conditional operation; the store never uses multi-item
// transactions, so cross-row flows must be composed as ordered sagas by the
// caller.
type Store struct {
	Client             DynamoDBAPI
	ListingsTableName  string
	PlayersTableName   string
	InventoryTableName string
	TradesTableName    string
	QuotaTableName     string
	CardsTableName     string
}

// New creates a new Store.
func New(client DynamoDBAPI, listingsTable, playersTable, inventoryTable, tradesTable, quotaTable, cardsTable string) *Store {
	return &Store{
		Client:             client,
		ListingsTableName:  listingsTable,
		PlayersTableName:   playersTable,
		InventoryTableName: inventoryTable,
		TradesTableName:    tradesTable,
		QuotaTableName:     quotaTable,
		CardsTableName:     cardsTable,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)
