// Package dynamodb implements the slot store, config store, and intake
// queue/DLQ on top of AWS DynamoDB, following the teacher's idiom of
// optimistic, condition-expression-guarded writes instead of a lock
// manager.
package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoDBAPI is the slice of *dynamodb.Client this package actually calls.
// Depending on the interface rather than the concrete client is what lets
// the table tests stand a hand-written mock in for DynamoDB, the same shape
// the teacher's settle_transaction_test.go stands mocks.DynamoDBAPI in for
// — that generated mock wasn't part of the retrieval pack, so the interface
// it implies is reproduced here by hand.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store bundles every DynamoDB-backed component the core needs. Tables are
// independent; nothing here assumes a single-table design.
type Store struct {
	Client DynamoDBAPI

	SlotsTable  string
	ConfigTable string
}

// New creates a Store over the given tables.
func New(client DynamoDBAPI, slotsTable, configTable string) *Store {
	return &Store{
		Client:      client,
		SlotsTable:  slotsTable,
		ConfigTable: configTable,
	}
}

var _ DynamoDBAPI = (*dynamodb.Client)(nil)
