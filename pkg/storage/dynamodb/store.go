package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/escrow-marketplace/pkg/storage"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the Store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client                        DynamoDBAPI
	EscrowsTableName              string
	UsersTableName                string
	DisputesTableName             string
	WebsocketConnectionsTableName string
}

// New creates a new Store.
func New(client DynamoDBAPI, escrowsTable, usersTable, disputesTable, connectionsTable string) *Store {
	return &Store{
		Client:                        client,
		EscrowsTableName:              escrowsTable,
		UsersTableName:                usersTable,
		DisputesTableName:             disputesTable,
		WebsocketConnectionsTableName: connectionsTable,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

const conditionalCheckFailed = "ConditionalCheckFailed"

// isConditionFailure reports whether err is a failed condition on a single-item write.
func isConditionFailure(err error) bool {
	var condCheckFailed *types.ConditionalCheckFailedException
	return errors.As(err, &condCheckFailed)
}

// cancelledItems returns the indexes of transaction items whose condition failed.
// ok is false when err is not a cancelled transaction.
func cancelledItems(err error) (failed []int, ok bool) {
	var txc *types.TransactionCanceledException
	if !errors.As(err, &txc) {
		return nil, false
	}
	for i, reason := range txc.CancellationReasons {
		if reason.Code != nil && *reason.Code == conditionalCheckFailed {
			failed = append(failed, i)
		}
	}
	return failed, true
}

func concurrent(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, storage.ErrConcurrentModification)
}
