package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/storage"
)

// GetEscrow retrieves an escrow from DynamoDB by its ID. Reads are strongly
// consistent so guards are evaluated against the latest committed status.
func (s *Store) GetEscrow(ctx context.Context, escrowID string) (*models.Escrow, error) {
	input := &dynamodb.GetItemInput{
		TableName:      aws.String(s.EscrowsTableName),
		Key:            escrowKey(escrowID),
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("escrow with ID %s: %w", escrowID, storage.ErrNotFound)
	}

	var item escrowItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal escrow: %w", err)
	}

	return item.toModel()
}
