package dynamodb

import (
	"context"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/storage"
)

// Positions of the items in the create transaction.
const (
	createEscrowItem = iota
	createReferenceItem
	createUsageItem
)

// CreateEscrow atomically writes the escrow, claims its reference and moves
// the buyer's monthly usage forward.
func (s *Store) CreateEscrow(ctx context.Context, e *models.Escrow, usage storage.UsageUpdate) error {
	escrowAV, err := attributevalue.MarshalMap(newEscrowItem(e))
	if err != nil {
		return fmt.Errorf("failed to marshal escrow: %w", err)
	}
	refAV, err := attributevalue.MarshalMap(referenceItem{ID: referenceKey(e.EscrowRef), EscrowID: e.ID, Kind: "reference"})
	if err != nil {
		return fmt.Errorf("failed to marshal escrow reference: %w", err)
	}
	usageUpdate, err := s.usageUpdate(usage)
	if err != nil {
		return err
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			createEscrowItem: {
				Put: &types.Put{
					TableName:           aws.String(s.EscrowsTableName),
					Item:                escrowAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			createReferenceItem: {
				Put: &types.Put{
					TableName:           aws.String(s.EscrowsTableName),
					Item:                refAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			createUsageItem: {
				Update: usageUpdate,
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		if failed, ok := cancelledItems(err); ok && len(failed) > 0 {
			if slices.Contains(failed, createReferenceItem) {
				return fmt.Errorf("escrow reference %s: %w", e.EscrowRef, storage.ErrDuplicateReference)
			}
			return concurrent("user usage for", usage.UserID)
		}
		return fmt.Errorf("failed to execute create escrow transaction: %w", err)
	}
	return nil
}

// usageUpdate sets the new monthly usage only if the stored usage is still
// the one the caller read.
func (s *Store) usageUpdate(u storage.UsageUpdate) (*types.Update, error) {
	update := expression.Set(expression.Name("monthly_usage"), expression.Value(u.Next))

	unchanged := expression.Name("monthly_usage.reset_month").Equal(expression.Value(u.Previous.ResetMonth)).
		And(expression.Name("monthly_usage.transaction_count").Equal(expression.Value(u.Previous.TransactionCount)))
	cond := expression.AttributeExists(expression.Name("id")).
		And(expression.Or(expression.AttributeNotExists(expression.Name("monthly_usage")), unchanged))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build usage expression: %w", err)
	}
	return &types.Update{
		TableName:                 aws.String(s.UsersTableName),
		Key:                       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: u.UserID}},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}
