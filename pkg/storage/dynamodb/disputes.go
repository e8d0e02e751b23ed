package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/storage"
)

// Positions of the items in the dispute transactions.
const (
	disputeTxItem = iota
	escrowTxItem
)

// GetDispute retrieves a dispute document by its ID.
func (s *Store) GetDispute(ctx context.Context, disputeID string) (*models.Dispute, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.DisputesTableName),
		Key:            escrowKey(disputeID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get dispute from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("dispute with ID %s: %w", disputeID, storage.ErrNotFound)
	}

	var item disputeItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dispute: %w", err)
	}
	return item.toModel()
}

// OpenDispute writes the new dispute and moves the escrow to disputed in one transaction.
func (s *Store) OpenDispute(ctx context.Context, d *models.Dispute, t *models.Transition) error {
	disputeAV, err := attributevalue.MarshalMap(newDisputeItem(d))
	if err != nil {
		return fmt.Errorf("failed to marshal dispute: %w", err)
	}
	escrowUpdate, err := s.transitionUpdate(t)
	if err != nil {
		return err
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			disputeTxItem: {
				Put: &types.Put{
					TableName:           aws.String(s.DisputesTableName),
					Item:                disputeAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			escrowTxItem: {Update: escrowUpdate},
		},
	}
	return s.writeDisputeTx(ctx, input, d, t)
}

// AssignDispute replaces the dispute document if nobody else changed it and it is not resolved.
func (s *Store) AssignDispute(ctx context.Context, d *models.Dispute, expectedVersion int64) error {
	put, err := s.disputePut(d, expectedVersion)
	if err != nil {
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 put.TableName,
		Item:                      put.Item,
		ConditionExpression:       put.ConditionExpression,
		ExpressionAttributeNames:  put.ExpressionAttributeNames,
		ExpressionAttributeValues: put.ExpressionAttributeValues,
	})
	if err != nil {
		if isConditionFailure(err) {
			return concurrent("dispute", d.ID)
		}
		return fmt.Errorf("failed to assign dispute %s: %w", d.ID, err)
	}
	return nil
}

// ResolveDispute records the resolution and applies the escrow transition in one transaction.
func (s *Store) ResolveDispute(ctx context.Context, d *models.Dispute, expectedVersion int64, t *models.Transition) error {
	put, err := s.disputePut(d, expectedVersion)
	if err != nil {
		return err
	}
	escrowUpdate, err := s.transitionUpdate(t)
	if err != nil {
		return err
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			disputeTxItem: {Put: put},
			escrowTxItem:  {Update: escrowUpdate},
		},
	}
	return s.writeDisputeTx(ctx, input, d, t)
}

// disputePut builds a put of d conditional on the stored version and an unresolved status.
func (s *Store) disputePut(d *models.Dispute, expectedVersion int64) (*types.Put, error) {
	item, err := attributevalue.MarshalMap(newDisputeItem(d))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dispute: %w", err)
	}

	cond := expression.Name("version").Equal(expression.Value(expectedVersion)).
		And(expression.Name("status").NotEqual(expression.Value(string(models.DisputeResolved))))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build dispute condition: %w", err)
	}

	return &types.Put{
		TableName:                 aws.String(s.DisputesTableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}

func (s *Store) writeDisputeTx(ctx context.Context, input *dynamodb.TransactWriteItemsInput, d *models.Dispute, t *models.Transition) error {
	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		if failed, ok := cancelledItems(err); ok && len(failed) > 0 {
			if failed[0] == disputeTxItem {
				return concurrent("dispute", d.ID)
			}
			return concurrent("escrow", t.Escrow.ID)
		}
		return fmt.Errorf("failed to execute %s dispute transaction: %w", t.Event, err)
	}
	return nil
}
