package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/escrow-marketplace/pkg/models"
)

func escrowKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

// transitionExpression builds the conditional update for a transition. The
// timeline is appended with list_append, never rewritten, and the payment is
// only ever set by the funding transition, guarded by attribute_not_exists.
func transitionExpression(t *models.Transition) (expression.Expression, error) {
	next := newEscrowItem(t.Escrow)

	update := expression.
		Set(expression.Name("status"), expression.Value(next.Status)).
		Set(expression.Name("version"), expression.Value(next.Version)).
		Set(expression.Name("updated_at"), expression.Value(next.UpdatedAt)).
		Set(expression.Name("timeline"), expression.ListAppend(
			expression.IfNotExists(expression.Name("timeline"), expression.Value([]models.TimelineEntry{})),
			expression.Value([]models.TimelineEntry{t.Entry}),
		)).
		Set(expression.Name("delivery"), expression.Value(next.Delivery)).
		Set(expression.Name("dispute"), expression.Value(next.Dispute))

	if next.AutoReleaseAt != "" {
		update = update.Set(expression.Name("auto_release_at"), expression.Value(next.AutoReleaseAt))
	} else {
		update = update.Remove(expression.Name("auto_release_at"))
	}
	if next.Cancellation != nil {
		update = update.Set(expression.Name("cancellation"), expression.Value(next.Cancellation))
	}
	if next.Payout != nil {
		update = update.Set(expression.Name("payout"), expression.Value(next.Payout))
	}

	cond := expression.Name("status").Equal(expression.Value(string(t.From))).
		And(expression.Name("version").Equal(expression.Value(t.FromVersion)))
	if t.SetsPayment {
		update = update.Set(expression.Name("payment"), expression.Value(next.Payment))
		cond = cond.And(expression.AttributeNotExists(expression.Name("payment")))
	}

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return expression.Expression{}, fmt.Errorf("failed to build transition expression: %w", err)
	}
	return expr, nil
}

// transitionUpdate wraps the transition as a TransactWriteItems update.
func (s *Store) transitionUpdate(t *models.Transition) (*types.Update, error) {
	expr, err := transitionExpression(t)
	if err != nil {
		return nil, err
	}
	return &types.Update{
		TableName:                 aws.String(s.EscrowsTableName),
		Key:                       escrowKey(t.Escrow.ID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}

// ApplyTransition writes the transition as a compare-and-swap on the escrow's
// status and version. If another writer got there first the condition fails
// and ErrConcurrentModification is returned; nothing is overwritten.
func (s *Store) ApplyTransition(ctx context.Context, t *models.Transition) error {
	expr, err := transitionExpression(t)
	if err != nil {
		return err
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.EscrowsTableName),
		Key:                       escrowKey(t.Escrow.ID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		if isConditionFailure(err) {
			return concurrent("escrow", t.Escrow.ID)
		}
		return fmt.Errorf("failed to apply %s transition to escrow %s: %w", t.Event, t.Escrow.ID, err)
	}
	return nil
}
