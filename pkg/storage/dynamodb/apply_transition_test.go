package dynamodb

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/storage"
	"github.com/chris/escrow-marketplace/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransitionExpression(t *testing.T) {
	t.Run("Delivery Sets Release Deadline", func(t *testing.T) {
		expr, err := transitionExpression(deliveredTransition())
		require.NoError(t, err)

		assert.Contains(t, *expr.Update(), "list_append")
		assert.Contains(t, *expr.Update(), "if_not_exists")
		assert.NotContains(t, *expr.Update(), "REMOVE")
		assert.NotContains(t, *expr.Condition(), "attribute_not_exists")
	})

	t.Run("Leaving Delivered Clears Release Deadline", func(t *testing.T) {
		tr := deliveredTransition()
		e := tr.Escrow.Clone()
		entry := models.TimelineEntry{ID: "tl-3", Status: models.StatusCompleted, Actor: "buyer-1", Timestamp: testNow.Add(time.Hour)}
		e.Status = models.StatusCompleted
		e.Version = 4
		e.Timeline = append(e.Timeline, entry)
		confirm := &models.Transition{Event: "confirm_delivery", From: models.StatusDelivered, FromVersion: 3, Escrow: e, Entry: entry}

		expr, err := transitionExpression(confirm)
		require.NoError(t, err)

		assert.Contains(t, *expr.Update(), "REMOVE")
	})

	t.Run("Funding Guards Payment", func(t *testing.T) {
		e := fundedEscrow()
		fund := &models.Transition{Event: "fund", From: models.StatusPending, FromVersion: 1, Escrow: e, Entry: e.Timeline[0], SetsPayment: true}

		expr, err := transitionExpression(fund)
		require.NoError(t, err)

		assert.Contains(t, *expr.Condition(), "attribute_not_exists")
		assert.NotEmpty(t, firstNameFor(expr.Names(), "payment"))
	})
}

// firstNameFor returns the placeholder suffix for an attribute name.
func firstNameFor(names map[string]string, attr string) string {
	for k, v := range names {
		if v == attr {
			return strings.TrimPrefix(k, "#")
		}
	}
	return ""
}

func TestApplyTransition(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newTestStore(mockClient)
		tr := deliveredTransition()

		mockClient.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
			id := in.Key["id"].(*types.AttributeValueMemberS).Value
			return *in.TableName == "escrows" && id == tr.Escrow.ID && in.ConditionExpression != nil
		})).Return(&dynamodb.UpdateItemOutput{}, nil).Once()

		err := store.ApplyTransition(context.Background(), tr)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Lost Race", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newTestStore(mockClient)

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).
			Return(nil, &types.ConditionalCheckFailedException{}).Once()

		err := store.ApplyTransition(context.Background(), deliveredTransition())

		assert.ErrorIs(t, err, storage.ErrConcurrentModification)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newTestStore(mockClient)

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, errors.New("update failed")).Once()

		err := store.ApplyTransition(context.Background(), deliveredTransition())

		assert.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrConcurrentModification)
		assert.Contains(t, err.Error(), "failed to apply submit_delivery transition to escrow esc-1")
		mockClient.AssertExpectations(t)
	})
}
