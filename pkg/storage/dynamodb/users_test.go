package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/storage"
	"github.com/chris/escrow-marketplace/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetUser(t *testing.T) {
	user := &models.User{
		ID:            "buyer-1",
		Email:         "buyer@example.com",
		EmailVerified: true,
		KYCStatus:     models.KYCApproved,
		AccountStatus: models.AccountActive,
		Tier:          models.TierStarter,
		MonthlyUsage:  models.MonthlyUsage{TransactionCount: 2, ResetMonth: "2025-05"},
	}
	userAV, err := attributevalue.MarshalMap(user)
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newTestStore(mockClient)

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: userAV}, nil)

		result, err := store.GetUser(context.Background(), user.ID)

		assert.NoError(t, err)
		assert.Equal(t, user, result)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newTestStore(mockClient)

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		_, err := store.GetUser(context.Background(), user.ID)

		assert.ErrorIs(t, err, storage.ErrNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("By Email Normalises Case", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newTestStore(mockClient)

		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			for _, v := range in.ExpressionAttributeValues {
				if s, ok := v.(*types.AttributeValueMemberS); ok && s.Value == "buyer@example.com" {
					return *in.IndexName == emailIndex
				}
			}
			return false
		})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{userAV}}, nil).Once()

		result, err := store.GetUserByEmail(context.Background(), " Buyer@Example.com ")

		assert.NoError(t, err)
		assert.Equal(t, user.ID, result.ID)
		mockClient.AssertExpectations(t)
	})

	t.Run("By Email Missing", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newTestStore(mockClient)

		mockClient.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil).Once()

		_, err := store.GetUserByEmail(context.Background(), "nobody@example.com")

		assert.ErrorIs(t, err, storage.ErrNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("By Email Query Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newTestStore(mockClient)

		mockClient.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("query failed")).Once()

		_, err := store.GetUserByEmail(context.Background(), "buyer@example.com")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query user by email")
		mockClient.AssertExpectations(t)
	})
}
