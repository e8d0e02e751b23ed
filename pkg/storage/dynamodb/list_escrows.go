package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/escrow-marketplace/pkg/models"
)

const (
	buyerIDIndex      = "buyer_id-created_at-index"
	sellerIDIndex     = "seller_id-created_at-index"
	overdueReleaseGSI = "status-auto_release_at-index"
	defaultQueryLimit = 100
)

// ListEscrowsByUser queries both participant indexes and merges the results, newest first.
func (s *Store) ListEscrowsByUser(ctx context.Context, userID string) ([]models.Escrow, error) {
	var out []models.Escrow
	for _, idx := range []struct{ index, attr string }{
		{buyerIDIndex, "buyer_id"},
		{sellerIDIndex, "seller_id"},
	} {
		keyCond := expression.Key(idx.attr).Equal(expression.Value(userID))
		expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build query for %s: %w", idx.index, err)
		}
		items, err := s.queryAll(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.EscrowsTableName),
			IndexName:                 aws.String(idx.index),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ScanIndexForward:          aws.Bool(false),
		}, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to query escrows by %s: %w", idx.attr, err)
		}
		escrows, err := unmarshalEscrows(items)
		if err != nil {
			return nil, err
		}
		out = append(out, escrows...)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListOverdueDeliveries queries the sparse auto-release index for delivered
// escrows whose deadline is at or before now.
func (s *Store) ListOverdueDeliveries(ctx context.Context, now time.Time, limit int32) ([]models.Escrow, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	keyCond := expression.Key("status").Equal(expression.Value(string(models.StatusDelivered))).
		And(expression.Key("auto_release_at").LessThanEqual(expression.Value(formatSortable(now))))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build overdue query: %w", err)
	}

	items, err := s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.EscrowsTableName),
		IndexName:                 aws.String(overdueReleaseGSI),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, int(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query for overdue deliveries: %w", err)
	}
	return unmarshalEscrows(items)
}

// queryAll follows LastEvaluatedKey until the query is exhausted or max items
// are collected. max <= 0 means no cap.
func (s *Store) queryAll(ctx context.Context, input *dynamodb.QueryInput, max int) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if max > 0 && len(items) >= max {
			return items[:max], nil
		}
		if len(result.LastEvaluatedKey) == 0 {
			return items, nil
		}
		next := *input
		next.ExclusiveStartKey = result.LastEvaluatedKey
		input = &next
	}
}

func unmarshalEscrows(items []map[string]types.AttributeValue) ([]models.Escrow, error) {
	var records []escrowItem
	if err := attributevalue.UnmarshalListOfMaps(items, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal escrows: %w", err)
	}
	out := make([]models.Escrow, 0, len(records))
	for _, r := range records {
		e, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}
