package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

const (
	connectionsUserIndex = "user_id-index"

	// API Gateway drops WebSocket connections after two hours; the table's
	// TTL attribute removes rows whose $disconnect never arrived.
	connectionLifetime = 2 * time.Hour
)

// WebSocketConnection is a row of the connections table.
type WebSocketConnection struct {
	ConnectionID string `dynamodbav:"connection_id"`
	UserID       string `dynamodbav:"user_id"`
	ConnectedAt  string `dynamodbav:"connected_at"`
	ExpiresAt    int64  `dynamodbav:"expires_at"`
}

// AddConnection records a connection for the user the token belonged to.
func (s *Store) AddConnection(ctx context.Context, connectionID, userID string) error {
	now := time.Now().UTC()
	item, err := attributevalue.MarshalMap(WebSocketConnection{
		ConnectionID: connectionID,
		UserID:       userID,
		ConnectedAt:  now.Format(time.RFC3339),
		ExpiresAt:    now.Add(connectionLifetime).Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal connection: %w", err)
	}

	if _, err := s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.WebsocketConnectionsTableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

// RemoveConnection deletes a connection. Removing an unknown id is not an error.
func (s *Store) RemoveConnection(ctx context.Context, connectionID string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"connection_id": connectionID})
	if err != nil {
		return fmt.Errorf("failed to marshal connection key: %w", err)
	}

	if _, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.WebsocketConnectionsTableName),
		Key:       key,
	}); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// GetConnectionsByUser returns the open connection IDs of a user, following
// pagination of the user index.
func (s *Store) GetConnectionsByUser(ctx context.Context, userID string) ([]string, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("user_id").Equal(expression.Value(userID))).
		WithProjection(expression.NamesList(expression.Name("connection_id"))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build connections query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.WebsocketConnectionsTableName),
		IndexName:                 aws.String(connectionsUserIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var ids []string
	for {
		out, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query connections table: %w", err)
		}
		var page []WebSocketConnection
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal connections: %w", err)
		}
		for _, c := range page {
			ids = append(ids, c.ConnectionID)
		}
		if len(out.LastEvaluatedKey) == 0 {
			return ids, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
