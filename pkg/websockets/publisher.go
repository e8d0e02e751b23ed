package websockets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
)

// UserConnectionsGetter looks up the open connections of a user.
type UserConnectionsGetter interface {
	GetConnectionsByUser(ctx context.Context, userID string) ([]string, error)
}

// PostToConnectionAPI is the subset of the API Gateway management client used to push messages.
type PostToConnectionAPI interface {
	PostToConnection(ctx context.Context, params *apigatewaymanagementapi.PostToConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error)
}

// DefaultPublisher pushes messages through API Gateway WebSocket connections.
type DefaultPublisher struct {
	store       UserConnectionsGetter
	connManager ConnectionManager
	apiGwClient PostToConnectionAPI
	logger      *slog.Logger
}

// NewPublisher creates a DefaultPublisher for the given API Gateway endpoint.
func NewPublisher(cfg aws.Config, store UserConnectionsGetter, connManager ConnectionManager, apiEndpoint string, logger *slog.Logger) *DefaultPublisher {
	apiGwClient := apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(apiEndpoint)
	})
	return NewPublisherWithClient(apiGwClient, store, connManager, logger)
}

// NewPublisherWithClient creates a DefaultPublisher around an existing client.
func NewPublisherWithClient(client PostToConnectionAPI, store UserConnectionsGetter, connManager ConnectionManager, logger *slog.Logger) *DefaultPublisher {
	return &DefaultPublisher{
		store:       store,
		connManager: connManager,
		apiGwClient: client,
		logger:      logger,
	}
}

// Publish sends a message to every connection of the given users. Stale
// connections are removed; other delivery failures are logged.
func (p *DefaultPublisher) Publish(ctx context.Context, userIDs []string, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	var errs []error
	for _, userID := range userIDs {
		connectionIDs, err := p.store.GetConnectionsByUser(ctx, userID)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get connections for user %s: %w", userID, err))
			continue
		}

		for _, connectionID := range connectionIDs {
			_, err := p.apiGwClient.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
				ConnectionId: aws.String(connectionID),
				Data:         payload,
			})
			if err == nil {
				continue
			}

			var goneErr *apigwtypes.GoneException
			if errors.As(err, &goneErr) {
				p.logger.Info("stale connection found, deleting", "connectionId", connectionID)
				if err := p.connManager.RemoveConnection(ctx, connectionID); err != nil {
					p.logger.Error("failed to delete stale connection", "error", err)
				}
			} else {
				p.logger.Error("failed to post to connection", "connectionId", connectionID, "error", err)
			}
		}
	}

	return errors.Join(errs...)
}
