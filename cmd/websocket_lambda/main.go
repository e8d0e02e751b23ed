package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/escrow-marketplace/pkg/bootstrap"
	wshandlers "github.com/chris/escrow-marketplace/pkg/handlers/websockets"
	"github.com/chris/escrow-marketplace/pkg/middleware"
)

type routeHandler interface {
	HandleConnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error)
	HandleDisconnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error)
	HandleDefault(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error)
}

// route dispatches an API Gateway WebSocket event by its route key.
func route(h routeHandler) func(context.Context, events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
		switch request.RequestContext.RouteKey {
		case "$connect":
			return h.HandleConnect(ctx, request)
		case "$disconnect":
			return h.HandleDisconnect(ctx, request)
		default:
			return h.HandleDefault(ctx, request)
		}
	}
}

func main() {
	rt, err := bootstrap.Open(context.Background(), ".")
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	if rt.Config.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	verifier := middleware.NewTokenVerifier(rt.Config.JWTSecret, rt.Config.JWTIssuer)
	lambda.Start(route(wshandlers.NewHandler(rt.Store, verifier, nil, rt.Logger)))
}
