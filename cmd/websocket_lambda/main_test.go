package main

import (
	"context"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct{ called string }

func (r *recordingHandler) respond(name string) (events.APIGatewayProxyResponse, error) {
	r.called = name
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

func (r *recordingHandler) HandleConnect(context.Context, events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	return r.respond("connect")
}

func (r *recordingHandler) HandleDisconnect(context.Context, events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	return r.respond("disconnect")
}

func (r *recordingHandler) HandleDefault(context.Context, events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	return r.respond("default")
}

func TestRoute(t *testing.T) {
	tests := []struct {
		routeKey string
		want     string
	}{
		{"$connect", "connect"},
		{"$disconnect", "disconnect"},
		{"$default", "default"},
		{"ping", "default"},
	}
	for _, tt := range tests {
		t.Run(tt.routeKey, func(t *testing.T) {
			h := &recordingHandler{}
			req := events.APIGatewayWebsocketProxyRequest{}
			req.RequestContext.RouteKey = tt.routeKey

			resp, err := route(h)(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.want, h.called)
		})
	}
}
