package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/chris/escrow-marketplace/pkg/api"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	actorIDKey       contextKey = "actorID"
	actorRecorderKey contextKey = "actorRecorder"
)

// actorRecorder lets the request logger see the actor resolved by Auth.
type actorRecorder struct{ id string }

func withActorRecorder(ctx context.Context, rec *actorRecorder) context.Context {
	return context.WithValue(ctx, actorRecorderKey, rec)
}

// WithActor returns a copy of ctx carrying the authenticated user id.
func WithActor(ctx context.Context, actorID string) context.Context {
	if rec, ok := ctx.Value(actorRecorderKey).(*actorRecorder); ok {
		rec.id = actorID
	}
	return context.WithValue(ctx, actorIDKey, actorID)
}

// ActorFromContext returns the user id placed by Auth.
func ActorFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(actorIDKey).(string)
	return id, ok && id != ""
}

// TokenVerifier validates HS256 bearer tokens and returns their subject.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a verifier. An empty issuer disables the issuer check.
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}
}

// Subject parses the token and returns its sub claim.
func (v *TokenVerifier) Subject(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// bearerToken reads the token from the Authorization header, falling back to
// the access_token query parameter used by browser WebSocket clients.
func bearerToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return "", errors.New("invalid Authorization header format")
		}
		return strings.TrimSpace(token), nil
	}
	if token := r.URL.Query().Get("access_token"); token != "" {
		return token, nil
	}
	return "", errors.New("authorization header required")
}

// Auth rejects requests without a valid bearer token and puts the token
// subject in the request context as the acting user.
func Auth(verifier *TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
				return
			}
			subject, err := verifier.Subject(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), subject)))
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.Error{Error: msg, Code: code})
}
