package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chris/escrow-marketplace/pkg/api"
	"github.com/chris/escrow-marketplace/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "escrow-marketplace"
)

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(sub string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   sub,
		Issuer:    testIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func echoActor() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFromContext(r.Context())
		_, _ = w.Write([]byte(actor))
	})
}

func TestAuth(t *testing.T) {
	handler := Auth(NewTokenVerifier(testSecret, testIssuer))(echoActor())

	expired := validClaims("user-1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	otherIssuer := validClaims("user-1")
	otherIssuer.Issuer = "someone-else"
	noExpiry := validClaims("user-1")
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantActor  string
	}{
		{"Success", "Bearer " + signToken(t, testSecret, validClaims("user-1")), "", http.StatusOK, "user-1"},
		{"Query Token", "", "?access_token=" + signToken(t, testSecret, validClaims("user-2")), http.StatusOK, "user-2"},
		{"Missing Header", "", "", http.StatusUnauthorized, ""},
		{"Not Bearer", "Basic abc", "", http.StatusUnauthorized, ""},
		{"Wrong Secret", "Bearer " + signToken(t, "other", validClaims("user-1")), "", http.StatusUnauthorized, ""},
		{"Expired", "Bearer " + signToken(t, testSecret, expired), "", http.StatusUnauthorized, ""},
		{"Missing Expiry", "Bearer " + signToken(t, testSecret, noExpiry), "", http.StatusUnauthorized, ""},
		{"Wrong Issuer", "Bearer " + signToken(t, testSecret, otherIssuer), "", http.StatusUnauthorized, ""},
		{"No Subject", "Bearer " + signToken(t, testSecret, validClaims("")), "", http.StatusUnauthorized, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/escrows"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			if tc.wantStatus == http.StatusOK {
				assert.Equal(t, tc.wantActor, rr.Body.String())
				return
			}
			var body api.Error
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, "unauthorized", body.Code)
		})
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis down")
}

func TestRateLimit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	post := func(h http.Handler, actor string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/escrows", nil)
		req = req.WithContext(WithActor(req.Context(), actor))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	t.Run("Limits Per Actor", func(t *testing.T) {
		h := RateLimit(ratelimit.NewMemoryLimiter(ratelimit.Config{RequestsPerMinute: 1, Burst: 1}), logger)(ok)

		assert.Equal(t, http.StatusNoContent, post(h, "user-1").Code)
		rr := post(h, "user-1")
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.NotEmpty(t, rr.Header().Get("Retry-After"))
		assert.Equal(t, http.StatusNoContent, post(h, "user-2").Code)
	})

	t.Run("Reads Are Not Limited", func(t *testing.T) {
		h := RateLimit(ratelimit.NewMemoryLimiter(ratelimit.Config{RequestsPerMinute: 1, Burst: 1}), logger)(ok)
		for i := 0; i < 3; i++ {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/escrows", nil))
			assert.Equal(t, http.StatusNoContent, rr.Code)
		}
	})

	t.Run("Fails Open", func(t *testing.T) {
		h := RateLimit(failingLimiter{}, logger)(ok)
		assert.Equal(t, http.StatusNoContent, post(h, "user-1").Code)
	})
}

func TestNewStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(NewStructuredLogger(logger))
	r.Use(Auth(NewTokenVerifier(testSecret, testIssuer)))
	r.Get("/escrows", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/escrows", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims("user-1")))
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request completed", line["msg"])
	request := line["request"].(map[string]any)
	assert.Equal(t, "user-1", request["actor"])
	assert.Equal(t, "/escrows", request["path"])
	response := line["response"].(map[string]any)
	assert.EqualValues(t, http.StatusOK, response["status"])

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/escrows", nil))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request rejected", line["msg"])
}

type recordedRequest struct {
	method, route string
	status        int
}

type recordingObserver struct{ got []recordedRequest }

func (o *recordingObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	o.got = append(o.got, recordedRequest{method, route, status})
}

func TestMetrics(t *testing.T) {
	obs := &recordingObserver{}
	r := chi.NewRouter()
	r.Use(Metrics(obs))
	r.Get("/escrows/{escrowId}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/escrows/abc", nil))

	require.Len(t, obs.got, 1)
	assert.Equal(t, recordedRequest{http.MethodGet, "/escrows/{escrowId}", http.StatusNotFound}, obs.got[0])
}
